package convergence

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Phase constants are untyped strings for statekit.StateID compatibility.
const (
	PhaseScoring     = "scoring"
	PhaseIdentifying = "identifying"
	PhaseApplying    = "applying"
	PhaseRescoring   = "rescoring"
	PhaseStopped     = "stopped"
)

const (
	eventScored     = "scored"
	eventIdentified = "identified"
	eventApplied    = "applied"
	eventContinue   = "continue"
	eventStop       = "stop"
	eventRestart    = "restart"
)

var ErrIllegalTransition = errors.New("illegal phase transition")

// budget is the live iteration count the continue guard reads.
type budget struct {
	used, max int
}

type phaseContext struct {
	Budget *budget
}

// phaseMachine enforces the cycle order Scoring, Identifying, Applying,
// Rescoring and back to Identifying until Stopped.
type phaseMachine struct {
	interpreter *statekit.Interpreter[phaseContext]
}

func newPhaseMachine(b *budget) (*phaseMachine, error) {
	builder := statekit.NewMachine[phaseContext]("convergence").
		WithInitial(statekit.StateID(PhaseScoring)).
		WithContext(phaseContext{Budget: b}).
		WithGuard("withinBudget", func(ctx phaseContext, e statekit.Event) bool {
			return ctx.Budget.used < ctx.Budget.max
		})

	builder.State(PhaseScoring).
		On(eventScored).Target(PhaseIdentifying).
		On(eventStop).Target(PhaseStopped).
		Done()

	builder.State(PhaseIdentifying).
		On(eventIdentified).Target(PhaseApplying).
		On(eventStop).Target(PhaseStopped).
		Done()

	builder.State(PhaseApplying).
		On(eventApplied).Target(PhaseRescoring).
		Done()

	builder.State(PhaseRescoring).
		On(eventContinue).Target(PhaseIdentifying).Guard("withinBudget").
		On(eventStop).Target(PhaseStopped).
		Done()

	builder.State(PhaseStopped).
		On(eventRestart).Target(PhaseScoring).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build phase machine: %w", err)
	}
	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &phaseMachine{interpreter: interpreter}, nil
}

func (p *phaseMachine) advance(event string) error {
	before := p.current()
	p.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if p.current() == before {
		return fmt.Errorf("%w: %q in phase %q", ErrIllegalTransition, event, before)
	}
	return nil
}

func (p *phaseMachine) current() string {
	return string(p.interpreter.State().Value)
}
