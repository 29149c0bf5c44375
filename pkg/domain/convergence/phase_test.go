package convergence

import (
	"errors"
	"testing"
)

func TestPhaseMachineOrder(t *testing.T) {
	b := &budget{max: 1}
	fsm, err := newPhaseMachine(b)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if fsm.current() != PhaseScoring {
		t.Fatalf("initial phase = %s", fsm.current())
	}
	if err := fsm.advance(eventApplied); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("applied from scoring: %v", err)
	}
	for _, ev := range []string{eventScored, eventIdentified, eventApplied} {
		if err := fsm.advance(ev); err != nil {
			t.Fatalf("%s: %v", ev, err)
		}
	}
	if fsm.current() != PhaseRescoring {
		t.Fatalf("phase = %s", fsm.current())
	}

	b.used = 1
	if err := fsm.advance(eventContinue); err == nil {
		t.Error("continue allowed with exhausted budget")
	}
	if err := fsm.advance(eventStop); err != nil || fsm.current() != PhaseStopped {
		t.Errorf("stop: %v (%s)", err, fsm.current())
	}
	if err := fsm.advance(eventRestart); err != nil || fsm.current() != PhaseScoring {
		t.Errorf("restart: %v (%s)", err, fsm.current())
	}
}
