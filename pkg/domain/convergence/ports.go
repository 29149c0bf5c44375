package convergence

import (
	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/improvement"
	"github.com/felixgeelhaar/specgate/pkg/domain/mutation"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
)

// Store loads and saves documents. Errors are fatal to a run and never
// retried by the controller.
type Store interface {
	Read(path string) (string, error)
	Write(path, content string) error
}

type Scorer interface {
	Score(kind document.Kind, text string, opts quality.ScoreOptions) quality.Assessment
}

type Identifier interface {
	Identify(text string, a quality.Assessment) []improvement.Improvement
}

type Mutator interface {
	Apply(text string, imps []improvement.Improvement, lang document.Language, companion string) mutation.Result
}

// CycleStart describes a run about to begin its first cycle.
type CycleStart struct {
	Path          string
	Kind          document.Kind
	Language      document.Language
	InitialScore  float64
	Threshold     float64
	MaxIterations int
}

// Iteration is the outcome of one Identify, Apply, Rescore cycle.
type Iteration struct {
	Number       int
	Previous     float64
	Score        float64
	Delta        float64
	PlateauCount int
	Applied      []improvement.Improvement
	Failed       []mutation.Failure
	Skipped      []improvement.Improvement
}

// Observer receives progress events. Calls happen on the run's goroutine.
type Observer interface {
	CycleStarted(CycleStart)
	IterationCompleted(Iteration)
	CycleFinished(Result)
}

type nopObserver struct{}

func (nopObserver) CycleStarted(CycleStart)      {}
func (nopObserver) IterationCompleted(Iteration) {}
func (nopObserver) CycleFinished(Result)         {}

// Observers fans each event out to every non-nil observer, in order.
func Observers(obs ...Observer) Observer {
	var m multiObserver
	for _, o := range obs {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

type multiObserver []Observer

func (m multiObserver) CycleStarted(s CycleStart) {
	for _, o := range m {
		o.CycleStarted(s)
	}
}

func (m multiObserver) IterationCompleted(it Iteration) {
	for _, o := range m {
		o.IterationCompleted(it)
	}
}

func (m multiObserver) CycleFinished(r Result) {
	for _, o := range m {
		o.CycleFinished(r)
	}
}
