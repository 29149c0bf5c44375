package convergence

import (
	"context"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
)

// scoreEpsilon absorbs float noise when comparing score deltas.
const scoreEpsilon = 1e-9

// Controller drives Score, Identify, Apply, Rescore cycles against one
// document until a stopping condition holds. A Controller holds no per-run
// state and can serve concurrent runs on different documents.
type Controller struct {
	store      Store
	scorer     Scorer
	identifier Identifier
	mutator    Mutator
	observer   Observer
}

// Option configures a Controller.
type Option func(*Controller)

func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

func NewController(store Store, scorer Scorer, identifier Identifier, mutator Mutator, opts ...Option) *Controller {
	c := &Controller{
		store:      store,
		scorer:     scorer,
		identifier: identifier,
		mutator:    mutator,
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate scores the document without modifying it.
func (c *Controller) Validate(ctx context.Context, s Subject, cfg Config) Result {
	res := Result{Path: s.Path, Kind: s.Kind, Threshold: cfg.Threshold}
	text, err := c.store.Read(s.Path)
	if err != nil {
		res.StopReason, res.Err = ReasonReadError, err
		return res
	}
	lang := document.Resolve(text, s.Language)
	a := c.scorer.Score(s.Kind, text, quality.ScoreOptions{Companion: s.Companion, Language: lang})
	res.Language = lang
	res.InitialScore, res.FinalScore = a.Score, a.Score
	res.ScoreHistory = []float64{a.Score}
	res.StopReason = ReasonValidationOnly
	res.FinalAssessment = a
	res.Content = text
	c.observer.CycleFinished(res)
	return res
}

// Run enhances the document named by s. Cancellation is observed between
// cycles only; content accumulated before cancellation is still written.
// The stored document is written at most once, and only if it changed.
func (c *Controller) Run(ctx context.Context, s Subject, cfg Config) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	res := Result{Path: s.Path, Kind: s.Kind, Threshold: cfg.Threshold}
	if err := cfg.Validate(); err != nil {
		res.StopReason, res.Err = ReasonInternal, err
		return res
	}

	original, err := c.store.Read(s.Path)
	if err != nil {
		res.StopReason, res.Err = ReasonReadError, err
		c.observer.CycleFinished(res)
		return res
	}

	b := &budget{max: cfg.MaxIterations}
	fsm, err := newPhaseMachine(b)
	if err != nil {
		res.StopReason, res.Err = ReasonInternal, err
		return res
	}

	lang := document.Resolve(original, s.Language)
	opts := quality.ScoreOptions{Companion: s.Companion, Language: lang}
	res.Language = lang

	current := original
	prev := c.scorer.Score(s.Kind, current, opts)
	res.InitialScore = prev.Score
	res.ScoreHistory = []float64{prev.Score}
	c.observer.CycleStarted(CycleStart{
		Path:          s.Path,
		Kind:          s.Kind,
		Language:      lang,
		InitialScore:  prev.Score,
		Threshold:     cfg.Threshold,
		MaxIterations: cfg.MaxIterations,
	})

	step := func(event string) bool {
		if err := fsm.advance(event); err != nil {
			res.StopReason, res.Err = ReasonInternal, err
			return false
		}
		return true
	}

	if quality.MeetsThreshold(prev.Score, cfg.Threshold) {
		res.StopReason = ReasonThreshold
		step(eventStop)
	} else if step(eventScored) {
		misses := 0
		for res.StopReason == "" {
			if ctx.Err() != nil {
				res.StopReason = ReasonCanceled
				step(eventStop)
				break
			}
			if b.used >= b.max {
				res.StopReason = ReasonMaxIterations
				step(eventStop)
				break
			}

			imps := c.identifier.Identify(current, prev)
			b.used++
			res.Iterations = b.used
			if len(imps) == 0 {
				res.ScoreHistory = append(res.ScoreHistory, prev.Score)
				c.observer.IterationCompleted(Iteration{Number: b.used, Previous: prev.Score, Score: prev.Score, PlateauCount: misses})
				res.StopReason = ReasonNoImprovements
				step(eventStop)
				break
			}

			if !step(eventIdentified) {
				break
			}
			mr := c.mutator.Apply(current, imps, lang, s.Companion)
			if !step(eventApplied) {
				break
			}
			current = mr.Content
			res.Applied = append(res.Applied, mr.Applied...)
			res.Failed = append(res.Failed, mr.Failed...)
			if mr.Report != "" {
				res.Reports = append(res.Reports, mr.Report)
			}

			next := c.scorer.Score(s.Kind, current, opts)
			delta := next.Score - prev.Score
			if delta+scoreEpsilon < cfg.MinImprovement {
				misses++
			} else {
				misses = 0
			}
			res.ScoreHistory = append(res.ScoreHistory, next.Score)
			c.observer.IterationCompleted(Iteration{
				Number:       b.used,
				Previous:     prev.Score,
				Score:        next.Score,
				Delta:        delta,
				PlateauCount: misses,
				Applied:      mr.Applied,
				Failed:       mr.Failed,
				Skipped:      mr.Skipped,
			})
			prev = next

			switch {
			case quality.MeetsThreshold(next.Score, cfg.Threshold):
				res.StopReason = ReasonThreshold
				step(eventStop)
			case misses >= cfg.PlateauIterations:
				res.StopReason = ReasonPlateau
				step(eventStop)
			case b.used >= b.max:
				res.StopReason = ReasonMaxIterations
				step(eventStop)
			default:
				step(eventContinue)
			}
		}
	}

	res.FinalScore = prev.Score
	res.FinalAssessment = prev
	res.Content = current
	if current != original {
		if err := c.store.Write(s.Path, current); err != nil {
			res.StopReason, res.Err = ReasonWriteError, err
		} else {
			res.Changed = true
		}
	}
	c.observer.CycleFinished(res)
	return res
}
