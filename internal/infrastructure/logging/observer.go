package logging

import (
	"go.uber.org/zap"

	"github.com/felixgeelhaar/specgate/pkg/domain/convergence"
)

// EnhancementLog records the progress of enhancement runs.
type EnhancementLog struct {
	logger *zap.Logger
}

func NewEnhancementLog(logger *zap.Logger) *EnhancementLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnhancementLog{logger: logger}
}

// Factory adapts NewEnhancementLog to application.WithObserver.
func Factory(logger *zap.Logger) convergence.Observer {
	return NewEnhancementLog(logger)
}

func (l *EnhancementLog) CycleStarted(s convergence.CycleStart) {
	l.logger.Info("enhancement started",
		zap.String("language", string(s.Language)),
		zap.Float64("initial_score", s.InitialScore),
		zap.Float64("threshold", s.Threshold),
		zap.Int("max_iterations", s.MaxIterations),
	)
}

func (l *EnhancementLog) IterationCompleted(it convergence.Iteration) {
	l.logger.Info("iteration completed",
		zap.Int("iteration", it.Number),
		zap.Float64("previous", it.Previous),
		zap.Float64("score", it.Score),
		zap.Float64("delta", it.Delta),
		zap.Int("plateau_count", it.PlateauCount),
		zap.Int("applied", len(it.Applied)),
		zap.Int("failed", len(it.Failed)),
		zap.Int("skipped", len(it.Skipped)),
	)
	for _, imp := range it.Applied {
		l.logger.Debug("improvement applied",
			zap.Int("iteration", it.Number),
			zap.String("category", imp.Category.String()),
			zap.String("target", imp.TargetSection),
		)
	}
	for _, f := range it.Failed {
		l.logger.Warn("improvement failed",
			zap.Int("iteration", it.Number),
			zap.String("category", f.Improvement.Category.String()),
			zap.String("target", f.Improvement.TargetSection),
			zap.Error(f.Err),
		)
	}
}

func (l *EnhancementLog) CycleFinished(r convergence.Result) {
	fields := []zap.Field{
		zap.String("stop_reason", string(r.StopReason)),
		zap.Float64("initial_score", r.InitialScore),
		zap.Float64("final_score", r.FinalScore),
		zap.Int("iterations", r.Iterations),
		zap.Bool("changed", r.Changed),
	}
	if r.Err != nil {
		l.logger.Error("enhancement failed", append(fields, zap.Error(r.Err))...)
		return
	}
	l.logger.Info("enhancement finished", fields...)
}
