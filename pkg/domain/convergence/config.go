package convergence

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/specgate/pkg/domain/document"
)

var ErrInvalidConfig = errors.New("invalid convergence config")

// Config bounds one enhancement run.
type Config struct {
	Threshold         float64 `json:"threshold" yaml:"threshold"`
	MaxIterations     int     `json:"max_iterations" yaml:"max_iterations"`
	PlateauIterations int     `json:"plateau_iterations" yaml:"plateau_iterations"`
	MinImprovement    float64 `json:"min_improvement" yaml:"min_improvement"`
}

// DefaultConfig returns the stock limits for kind.
func DefaultConfig(kind document.Kind) Config {
	c := Config{Threshold: 9.0, MaxIterations: 10, PlateauIterations: 3, MinImprovement: 0.1}
	if kind == document.KindTasks {
		c.Threshold = 8.0
	}
	return c
}

func (c Config) Validate() error {
	switch {
	case c.Threshold < 0 || c.Threshold > 10:
		return fmt.Errorf("%w: threshold %.2f outside 0-10", ErrInvalidConfig, c.Threshold)
	case c.MaxIterations < 1:
		return fmt.Errorf("%w: max_iterations must be at least 1", ErrInvalidConfig)
	case c.PlateauIterations < 1:
		return fmt.Errorf("%w: plateau_iterations must be at least 1", ErrInvalidConfig)
	case c.MinImprovement < 0:
		return fmt.Errorf("%w: min_improvement must not be negative", ErrInvalidConfig)
	}
	return nil
}
