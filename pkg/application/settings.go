package application

import (
	"time"

	"github.com/felixgeelhaar/specgate/pkg/domain/convergence"
	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
)

// BackupSettings controls snapshots taken around enhancement writes.
type BackupSettings struct {
	Enabled          bool
	CleanupOnSuccess bool
	Retention        time.Duration
}

// Settings is the effective configuration for one document.
type Settings struct {
	Convergence convergence.Config
	Weights     quality.Weights
	Timeout     time.Duration
	Backup      BackupSettings
	History     bool
}

// DefaultSettings returns the stock settings for kind.
func DefaultSettings(kind document.Kind) Settings {
	return Settings{
		Convergence: convergence.DefaultConfig(kind),
		Weights:     quality.DefaultWeights(kind),
		Backup: BackupSettings{
			Enabled:          true,
			CleanupOnSuccess: true,
			Retention:        7 * 24 * time.Hour,
		},
		History: true,
	}
}

// Resolver yields the settings that apply to the document at path.
type Resolver interface {
	Resolve(path string, kind document.Kind) (Settings, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(path string, kind document.Kind) (Settings, error)

func (f ResolverFunc) Resolve(path string, kind document.Kind) (Settings, error) {
	return f(path, kind)
}

// Defaults is a Resolver that always returns DefaultSettings.
var Defaults Resolver = ResolverFunc(func(_ string, kind document.Kind) (Settings, error) {
	return DefaultSettings(kind), nil
})
