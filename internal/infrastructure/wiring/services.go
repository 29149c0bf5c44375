package wiring

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/specgate/internal/infrastructure/config"
	"github.com/felixgeelhaar/specgate/internal/infrastructure/logging"
	"github.com/felixgeelhaar/specgate/internal/infrastructure/sse"
	"github.com/felixgeelhaar/specgate/pkg/application"
	"github.com/felixgeelhaar/specgate/pkg/domain/convergence"
)

// AppServices exposes the application services wired to a workspace.
type AppServices struct {
	Workspace *Workspace
	Enhance   *application.EnhancementService
	Gate      *application.GateService
	Backups   *application.BackupService
	History   *application.HistoryService
	Events    *sse.Broker
}

// BuildAppServices constructs the services for root. A non-nil error with
// non-nil services is a degraded but usable setup.
func BuildAppServices(root string, overrides config.File, logger *zap.Logger) (*AppServices, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := config.LoadDotEnv(root); err != nil {
		return nil, err
	}
	loader := config.NewLoader(root, config.WithOverrides(overrides), config.WithLogger(logger))
	workspace, loadErr := NewWorkspace(root, loader, logger)
	if workspace == nil {
		return nil, fmt.Errorf("failed to open workspace: %w", loadErr)
	}

	locks := application.NewPathLocks()
	events := sse.NewBroker()
	observe := func(l *zap.Logger) convergence.Observer {
		return convergence.Observers(logging.Factory(l), events.Observer())
	}
	enhance := application.NewEnhancementService(workspace.Documents, loader,
		application.WithBackups(workspace.Backups),
		application.WithHistory(workspace.History),
		application.WithLocks(locks),
		application.WithLogger(logger),
		application.WithObserver(observe),
	)

	return &AppServices{
		Workspace: workspace,
		Enhance:   enhance,
		Gate:      application.NewGateService(enhance),
		Backups:   application.NewBackupService(workspace.Documents, workspace.Backups, locks, logger),
		History:   application.NewHistoryService(workspace.Documents, workspace.History),
		Events:    events,
	}, loadErr
}

// Close releases workspace resources.
func (s *AppServices) Close() error {
	return s.Workspace.Close()
}
