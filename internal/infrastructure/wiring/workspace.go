package wiring

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/felixgeelhaar/specgate/internal/infrastructure/config"
	"github.com/felixgeelhaar/specgate/pkg/storage"
)

// DatabaseFile is the default SQLite file under the project directory.
const DatabaseFile = "specgate.db"

// Workspace bundles the storage behind one project root.
type Workspace struct {
	Root      string
	Config    *config.Loader
	Documents *storage.DocumentStore
	Backups   *storage.BackupStore
	History   storage.RunHistory
	Logger    *zap.Logger

	db *storage.SQLiteStore
}

// NewWorkspace opens the stores for root. When the database cannot be
// opened the workspace falls back to in-memory catalogs and returns the
// cause alongside a usable workspace.
func NewWorkspace(root string, loader *config.Loader, logger *zap.Logger) (*Workspace, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loader == nil {
		loader = config.NewLoader(root, config.WithLogger(logger))
	}
	w := &Workspace{
		Root:      root,
		Config:    loader,
		Documents: storage.NewDocumentStore(root),
		Logger:    logger,
	}

	eff, err := loader.Effective("")
	if err != nil {
		return nil, err
	}
	dbPath := eff.History.Database
	if dbPath == "" {
		dbPath = filepath.Join(root, config.ProjectDir, DatabaseFile)
	} else if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(root, dbPath)
	}

	db, dbErr := storage.OpenSQLite(dbPath)
	if dbErr != nil {
		logger.Warn("falling back to in-memory catalog", zap.String("database", dbPath), zap.Error(dbErr))
		w.Backups = storage.NewBackupStore(storage.NewMemoryCatalog())
		w.History = storage.NewMemoryHistory()
		return w, fmt.Errorf("open %s: %w", dbPath, dbErr)
	}
	w.db = db
	w.Backups = storage.NewBackupStore(db)
	w.History = db
	return w, nil
}

// Close releases the database.
func (w *Workspace) Close() error {
	if w.db == nil {
		return nil
	}
	return w.db.Close()
}
