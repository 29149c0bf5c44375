package application

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/specgate/pkg/domain/convergence"
	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/domain/improvement"
	"github.com/felixgeelhaar/specgate/pkg/domain/mutation"
	"github.com/felixgeelhaar/specgate/pkg/domain/quality"
	"github.com/felixgeelhaar/specgate/pkg/storage"
)

// EnhanceRequest names the document to enhance.
type EnhanceRequest struct {
	Path string
	// Kind is inferred from the file name when empty.
	Kind document.Kind
	// CompanionPath is the requirements document a design is traced
	// against. For designs it defaults to requirements.md beside the path.
	CompanionPath string
	Language      document.Language
	// DryRun computes the result without writing the document.
	DryRun bool
}

// EnhancementService runs the convergence loop against stored documents and
// manages the backup and history bookkeeping around it.
type EnhancementService struct {
	docs     Documents
	settings Resolver
	backups  Backups
	history  storage.RunHistory
	locks    *PathLocks
	logger   *zap.Logger
	observer func(*zap.Logger) convergence.Observer
	mutator  *mutation.Mutator
	now      func() time.Time
}

// ServiceOption configures an EnhancementService.
type ServiceOption func(*EnhancementService)

func WithBackups(b Backups) ServiceOption {
	return func(s *EnhancementService) { s.backups = b }
}

func WithHistory(h storage.RunHistory) ServiceOption {
	return func(s *EnhancementService) { s.history = h }
}

func WithLocks(l *PathLocks) ServiceOption {
	return func(s *EnhancementService) {
		if l != nil {
			s.locks = l
		}
	}
}

func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *EnhancementService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver installs a factory for per-run observers. The factory gets
// the service logger scoped to the run.
func WithObserver(f func(*zap.Logger) convergence.Observer) ServiceOption {
	return func(s *EnhancementService) { s.observer = f }
}

func WithMutator(m *mutation.Mutator) ServiceOption {
	return func(s *EnhancementService) {
		if m != nil {
			s.mutator = m
		}
	}
}

func NewEnhancementService(docs Documents, settings Resolver, opts ...ServiceOption) *EnhancementService {
	if settings == nil {
		settings = Defaults
	}
	s := &EnhancementService{
		docs:     docs,
		settings: settings,
		locks:    NewPathLocks(),
		logger:   zap.NewNop(),
		mutator:  mutation.NewMutator(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// target is a request resolved against the store and configuration.
type target struct {
	path      string
	kind      document.Kind
	companion string
	settings  Settings
}

func (s *EnhancementService) resolve(path string, kind document.Kind, companionPath string) (target, error) {
	full, err := s.docs.ResolvePath(path)
	if err != nil {
		return target{}, err
	}
	if kind == "" {
		k, ok := document.InferKind(full)
		if !ok {
			return target{}, fmt.Errorf("%w: %s", ErrUnknownKind, path)
		}
		kind = k
	}
	if !kind.Valid() {
		return target{}, fmt.Errorf("%w: %q", document.ErrUnknownKind, kind)
	}
	settings, err := s.settings.Resolve(full, kind)
	if err != nil {
		return target{}, fmt.Errorf("failed to resolve settings for %s: %w", path, err)
	}
	t := target{path: full, kind: kind, settings: settings}
	if kind == document.KindDesign {
		t.companion, err = s.companion(full, companionPath)
		if err != nil {
			return target{}, err
		}
	}
	return t, nil
}

// companion reads the explicit companion, or requirements.md beside the
// design when one exists.
func (s *EnhancementService) companion(design, explicit string) (string, error) {
	if explicit != "" {
		text, err := s.docs.Read(explicit)
		if err != nil {
			return "", fmt.Errorf("failed to read companion document: %w", err)
		}
		return text, nil
	}
	text, err := s.docs.Read(filepath.Join(filepath.Dir(design), "requirements.md"))
	if err != nil {
		return "", nil
	}
	return text, nil
}

func (s *EnhancementService) scorer(t target) *quality.Scorer {
	if len(t.settings.Weights) == 0 {
		return quality.NewScorer()
	}
	return quality.NewScorer(quality.WithWeights(t.kind, t.settings.Weights))
}

func (s *EnhancementService) controller(store convergence.Store, t target, logger *zap.Logger) *convergence.Controller {
	var opts []convergence.Option
	if s.observer != nil {
		opts = append(opts, convergence.WithObserver(s.observer(logger)))
	}
	return convergence.NewController(store, s.scorer(t), improvement.NewIdentifier(), s.mutator, opts...)
}

// Enhance raises the document's quality until a stopping condition holds.
// Operational failures (bad path, busy document) are returned as errors;
// read and write failures during the run are reported in the result.
func (s *EnhancementService) Enhance(ctx context.Context, req EnhanceRequest) (convergence.Result, error) {
	t, err := s.resolve(req.Path, req.Kind, req.CompanionPath)
	if err != nil {
		return convergence.Result{}, err
	}
	if t.kind == document.KindTasks {
		return convergence.Result{}, fmt.Errorf("%w: %s", ErrNotEnhanceable, t.kind)
	}
	release, err := s.locks.Acquire(t.path)
	if err != nil {
		return convergence.Result{}, err
	}
	defer release()

	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID), zap.String("path", t.path), zap.String("kind", string(t.kind)))
	if t.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.settings.Timeout)
		defer cancel()
	}

	var store convergence.Store = s.docs
	var snapper *snapshottingStore
	switch {
	case req.DryRun:
		store = &dryRunStore{Documents: s.docs}
	case s.backups != nil && t.settings.Backup.Enabled:
		snapper = &snapshottingStore{Documents: s.docs, backups: s.backups, reason: "before enhancement", logger: logger}
		store = snapper
	}

	started := s.now()
	subject := convergence.Subject{Path: t.path, Kind: t.kind, Companion: t.companion, Language: req.Language}
	res := s.controller(store, t, logger).Run(ctx, subject, t.settings.Convergence)
	if req.DryRun {
		res.Changed = false
	}

	if snapper != nil && snapper.snapshot != nil && res.Err == nil && t.settings.Backup.CleanupOnSuccess {
		if err := s.backups.Discard(snapper.snapshot.ID); err != nil {
			logger.Warn("failed to discard snapshot", zap.String("backup_id", snapper.snapshot.ID), zap.Error(err))
		}
	}
	if s.backups != nil && t.settings.Backup.Retention > 0 {
		if n, err := s.backups.Prune(t.settings.Backup.Retention); err != nil {
			logger.Warn("failed to prune snapshots", zap.Error(err))
		} else if n > 0 {
			logger.Info("pruned snapshots", zap.Int("count", n))
		}
	}
	s.record(runID, res, req.DryRun, t.settings, started, logger)
	return res, nil
}

// Validate scores the document without modifying it. It claims the path like
// Enhance does, so it never observes a document mid-enhancement.
func (s *EnhancementService) Validate(ctx context.Context, req EnhanceRequest) (convergence.Result, error) {
	t, err := s.resolve(req.Path, req.Kind, req.CompanionPath)
	if err != nil {
		return convergence.Result{}, err
	}
	if t.kind == document.KindTasks {
		return convergence.Result{}, fmt.Errorf("%w: use AssessTasks for %s", ErrNotEnhanceable, t.kind)
	}
	release, err := s.locks.Acquire(t.path)
	if err != nil {
		return convergence.Result{}, err
	}
	defer release()
	subject := convergence.Subject{Path: t.path, Kind: t.kind, Companion: t.companion, Language: req.Language}
	started := s.now()
	res := s.controller(s.docs, t, s.logger).Validate(ctx, subject, t.settings.Convergence)
	s.record(uuid.NewString(), res, true, t.settings, started, s.logger)
	return res, nil
}

// Assess returns the full assessment of a requirements or design document.
func (s *EnhancementService) Assess(ctx context.Context, req EnhanceRequest) (quality.Assessment, error) {
	t, err := s.resolve(req.Path, req.Kind, req.CompanionPath)
	if err != nil {
		return quality.Assessment{}, err
	}
	text, err := s.docs.Read(t.path)
	if err != nil {
		return quality.Assessment{}, err
	}
	if t.kind == document.KindTasks {
		return quality.AssessTasks(text).Assessment(), nil
	}
	lang := document.Resolve(text, req.Language)
	return s.scorer(t).Score(t.kind, text, quality.ScoreOptions{Companion: t.companion, Language: lang}), nil
}

// AssessTasks scores a tasks checklist.
func (s *EnhancementService) AssessTasks(ctx context.Context, path string) (quality.TasksAssessment, Settings, error) {
	t, err := s.resolve(path, document.KindTasks, "")
	if err != nil {
		return quality.TasksAssessment{}, Settings{}, err
	}
	text, err := s.docs.Read(t.path)
	if err != nil {
		return quality.TasksAssessment{}, Settings{}, err
	}
	return quality.AssessTasks(text), t.settings, nil
}

// Settings returns the effective settings for the document at path.
func (s *EnhancementService) Settings(path string, kind document.Kind) (Settings, error) {
	t, err := s.resolve(path, kind, "")
	if err != nil {
		return Settings{}, err
	}
	return t.settings, nil
}

func (s *EnhancementService) record(id string, res convergence.Result, dryRun bool, settings Settings, started time.Time, logger *zap.Logger) {
	if s.history == nil || !settings.History {
		return
	}
	rec := storage.RunRecord{
		ID:           id,
		Path:         res.Path,
		Kind:         string(res.Kind),
		Language:     string(res.Language),
		InitialScore: res.InitialScore,
		FinalScore:   res.FinalScore,
		Iterations:   res.Iterations,
		StopReason:   string(res.StopReason),
		Applied:      len(res.Applied),
		Failed:       len(res.Failed),
		History:      res.ScoreHistory,
		Changed:      res.Changed,
		DryRun:       dryRun,
		Error:        res.ErrorMessage(),
		StartedAt:    started,
		Duration:     s.now().Sub(started),
	}
	if err := s.history.RecordRun(rec); err != nil {
		logger.Warn("failed to record run history", zap.Error(err))
	}
}
