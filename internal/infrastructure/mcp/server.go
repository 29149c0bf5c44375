package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/specgate/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/specgate/pkg/application"
	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/storage"
)

type Server struct {
	mcpServer *mcp.Server
	enhance   *application.EnhancementService
	gate      *application.GateService
	backups   *application.BackupService
	history   *application.HistoryService
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients. Internal details
// are omitted.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

// friendly maps service errors onto messages a client can act on.
func friendly(action string, err error) error {
	switch {
	case errors.Is(err, application.ErrBusy):
		return mcpErr("The document is being enhanced by another request. Retry once it finishes.")
	case errors.Is(err, application.ErrNotEnhanceable):
		return mcpErr("Tasks documents can only be scored or gated, not enhanced.")
	case errors.Is(err, application.ErrUnknownKind), errors.Is(err, document.ErrUnknownKind):
		return mcpErr("Cannot tell the document kind. Pass kind as requirements, design or tasks.")
	case errors.Is(err, storage.ErrNotFound):
		return mcpErr("Document not found. Paths are relative to the workspace root.")
	case errors.Is(err, storage.ErrOutsideRoot):
		return mcpErr("The path is outside the workspace root.")
	case errors.Is(err, storage.ErrBackupNotFound):
		return mcpErr("No backup with that id. List backups with specgate_backups.")
	}
	return mcpErr(fmt.Sprintf("Failed to %s.", action))
}

func NewServer(services *wiring.AppServices) (*Server, error) {
	if services == nil {
		return nil, fmt.Errorf("services initialization returned nil")
	}

	info := mcp.ServerInfo{
		Name:    "specgate",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("specgate MCP Server"),
			mcp.WithDescription("specgate scores requirements, design and tasks documents and enhances them until they pass a quality gate."),
			mcp.WithWebsiteURL("https://github.com/felixgeelhaar/specgate"),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Score a document first, then enhance or gate it. Enhancement edits the file in place unless dry_run is set."),
		),
		enhance: services.Enhance,
		gate:    services.Gate,
		backups: services.Backups,
		history: services.History,
	}

	s.registerTools()
	s.registerSchemaResource()
	return s, nil
}

type DocumentArgs struct {
	Path      string `json:"path" jsonschema:"description=Document path relative to the workspace root"`
	Kind      string `json:"kind,omitempty" jsonschema:"description=requirements, design or tasks; inferred from the file name when omitted"`
	Companion string `json:"companion,omitempty" jsonschema:"description=Requirements document a design is traced against"`
	Language  string `json:"language,omitempty" jsonschema:"description=en or zh; detected when omitted"`
}

type EnhanceArgs struct {
	Path      string `json:"path" jsonschema:"description=Document path relative to the workspace root"`
	Kind      string `json:"kind,omitempty" jsonschema:"description=requirements, design or tasks; inferred from the file name when omitted"`
	Companion string `json:"companion,omitempty" jsonschema:"description=Requirements document a design is traced against"`
	Language  string `json:"language,omitempty" jsonschema:"description=en or zh; detected when omitted"`
	DryRun    bool   `json:"dry_run,omitempty" jsonschema:"description=Compute the result without writing the document"`
}

type GateArgs struct {
	Path      string `json:"path" jsonschema:"description=Document path relative to the workspace root"`
	Kind      string `json:"kind,omitempty" jsonschema:"description=requirements, design or tasks; inferred from the file name when omitted"`
	Companion string `json:"companion,omitempty" jsonschema:"description=Requirements document a design is traced against"`
	Language  string `json:"language,omitempty" jsonschema:"description=en or zh; detected when omitted"`
	NoEnhance bool   `json:"no_enhance,omitempty" jsonschema:"description=Score only and never modify the document"`
	DryRun    bool   `json:"dry_run,omitempty" jsonschema:"description=Enhance in memory without writing the document"`
}

func (a EnhanceArgs) document() DocumentArgs {
	return DocumentArgs{Path: a.Path, Kind: a.Kind, Companion: a.Companion, Language: a.Language}
}

func (a GateArgs) document() DocumentArgs {
	return DocumentArgs{Path: a.Path, Kind: a.Kind, Companion: a.Companion, Language: a.Language}
}

type BackupsArgs struct {
	Path string `json:"path,omitempty" jsonschema:"description=Only list backups of this document"`
}

type RestoreArgs struct {
	ID string `json:"id" jsonschema:"description=Backup id as returned by specgate_backups"`
}

type PruneArgs struct {
	OlderThan string `json:"older_than" jsonschema:"description=Go duration such as 168h"`
}

type HistoryArgs struct {
	Path  string `json:"path,omitempty" jsonschema:"description=Only list runs of this document"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Maximum number of runs, newest first"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("specgate_score").
		Description("Score a document and return its weighted breakdown without modifying it").
		Handler(s.handleScore)

	s.mcpServer.Tool("specgate_enhance").
		Description("Enhance a requirements or design document until it reaches its threshold, plateaus or runs out of iterations").
		Handler(s.handleEnhance)

	s.mcpServer.Tool("specgate_gate").
		Description("Run a quality gate: returns pass/fail, exit code, threshold and the enhancement result").
		Handler(s.handleGate)

	s.mcpServer.Tool("specgate_backups").
		Description("List document snapshots taken before enhancement writes").
		Handler(s.handleBackups)

	s.mcpServer.Tool("specgate_restore").
		Description("Restore a document from a snapshot").
		Handler(s.handleRestore)

	s.mcpServer.Tool("specgate_prune").
		Description("Discard snapshots older than a duration").
		Handler(s.handlePrune)

	s.mcpServer.Tool("specgate_history").
		Description("List recorded enhancement runs").
		Handler(s.handleHistory)
}

func (a DocumentArgs) request() (application.EnhanceRequest, error) {
	req := application.EnhanceRequest{Path: a.Path, CompanionPath: a.Companion}
	if a.Path == "" {
		return req, mcpErr("path is required.")
	}
	if a.Kind != "" {
		k, err := document.ParseKind(a.Kind)
		if err != nil {
			return req, mcpErr("kind must be requirements, design or tasks.")
		}
		req.Kind = k
	}
	if a.Language != "" {
		l, err := document.ParseLanguage(a.Language)
		if err != nil {
			return req, mcpErr("language must be en or zh.")
		}
		req.Language = l
	}
	return req, nil
}

func (s *Server) handleScore(ctx context.Context, args DocumentArgs) (any, error) {
	req, err := args.request()
	if err != nil {
		return nil, err
	}
	report, err := s.enhance.Report(ctx, req)
	if err != nil {
		return nil, friendly("score the document", err)
	}
	return report, nil
}

func (s *Server) handleEnhance(ctx context.Context, args EnhanceArgs) (any, error) {
	req, err := args.document().request()
	if err != nil {
		return nil, err
	}
	req.DryRun = args.DryRun
	res, err := s.enhance.Enhance(ctx, req)
	if err != nil {
		return nil, friendly("enhance the document", err)
	}
	if res.StopReason.Fatal() {
		return nil, mcpErr(fmt.Sprintf("Enhancement stopped with %s: %s", res.StopReason, res.ErrorMessage()))
	}
	return res, nil
}

func (s *Server) handleGate(ctx context.Context, args GateArgs) (any, error) {
	req, err := args.document().request()
	if err != nil {
		return nil, err
	}
	out, err := s.gate.Check(ctx, application.GateRequest{
		Path:          req.Path,
		Kind:          req.Kind,
		CompanionPath: req.CompanionPath,
		Language:      req.Language,
		NoEnhance:     args.NoEnhance,
		DryRun:        args.DryRun,
	})
	if err != nil && out.Result == nil {
		return nil, friendly("run the quality gate", err)
	}
	return out, nil
}

func (s *Server) handleBackups(ctx context.Context, args BackupsArgs) (any, error) {
	snaps, err := s.backups.List(args.Path)
	if err != nil {
		return nil, friendly("list backups", err)
	}
	return snaps, nil
}

func (s *Server) handleRestore(ctx context.Context, args RestoreArgs) (string, error) {
	snap, err := s.backups.Restore(args.ID)
	if err != nil {
		return "", friendly("restore the backup", err)
	}
	return fmt.Sprintf("Restored %s from %s", snap.OriginalPath, snap.ID), nil
}

func (s *Server) handlePrune(ctx context.Context, args PruneArgs) (string, error) {
	d, err := time.ParseDuration(args.OlderThan)
	if err != nil || d <= 0 {
		return "", mcpErr("older_than must be a positive Go duration such as 168h.")
	}
	n, err := s.backups.Prune(d)
	if err != nil {
		return "", friendly("prune backups", err)
	}
	return fmt.Sprintf("Pruned %d backups", n), nil
}

func (s *Server) handleHistory(ctx context.Context, args HistoryArgs) (any, error) {
	runs, err := s.history.Runs(args.Path, args.Limit)
	if err != nil {
		return nil, friendly("list run history", err)
	}
	return runs, nil
}

func (s *Server) StartStdio() error {
	return s.ServeStdio(context.Background())
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}

func (s *Server) ServeWebSocket(ctx context.Context, addr string) error {
	return mcp.ServeWebSocket(ctx, s.mcpServer, addr)
}
