package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/specgate/pkg/application"
	"github.com/felixgeelhaar/specgate/pkg/domain/document"
	"github.com/felixgeelhaar/specgate/pkg/storage"
)

type documentRequest struct {
	Path      string `json:"path"`
	Kind      string `json:"kind,omitempty"`
	Companion string `json:"companion,omitempty"`
	Language  string `json:"language,omitempty"`
	DryRun    bool   `json:"dry_run,omitempty"`
	NoEnhance bool   `json:"no_enhance,omitempty"`
}

func (d documentRequest) enhanceRequest() (application.EnhanceRequest, error) {
	req := application.EnhanceRequest{Path: d.Path, CompanionPath: d.Companion, DryRun: d.DryRun}
	if d.Path == "" {
		return req, errors.New("path is required")
	}
	if d.Kind != "" {
		k, err := document.ParseKind(d.Kind)
		if err != nil {
			return req, err
		}
		req.Kind = k
	}
	if d.Language != "" {
		l, err := document.ParseLanguage(d.Language)
		if err != nil {
			return req, err
		}
		req.Language = l
	}
	return req, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (documentRequest, application.EnhanceRequest, bool) {
	var body documentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return body, application.EnhanceRequest{}, false
	}
	req, err := body.enhanceRequest()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return body, req, false
	}
	return body, req, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	_, req, ok := s.decode(w, r)
	if !ok {
		return
	}
	report, err := s.enhance.Report(r.Context(), req)
	if err != nil {
		s.fail(w, "score", err)
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	_, req, ok := s.decode(w, r)
	if !ok {
		return
	}
	res, err := s.enhance.Enhance(r.Context(), req)
	if err != nil {
		s.fail(w, "enhance", err)
		return
	}
	status := http.StatusOK
	if res.StopReason.Fatal() {
		s.logger.Error("enhance failed", zap.String("path", res.Path), zap.Error(res.Err))
		status = statusFor(res.Err)
	}
	s.respondJSON(w, status, res)
}

func (s *Server) handleGate(w http.ResponseWriter, r *http.Request) {
	body, req, ok := s.decode(w, r)
	if !ok {
		return
	}
	out, err := s.gate.Check(r.Context(), application.GateRequest{
		Path:          req.Path,
		Kind:          req.Kind,
		CompanionPath: req.CompanionPath,
		Language:      req.Language,
		NoEnhance:     body.NoEnhance,
		DryRun:        body.DryRun,
	})
	if err != nil && out.Result == nil {
		s.fail(w, "gate", err)
		return
	}
	status := http.StatusOK
	if err != nil {
		s.logger.Error("gate failed", zap.String("path", req.Path), zap.Error(err))
		status = statusFor(err)
	}
	s.respondJSON(w, status, out)
}

func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.backups.List(r.URL.Query().Get("path"))
	if err != nil {
		s.fail(w, "list backups", err)
		return
	}
	if snaps == nil {
		snaps = []storage.Snapshot{}
	}
	s.respondJSON(w, http.StatusOK, snaps)
}

func (s *Server) handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := s.backups.Restore(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "restore backup", err)
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDiscardBackup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.backups.Discard(id); err != nil {
		s.fail(w, "discard backup", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "discarded"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	runs, err := s.history.Runs(r.URL.Query().Get("path"), limit)
	if err != nil {
		s.fail(w, "list history", err)
		return
	}
	if runs == nil {
		runs = []storage.RunRecord{}
	}
	s.respondJSON(w, http.StatusOK, runs)
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrBackupNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrOutsideRoot), errors.Is(err, storage.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, application.ErrNotEnhanceable),
		errors.Is(err, application.ErrUnknownKind),
		errors.Is(err, document.ErrUnknownKind):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
