package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jonathan/brand-studio/internal/db"
	"github.com/jonathan/brand-studio/internal/runstate"
)

// handleGetRun returns the progress of a run. Live state comes from the
// tracker; once it has expired there, the recorded copy is returned.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	runID := strings.TrimSpace(mux.Vars(r)["id"])

	if s.tracker != nil {
		run, err := s.tracker.GetRun(ctx, runID)
		switch {
		case err == nil:
			s.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "run": run})
			return
		case !errors.Is(err, runstate.ErrRunNotFound):
			s.errorResponse(w, r, err)
			return
		}
	}

	record, err := s.store.GetRunRecord(ctx, runID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if record == nil {
		s.errorResponse(w, r, fmt.Errorf("run %s: %w", runID, db.ErrNotFound))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "run": record})
}

// handleListRuns lists the recorded runs of a company, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID, err := parseCompanyID(mux.Vars(r)["id"])
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			s.errorResponse(w, r, &ErrValidation{Field: "limit", Message: "must be between 1 and 500"})
			return
		}
		limit = n
	}
	if err := s.requireCompany(ctx, companyID); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	runs, err := s.store.ListRunRecords(ctx, companyID, limit)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if runs == nil {
		runs = []db.RunRecord{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"runs":    runs,
		"total":   len(runs),
	})
}
