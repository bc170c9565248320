package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/brand-studio/internal/pipeline"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// requestValidator reports field errors under their JSON names.
func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// decodeJSON decodes and validates a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return validateRequest(v)
}

// validateRequest runs struct validation, reporting the first failing field.
func validateRequest(v any) error {
	err := requestValidator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		msg := "failed on '" + fe.Tag() + "'"
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "gt", "min":
			msg = "must be at least " + fe.Param()
		case "max":
			msg = "must be at most " + fe.Param()
		}
		return &ErrValidation{Field: fe.Field(), Message: msg}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

// parseCompanyID parses a positive company ID from a form or query value.
func parseCompanyID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, &ErrValidation{Field: "companyId", Message: "must be a positive integer"}
	}
	return id, nil
}

// requireCompany fails with ErrCompanyNotFound for unknown companies.
func (s *Server) requireCompany(ctx context.Context, id int64) error {
	company, err := s.store.GetCompany(ctx, id)
	if err != nil {
		return err
	}
	if company == nil {
		return &ErrCompanyNotFound{CompanyID: id}
	}
	return nil
}

// progressSink collects the run ID of a run and forwards its progress to an
// event stream when the client asked for one.
type progressSink struct {
	mu    sync.Mutex
	runID string
	sse   *SSEWriter
}

func (p *progressSink) callback(event pipeline.ProgressEvent) {
	p.mu.Lock()
	if p.runID == "" {
		p.runID = event.RunID
	}
	p.mu.Unlock()
	if p.sse != nil {
		p.sse.WriteProgress(event)
	}
}

func (p *progressSink) RunID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runID
}

// wantsStream reports whether the client asked for progress events.
func wantsStream(r *http.Request) bool {
	if v, err := strconv.ParseBool(r.URL.Query().Get("stream")); err == nil {
		return v
	}
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

// newProgressSink opens an event stream when requested.
func (s *Server) newProgressSink(w http.ResponseWriter, r *http.Request) *progressSink {
	sink := &progressSink{}
	if !wantsStream(r) {
		return sink
	}
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.logger.Warn("event stream unavailable, answering with JSON", "error", err)
		return sink
	}
	sink.sse = sse
	return sink
}

// finish writes the outcome of a run: the final event of a stream, or a
// JSON response.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, sink *progressSink, status int, payload any, err error) {
	if err != nil {
		resp := newErrorResponse(err)
		resp.RunID = sink.RunID()
		if sink.sse != nil {
			sink.sse.WriteError(resp)
			return
		}
		if HTTPStatus(err) == http.StatusInternalServerError {
			s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		}
		s.jsonResponse(w, HTTPStatus(err), resp)
		return
	}
	if sink.sse != nil {
		sink.sse.WriteComplete(payload)
		return
	}
	s.jsonResponse(w, status, payload)
}

// recordRun copies the tracked state of a successful run into the store.
func (s *Server) recordRun(ctx context.Context, runID string) {
	if s.tracker == nil || runID == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)
	run, err := s.tracker.GetRun(ctx, runID)
	if err != nil {
		s.logger.Warn("failed to read run for recording", "run_id", runID, "error", err)
		return
	}
	if err := s.store.RecordRun(ctx, run); err != nil {
		s.logger.Warn("failed to record run", "run_id", runID, "error", err)
	}
}
