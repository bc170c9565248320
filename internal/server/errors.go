package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/brand-studio/internal/crawling"
	"github.com/jonathan/brand-studio/internal/db"
	"github.com/jonathan/brand-studio/internal/ingestion"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/storage"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrCompanyNotFound indicates the referenced company does not exist
type ErrCompanyNotFound struct {
	CompanyID int64
}

func (e *ErrCompanyNotFound) Error() string {
	return fmt.Sprintf("company not found: %d", e.CompanyID)
}

// Kinds reported for errors that are not stage failures.
const (
	kindValidation = "validation_error"
	kindNotFound   = "not_found"
	kindInternal   = "internal_error"
	kindExtraction = "extraction_error"
	kindStorage    = "storage_error"
)

// HTTPStatus returns the appropriate HTTP status code for an error.
// Stage failures caused by bad input map to 422, failures of the model or
// image services to 502.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if f, ok := outcome.As(err); ok {
		switch f.Kind {
		case outcome.SchemaViolation, outcome.IncompleteProfile:
			return http.StatusUnprocessableEntity
		default:
			return http.StatusBadGateway
		}
	}

	var (
		validation *ErrValidation
		notFound   *ErrCompanyNotFound
		extraction *ingestion.ExtractionError
		crawl      *crawling.CrawlError
		upload     *storage.UploadError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &extraction), errors.As(err, &crawl):
		return http.StatusUnprocessableEntity
	case errors.As(err, &upload):
		return http.StatusBadGateway
	case errors.As(err, &notFound), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorKind returns the kind reported in error bodies.
func errorKind(err error) string {
	if f, ok := outcome.As(err); ok {
		return string(f.Kind)
	}
	var (
		extraction *ingestion.ExtractionError
		crawl      *crawling.CrawlError
		upload     *storage.UploadError
	)
	switch {
	case errors.As(err, &extraction), errors.As(err, &crawl):
		return kindExtraction
	case errors.As(err, &upload):
		return kindStorage
	}
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return kindValidation
	case http.StatusNotFound:
		return kindNotFound
	default:
		return kindInternal
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
	RunID   string   `json:"run_id,omitempty"`
}

// newErrorResponse builds the body for err. Internal errors do not leak
// their message.
func newErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Kind: errorKind(err), Message: "internal server error"}
	if f, ok := outcome.As(err); ok {
		resp.Message = f.Message
		resp.Fields = f.Fields
		return resp
	}
	if HTTPStatus(err) != http.StatusInternalServerError {
		resp.Message = err.Error()
	}
	return resp
}
