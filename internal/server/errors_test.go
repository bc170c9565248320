package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/brand-studio/internal/crawling"
	"github.com/jonathan/brand-studio/internal/db"
	"github.com/jonathan/brand-studio/internal/ingestion"
	"github.com/jonathan/brand-studio/internal/outcome"
	"github.com/jonathan/brand-studio/internal/storage"
	"github.com/stretchr/testify/assert"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "topic", Message: "is required"}
	assert.Equal(t, "validation error: topic - is required", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestErrCompanyNotFound(t *testing.T) {
	err := &ErrCompanyNotFound{CompanyID: 42}
	assert.Equal(t, "company not found: 42", err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"SchemaViolation", outcome.Newf(outcome.SchemaViolation, "bad palette"), http.StatusUnprocessableEntity},
		{"IncompleteProfile", outcome.Newf(outcome.IncompleteProfile, "missing"), http.StatusUnprocessableEntity},
		{"GenerationError", outcome.Newf(outcome.GenerationError, "timeout"), http.StatusBadGateway},
		{"EmptyGeneration", outcome.Newf(outcome.EmptyGeneration, "empty"), http.StatusBadGateway},
		{"ImageGenerationError", outcome.Newf(outcome.ImageGenerationError, "quota"), http.StatusBadGateway},
		{"wrapped failure", fmt.Errorf("run: %w", outcome.Newf(outcome.SchemaViolation, "x")), http.StatusUnprocessableEntity},
		{"extraction failure", &ingestion.ExtractionError{Source: "guide.pdf", Message: "no readable text"}, http.StatusUnprocessableEntity},
		{"crawl failure", &crawling.CrawlError{URL: "https://acme.test", Message: "no readable text found"}, http.StatusUnprocessableEntity},
		{"storage failure", &storage.UploadError{Path: "a.png", StatusCode: 500}, http.StatusBadGateway},
		{"db not found", fmt.Errorf("post 3: %w", db.ErrNotFound), http.StatusNotFound},
		{"unknown error", assert.AnError, http.StatusInternalServerError},
		{"nil error", nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	f := outcome.Newf(outcome.IncompleteProfile, "profile is incomplete")
	f.Fields = []string{"industry"}

	resp := newErrorResponse(f)
	assert.False(t, resp.Success)
	assert.Equal(t, "incomplete_profile", resp.Kind)
	assert.Equal(t, "profile is incomplete", resp.Message)
	assert.Equal(t, []string{"industry"}, resp.Fields)

	resp = newErrorResponse(&ErrValidation{Field: "companyId", Message: "is required"})
	assert.Equal(t, "validation_error", resp.Kind)
	assert.Contains(t, resp.Message, "companyId")

	resp = newErrorResponse(&ingestion.ExtractionError{Source: "guide.pdf", Message: "no readable text"})
	assert.Equal(t, "extraction_error", resp.Kind)
	assert.Contains(t, resp.Message, "no readable text")

	resp = newErrorResponse(errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal_error", resp.Kind)
	assert.Equal(t, "internal server error", resp.Message)
}
