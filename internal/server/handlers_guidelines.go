package server

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/brand-studio/internal/db"
	"github.com/jonathan/brand-studio/internal/ingestion"
	"github.com/jonathan/brand-studio/internal/pipeline"
	"github.com/jonathan/brand-studio/internal/storage"
	"github.com/jonathan/brand-studio/internal/types"
)

// maxDocumentSize caps uploaded guideline documents.
const maxDocumentSize = 20 << 20

// GenerateGuidelinesRequest is the body of POST /api/brand-guidelines/generate.
// Blank answers fall back to the questionnaire defaults.
type GenerateGuidelinesRequest struct {
	CompanyID        int64  `json:"companyId" validate:"required,gt=0"`
	BusinessName     string `json:"businessName"`
	Industry         string `json:"industry"`
	TargetAudience   string `json:"targetAudience"`
	BrandDescription string `json:"brandDescription"`
	Prompt           string `json:"prompt"` // alias of brandDescription
	Tone             string `json:"tone"`
	Competitors      string `json:"competitors"`
	UniqueValue      string `json:"uniqueValue"`
	// DocumentText is analyzed and merged when set. Otherwise a profile
	// stored by an earlier upload is merged unless IgnoreUploaded is set.
	DocumentText   *string `json:"documentText,omitempty"`
	IgnoreUploaded bool    `json:"ignoreUploaded,omitempty"`
}

func (req GenerateGuidelinesRequest) questionnaire() types.Questionnaire {
	description := req.BrandDescription
	if strings.TrimSpace(description) == "" {
		description = req.Prompt
	}
	return types.Questionnaire{
		BusinessName:     req.BusinessName,
		Industry:         req.Industry,
		TargetAudience:   req.TargetAudience,
		BrandDescription: description,
		Tone:             req.Tone,
		Competitors:      req.Competitors,
		UniqueValue:      req.UniqueValue,
	}.Normalize(req.CompanyID)
}

// GenerateGuidelinesResponse is returned by a successful guideline run.
type GenerateGuidelinesResponse struct {
	Success bool               `json:"success"`
	RunID   string             `json:"runId"`
	Content string             `json:"content"`
	Profile types.BrandProfile `json:"profile"`
	Merged  bool               `json:"merged"`
}

// SaveGuidelinesRequest is the body of POST /api/brand-guidelines/save
type SaveGuidelinesRequest struct {
	CompanyID int64  `json:"companyId" validate:"required,gt=0"`
	Content   string `json:"content" validate:"required"`
}

// handleGenerateGuidelines runs brand synthesis for a company and stores
// the rendered guidelines with the profile they came from.
func (s *Server) handleGenerateGuidelines(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req GenerateGuidelinesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	q := req.questionnaire()
	if q.BrandDescription == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "brandDescription", Message: "is required"})
		return
	}
	if err := s.requireCompany(ctx, req.CompanyID); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	brandReq := pipeline.BrandRequest{
		CompanyID:     req.CompanyID,
		Questionnaire: q,
		Document:      req.DocumentText,
	}
	if req.DocumentText == nil && !req.IgnoreUploaded {
		stored, err := s.store.GetGuidelines(ctx, req.CompanyID)
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		if stored != nil {
			brandReq.Uploaded = stored.UploadedProfile
		}
	}

	sink := s.newProgressSink(w, r)
	brandReq.OnProgress = sink.callback

	run, failure := s.studio.RunBrand(ctx, brandReq).Value()
	if failure != nil {
		s.finish(w, r, sink, 0, nil, failure)
		return
	}

	if _, err := s.store.SaveGeneratedGuidelines(ctx, req.CompanyID, run.Guidelines.Text, &q, &run.Profile); err != nil {
		s.finish(w, r, sink, 0, nil, err)
		return
	}
	s.recordRun(ctx, run.RunID)

	s.finish(w, r, sink, http.StatusOK, GenerateGuidelinesResponse{
		Success: true,
		RunID:   run.RunID,
		Content: run.Guidelines.Text,
		Profile: run.Profile,
		Merged:  run.Merged,
	}, nil)
}

// handleUploadGuidelines extracts the text of an uploaded guideline
// document, analyzes it, and stores the extracted profile so later guideline
// runs merge it. Nothing is stored when extraction or analysis fails.
func (s *Server) handleUploadGuidelines(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize+1<<20)
	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "file", Message: "invalid multipart form: " + err.Error()})
		return
	}
	companyID, err := parseCompanyID(r.FormValue("companyId"))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "file", Message: "is required"})
		return
	}
	defer file.Close() //nolint:errcheck
	if strings.TrimSpace(header.Filename) == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "file", Message: "filename is empty"})
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.errorResponse(w, r, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	if err := s.requireCompany(ctx, companyID); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	doc := ingestion.Document{
		Name:        filepath.Base(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	text, err := s.extractor.ExtractText(ctx, doc)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	profile, failure := s.studio.AnalyzeUploadedGuidelines(ctx, text).Value()
	if failure != nil {
		s.errorResponse(w, r, failure)
		return
	}

	var fileURL string
	if s.assets != nil {
		ext := strings.ToLower(filepath.Ext(doc.Name))
		if ext == "" {
			ext = storage.ExtensionFor(doc.ContentType)
		}
		obj, err := s.assets.Upload(ctx, storage.ObjectPath(fmt.Sprintf("brand-guidelines/%d", companyID), ext, time.Now()), data, doc.ContentType)
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		fileURL = obj.URL
	}

	meta := ingestion.NewMetadata(text, doc.Name, ingestion.DetectFormat(doc))
	if _, err := s.store.SaveUploadedAnalysis(ctx, companyID, db.UploadedAnalysis{
		Profile:      profile,
		FileURL:      fileURL,
		DocumentHash: meta.Hash,
	}); err != nil {
		s.discardAssets(ctx, fileURL)
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"fileUrl": fileURL,
		"profile": profile,
	})
}

// CrawlGuidelinesRequest is the body of POST /api/brand-guidelines/crawl.
type CrawlGuidelinesRequest struct {
	CompanyID int64  `json:"companyId" validate:"required,gt=0"`
	URL       string `json:"url" validate:"required,url"`
	MaxPages  int    `json:"maxPages" validate:"omitempty,min=1,max=15"`
}

// handleCrawlGuidelines crawls a brand website, analyzes the combined page
// text like an uploaded document, and stores the extracted profile.
func (s *Server) handleCrawlGuidelines(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CrawlGuidelinesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := s.requireCompany(ctx, req.CompanyID); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	crawler := s.crawler
	if req.MaxPages > 0 {
		crawler.MaxPages = req.MaxPages
	}
	site, err := crawler.Crawl(ctx, req.URL)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	profile, failure := s.studio.AnalyzeUploadedGuidelines(ctx, site.Text).Value()
	if failure != nil {
		s.errorResponse(w, r, failure)
		return
	}

	meta := ingestion.NewMetadata(site.Text, req.URL, ingestion.FormatHTML)
	if _, err := s.store.SaveUploadedAnalysis(ctx, req.CompanyID, db.UploadedAnalysis{
		Profile:      profile,
		FileURL:      req.URL,
		DocumentHash: meta.Hash,
	}); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"pages":   site.Pages,
		"profile": profile,
	})
}

// handleSaveGuidelines stores manually edited guideline text
func (s *Server) handleSaveGuidelines(w http.ResponseWriter, r *http.Request) {
	var req SaveGuidelinesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "content", Message: "is required"})
		return
	}
	if err := s.requireCompany(r.Context(), req.CompanyID); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	guidelines, err := s.store.UpdateGuidelinesContent(r.Context(), req.CompanyID, content)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":    true,
		"guidelines": guidelines,
	})
}
