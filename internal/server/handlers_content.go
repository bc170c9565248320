package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/brand-studio/internal/db"
	"github.com/jonathan/brand-studio/internal/pipeline"
	"github.com/jonathan/brand-studio/internal/storage"
	"github.com/jonathan/brand-studio/internal/types"
)

const (
	maxReferenceImages    = 10
	maxReferenceImageSize = 10 << 20
)

// CreateContentResponse is returned by a successful content run.
type CreateContentResponse struct {
	Success  bool               `json:"success"`
	RunID    string             `json:"runId"`
	Post     *types.ContentPost `json:"post"`
	Hook     string             `json:"hook,omitempty"`
	CTA      string             `json:"cta,omitempty"`
	Hashtags []string           `json:"hashtags"`
}

// SaveContentRequest is the body of POST /api/content/save. A zero or
// unknown ID stores a new post.
type SaveContentRequest struct {
	ID                 int64    `json:"id"`
	CompanyID          int64    `json:"companyId" validate:"required,gt=0"`
	Topic              string   `json:"topic" validate:"required,max=500"`
	Platform           string   `json:"platform" validate:"required,max=50"`
	ReferenceImageURLs []string `json:"referenceImageUrls"`
	Prompt             string   `json:"prompt"`
	Caption            string   `json:"caption"`
	ImageURL           string   `json:"imageUrl"`
}

// handleCreateContent runs the content pipeline for a topic and platform.
// Reference images come with the multipart request; without any the
// configured default reference is analyzed. The post is stored only when
// the whole run succeeds.
func (s *Server) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReferenceImages*maxReferenceImageSize+1<<20)
	if err := r.ParseMultipartForm(maxReferenceImageSize); err != nil {
		s.errorResponse(w, r, &ErrValidation{Field: "body", Message: "invalid multipart form: " + err.Error()})
		return
	}

	companyID, err := parseCompanyID(r.FormValue("companyId"))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	topic := strings.TrimSpace(r.FormValue("topic"))
	if topic == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "topic", Message: "is required"})
		return
	}
	platform := strings.TrimSpace(r.FormValue("platform"))
	if platform == "" {
		s.errorResponse(w, r, &ErrValidation{Field: "platform", Message: "is required"})
		return
	}
	size := types.ImageSize(strings.TrimSpace(r.FormValue("size")))
	if size != "" && !size.Valid() {
		s.errorResponse(w, r, &ErrValidation{Field: "size", Message: fmt.Sprintf("must be one of %s, %s, %s", types.SizeSquare, types.SizePortrait, types.SizeLandscape)})
		return
	}

	images, err := readReferenceImages(r.MultipartForm)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	ctx := r.Context()
	if err := s.requireCompany(ctx, companyID); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	stored, err := s.store.GetGuidelines(ctx, companyID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	ctx, refs := withUploadedImages(ctx, images)
	if len(refs) == 0 && s.defaultReferenceImageURL != "" {
		refs = []string{s.defaultReferenceImageURL}
	}

	sink := s.newProgressSink(w, r)
	run, failure := s.studio.RunContent(ctx, pipeline.ContentRequest{
		CompanyID:          companyID,
		Guidelines:         stored.Document(),
		Topic:              topic,
		Platform:           platform,
		ReferenceImageURLs: refs,
		Size:               size,
		OnProgress:         sink.callback,
	}).Value()
	if failure != nil {
		s.finish(w, r, sink, 0, nil, failure)
		return
	}

	storedRefs, err := s.storeReferenceImages(ctx, companyID, images)
	if err != nil {
		s.discardAssets(ctx, run.ImageURL)
		s.finish(w, r, sink, 0, nil, err)
		return
	}
	if len(images) == 0 && s.defaultReferenceImageURL != "" {
		storedRefs = []string{s.defaultReferenceImageURL}
	}

	post := &types.ContentPost{
		CompanyID:          companyID,
		Topic:              topic,
		Platform:           platform,
		ReferenceImageURLs: storedRefs,
		Prompt:             run.Prompt.PromptText,
		Caption:            run.Caption.Formatted(),
		ImageURL:           run.ImageURL,
	}
	if err := s.store.SaveContentPost(ctx, post); err != nil {
		orphans := []string{run.ImageURL}
		if len(images) > 0 {
			orphans = append(orphans, storedRefs...)
		}
		s.discardAssets(ctx, orphans...)
		s.finish(w, r, sink, 0, nil, err)
		return
	}
	s.recordRun(ctx, run.RunID)

	s.finish(w, r, sink, http.StatusOK, CreateContentResponse{
		Success:  true,
		RunID:    run.RunID,
		Post:     post,
		Hook:     run.Caption.Hook,
		CTA:      run.Caption.CTA,
		Hashtags: run.Caption.Hashtags,
	}, nil)
}

// readReferenceImages reads the referenceImages files of a multipart form.
func readReferenceImages(form *multipart.Form) ([]uploadedImage, error) {
	if form == nil {
		return nil, nil
	}
	headers := form.File["referenceImages"]
	if len(headers) > maxReferenceImages {
		return nil, &ErrValidation{Field: "referenceImages", Message: fmt.Sprintf("must be at most %d files", maxReferenceImages)}
	}

	images := make([]uploadedImage, 0, len(headers))
	for _, h := range headers {
		if h.Size > maxReferenceImageSize {
			return nil, &ErrValidation{Field: "referenceImages", Message: h.Filename + " is larger than 10MB"}
		}
		data, err := readFormFile(h)
		if err != nil {
			return nil, err
		}
		ct := h.Header.Get("Content-Type")
		if ct == "" || ct == "application/octet-stream" {
			ct = http.DetectContentType(data)
		}
		if !strings.HasPrefix(ct, "image/") {
			return nil, &ErrValidation{Field: "referenceImages", Message: h.Filename + " is not an image"}
		}
		images = append(images, uploadedImage{Name: filepath.Base(h.Filename), ContentType: ct, Data: data})
	}
	return images, nil
}

func readFormFile(h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", h.Filename, err)
	}
	defer f.Close() //nolint:errcheck
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", h.Filename, err)
	}
	return data, nil
}

// storeReferenceImages uploads the reference images of a successful run and
// returns their public URLs. Without an asset store nothing is kept.
func (s *Server) storeReferenceImages(ctx context.Context, companyID int64, images []uploadedImage) ([]string, error) {
	urls := make([]string, 0, len(images))
	if s.assets == nil {
		return urls, nil
	}
	now := time.Now()
	for _, img := range images {
		ext := strings.ToLower(filepath.Ext(img.Name))
		if ext == "" {
			ext = storage.ExtensionFor(img.ContentType)
		}
		obj, err := s.assets.Upload(ctx, storage.ObjectPath(fmt.Sprintf("content/%d/references", companyID), ext, now), img.Data, img.ContentType)
		if err != nil {
			s.discardAssets(ctx, urls...)
			return nil, err
		}
		urls = append(urls, obj.URL)
	}
	return urls, nil
}

// discardAssets deletes objects stored for a request whose database write
// failed. Deletion errors are logged only.
func (s *Server) discardAssets(ctx context.Context, urls ...string) {
	if s.assets == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := s.assets.Delete(ctx, u); err != nil {
			s.logger.Warn("failed to delete orphaned asset", "url", u, "error", err)
		}
	}
}

// handleLatestContent returns the most recent post of a company. A company
// without posts gets an empty post.
func (s *Server) handleLatestContent(w http.ResponseWriter, r *http.Request) {
	companyID, err := parseCompanyID(r.URL.Query().Get("companyId"))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	post, err := s.store.LatestContentPost(r.Context(), companyID)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if post == nil {
		post = &types.ContentPost{CompanyID: companyID, ReferenceImageURLs: []string{}}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"post":    post,
	})
}

// handleSaveContent stores a manually edited post. An ID that matches no
// post of the company stores a new one.
func (s *Server) handleSaveContent(w http.ResponseWriter, r *http.Request) {
	var req SaveContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	ctx := r.Context()
	if err := s.requireCompany(ctx, req.CompanyID); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	post := &types.ContentPost{
		ID:                 req.ID,
		CompanyID:          req.CompanyID,
		Topic:              strings.TrimSpace(req.Topic),
		Platform:           strings.TrimSpace(req.Platform),
		ReferenceImageURLs: req.ReferenceImageURLs,
		Prompt:             req.Prompt,
		Caption:            req.Caption,
		ImageURL:           req.ImageURL,
	}
	err := s.store.SaveContentPost(ctx, post)
	if errors.Is(err, db.ErrNotFound) {
		post.ID = 0
		err = s.store.SaveContentPost(ctx, post)
	}
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"post":    post,
	})
}
