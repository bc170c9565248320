// Package server provides the HTTP API of the brand studio: companies,
// brand guideline generation and social content creation.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/jonathan/brand-studio/internal/crawling"
	"github.com/jonathan/brand-studio/internal/db"
	"github.com/jonathan/brand-studio/internal/ingestion"
	"github.com/jonathan/brand-studio/internal/pipeline"
	"github.com/jonathan/brand-studio/internal/runstate"
	"github.com/jonathan/brand-studio/internal/server/middleware"
	"github.com/jonathan/brand-studio/internal/server/ratelimit"
	"github.com/jonathan/brand-studio/internal/storage"
	"github.com/jonathan/brand-studio/internal/types"
)

// Store is the persistence the API needs. *db.DB implements it.
type Store interface {
	Ping(ctx context.Context) error

	CreateCompany(ctx context.Context, businessName, industry string) (*db.Company, error)
	GetCompany(ctx context.Context, id int64) (*db.Company, error)
	ListCompanies(ctx context.Context) ([]db.Company, error)

	SaveGeneratedGuidelines(ctx context.Context, companyID int64, content string, q *types.Questionnaire, profile *types.BrandProfile) (*db.BrandGuidelines, error)
	SaveUploadedAnalysis(ctx context.Context, companyID int64, a db.UploadedAnalysis) (*db.BrandGuidelines, error)
	UpdateGuidelinesContent(ctx context.Context, companyID int64, content string) (*db.BrandGuidelines, error)
	GetGuidelines(ctx context.Context, companyID int64) (*db.BrandGuidelines, error)

	SaveContentPost(ctx context.Context, post *types.ContentPost) error
	LatestContentPost(ctx context.Context, companyID int64) (*types.ContentPost, error)

	RecordRun(ctx context.Context, run *runstate.Run) error
	GetRunRecord(ctx context.Context, id string) (*db.RunRecord, error)
	ListRunRecords(ctx context.Context, companyID int64, limit int) ([]db.RunRecord, error)
}

// Config holds server configuration and collaborators. Store and Studio
// are required.
type Config struct {
	Port      int
	Store     Store
	Studio    *pipeline.Studio
	Tracker   runstate.Tracker
	Assets    storage.Store
	Extractor ingestion.Extractor
	RateLimit *ratelimit.Config
	// Crawler is the template for brand site crawls; MaxPages is set per
	// request.
	Crawler *crawling.Crawler

	CORSOrigins []string
	// MediaDir is served under /media/ when set.
	MediaDir string
	// DefaultReferenceImageURL is analyzed when a post has no reference images.
	DefaultReferenceImageURL string
	Logger                   *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	studio      *pipeline.Studio
	tracker     runstate.Tracker
	assets      storage.Store
	extractor   ingestion.Extractor
	crawler     crawling.Crawler
	rateLimiter *ratelimit.Limiter
	logger      *slog.Logger

	defaultReferenceImageURL string
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("server: store is required")
	}
	if cfg.Studio == nil {
		return nil, fmt.Errorf("server: studio is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = ingestion.DefaultExtractor{}
	}
	crawler := cfg.Crawler
	if crawler == nil {
		crawler = crawling.NewCrawler(crawling.DefaultMaxPages, logger)
	}
	rateConfig := cfg.RateLimit
	if rateConfig == nil {
		rateConfig = ratelimit.LoadConfig()
	}

	s := &Server{
		store:                    cfg.Store,
		studio:                   cfg.Studio,
		tracker:                  cfg.Tracker,
		assets:                   cfg.Assets,
		extractor:                extractor,
		crawler:                  *crawler,
		rateLimiter:              ratelimit.NewLimiter(rateConfig),
		logger:                   logger,
		defaultReferenceImageURL: cfg.DefaultReferenceImageURL,
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api.HandleFunc("/companies", s.handleListCompanies).Methods(http.MethodGet)
	api.HandleFunc("/companies", s.handleCreateCompany).Methods(http.MethodPost)
	api.HandleFunc("/companies/{id:[0-9]+}", s.handleGetCompany).Methods(http.MethodGet)
	api.HandleFunc("/companies/{id:[0-9]+}/runs", s.handleListRuns).Methods(http.MethodGet)

	api.HandleFunc("/brand-guidelines/generate", s.handleGenerateGuidelines).Methods(http.MethodPost)
	api.HandleFunc("/brand-guidelines/upload", s.handleUploadGuidelines).Methods(http.MethodPost)
	api.HandleFunc("/brand-guidelines/crawl", s.handleCrawlGuidelines).Methods(http.MethodPost)
	api.HandleFunc("/brand-guidelines/save", s.handleSaveGuidelines).Methods(http.MethodPost)

	api.HandleFunc("/content/create", s.handleCreateContent).Methods(http.MethodPost)
	api.HandleFunc("/content/latest", s.handleLatestContent).Methods(http.MethodGet)
	api.HandleFunc("/content/save", s.handleSaveContent).Methods(http.MethodPost)

	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods(http.MethodGet)

	if cfg.MediaDir != "" {
		r.PathPrefix("/media/").Handler(http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaDir))))
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.jsonResponse(w, http.StatusNotFound, ErrorResponse{Kind: kindNotFound, Message: "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.jsonResponse(w, http.StatusMethodNotAllowed, ErrorResponse{Kind: kindValidation, Message: "method not allowed"})
	})

	var handler http.Handler = r
	handler = ratelimit.Middleware(s.rateLimiter, logger)(handler)
	handler = middleware.CORS(cfg.CORSOrigins)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for content runs
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root handler with every middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// handleHealth reports whether the database is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", "error", err)
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "database": "unreachable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"ok": true})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes the failure body for err with its mapped status.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	s.jsonResponse(w, status, newErrorResponse(err))
}
