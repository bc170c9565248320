package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonathan/brand-studio/internal/db"
	"github.com/jonathan/brand-studio/internal/fetch"
	"github.com/jonathan/brand-studio/internal/runstate"
	"github.com/jonathan/brand-studio/internal/server"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for companies, brand guideline
generation and social content creation.

Requires DATABASE_URL and GEMINI_API_KEY. Run progress is kept in Redis when
REDIS_URL is set and in memory otherwise. Images and documents go to Supabase
Storage when SUPABASE_URL and SUPABASE_SERVICE_KEY are set and to MEDIA_DIR otherwise.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT, default 8080)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Create missing tables before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = strconv.Itoa(servePort)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	logger := cfg.NewLogger()
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()
	if serveMigrate {
		if err := database.Migrate(ctx); err != nil {
			return err
		}
	}

	var tracker runstate.Tracker = runstate.NewMemoryTracker()
	if cfg.RedisURL != "" {
		rdb, err := runstate.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close() //nolint:errcheck
		tracker = runstate.NewRedisTracker(rdb, 0)
		logger.Info("tracking runs in redis")
	}

	assets, err := newAssetStore(cfg, logger)
	if err != nil {
		return err
	}
	client, err := newModelClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck
	generator, err := newImageGenerator(ctx, cfg, assets, logger)
	if err != nil {
		return err
	}

	studio := newStudio(client, cfg, logger, studioOptions{
		images:    server.ReferenceImages(fetch.NewImageFetcher(nil)),
		generator: generator,
		tracker:   tracker,
	})

	port, _ := strconv.Atoi(cfg.Port)
	srvCfg := server.Config{
		Port:                     port,
		Store:                    database,
		Studio:                   studio,
		Tracker:                  tracker,
		Assets:                   assets,
		CORSOrigins:              cfg.CORSOrigins,
		DefaultReferenceImageURL: cfg.DefaultReferenceImageURL,
		Logger:                   logger,
	}
	if !cfg.SupabaseEnabled() {
		srvCfg.MediaDir = cfg.MediaDir
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start()
}
