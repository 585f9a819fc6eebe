package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/filechat/backend/internal/api"
	"github.com/filechat/backend/internal/chat"
	"github.com/filechat/backend/internal/completion"
	"github.com/filechat/backend/internal/config"
	"github.com/filechat/backend/internal/httpclient"
	"github.com/filechat/backend/internal/logging"
	"github.com/filechat/backend/internal/storage"
	"github.com/filechat/backend/internal/web"
	"github.com/labstack/echo/v4"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information")
	configPath := flag.String("config", envOr("CONFIG_FILE", "filechat.yaml"), "Path to an optional YAML config file")
	envFile := flag.String("env-file", ".env", "Path to an optional dotenv file")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("filechat %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	cfg, cfgErr := config.Load(*configPath, *envFile)

	logger := logging.New(cfg.IsProduction(), cfg.Logging.Level, os.Stdout)
	slog.SetDefault(logger)

	if cfgErr != nil {
		logger.Error("error loading configuration, S3 and AI service disabled", "error", cfgErr)
	}
	logger.Info("configuration loaded",
		"version", Version,
		"build_time", BuildTime,
		"use_s3", cfg.S3.Enabled,
		"use_ai_service", cfg.AI.Enabled,
	)

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("failed to create directories", "error", err)
		os.Exit(1)
	}

	backend, err := newBackend(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	files := storage.NewDispatcher(backend, cfg.Storage.AllowedExtensions, logger)

	var completer chat.Completer
	switch {
	case cfg.AI.Usable():
		httpCfg := httpclient.ForCompletion(cfg.AI.Timeout, cfg.AI.ResponseHeaderTimeout)
		completer = completion.New(completion.Config{
			URL:       cfg.AI.APIURL,
			APIKey:    cfg.AI.APIKey,
			Model:     cfg.AI.Model,
			MaxTokens: cfg.AI.MaxTokens,
		}, httpclient.NewHTTPClient(&httpCfg))
	case cfg.AI.Enabled:
		logger.Warn("AI service enabled but AI_API_KEY or AI_API_URL is empty, using rule-based replies")
	}
	responder := chat.NewResponder(files, completer, logger)

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	api.SetupMiddleware(e, api.MiddlewareOptions{
		Logger:      logger,
		BodyLimit:   cfg.Server.BodyLimit,
		Development: !cfg.IsProduction(),
	})
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Files:     files,
		Responder: responder,
		Version:   Version,
		AIEnabled: completer != nil,
		Logger:    logger,
	}))
	if cfg.Metrics.Enabled {
		api.RegisterMetricsRoute(e, cfg.Metrics.Endpoint)
	}
	if err := web.RegisterStaticRoutes(e); err != nil {
		logger.Warn("failed to register static routes", "error", err)
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Handle graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("starting server",
		"address", cfg.GetServerAddr(),
		"backend", files.Kind(),
		"upload_dir", cfg.GetUploadDir(),
		"ai", completer != nil,
	)

	if err := e.StartServer(s); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			logger.Info("server stopped gracefully")
		} else {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}
}

// newBackend picks the storage backend once. S3 uploads are staged in the
// upload directory. A client that cannot be built leaves local storage in
// place.
func newBackend(cfg *config.Config, logger *slog.Logger) (storage.Backend, error) {
	local, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		return nil, err
	}
	if !cfg.S3.Enabled {
		return local, nil
	}

	opts := storage.S3Options{
		Bucket:          cfg.S3.Bucket,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		UseSSL:          cfg.S3.UseSSL,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
	}
	client, err := storage.NewMinioClient(opts)
	if err != nil {
		logger.Error("failed to create S3 client, using local storage", "endpoint", opts.Endpoint, "error", err)
		return local, nil
	}

	remote := storage.NewS3Store(client, local, opts, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := remote.EnsureBucket(ctx); err != nil {
		logger.Warn("S3 bucket check failed, uploads may fail", "bucket", opts.Bucket, "error", err)
	}
	return remote, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
