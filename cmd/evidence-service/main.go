package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"evidence-service/internal/clients/media"
	"evidence-service/internal/clients/roboflow"
	"evidence-service/internal/clients/sightengine"
	"evidence-service/internal/clients/vision"
	"evidence-service/internal/config"
	"evidence-service/internal/db"
	"evidence-service/internal/domain/analysis"
	httphandler "evidence-service/internal/http"
	"evidence-service/internal/repository"
	"evidence-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Log)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	if cfg.Database.URL == "" {
		return errors.New("database.url (DATABASE_URL) is required")
	}
	gdb, err := db.New(cfg.Database.URL, cfg.Database.AutoMigrate, log)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	httpClient := &http.Client{Transport: http.DefaultTransport}

	if !cfg.Sightengine.Enabled() {
		log.Warn().Msg("sightengine credentials missing, authenticity check disabled")
	}
	if cfg.Roboflow.APIKey == "" {
		log.Warn().Msg("roboflow api key missing, plate reader disabled")
	}
	if cfg.Vision.APIKey == "" {
		log.Warn().Msg("vision api key missing, violation classifier disabled")
	}

	analysisService := service.NewAnalysisService(
		sightengine.NewClient(cfg.Sightengine.BaseURL, cfg.Sightengine.APIUser, cfg.Sightengine.APISecret, httpClient),
		roboflow.NewClient(cfg.Roboflow.BaseURL, cfg.Roboflow.Workspace, cfg.Roboflow.Workflow, cfg.Roboflow.APIKey, httpClient, log),
		vision.NewClient(vision.Options{
			BaseURL:       cfg.Vision.BaseURL,
			APIKey:        cfg.Vision.APIKey,
			Model:         cfg.Vision.Model,
			MaxAttempts:   cfg.Vision.MaxAttempts,
			RatePerSecond: cfg.Vision.RatePerSecond,
			HTTPClient:    httpClient,
		}, log),
		media.NewFetcher(httpClient, cfg.Media.MaxBytes),
		analysis.DefaultPolicy(),
		service.Timeouts{
			Authenticity: cfg.Sightengine.Timeout,
			Plate:        cfg.Roboflow.Timeout,
			Media:        cfg.Media.Timeout,
			Classifier:   cfg.Vision.Timeout,
		},
		log,
	)
	reportService := service.NewReportService(repository.NewReportRepository(gdb), analysisService, log)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), httphandler.RequestLogger(log), httphandler.CORS())
	httphandler.NewHandler(analysisService, reportService, log).Register(router)
	httphandler.RegisterOps(router, map[string]httphandler.HealthChecker{
		"database": httphandler.PingChecker(sqlDB.PingContext),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out = zerolog.New(os.Stdout)
	if cfg.Pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return out.Level(level).With().Timestamp().Str("service", "evidence-service").Logger()
}
