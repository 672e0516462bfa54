package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/campaign-insights/internal/app"
	dashboardhttp "github.com/odyssey-erp/campaign-insights/internal/dashboard/http"
	"github.com/odyssey-erp/campaign-insights/internal/dashboard/export"
	"github.com/odyssey-erp/campaign-insights/internal/observability"
	"github.com/odyssey-erp/campaign-insights/internal/view"
	"github.com/odyssey-erp/campaign-insights/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	rt, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		logger.Error("init runtime", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	reportMetrics, err := dashboardhttp.NewMetrics(metrics.Registerer())
	if err != nil {
		logger.Error("register report metrics", slog.Any("error", err))
		os.Exit(1)
	}
	rt.Reports.WithObserver(reportMetrics)

	var bumper dashboardhttp.CacheBumper
	var jobHandler *jobs.Handler
	if rt.Redis != nil {
		bumper = rt.Cache
		if err := rt.Cache.ListenForInvalidation(ctx, logger); err != nil {
			logger.Warn("cache invalidation listener", slog.Any("error", err))
		}

		inspector := asynq.NewInspector(jobs.RedisOpt(rt.Redis.Options()))
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	var pdf dashboardhttp.PDFService
	if cfg.GotenbergURL != "" {
		pdf = export.NewPDFExporter(cfg.GotenbergURL)
	}
	dashboardHandler := dashboardhttp.NewHandler(logger, rt.Reports, bumper, templates, pdf, cfg.DefaultLocale)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		DashboardHandler: dashboardHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
		Ready:            rt.Ready,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
