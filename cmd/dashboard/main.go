package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/odyssey-erp/attendance-dashboard/internal/apiclient"
	"github.com/odyssey-erp/attendance-dashboard/internal/app"
	"github.com/odyssey-erp/attendance-dashboard/internal/attendance"
	"github.com/odyssey-erp/attendance-dashboard/internal/dashboard"
	dashboardhttp "github.com/odyssey-erp/attendance-dashboard/internal/dashboard/http"
	"github.com/odyssey-erp/attendance-dashboard/internal/notify"
	"github.com/odyssey-erp/attendance-dashboard/internal/observability"
	"github.com/odyssey-erp/attendance-dashboard/internal/platform/cache"
	"github.com/odyssey-erp/attendance-dashboard/internal/view"
)

// sweepInterval is how often idle pages are evicted.
const sweepInterval = time.Minute

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
	slog.SetDefault(logger)

	containers := memoryContainers
	if cfg.RedisAddr != "" {
		redisClient, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, keeping toasts in memory", slog.Any("error", err))
		} else {
			// Toast keys outlive their page by a margin so late removals still land.
			containers = func(pageID string) notify.Container {
				return notify.NewRedisContainer(redisClient, pageID, cfg.PageTTL+cfg.ToastTTL)
			}
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
		}
	}

	metrics := observability.NewMetrics()

	center := notify.NewCenter(cfg.ToastTTL,
		notify.WithAnimator(notify.TimerAnimator{}),
		notify.WithLogger(logger),
	)

	client := apiclient.NewClient(apiclient.Params{
		BaseURL:    cfg.APIBaseURL(),
		HTTPClient: &http.Client{Timeout: cfg.AppRequestTimeout},
		Logger:     logger,
		Notifier:   center,
		Recorder:   metrics,
	})
	service := attendance.NewService(client, center)

	registry := dashboard.NewRegistry(dashboard.RegistryParams{
		Service:    service,
		Notifier:   center,
		Animator:   dashboard.FrameAnimator{FPS: 30},
		Logger:     logger,
		TTL:        cfg.PageTTL,
		Containers: containers,
		Gauge:      metrics,
	})
	go registry.Run(ctx, sweepInterval)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	handler := dashboardhttp.NewHandler(logger, registry, service, templates, client.Busy())

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		DashboardHandler: handler,
		Metrics:          metrics,
		RequestLog:       !cfg.IsProduction(),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api_base_url", client.BaseURL()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

func memoryContainers(string) notify.Container {
	return notify.NewMemoryContainer()
}
