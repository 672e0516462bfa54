package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/campaign-insights/internal/dashboard"
	"github.com/odyssey-erp/campaign-insights/internal/dataset"
	"github.com/odyssey-erp/campaign-insights/internal/platform/cache"
)

const testModeEnv = "CAMPAIGNS_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

// detectTestMode reads the CAMPAIGNS_TEST_MODE flag once.
func detectTestMode() {
	testModeFlag.Store(os.Getenv(testModeEnv) == "1")
}

// InTestMode reports whether the application should skip runtime side effects.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode updates the cached flag after environment changes.
func RefreshTestMode() {
	detectTestMode()
}

// Runtime holds the dependencies shared by the server, the worker and the CLI.
type Runtime struct {
	Config  *Config
	Logger  *slog.Logger
	Dataset *dataset.Dataset
	// Redis is nil when REDIS_ADDR is empty or Redis was unreachable at start.
	Redis   *redis.Client
	Cache   *dashboard.Cache
	Reports *dashboard.Service
}

// NewRuntime loads the dataset and connects the report cache. An unreachable
// Redis is logged and the reports are served uncached.
func NewRuntime(ctx context.Context, cfg *Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	data, err := dataset.LoadFile(cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("app: load dataset: %w", err)
	}
	for _, warning := range data.Warnings {
		logger.Warn("dataset warning", slog.String("warning", warning))
	}

	client, err := cache.New(ctx, cfg.RedisAddr)
	switch {
	case errors.Is(err, cache.ErrDisabled):
		logger.Info("report cache disabled")
	case err != nil:
		logger.Warn("redis ping", slog.Any("error", err))
	}

	reportCache := dashboard.NewCache(client, cfg.CacheTTL)
	reports, err := dashboard.NewService(data, reportCache, logger)
	if err != nil {
		if client != nil {
			_ = client.Close()
		}
		return nil, err
	}
	logger.Info("dataset loaded",
		slog.String("fingerprint", data.Fingerprint),
		slog.Int("campaigns", len(data.CampaignIDs())),
		slog.Int("comparisons", len(data.Comparisons)))

	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		Dataset: data,
		Redis:   client,
		Cache:   reportCache,
		Reports: reports,
	}, nil
}

// Ready pings Redis when a client is configured.
func (rt *Runtime) Ready(ctx context.Context) error {
	if rt == nil || rt.Redis == nil {
		return nil
	}
	return rt.Redis.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (rt *Runtime) Close() error {
	if rt == nil || rt.Redis == nil {
		return nil
	}
	return rt.Redis.Close()
}
