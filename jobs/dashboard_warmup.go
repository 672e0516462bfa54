package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/campaign-insights/internal/dashboard"
	"github.com/odyssey-erp/campaign-insights/internal/format"
	jobmetrics "github.com/odyssey-erp/campaign-insights/internal/jobs"
)

const localeWarmupTimeout = 20 * time.Second

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportSource builds or fetches the report for a locale, populating the cache.
type ReportSource interface {
	Report(ctx context.Context, locale string) (dashboard.Report, error)
}

// CacheBumper invalidates cached reports.
type CacheBumper interface {
	Bump(ctx context.Context) (int64, error)
}

// DashboardWarmupJob pre-populates the report cache for each locale.
type DashboardWarmupJob struct {
	Reports ReportSource
	Cache   CacheBumper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(reports ReportSource, cache CacheBumper, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Reports: reports,
		Cache:   cache,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("dashboard warmup: decode payload: %w", asynq.SkipRetry)
		}
	}
	locales, err := resolveLocales(payload.Locales)
	if err != nil {
		return fmt.Errorf("dashboard warmup: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	started := j.now()
	logger.Info("starting dashboard warmup", slog.Int("locales", len(locales)), slog.Bool("bump", payload.Bump))

	if payload.Bump && j.Cache != nil {
		version, err := j.Cache.Bump(ctx)
		if err != nil {
			resultErr = fmt.Errorf("dashboard warmup: bump cache: %w", err)
			logger.Error("bump cache", slog.Any("error", err))
			return resultErr
		}
		logger.Info("report cache bumped", slog.Int64("version", version))
	}

	for _, locale := range locales {
		if err := j.warmLocale(ctx, locale); err != nil {
			resultErr = fmt.Errorf("dashboard warmup: %s: %w", locale.Name, err)
			logger.Error("warm locale", slog.String("locale", locale.Name), slog.Any("error", err))
			return resultErr
		}
		j.metrics().ReportWarmed(locale.Name)
	}

	logger.Info("completed dashboard warmup", slog.Int("locales", len(locales)), slog.Duration("duration", j.now().Sub(started)))
	return resultErr
}

func (j *DashboardWarmupJob) warmLocale(ctx context.Context, locale format.Locale) error {
	localeCtx, cancel := context.WithTimeout(ctx, localeWarmupTimeout)
	defer cancel()
	_, err := j.Reports.Report(localeCtx, locale.Name)
	return err
}

// resolveLocales validates the requested names and removes duplicates.
func resolveLocales(names []string) ([]format.Locale, error) {
	if len(names) == 0 {
		return format.Locales(), nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]format.Locale, 0, len(names))
	for _, name := range names {
		locale, err := format.Lookup(name)
		if err != nil {
			return nil, err
		}
		if seen[locale.Name] {
			continue
		}
		seen[locale.Name] = true
		out = append(out, locale)
	}
	return out, nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskDashboardWarmup))
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
