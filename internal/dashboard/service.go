// Package dashboard assembles localized campaign comparison reports.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/message/catalog"

	"github.com/odyssey-erp/campaign-insights/internal/dataset"
	"github.com/odyssey-erp/campaign-insights/internal/format"
)

// ErrComparisonNotFound is returned for unknown comparison ids.
var ErrComparisonNotFound = errors.New("dashboard: comparison not found")

// Observer receives cache and build timings. Implementations must be safe
// for concurrent use.
type Observer interface {
	ObserveCache(locale string, hit bool)
	ObserveBuild(locale string, elapsed time.Duration)
}

// Service builds reports from a dataset.
type Service struct {
	data     *dataset.Dataset
	cache    *Cache
	catalog  catalog.Catalog
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
}

// NewService wires a dataset and an optional cache.
func NewService(data *dataset.Dataset, cache *Cache, logger *slog.Logger) (*Service, error) {
	if data == nil {
		return nil, errors.New("dashboard: dataset required")
	}
	cat, err := newCatalog()
	if err != nil {
		return nil, fmt.Errorf("dashboard: catalog: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		data:    data,
		cache:   cache,
		catalog: cat,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// WithNow overrides the clock used for GeneratedAt.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// WithObserver attaches metrics hooks.
func (s *Service) WithObserver(o Observer) {
	s.observer = o
}

// Dataset exposes the dataset the service reports on.
func (s *Service) Dataset() *dataset.Dataset {
	return s.data
}

// Cache exposes the report cache, which may be nil.
func (s *Service) Cache() *Cache {
	return s.cache
}

// Report returns the report for a locale name, from cache when possible.
func (s *Service) Report(ctx context.Context, localeName string) (Report, error) {
	locale, err := format.Lookup(localeName)
	if err != nil {
		return Report{}, err
	}
	key, err := s.cache.BuildKey(ctx, reportKey(s.data.Fingerprint, locale.Name))
	if err != nil {
		s.logger.Warn("report cache unavailable", slog.Any("error", err))
		return s.Build(ctx, locale)
	}
	var report Report
	hit, err := s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
		return s.Build(ctx, locale)
	})
	if err != nil {
		return Report{}, err
	}
	if s.observer != nil && s.cache.enabled() {
		s.observer.ObserveCache(locale.Name, hit)
	}
	return report, nil
}

// Comparison returns a single comparison of the locale's report.
func (s *Service) Comparison(ctx context.Context, localeName, id string) (ComparisonView, error) {
	if _, ok := s.data.Comparison(id); !ok {
		return ComparisonView{}, fmt.Errorf("%w: %q", ErrComparisonNotFound, id)
	}
	report, err := s.Report(ctx, localeName)
	if err != nil {
		return ComparisonView{}, err
	}
	view, ok := report.Comparison(id)
	if !ok {
		return ComparisonView{}, fmt.Errorf("%w: %q", ErrComparisonNotFound, id)
	}
	return view, nil
}

// Build computes a report without consulting the cache. Sections are built
// concurrently and assembled in dataset order.
func (s *Service) Build(ctx context.Context, locale format.Locale) (Report, error) {
	started := time.Now()
	ds := s.data
	report := Report{
		ID:           uuid.NewString(),
		Locale:       locale.Name,
		Currency:     ds.Currency,
		Fingerprint:  ds.Fingerprint,
		GeneratedAt:  s.now().UTC(),
		Labels:       s.printerFor(locale).labels(),
		Comparisons:  make([]ComparisonView, len(ds.Comparisons)),
		Platforms:    make([]PlatformView, len(ds.Platforms)),
		Attributions: make([]AttributionView, len(ds.Attributions)),
		Pixels:       make([]PixelView, len(ds.Pixels)),
		Warnings:     append([]string(nil), ds.Warnings...),
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, c := range ds.Comparisons {
		goSection(g, "comparison", func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, _ := ds.Campaign(c.A)
			b, _ := ds.Campaign(c.B)
			view, err := s.printerFor(locale).comparison(c, a, b)
			if err != nil {
				return err
			}
			report.Comparisons[i] = view
			return nil
		})
	}
	for i, id := range ds.Platforms {
		goSection(g, "platforms", func() error {
			snap, _ := ds.Campaign(id)
			report.Platforms[i] = s.printerFor(locale).platforms(id, snap)
			return nil
		})
	}
	for i, a := range ds.Attributions {
		goSection(g, "attribution", func() error {
			snap, _ := ds.Campaign(a.Campaign)
			report.Attributions[i] = s.printerFor(locale).attribution(a, snap)
			return nil
		})
	}
	for i, id := range ds.Pixels {
		goSection(g, "pixel", func() error {
			snap, _ := ds.Campaign(id)
			report.Pixels[i] = s.printerFor(locale).pixel(id, snap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	if s.observer != nil {
		s.observer.ObserveBuild(locale.Name, time.Since(started))
	}
	s.logger.Debug("report built",
		slog.String("locale", locale.Name),
		slog.String("report_id", report.ID),
		slog.Int("comparisons", len(report.Comparisons)),
		slog.Duration("elapsed", time.Since(started)))
	return report, nil
}

// goSection runs fn on g, reporting a panic as the group's error.
func goSection(g *errgroup.Group, section string, fn func() error) {
	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("dashboard: build %s: panic: %v", section, r)
			}
		}()
		return fn()
	})
}

// printerFor is called once per goroutine so printers are never shared.
func (s *Service) printerFor(locale format.Locale) printer {
	return newPrinter(s.catalog, locale)
}
