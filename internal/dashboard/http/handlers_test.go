package dashboardhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/campaign-insights/internal/dashboard"
	"github.com/odyssey-erp/campaign-insights/internal/dataset"
	"github.com/odyssey-erp/campaign-insights/internal/view"
)

type stubPDF struct {
	mu   sync.Mutex
	data []byte
	err  error
	last dashboard.Report
}

func (s *stubPDF) RenderReport(ctx context.Context, report dashboard.Report) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = report
	if s.data == nil {
		content := bytes.Repeat([]byte("PDF"), 400)
		s.data = append([]byte("%PDF-1.4\n"), content...)
	}
	return s.data, s.err
}

type failingService struct{ err error }

func (f failingService) Report(ctx context.Context, locale string) (dashboard.Report, error) {
	return dashboard.Report{}, f.err
}

type countingService struct {
	mu    sync.Mutex
	calls int
	gate  chan struct{}
	inner ReportService
}

func (c *countingService) Report(ctx context.Context, locale string) (dashboard.Report, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	<-c.gate
	return c.inner.Report(ctx, locale)
}

type testEnv struct {
	handler *Handler
	service *dashboard.Service
	pdf     *stubPDF
	router  chi.Router
}

func newTestEnv(t *testing.T, cache *dashboard.Cache) testEnv {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)
	ds, err := dataset.Default()
	require.NoError(t, err)
	svc, err := dashboard.NewService(ds, cache, nil)
	require.NoError(t, err)
	svc.WithNow(func() time.Time { return time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC) })

	pdf := &stubPDF{}
	var bumper CacheBumper
	if cache != nil {
		bumper = cache
	}
	handler := NewHandler(nil, svc, bumper, templates, pdf, "en-US")
	handler.WithNow(func() time.Time { return time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC) })

	r := chi.NewRouter()
	handler.MountRoutes(r)
	return testEnv{handler: handler, service: svc, pdf: pdf, router: r}
}

func (e testEnv) do(t *testing.T, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func TestDashboardRendersEnglish(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `<html lang="en-US">`)
	assert.Contains(t, body, "Campaign comparison")
	assert.Contains(t, body, "€4,880.38")
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "Chimperator Live spent 2.63x more than EDGE (Pre-Cro Tour)")
	assert.Contains(t, body, `href="/?locale=de-DE"`)
}

func TestDashboardRendersGerman(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodGet, "/?locale=de", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `<html lang="de-DE">`)
	assert.Contains(t, body, "Kampagnenvergleich")
	assert.Contains(t, body, "4.880,38 €")
	assert.Contains(t, body, "Ausgaben")
}

func TestDashboardUnknownLocale(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodGet, "/?locale=fr-FR", nil)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "fr-FR")
}

func TestReportAPI(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodGet, "/api/report?locale=de-DE", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get("ETag"))

	var report dashboard.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, "de-DE", report.Locale)
	require.Len(t, report.Comparisons, 2)
}

func TestReportAPIUnknownLocale(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodGet, "/api/report?locale=xx", nil)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "Validation Failed")
}

func TestReportAPIServerError(t *testing.T) {
	templates, err := view.NewEngine()
	require.NoError(t, err)
	handler := NewHandler(nil, failingService{err: errors.New("redis down")}, nil, templates, nil, "")
	r := chi.NewRouter()
	handler.MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "redis down")
}

func TestComparisonAPIWithETag(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	env := newTestEnv(t, dashboard.NewCache(client, time.Minute))

	first := env.do(t, http.MethodGet, "/api/compare/pre-cro-tour", nil)
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	var view dashboard.ComparisonView
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &view))
	assert.Equal(t, "pre-cro-tour", view.ID)
	assert.Equal(t, "EDGE (Pre-Cro Tour)", view.A.Name)

	// The cached report is stable, so the second response revalidates.
	second := env.do(t, http.MethodGet, "/api/compare/pre-cro-tour", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())
}

func TestComparisonAPINotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodGet, "/api/compare/nope", nil)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), `comparison \"nope\"`)
}

func TestCSVExport(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodGet, "/export.csv?locale=de", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "campaign-comparison-de-DE-2025-04-02.csv")
	body := rr.Body.String()
	assert.Contains(t, body, "pre-cro-tour")
	assert.Contains(t, body, "Instagram")
}

func TestPDFExport(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodGet, "/export.pdf", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Greater(t, rr.Body.Len(), 1024)
	assert.Equal(t, "en-US", env.pdf.last.Locale)
}

func TestPDFExportWithoutExporter(t *testing.T) {
	env := newTestEnv(t, nil)
	env.handler.pdf = nil
	rr := env.do(t, http.MethodGet, "/export.pdf", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestPDFExportFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.pdf.err = errors.New("gotenberg unreachable")
	rr := env.do(t, http.MethodGet, "/export.pdf", nil)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestCacheBump(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	env := newTestEnv(t, dashboard.NewCache(client, time.Minute))

	rr := env.do(t, http.MethodPost, "/api/cache/bump", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"version":1}`, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/cache/bump", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"version":2}`, rr.Body.String())
}

func TestCacheBumpWithoutCache(t *testing.T) {
	env := newTestEnv(t, nil)
	rr := env.do(t, http.MethodPost, "/api/cache/bump", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestExportsAreRateLimited(t *testing.T) {
	env := newTestEnv(t, nil)
	var last int
	for i := 0; i < 11; i++ {
		last = env.do(t, http.MethodGet, "/export.csv", nil).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestConcurrentRequestsShareOneBuild(t *testing.T) {
	env := newTestEnv(t, nil)
	counting := &countingService{gate: make(chan struct{}), inner: env.service}
	env.handler.service = counting

	const callers = 5
	var wg sync.WaitGroup
	codes := make([]int, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = env.do(t, http.MethodGet, "/api/report", nil).Code
		}()
	}
	require.Eventually(t, func() bool {
		counting.mu.Lock()
		defer counting.mu.Unlock()
		return counting.calls == 1
	}, time.Second, 5*time.Millisecond)
	// Give the remaining callers time to join the in-flight build.
	time.Sleep(50 * time.Millisecond)
	close(counting.gate)
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
	counting.mu.Lock()
	defer counting.mu.Unlock()
	assert.Equal(t, 1, counting.calls)
}

func TestMetricsObserveReportCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	again, err := NewMetrics(reg)
	require.NoError(t, err, "registering twice reuses collectors")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	env := newTestEnv(t, dashboard.NewCache(client, time.Minute))
	env.service.WithObserver(metrics)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/report", nil).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/report", nil).Code)

	require.Same(t, metrics.hits, again.hits)
	assert.Equal(t, 1.0, gathered(t, reg, "campaigns_report_cache_miss_total"))
	assert.Equal(t, 1.0, gathered(t, reg, "campaigns_report_cache_hits_total"))
	assert.Equal(t, 1.0, gathered(t, reg, "campaigns_report_build_duration_seconds"))
}

// gathered returns the en-US counter value, or the sample count for a
// histogram.
func gathered(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() != "locale" || label.GetValue() != "en-US" {
					continue
				}
				if h := metric.GetHistogram(); h != nil {
					return float64(h.GetSampleCount())
				}
				return metric.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}
