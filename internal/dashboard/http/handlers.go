// Package dashboardhttp serves the campaign dashboard, its JSON API and the
// CSV/PDF exports.
package dashboardhttp

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/campaign-insights/internal/dashboard"
	"github.com/odyssey-erp/campaign-insights/internal/dashboard/export"
	"github.com/odyssey-erp/campaign-insights/internal/format"
	"github.com/odyssey-erp/campaign-insights/internal/platform/httpx"
	"github.com/odyssey-erp/campaign-insights/internal/view"
)

const (
	requestTimeout = 5 * time.Second
	pdfTimeout     = 30 * time.Second
)

// ReportService is the report contract used by the handler.
type ReportService interface {
	Report(ctx context.Context, locale string) (dashboard.Report, error)
}

// CacheBumper invalidates cached reports.
type CacheBumper interface {
	Bump(ctx context.Context) (int64, error)
}

// PDFService renders a report to PDF bytes.
type PDFService interface {
	RenderReport(ctx context.Context, report dashboard.Report) ([]byte, error)
}

// Handler coordinates HTTP requests for the campaign dashboard.
type Handler struct {
	logger        *slog.Logger
	service       ReportService
	cache         CacheBumper
	templates     *view.Engine
	pdf           PDFService
	defaultLocale string
	builds        singleflight.Group
	csvPool       sync.Pool
	now           func() time.Time
}

// NewHandler constructs the dashboard HTTP handler. cache and pdf may be nil.
func NewHandler(logger *slog.Logger, service ReportService, cache CacheBumper, templates *view.Engine, pdf PDFService, defaultLocale string) *Handler {
	if defaultLocale == "" {
		defaultLocale = format.DefaultLocale
	}
	h := &Handler{
		logger:        logger,
		service:       service,
		cache:         cache,
		templates:     templates,
		pdf:           pdf,
		defaultLocale: defaultLocale,
		now:           time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	locale, err := h.locale(r)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.report(ctx, locale)
	if err != nil {
		h.handleServerError(w, "load report", err)
		return
	}
	data, err := buildPage(report, format.New(locale))
	if err != nil {
		h.handleServerError(w, "render charts", err)
		return
	}

	viewData := view.TemplateData{
		Title:       report.Labels.Title,
		Lang:        locale.Tag.String(),
		Locales:     localeLinks(r.URL, locale),
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, "pages/dashboard.html", viewData); err != nil {
		h.handleServerError(w, "render template", err)
	}
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	locale, err := h.locale(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.report(ctx, locale)
	if err != nil {
		h.respondAPIError(w, "load report", err)
		return
	}
	h.writeJSON(w, r, report)
}

func (h *Handler) handleComparison(w http.ResponseWriter, r *http.Request) {
	locale, err := h.locale(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.report(ctx, locale)
	if err != nil {
		h.respondAPIError(w, "load report", err)
		return
	}
	id := chi.URLParam(r, "id")
	comparison, ok := report.Comparison(id)
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: comparison %q", httpx.ErrNotFound, id))
		return
	}
	h.writeJSON(w, r, comparison)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	locale, err := h.locale(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := h.report(ctx, locale)
	if err != nil {
		h.handleServerError(w, "load report", err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteComparisonCSV(buf, report.Comparisons...); err != nil {
		h.handleServerError(w, "write comparison csv", err)
		return
	}
	if len(report.Platforms) > 0 {
		buf.WriteString("\n")
		if err := export.WritePlatformCSV(buf, report.Platforms); err != nil {
			h.handleServerError(w, "write platform csv", err)
			return
		}
	}

	filename := fmt.Sprintf("campaign-comparison-%s-%s.csv", locale.Name, h.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	if h.pdf == nil {
		httpx.RespondError(w, fmt.Errorf("pdf exporter: %w", httpx.ErrUnavailable))
		return
	}
	locale, err := h.locale(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), pdfTimeout)
	defer cancel()

	report, err := h.report(ctx, locale)
	if err != nil {
		h.handleServerError(w, "load report", err)
		return
	}
	pdfBytes, err := h.pdf.RenderReport(ctx, report)
	if err != nil {
		h.handleServerError(w, "render pdf", err)
		return
	}

	filename := fmt.Sprintf("campaign-comparison-%s-%s.pdf", locale.Name, h.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(pdfBytes); err != nil {
		h.logError("stream pdf", err)
	}
}

func (h *Handler) handleBump(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		httpx.RespondError(w, fmt.Errorf("report cache: %w", httpx.ErrUnavailable))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	version, err := h.cache.Bump(ctx)
	if err != nil {
		h.respondAPIError(w, "bump cache", err)
		return
	}
	if h.logger != nil {
		h.logger.Info("report cache bumped", slog.Int64("version", version))
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"version": version})
}

// locale resolves ?locale= against the supported locales.
func (h *Handler) locale(r *http.Request) (format.Locale, error) {
	name := strings.TrimSpace(r.URL.Query().Get("locale"))
	if name == "" {
		name = h.defaultLocale
	}
	locale, err := format.Lookup(name)
	if err != nil {
		return format.Locale{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return locale, nil
}

// writeJSON encodes v with a content hash ETag and honours If-None-Match.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.respondAPIError(w, "encode response", err)
		return
	}
	sum := blake2b.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.logError("stream json", err)
	}
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := h.templates.Render(w, "pages/error.html", view.TemplateData{
		Title:       http.StatusText(status),
		Lang:        "en",
		CurrentPath: r.URL.Path,
		Data:        message,
	})
	if err != nil {
		h.logError("render error page", err)
	}
}

func (h *Handler) respondAPIError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		err = fmt.Errorf("%s: %w: %w", op, httpx.ErrUnavailable, err)
	}
	if httpx.StatusOf(err) >= http.StatusInternalServerError {
		h.logError(op, err)
	}
	httpx.RespondError(w, err)
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}

func localeLinks(current *url.URL, active format.Locale) []view.LocaleLink {
	locales := format.Locales()
	links := make([]view.LocaleLink, 0, len(locales))
	for _, loc := range locales {
		q := current.Query()
		q.Set("locale", loc.Name)
		links = append(links, view.LocaleLink{
			Name:   loc.Name,
			Href:   current.Path + "?" + q.Encode(),
			Active: loc.Name == active.Name,
		})
	}
	return links
}
