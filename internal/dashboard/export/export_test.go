package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/campaign-insights/internal/dashboard"
	"github.com/odyssey-erp/campaign-insights/internal/dataset"
	"github.com/odyssey-erp/campaign-insights/internal/format"
)

func buildReport(t *testing.T, localeName string) dashboard.Report {
	t.Helper()
	ds, err := dataset.Default()
	require.NoError(t, err)
	svc, err := dashboard.NewService(ds, nil, nil)
	require.NoError(t, err)
	loc, err := format.Lookup(localeName)
	require.NoError(t, err)
	report, err := svc.Build(context.Background(), loc)
	require.NoError(t, err)
	return report
}

func TestWriteComparisonCSV(t *testing.T) {
	report := buildReport(t, "en-US")
	buf := &bytes.Buffer{}
	require.NoError(t, WriteComparisonCSV(buf, report.Comparisons[0]))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Equal(t, comparisonHeader, records[0])
	// financial 3, duration 2, daily 5, efficiency 3, volume 2
	require.Len(t, records, 1+15)

	spend := records[1]
	require.Equal(t, []string{"pre-cro-tour", "financial", "Spend", "currency", "4880.3800", "12813.9500", "€4,880.38", "€12,813.95", "2.6256"}, spend)
}

func TestWriteComparisonCSVLeavesUnavailableEmpty(t *testing.T) {
	ds, err := dataset.Load(strings.NewReader(`
campaigns:
  - id: a
    spend: 10
  - id: b
    spend: 0
comparisons:
  - id: ab
    a: a
    b: b
`))
	require.NoError(t, err)
	svc, err := dashboard.NewService(ds, nil, nil)
	require.NoError(t, err)
	loc, err := format.Lookup("de-DE")
	require.NoError(t, err)
	report, err := svc.Build(context.Background(), loc)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, WriteComparisonCSV(buf, report.Comparisons...))
	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	for _, rec := range records[1:] {
		if rec[2] == "CPC" {
			require.Equal(t, "", rec[4])
			require.Equal(t, "k. A.", rec[6])
			return
		}
	}
	t.Fatalf("CPC row missing")
}

func TestWritePlatformCSV(t *testing.T) {
	report := buildReport(t, "en-US")
	buf := &bytes.Buffer{}
	require.NoError(t, WritePlatformCSV(buf, report.Platforms))
	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "instagram", records[1][1])
	require.Equal(t, "9514.73", records[1][2])
	require.Equal(t, "4.0236", records[1][7])
}

func TestPDFExporterRender(t *testing.T) {
	var html string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forms/chromium/convert/html" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("unexpected parse error: %v", err)
			return
		}
		file, _, err := r.FormFile("files")
		if err != nil {
			t.Errorf("missing html file: %v", err)
			return
		}
		raw, _ := io.ReadAll(file)
		html = string(raw)
		_, _ = w.Write([]byte("PDF"))
	}))
	defer srv.Close()

	exporter := NewPDFExporter(srv.URL + "/")
	data, err := exporter.RenderReport(context.Background(), buildReport(t, "de-DE"))
	require.NoError(t, err)
	require.Equal(t, "PDF", string(data))
	require.Contains(t, html, "Kampagnenvergleich")
	require.Contains(t, html, "4.880,38 €")
	require.Contains(t, html, "Instagram")
}

func TestPDFExporterErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "chromium crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	exporter := &PDFExporter{Endpoint: srv.URL}
	_, err := exporter.RenderReport(context.Background(), dashboard.Report{})
	require.ErrorContains(t, err, "chromium crashed")
	require.Error(t, exporter.Ping(context.Background()))

	var missing *PDFExporter
	_, err = missing.RenderReport(context.Background(), dashboard.Report{})
	require.Error(t, err)
	_, err = (&PDFExporter{}).RenderReport(context.Background(), dashboard.Report{})
	require.Error(t, err)
}
