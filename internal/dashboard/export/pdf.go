package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/odyssey-erp/campaign-insights/internal/dashboard"
)

// PDFExporter converts a report to PDF through a Gotenberg instance.
type PDFExporter struct {
	Endpoint string
	Client   *http.Client
}

// NewPDFExporter returns an exporter with a bounded HTTP client.
func NewPDFExporter(endpoint string) *PDFExporter {
	return &PDFExporter{Endpoint: endpoint, Client: &http.Client{Timeout: 30 * time.Second}}
}

// Ping checks that Gotenberg answers its health endpoint.
func (p *PDFExporter) Ping(ctx context.Context) error {
	endpoint, client, err := p.target()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderReport prints the report as HTML and returns the PDF bytes.
func (p *PDFExporter) RenderReport(ctx context.Context, report dashboard.Report) ([]byte, error) {
	endpoint, client, err := p.target()
	if err != nil {
		return nil, err
	}

	var html bytes.Buffer
	if err := reportTemplate.Execute(&html, report); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, &html); err != nil {
		return nil, err
	}
	if err := writer.WriteField("waitDelay", "500ms"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, string(data))
	}
	return io.ReadAll(resp.Body)
}

func (p *PDFExporter) target() (string, *http.Client, error) {
	if p == nil {
		return "", nil, fmt.Errorf("pdf exporter not initialised")
	}
	endpoint := strings.TrimRight(p.Endpoint, "/")
	if endpoint == "" {
		return "", nil, fmt.Errorf("gotenberg endpoint required")
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	return endpoint, client, nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!doctype html>
<html lang="{{.Locale}}"><head><meta charset="utf-8"><title>{{.Labels.Title}}</title>
<style>
body{font-family:sans-serif;margin:24px;color:#1e293b}
h1{font-size:20px}h2{font-size:16px;margin-top:24px}h3{font-size:13px;color:#475569}
table{width:100%;border-collapse:collapse;margin-bottom:12px}
th,td{border:1px solid #e2e8f0;padding:4px 6px;text-align:right;font-size:11px}
th:first-child,td:first-child{text-align:left}th{background:#f1f5f9}
</style></head><body>
<h1>{{.Labels.Title}}</h1>
{{range $c := .Comparisons}}
<h2>{{$c.Title}}</h2>
<p>{{$c.A.Name}} ({{$c.A.Period}}) / {{$c.B.Name}} ({{$c.B.Period}})</p>
{{range $c.Sections}}<h3>{{.Title}}</h3>
<table><thead><tr><th>{{$.Labels.Metric}}</th><th>{{$c.A.Name}}</th><th>{{$c.B.Name}}</th><th>{{$.Labels.Multiple}}</th></tr></thead><tbody>
{{range .Rows}}<tr><td>{{.Label}}</td><td>{{.A}}</td><td>{{.B}}</td><td>{{.Multiple}}</td></tr>
{{end}}</tbody></table>
{{end}}
{{if $c.Insights}}<h3>{{$.Labels.Insights}}</h3><ul>{{range $c.Insights}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{end}}
{{range .Platforms}}
<h2>{{$.Labels.Platforms}}: {{.Campaign}}</h2>
<table><thead><tr><th></th><th>{{$.Labels.Spend}}</th><th>{{$.Labels.Revenue}}</th><th>{{$.Labels.ROAS}}</th><th>{{$.Labels.CTR}}</th><th>{{$.Labels.CPC}}</th></tr></thead><tbody>
{{range .Rows}}<tr><td>{{.Platform}}</td><td>{{.Spend}}</td><td>{{.Revenue}}</td><td>{{.ROAS}}</td><td>{{.CTR}}</td><td>{{.CPC}}</td></tr>
{{end}}</tbody></table>
{{with .Insight}}<p>{{.}}</p>{{end}}
{{end}}
{{range .Attributions}}
<h2>{{$.Labels.Attribution}}: {{.Campaign}}</h2>
<table><thead><tr><th></th><th>{{$.Labels.SalesShare}}</th><th>{{$.Labels.Revenue}}</th><th>{{$.Labels.Spend}}</th><th>{{$.Labels.ROAS}}</th></tr></thead><tbody>
{{range .Periods}}<tr><td>{{.Label}} {{.Period}}</td><td>{{.SalesShare}}</td><td>{{.Revenue}}</td><td>{{.Spend}}</td><td>{{.ROAS}}</td></tr>
{{end}}</tbody></table>
{{end}}
{{range .Pixels}}
<h2>{{$.Labels.Pixel}}: {{.Campaign}}</h2>
<table><tbody>
<tr><td>{{$.Labels.LastClick}}</td><td>{{.LastClickRevenue}}</td><td>{{.LastClickShare}}</td></tr>
<tr><td>{{$.Labels.PixelRevenue}}</td><td>{{.PixelRevenue}}</td><td>{{.PixelROAS}}</td></tr>
<tr><td>{{$.Labels.Additional}}</td><td>{{.AdditionalRevenue}}</td><td>{{.AdditionalShare}}</td></tr>
</tbody></table>
{{with .Insight}}<p>{{.}}</p>{{end}}
{{end}}
</body></html>`))
