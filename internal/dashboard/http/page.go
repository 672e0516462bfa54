package dashboardhttp

import (
	"fmt"
	"html/template"

	"github.com/odyssey-erp/campaign-insights/internal/campaign"
	"github.com/odyssey-erp/campaign-insights/internal/compare"
	"github.com/odyssey-erp/campaign-insights/internal/dashboard"
	"github.com/odyssey-erp/campaign-insights/internal/dashboard/svg"
	"github.com/odyssey-erp/campaign-insights/internal/format"
)

type pageData struct {
	Report      dashboard.Report
	Comparisons []comparisonPage
	Platforms   []platformPage
	Pixels      []pixelPage
}

type comparisonPage struct {
	Labels dashboard.PageLabels
	View   dashboard.ComparisonView
	Charts []chart
}

type platformPage struct {
	View  dashboard.PlatformView
	Chart template.HTML
}

type pixelPage struct {
	View  dashboard.PixelView
	Chart template.HTML
}

type chart struct {
	Title string
	SVG   template.HTML
}

func buildPage(report dashboard.Report, f *format.Formatter) (pageData, error) {
	data := pageData{Report: report}
	for _, view := range report.Comparisons {
		charts, err := sectionCharts(view, f)
		if err != nil {
			return pageData{}, fmt.Errorf("comparison %s: %w", view.ID, err)
		}
		data.Comparisons = append(data.Comparisons, comparisonPage{
			Labels: report.Labels,
			View:   view,
			Charts: charts,
		})
	}
	for _, view := range report.Platforms {
		page := platformPage{View: view}
		if len(view.Rows) > 0 {
			labels := make([]string, 0, len(view.Rows))
			series := make([]float64, 0, len(view.Rows))
			for _, row := range view.Rows {
				labels = append(labels, row.Platform)
				series = append(series, row.Raw.Derived.ROAS.Or(0))
			}
			line, err := svg.Line(svg.DefaultWidth, svg.DefaultHeight, series, labels, svg.LineOpts{
				Title:       report.Labels.ROAS,
				Description: view.Campaign,
				ShowDots:    true,
				Ticks:       tickFunc(compare.KindRatio, f),
			})
			if err != nil {
				return pageData{}, fmt.Errorf("platforms %s: %w", view.CampaignID, err)
			}
			page.Chart = line
		}
		data.Platforms = append(data.Platforms, page)
	}
	for _, view := range report.Pixels {
		page := pixelPage{View: view}
		if view.Raw.PixelRevenue.Or(0) > 0 {
			pie, err := svg.Pie(svg.DefaultWidth, svg.DefaultHeight, []svg.Slice{
				{Label: report.Labels.LastClick, Value: view.Raw.LastClickRevenue, Color: svg.ColorCampaignA},
				{Label: report.Labels.Additional, Value: view.Raw.AdditionalRevenue.Or(0), Color: svg.ColorCampaignB},
			}, svg.PieOpts{
				Title:       report.Labels.Pixel,
				Description: view.Campaign,
				Legend: func(s svg.Slice) string {
					return s.Label + " " + f.Currency(campaign.Of(s.Value))
				},
			})
			if err != nil {
				return pageData{}, fmt.Errorf("pixel %s: %w", view.CampaignID, err)
			}
			page.Chart = pie
		}
		data.Pixels = append(data.Pixels, page)
	}
	return data, nil
}

// sectionCharts draws one grouped bar chart per section. Only rows sharing
// the kind of the section's first row are plotted so an axis has one unit.
func sectionCharts(view dashboard.ComparisonView, f *format.Formatter) ([]chart, error) {
	charts := make([]chart, 0, len(view.Sections))
	for _, section := range view.Sections {
		if len(section.Rows) == 0 {
			continue
		}
		kind := section.Rows[0].Raw.Kind
		var labels []string
		var seriesA, seriesB []float64
		for _, row := range section.Rows {
			if row.Raw.Kind != kind {
				continue
			}
			labels = append(labels, row.Label)
			seriesA = append(seriesA, row.Raw.A.Or(0))
			seriesB = append(seriesB, row.Raw.B.Or(0))
		}
		bars, err := svg.Bars(svg.DefaultWidth, svg.DefaultHeight, seriesA, seriesB, labels, svg.BarOpts{
			Title:        section.Title,
			Description:  view.Title,
			SeriesALabel: view.A.Name,
			SeriesBLabel: view.B.Name,
			Ticks:        tickFunc(kind, f),
		})
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", section.Key, err)
		}
		charts = append(charts, chart{Title: section.Title, SVG: bars})
	}
	return charts, nil
}

func tickFunc(kind compare.Kind, f *format.Formatter) svg.TickFunc {
	switch kind {
	case compare.KindCurrency:
		return func(v float64) string { return f.WholeCurrency(campaign.Of(v)) }
	case compare.KindCount:
		return func(v float64) string { return f.Count(campaign.Of(v)) }
	case compare.KindPercent:
		return func(v float64) string { return f.Percent(campaign.Of(v)) }
	default:
		return func(v float64) string { return f.Ratio(campaign.Of(v)) }
	}
}
