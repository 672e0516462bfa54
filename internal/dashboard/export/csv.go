package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/odyssey-erp/campaign-insights/internal/campaign"
	"github.com/odyssey-erp/campaign-insights/internal/dashboard"
)

var comparisonHeader = []string{"Comparison", "Section", "Metric", "Kind", "A", "B", "A (formatted)", "B (formatted)", "B/A"}

// WriteComparisonCSV emits every row of the given comparisons. Raw columns
// stay machine readable; unavailable values are left empty.
func WriteComparisonCSV(w io.Writer, views ...dashboard.ComparisonView) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(comparisonHeader); err != nil {
		return err
	}
	for _, view := range views {
		for _, section := range view.Sections {
			for _, row := range section.Rows {
				if err := writer.Write([]string{
					view.ID,
					section.Key,
					row.Label,
					row.Kind,
					rawValue(row.Raw.A),
					rawValue(row.Raw.B),
					row.A,
					row.B,
					rawValue(row.Raw.Delta.RelativeMultiple),
				}); err != nil {
					return err
				}
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePlatformCSV emits the platform breakdowns.
func WritePlatformCSV(w io.Writer, views []dashboard.PlatformView) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Campaign", "Platform", "Spend", "Impressions", "Clicks", "Conversions", "Revenue", "ROAS", "CTR", "CPC"}); err != nil {
		return err
	}
	for _, view := range views {
		for _, row := range view.Rows {
			c, d := row.Raw.Counters, row.Raw.Derived
			if err := writer.Write([]string{
				view.CampaignID,
				row.Raw.Platform,
				formatFloat(c.Spend),
				strconv.FormatInt(c.Impressions, 10),
				strconv.FormatInt(c.Clicks, 10),
				strconv.FormatInt(c.Conversions, 10),
				formatFloat(c.Revenue),
				rawValue(d.ROAS),
				rawValue(d.CTR),
				rawValue(d.CPC),
			}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func rawValue(v campaign.Value) string {
	x, ok := v.Get()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(x, 'f', 4, 64)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
