package dashboard

import (
	"time"

	"github.com/odyssey-erp/campaign-insights/internal/campaign"
	"github.com/odyssey-erp/campaign-insights/internal/compare"
)

// Report is everything the dashboard shows for one locale.
type Report struct {
	ID           string            `json:"id"`
	Locale       string            `json:"locale"`
	Currency     string            `json:"currency"`
	Fingerprint  string            `json:"fingerprint"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Labels       PageLabels        `json:"labels"`
	Comparisons  []ComparisonView  `json:"comparisons"`
	Platforms    []PlatformView    `json:"platforms"`
	Attributions []AttributionView `json:"attributions"`
	Pixels       []PixelView       `json:"pixels"`
	Warnings     []string          `json:"warnings,omitempty"`
}

// Comparison returns the comparison view with the given id.
func (r Report) Comparison(id string) (ComparisonView, bool) {
	for _, c := range r.Comparisons {
		if c.ID == id {
			return c, true
		}
	}
	return ComparisonView{}, false
}

// PageLabels carries the localized static text of the page.
type PageLabels struct {
	Title        string `json:"title"`
	Platforms    string `json:"platforms"`
	Attribution  string `json:"attribution"`
	Pixel        string `json:"pixel"`
	Insights     string `json:"insights"`
	Metric       string `json:"metric"`
	Multiple     string `json:"multiple"`
	Days         string `json:"days"`
	SalesShare   string `json:"sales_share"`
	LastClick    string `json:"last_click"`
	PixelRevenue string `json:"pixel_revenue"`
	Additional   string `json:"additional"`
	Spend        string `json:"spend"`
	Revenue      string `json:"revenue"`
	Conversions  string `json:"conversions"`
	ROAS         string `json:"roas"`
	CTR          string `json:"ctr"`
	CPC          string `json:"cpc"`
}

// CampaignCard summarises one side of a comparison.
type CampaignCard struct {
	Name        string `json:"name"`
	Period      string `json:"period"`
	Days        int    `json:"days"`
	Spend       string `json:"spend"`
	Revenue     string `json:"revenue"`
	ROAS        string `json:"roas"`
	Conversions string `json:"conversions"`
}

// ComparisonView is a fully formatted side by side comparison.
type ComparisonView struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	A        CampaignCard  `json:"a"`
	B        CampaignCard  `json:"b"`
	Sections []SectionView `json:"sections"`
	Insights []string      `json:"insights"`
}

// SectionView groups related rows, e.g. financial or efficiency metrics.
type SectionView struct {
	Key   string    `json:"key"`
	Title string    `json:"title"`
	Rows  []RowView `json:"rows"`
}

// RowView is a compare.Row with its rendered text.
type RowView struct {
	Label    string      `json:"label"`
	Kind     string      `json:"kind"`
	A        string      `json:"a"`
	B        string      `json:"b"`
	Multiple string      `json:"multiple"`
	Raw      compare.Row `json:"raw"`
}

// PlatformView is the per-platform breakdown of a campaign.
type PlatformView struct {
	CampaignID string        `json:"campaign_id"`
	Campaign   string        `json:"campaign"`
	Rows       []PlatformRow `json:"rows"`
	Insight    string        `json:"insight,omitempty"`
}

// PlatformRow renders one platform.
type PlatformRow struct {
	Platform    string                   `json:"platform"`
	Spend       string                   `json:"spend"`
	Revenue     string                   `json:"revenue"`
	ROAS        string                   `json:"roas"`
	CTR         string                   `json:"ctr"`
	CPC         string                   `json:"cpc"`
	Conversions string                   `json:"conversions"`
	Raw         campaign.PlatformMetrics `json:"raw"`
}

// AttributionView splits one campaign across sub-periods.
type AttributionView struct {
	CampaignID string       `json:"campaign_id"`
	Campaign   string       `json:"campaign"`
	Periods    []PeriodView `json:"periods"`
}

// PeriodView renders one sub-period.
type PeriodView struct {
	Label      string                     `json:"label"`
	Period     string                     `json:"period"`
	SalesShare string                     `json:"sales_share"`
	Revenue    string                     `json:"revenue"`
	Spend      string                     `json:"spend"`
	ROAS       string                     `json:"roas"`
	Raw        campaign.PeriodAttribution `json:"raw"`
}

// PixelView contrasts last-click with Meta pixel attribution.
type PixelView struct {
	CampaignID        string                    `json:"campaign_id"`
	Campaign          string                    `json:"campaign"`
	LastClickRevenue  string                    `json:"last_click_revenue"`
	PixelRevenue      string                    `json:"pixel_revenue"`
	AdditionalRevenue string                    `json:"additional_revenue"`
	LastClickROAS     string                    `json:"last_click_roas"`
	PixelROAS         string                    `json:"pixel_roas"`
	LastClickShare    string                    `json:"last_click_share"`
	AdditionalShare   string                    `json:"additional_share"`
	Insight           string                    `json:"insight,omitempty"`
	Raw               campaign.PixelAttribution `json:"raw"`
}
