package campaign

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PeriodAttribution is the share of a snapshot credited to a sub-period.
type PeriodAttribution struct {
	SalesSharePercent float64 `json:"sales_share_percent"`
	SpendRatio        float64 `json:"spend_ratio"`
	Revenue           float64 `json:"revenue"`
	Spend             float64 `json:"spend"`
	ROAS              Value   `json:"roas"`
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// AttributionSplit credits salesSharePercent of the revenue and spendRatio
// of the spend to a sub-period. Neither argument is range checked; a
// non-finite input yields an empty split with ROAS unavailable.
func AttributionSplit(s Snapshot, salesSharePercent, spendRatio float64) PeriodAttribution {
	if !finite(s.Revenue, s.Spend, salesSharePercent, spendRatio) {
		return PeriodAttribution{ROAS: Unavailable()}
	}
	revenue := decimal.NewFromFloat(s.Revenue).
		Mul(decimal.NewFromFloat(salesSharePercent)).
		Div(hundred)
	spend := decimal.NewFromFloat(s.Spend).Mul(decimal.NewFromFloat(spendRatio))

	out := PeriodAttribution{
		SalesSharePercent: salesSharePercent,
		SpendRatio:        spendRatio,
		Revenue:           revenue.InexactFloat64(),
		Spend:             spend.InexactFloat64(),
		ROAS:              Unavailable(),
	}
	if !spend.IsZero() {
		out.ROAS = Of(revenue.Div(spend).InexactFloat64())
	}
	return out
}

// ShareDeviation returns how far the given percentages sum away from 100,
// or NaN when a share is not finite.
func ShareDeviation(sharesPercent ...float64) float64 {
	total := decimal.Zero
	for _, share := range sharesPercent {
		if !finite(share) {
			return math.NaN()
		}
		total = total.Add(decimal.NewFromFloat(share))
	}
	return total.Sub(hundred).InexactFloat64()
}

// PixelAttribution contrasts last-click revenue with Meta pixel revenue.
type PixelAttribution struct {
	LastClickRevenue float64 `json:"last_click_revenue"`
	PixelRevenue     Value   `json:"pixel_revenue"`
	// Revenue the pixel reports beyond last-click.
	AdditionalRevenue Value `json:"additional_revenue"`
	LastClickROAS     Value `json:"last_click_roas"`
	PixelROAS         Value `json:"pixel_roas"`
	// Percentages of the pixel total, for the attribution pie.
	LastClickShare  Value `json:"last_click_share"`
	AdditionalShare Value `json:"additional_share"`
}

// Pixel computes the last-click versus pixel comparison. Every pixel field
// is unavailable when the snapshot has no pixel revenue.
func Pixel(s Snapshot) PixelAttribution {
	out := PixelAttribution{
		LastClickRevenue: s.Revenue,
		LastClickROAS:    Ratio(s.Revenue, s.Spend),
	}
	pixel, ok := s.PixelRevenue()
	if !ok || !finite(pixel, s.Revenue) {
		return out
	}
	extra := decimal.NewFromFloat(pixel).Sub(decimal.NewFromFloat(s.Revenue)).InexactFloat64()
	out.PixelRevenue = Of(pixel)
	out.AdditionalRevenue = Of(extra)
	out.PixelROAS = Ratio(pixel, s.Spend)
	out.LastClickShare = Ratio(s.Revenue, pixel).Scale(100)
	out.AdditionalShare = Ratio(extra, pixel).Scale(100)
	return out
}
