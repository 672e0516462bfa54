package campaign

import "fmt"

// DerivedMetrics holds the efficiency ratios computed from counters.
type DerivedMetrics struct {
	CPC            Value `json:"cpc"`
	CTR            Value `json:"ctr"`
	ConversionRate Value `json:"conversion_rate"`
	ROAS           Value `json:"roas"`
}

// DailyMetrics holds per-day averages over a reporting period.
type DailyMetrics struct {
	Days        int     `json:"days"`
	Spend       float64 `json:"spend"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Revenue     float64 `json:"revenue"`
}

// PlatformMetrics pairs a platform breakdown with its derived ratios.
type PlatformMetrics struct {
	Platform string         `json:"platform"`
	Counters Counters       `json:"counters"`
	Derived  DerivedMetrics `json:"derived"`
}

// Derive computes CPC, CTR, conversion rate and ROAS for a snapshot.
func Derive(s Snapshot) DerivedMetrics {
	return DeriveCounters(s.Counters)
}

// DeriveCounters computes the ratios for a bare counter set. A ratio whose
// denominator is zero is unavailable. CTR is also unavailable without clicks.
func DeriveCounters(c Counters) DerivedMetrics {
	clicks := float64(c.Clicks)
	ctr := Unavailable()
	if c.Clicks > 0 {
		ctr = Ratio(clicks, float64(c.Impressions)).Scale(100)
	}
	return DerivedMetrics{
		CPC:            Ratio(c.Spend, clicks),
		CTR:            ctr,
		ConversionRate: Ratio(float64(c.Conversions), clicks).Scale(100),
		ROAS:           Ratio(c.Revenue, c.Spend),
	}
}

// DailyAverage divides every counter by days.
func DailyAverage(s Snapshot, days int) (DailyMetrics, error) {
	if days <= 0 {
		return DailyMetrics{}, fmt.Errorf("%w: %d days", ErrInvalidDuration, days)
	}
	d := float64(days)
	return DailyMetrics{
		Days:        days,
		Spend:       s.Spend / d,
		Impressions: float64(s.Impressions) / d,
		Clicks:      float64(s.Clicks) / d,
		Conversions: float64(s.Conversions) / d,
		Revenue:     s.Revenue / d,
	}, nil
}

// DerivePlatforms derives every platform breakdown in PlatformNames order.
func DerivePlatforms(s Snapshot) []PlatformMetrics {
	names := s.PlatformNames()
	out := make([]PlatformMetrics, 0, len(names))
	for _, name := range names {
		c := s.Platforms[name]
		out = append(out, PlatformMetrics{Platform: name, Counters: c, Derived: DeriveCounters(c)})
	}
	return out
}
