package dashboard

import (
	"errors"
	"fmt"

	"github.com/odyssey-erp/campaign-insights/internal/campaign"
	"github.com/odyssey-erp/campaign-insights/internal/compare"
	"github.com/odyssey-erp/campaign-insights/internal/dataset"
)

const periodLayout = "02.01.2006"

// pair holds everything derived from the two sides of a comparison.
type pair struct {
	a, b           campaign.Snapshot
	da, db         campaign.DerivedMetrics
	dailyA, dailyB dailyValues
}

type dailyValues struct {
	spend, revenue, conversions, impressions, clicks campaign.Value
}

func newPair(a, b campaign.Snapshot) (pair, error) {
	p := pair{a: a, b: b, da: campaign.Derive(a), db: campaign.Derive(b)}
	var err error
	if p.dailyA, err = daily(a); err != nil {
		return pair{}, err
	}
	if p.dailyB, err = daily(b); err != nil {
		return pair{}, err
	}
	return p, nil
}

// daily leaves every average unavailable when the period is unknown.
func daily(s campaign.Snapshot) (dailyValues, error) {
	m, err := campaign.DailyAverage(s, s.Days())
	if errors.Is(err, campaign.ErrInvalidDuration) {
		return dailyValues{}, nil
	}
	if err != nil {
		return dailyValues{}, err
	}
	return dailyValues{
		spend:       campaign.Of(m.Spend),
		revenue:     campaign.Of(m.Revenue),
		conversions: campaign.Of(m.Conversions),
		impressions: campaign.Of(m.Impressions),
		clicks:      campaign.Of(m.Clicks),
	}, nil
}

func days(s campaign.Snapshot) campaign.Value {
	if d := s.Days(); d > 0 {
		return campaign.Of(float64(d))
	}
	return campaign.Unavailable()
}

type sectionSpec struct {
	key   string
	title string
	rows  func(p pair) []compare.LabelledMetric
}

var comparisonSections = []sectionSpec{
	{key: "financial", title: msgSectionFinancial, rows: func(p pair) []compare.LabelledMetric {
		return []compare.LabelledMetric{
			{Label: msgSpend, Kind: compare.KindCurrency, A: campaign.Of(p.a.Spend), B: campaign.Of(p.b.Spend)},
			{Label: msgRevenue, Kind: compare.KindCurrency, A: campaign.Of(p.a.Revenue), B: campaign.Of(p.b.Revenue)},
			{Label: msgConversions, Kind: compare.KindCount, A: campaign.Of(float64(p.a.Conversions)), B: campaign.Of(float64(p.b.Conversions))},
		}
	}},
	{key: "duration", title: msgSectionDuration, rows: func(p pair) []compare.LabelledMetric {
		return []compare.LabelledMetric{
			{Label: msgDuration, Kind: compare.KindCount, A: days(p.a), B: days(p.b)},
			{Label: msgROAS, Kind: compare.KindRatio, A: p.da.ROAS, B: p.db.ROAS},
		}
	}},
	{key: "daily", title: msgSectionDaily, rows: func(p pair) []compare.LabelledMetric {
		return []compare.LabelledMetric{
			{Label: msgDailySpend, Kind: compare.KindCurrency, A: p.dailyA.spend, B: p.dailyB.spend},
			{Label: msgDailyRevenue, Kind: compare.KindCurrency, A: p.dailyA.revenue, B: p.dailyB.revenue},
			{Label: msgDailyConversions, Kind: compare.KindRatio, A: p.dailyA.conversions, B: p.dailyB.conversions},
			{Label: msgDailyImpressions, Kind: compare.KindCount, A: p.dailyA.impressions, B: p.dailyB.impressions},
			{Label: msgDailyClicks, Kind: compare.KindCount, A: p.dailyA.clicks, B: p.dailyB.clicks},
		}
	}},
	{key: "efficiency", title: msgSectionEfficiency, rows: func(p pair) []compare.LabelledMetric {
		return []compare.LabelledMetric{
			{Label: msgCPC, Kind: compare.KindCurrency, A: p.da.CPC, B: p.db.CPC},
			{Label: msgCTR, Kind: compare.KindPercent, A: p.da.CTR, B: p.db.CTR},
			{Label: msgConversionRate, Kind: compare.KindPercent, A: p.da.ConversionRate, B: p.db.ConversionRate},
		}
	}},
	{key: "volume", title: msgSectionVolume, rows: func(p pair) []compare.LabelledMetric {
		return []compare.LabelledMetric{
			{Label: msgImpressions, Kind: compare.KindCount, A: campaign.Of(float64(p.a.Impressions)), B: campaign.Of(float64(p.b.Impressions))},
			{Label: msgClicks, Kind: compare.KindCount, A: campaign.Of(float64(p.a.Clicks)), B: campaign.Of(float64(p.b.Clicks))},
		}
	}},
}

// render formats a value according to its row kind.
func (p printer) render(kind compare.Kind, v campaign.Value) string {
	switch kind {
	case compare.KindCurrency:
		return p.Currency(v)
	case compare.KindCount:
		return p.Count(v)
	case compare.KindPercent:
		return p.Percent(v)
	default:
		return p.Ratio(v)
	}
}

func (p printer) multiple(d compare.Delta) string {
	if !d.RelativeMultiple.Available() {
		return p.Placeholder()
	}
	return p.Ratio(d.RelativeMultiple) + "x"
}

func (p printer) comparison(c dataset.Comparison, a, b campaign.Snapshot) (ComparisonView, error) {
	pr, err := newPair(a, b)
	if err != nil {
		return ComparisonView{}, fmt.Errorf("comparison %s: %w", c.ID, err)
	}
	view := ComparisonView{
		ID:       c.ID,
		Title:    c.Title,
		A:        p.card(a, pr.da),
		B:        p.card(b, pr.db),
		Sections: make([]SectionView, 0, len(comparisonSections)),
	}
	for _, spec := range comparisonSections {
		metrics := spec.rows(pr)
		for i := range metrics {
			metrics[i].Label = p.T(metrics[i].Label)
		}
		rows := compare.Compare(metrics)
		section := SectionView{Key: spec.key, Title: p.T(spec.title), Rows: make([]RowView, 0, len(rows))}
		for _, row := range rows {
			section.Rows = append(section.Rows, RowView{
				Label:    row.Label,
				Kind:     string(row.Kind),
				A:        p.render(row.Kind, row.A),
				B:        p.render(row.Kind, row.B),
				Multiple: p.multiple(row.Delta),
				Raw:      row,
			})
		}
		view.Sections = append(view.Sections, section)
	}
	view.Insights = p.comparisonInsights(pr)
	return view, nil
}

func (p printer) card(s campaign.Snapshot, d campaign.DerivedMetrics) CampaignCard {
	return CampaignCard{
		Name:        s.Name,
		Period:      period(s),
		Days:        s.Days(),
		Spend:       p.Currency(campaign.Of(s.Spend)),
		Revenue:     p.Currency(campaign.Of(s.Revenue)),
		ROAS:        p.Ratio(d.ROAS),
		Conversions: p.Integer(campaign.Of(float64(s.Conversions))),
	}
}

func period(s campaign.Snapshot) string {
	if s.PeriodStart.IsZero() || s.PeriodEnd.IsZero() {
		return ""
	}
	return s.PeriodStart.Format(periodLayout) + " – " + s.PeriodEnd.Format(periodLayout)
}

func (p printer) platforms(id string, s campaign.Snapshot) PlatformView {
	view := PlatformView{CampaignID: id, Campaign: s.Name}
	for _, m := range campaign.DerivePlatforms(s) {
		view.Rows = append(view.Rows, PlatformRow{
			Platform:    platformName(m.Platform),
			Spend:       p.Currency(campaign.Of(m.Counters.Spend)),
			Revenue:     p.Currency(campaign.Of(m.Counters.Revenue)),
			ROAS:        p.Ratio(m.Derived.ROAS),
			CTR:         p.Percent(m.Derived.CTR),
			CPC:         p.Currency(m.Derived.CPC),
			Conversions: p.Integer(campaign.Of(float64(m.Counters.Conversions))),
			Raw:         m,
		})
	}
	view.Insight = p.platformInsight(view.Rows)
	return view
}

func platformName(key string) string {
	switch key {
	case "instagram":
		return "Instagram"
	case "facebook":
		return "Facebook"
	case "audience_network":
		return "Audience Network"
	case "messenger":
		return "Messenger"
	}
	return key
}

func (p printer) attribution(a dataset.Attribution, s campaign.Snapshot) AttributionView {
	view := AttributionView{CampaignID: a.Campaign, Campaign: s.Name}
	for _, ps := range a.Periods {
		split := campaign.AttributionSplit(s, ps.SalesSharePercent, ps.SpendRatio)
		var span string
		if !ps.Start.IsZero() && !ps.End.IsZero() {
			span = ps.Start.Format(periodLayout) + " – " + ps.End.Format(periodLayout)
		}
		view.Periods = append(view.Periods, PeriodView{
			Label:      ps.Label,
			Period:     span,
			SalesShare: p.Percent(campaign.Of(split.SalesSharePercent)),
			Revenue:    p.Currency(campaign.Of(split.Revenue)),
			Spend:      p.Currency(campaign.Of(split.Spend)),
			ROAS:       p.Ratio(split.ROAS),
			Raw:        split,
		})
	}
	return view
}

func (p printer) pixel(id string, s campaign.Snapshot) PixelView {
	attr := campaign.Pixel(s)
	return PixelView{
		CampaignID:        id,
		Campaign:          s.Name,
		LastClickRevenue:  p.Currency(campaign.Of(attr.LastClickRevenue)),
		PixelRevenue:      p.Currency(attr.PixelRevenue),
		AdditionalRevenue: p.Currency(attr.AdditionalRevenue),
		LastClickROAS:     p.Ratio(attr.LastClickROAS),
		PixelROAS:         p.Ratio(attr.PixelROAS),
		LastClickShare:    p.Percent(attr.LastClickShare),
		AdditionalShare:   p.Percent(attr.AdditionalShare),
		Insight:           p.pixelInsight(attr),
		Raw:               attr,
	}
}
