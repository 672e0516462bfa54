package dashboard

import (
	"github.com/odyssey-erp/campaign-insights/internal/campaign"
	"github.com/odyssey-erp/campaign-insights/internal/compare"
)

// similarDuration is the longest/shortest ratio below which two campaigns
// count as running equally long.
const similarDuration = 1.1

// leader orders a pair by a metric. ok is false when the multiple is
// unavailable or the sides are equal.
func leader(a, b campaign.Value, nameA, nameB string) (big, small string, bigV, smallV campaign.Value, multiple campaign.Value, ok bool) {
	m, bLeads := compare.Leader(a, b)
	x, available := m.Get()
	if !available || x <= 1 {
		return "", "", campaign.Value{}, campaign.Value{}, campaign.Value{}, false
	}
	if bLeads {
		return nameB, nameA, b, a, m, true
	}
	return nameA, nameB, a, b, m, true
}

func (p printer) comparisonInsights(pr pair) []string {
	nameA, nameB := pr.a.Name, pr.b.Name
	var out []string

	if big, small, bv, sv, m, ok := leader(campaign.Of(pr.a.Spend), campaign.Of(pr.b.Spend), nameA, nameB); ok {
		out = append(out, p.T(msgSpentMore, big, p.Ratio(m), small, p.WholeCurrency(bv), p.WholeCurrency(sv)))
	}
	if big, small, bv, sv, m, ok := leader(campaign.Of(pr.a.Revenue), campaign.Of(pr.b.Revenue), nameA, nameB); ok {
		out = append(out, p.T(msgEarnedMore, big, p.Ratio(m), small, p.WholeCurrency(bv), p.WholeCurrency(sv)))
	}
	if big, _, bv, sv, _, ok := leader(pr.da.ROAS, pr.db.ROAS, nameA, nameB); ok {
		out = append(out, p.T(msgBetterROAS, big, p.Ratio(bv), p.Ratio(sv)))
	}

	da, db := days(pr.a), days(pr.b)
	if m, bLeads := compare.Leader(da, db); m.Available() {
		longName, longV, shortV := nameA, da, db
		if bLeads {
			longName, longV, shortV = nameB, db, da
		}
		if m.Or(0) >= similarDuration {
			out = append(out, p.T(msgRanLonger, longName, p.Ratio(m), p.Integer(longV), p.Integer(shortV)))
		} else {
			out = append(out, p.T(msgSimilarLength, p.Integer(da), p.Integer(db)))
		}
	}

	if big, _, bv, sv, m, ok := leader(pr.dailyA.spend, pr.dailyB.spend, nameA, nameB); ok {
		out = append(out, p.T(msgDailySpendMore, big, p.Ratio(m), p.WholeCurrency(bv), p.WholeCurrency(sv)))
	}
	if big, _, bv, sv, _, ok := leader(pr.da.CTR, pr.db.CTR, nameA, nameB); ok {
		out = append(out, p.T(msgBetterCTR, big, p.Percent(bv), p.Percent(sv)))
	}
	return out
}

func (p printer) platformInsight(rows []PlatformRow) string {
	if len(rows) < 2 {
		return ""
	}
	top := rows[0]
	for _, r := range rows[1:] {
		if r.Raw.Counters.Revenue > top.Raw.Counters.Revenue {
			top = r
		}
	}
	return p.T(msgTopPlatform, top.Platform, p.WholeCurrency(campaign.Of(top.Raw.Counters.Revenue)), p.Ratio(top.Raw.Derived.ROAS))
}

func (p printer) pixelInsight(attr campaign.PixelAttribution) string {
	multiple := campaign.Unavailable()
	if pixel, ok := attr.PixelRevenue.Get(); ok {
		multiple = campaign.Ratio(pixel, attr.LastClickRevenue)
	}
	if !multiple.Available() {
		return ""
	}
	return p.T(msgPixelMultiple, p.Ratio(multiple), p.WholeCurrency(attr.PixelRevenue), p.WholeCurrency(campaign.Of(attr.LastClickRevenue)))
}
