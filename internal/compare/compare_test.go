package compare

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/campaign-insights/internal/campaign"
)

func TestComparePreservesOrder(t *testing.T) {
	rows := Compare([]LabelledMetric{
		{Label: "Spend", Kind: KindCurrency, A: campaign.Of(4880.38), B: campaign.Of(12813.95)},
		{Label: "CTR", Kind: KindPercent, A: campaign.Of(1.38), B: campaign.Of(1.40)},
		{Label: "Impressions", Kind: KindCount, A: campaign.Of(1491743), B: campaign.Of(2496505)},
	})
	require.Len(t, rows, 3)
	require.Equal(t, "Spend", rows[0].Label)
	require.Equal(t, "CTR", rows[1].Label)
	require.Equal(t, "Impressions", rows[2].Label)
	require.Equal(t, KindCount, rows[2].Kind)

	multiple, ok := rows[0].Delta.RelativeMultiple.Get()
	require.True(t, ok)
	require.InDelta(t, 2.6256, multiple, 0.0001)
}

func TestCompareEmpty(t *testing.T) {
	require.Empty(t, Compare(nil))
}

func TestDeltaOf(t *testing.T) {
	d := DeltaOf(campaign.Of(17), campaign.Of(19))
	abs, ok := d.Absolute.Get()
	require.True(t, ok)
	require.Equal(t, 2.0, abs)
	rel, ok := d.RelativeMultiple.Get()
	require.True(t, ok)
	require.InDelta(t, 1.1176, rel, 0.0001)

	zero := DeltaOf(campaign.Of(0), campaign.Of(5))
	require.False(t, zero.RelativeMultiple.Available())
	abs, ok = zero.Absolute.Get()
	require.True(t, ok)
	require.Equal(t, 5.0, abs)

	missing := DeltaOf(campaign.Unavailable(), campaign.Of(5))
	require.False(t, missing.Absolute.Available())
	require.False(t, missing.RelativeMultiple.Available())
}

func TestLeader(t *testing.T) {
	m, bLeads := Leader(campaign.Of(4880.38), campaign.Of(12813.95))
	require.True(t, bLeads)
	require.InDelta(t, 2.63, m.Or(0), 0.01)

	m, bLeads = Leader(campaign.Of(54), campaign.Of(19))
	require.False(t, bLeads)
	require.InDelta(t, 2.84, m.Or(0), 0.01)

	m, _ = Leader(campaign.Of(0), campaign.Of(0))
	require.False(t, m.Available())
}
