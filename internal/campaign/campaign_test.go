package campaign

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func edgePreCro(t *testing.T) Snapshot {
	t.Helper()
	s, err := NewSnapshot(Snapshot{
		Name:        "EDGE (Pre-Cro Tour)",
		PeriodStart: time.Date(2024, 11, 7, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 11, 23, 0, 0, 0, 0, time.UTC),
		Counters: Counters{
			Spend:       4880.38,
			Impressions: 1491743,
			Clicks:      20623,
			Conversions: 86,
			Revenue:     11985.00,
		},
	})
	require.NoError(t, err)
	return s
}

func approx(t *testing.T, want float64, got Value, tol float64) {
	t.Helper()
	v, ok := got.Get()
	if !ok {
		t.Fatalf("expected %.4f, got unavailable", want)
	}
	if math.Abs(v-want) > tol {
		t.Fatalf("expected %.4f ± %.4f, got %.6f", want, tol, v)
	}
}

func TestDeriveEdgePreCroTour(t *testing.T) {
	m := Derive(edgePreCro(t))
	approx(t, 0.2366, m.CPC, 0.0001)
	approx(t, 1.3824, m.CTR, 0.0001)
	approx(t, 0.4170, m.ConversionRate, 0.0001)
	approx(t, 2.4558, m.ROAS, 0.0001)
}

func TestDeriveZeroDenominators(t *testing.T) {
	s, err := NewSnapshot(Snapshot{Counters: Counters{Spend: 120, Impressions: 5000, Clicks: 0, Revenue: 0}})
	require.NoError(t, err)
	m := Derive(s)
	require.False(t, m.CPC.Available())
	require.False(t, m.CTR.Available())
	require.False(t, m.ConversionRate.Available())
	approx(t, 0, m.ROAS, 0)

	s, err = NewSnapshot(Snapshot{Counters: Counters{Spend: 0, Impressions: 10, Clicks: 2, Revenue: 50}})
	require.NoError(t, err)
	m = Derive(s)
	require.False(t, m.ROAS.Available())
	approx(t, 0, m.CPC, 0)
	approx(t, 20, m.CTR, 1e-9)
}

func TestDeriveIsDeterministic(t *testing.T) {
	s := edgePreCro(t)
	require.Equal(t, Derive(s), Derive(s))
}

func TestNewSnapshotRejectsInvariantViolations(t *testing.T) {
	pixel := -1.0
	infPixel := math.Inf(1)
	cases := map[string]Snapshot{
		"clicks above impressions":   {Counters: Counters{Impressions: 50, Clicks: 100}},
		"conversions above clicks":   {Counters: Counters{Impressions: 50, Clicks: 5, Conversions: 6}},
		"negative spend":             {Counters: Counters{Spend: -0.01}},
		"negative revenue":           {Counters: Counters{Revenue: -3}},
		"negative impressions":       {Counters: Counters{Impressions: -1}},
		"negative pixel revenue":     {MetaPixelRevenue: &pixel},
		"infinite spend":             {Counters: Counters{Spend: math.Inf(1)}},
		"NaN spend":                  {Counters: Counters{Spend: math.NaN()}},
		"infinite revenue":           {Counters: Counters{Revenue: math.Inf(1)}},
		"infinite pixel revenue":     {MetaPixelRevenue: &infPixel},
		"NaN platform revenue":       {Platforms: map[string]Counters{"instagram": {Revenue: math.NaN()}}},
		"platform clicks overflow":   {Platforms: map[string]Counters{"facebook": {Impressions: 1, Clicks: 2}}},
		"period ends before it runs": {PeriodStart: time.Date(2025, 3, 21, 0, 0, 0, 0, time.UTC), PeriodEnd: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewSnapshot(input)
			if !errors.Is(err, ErrInvalidSnapshot) {
				t.Fatalf("expected ErrInvalidSnapshot, got %v", err)
			}
		})
	}
}

func TestNewSnapshotErrorNamesField(t *testing.T) {
	_, err := NewSnapshot(Snapshot{Counters: Counters{Impressions: 50, Clicks: 100}})
	require.ErrorIs(t, err, ErrInvalidSnapshot)
	require.Contains(t, err.Error(), "Clicks must not exceed Impressions")
}

func TestNewSnapshotNamesNonFiniteField(t *testing.T) {
	_, err := NewSnapshot(Snapshot{Counters: Counters{Spend: math.NaN()}})
	require.ErrorIs(t, err, ErrInvalidSnapshot)
	require.Contains(t, err.Error(), "Spend must be a finite number")
}

func TestAttributionSplitNonFiniteInputs(t *testing.T) {
	full := Snapshot{Counters: Counters{Spend: 100, Revenue: 300}}
	for _, args := range [][2]float64{{math.NaN(), 0.5}, {28, math.Inf(1)}} {
		got := AttributionSplit(full, args[0], args[1])
		require.Equal(t, PeriodAttribution{ROAS: Unavailable()}, got)
	}
	raw := Snapshot{Counters: Counters{Spend: math.Inf(1), Revenue: 300}}
	require.False(t, AttributionSplit(raw, 28, 0.5).ROAS.Available())
	require.True(t, math.IsNaN(ShareDeviation(50, math.Inf(1))))
}

func TestNewSnapshotCopiesMutableState(t *testing.T) {
	pixel := 81556.35
	platforms := map[string]Counters{"instagram": {Spend: 10, Impressions: 100, Clicks: 5}}
	s, err := NewSnapshot(Snapshot{Counters: Counters{Spend: 10}, MetaPixelRevenue: &pixel, Platforms: platforms})
	require.NoError(t, err)

	pixel = 1
	platforms["instagram"] = Counters{Spend: 999}
	platforms["tiktok"] = Counters{}

	got, ok := s.PixelRevenue()
	require.True(t, ok)
	require.Equal(t, 81556.35, got)
	ig, ok := s.Platform("instagram")
	require.True(t, ok)
	require.Equal(t, 10.0, ig.Spend)
	_, ok = s.Platform("tiktok")
	require.False(t, ok)
}

func TestSnapshotDaysInclusive(t *testing.T) {
	require.Equal(t, 17, edgePreCro(t).Days())
	s, err := NewSnapshot(Snapshot{
		PeriodStart: time.Date(2024, 11, 7, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, 54, s.Days())
	require.Equal(t, 0, Snapshot{}.Days())
}

func TestDailyAverage(t *testing.T) {
	daily, err := DailyAverage(edgePreCro(t), 17)
	require.NoError(t, err)
	require.InDelta(t, 287.08, daily.Spend, 0.01)
	require.InDelta(t, 705.00, daily.Revenue, 0.01)
	require.InDelta(t, 5.06, daily.Conversions, 0.01)
	require.InDelta(t, 1213.12, daily.Clicks, 0.01)
	require.Equal(t, 17, daily.Days)

	for _, days := range []int{0, -3} {
		_, err := DailyAverage(edgePreCro(t), days)
		require.ErrorIs(t, err, ErrInvalidDuration)
	}
}

func TestAttributionSplit(t *testing.T) {
	full, err := NewSnapshot(Snapshot{Counters: Counters{Spend: 15502.37, Impressions: 4738478, Clicks: 65509, Conversions: 272, Revenue: 42803.86}})
	require.NoError(t, err)

	pre := AttributionSplit(full, 28, 17.0/54.0)
	require.InDelta(t, 11985.08, pre.Revenue, 0.01)
	require.InDelta(t, 4880.38, pre.Spend, 0.01)
	approx(t, 2.4558, pre.ROAS, 0.001)

	tour := AttributionSplit(full, 72, 37.0/54.0)
	require.InDelta(t, 30818.78, tour.Revenue, 0.01)

	zero := AttributionSplit(full, 28, 0)
	require.False(t, zero.ROAS.Available())
}

func TestShareDeviation(t *testing.T) {
	require.Zero(t, ShareDeviation(28, 72))
	require.InDelta(t, -5, ShareDeviation(28, 67), 1e-9)
	require.Zero(t, ShareDeviation(33.3, 33.3, 33.4))
}

func TestPixelAttribution(t *testing.T) {
	pixel := 81556.35
	s, err := NewSnapshot(Snapshot{
		Counters:         Counters{Spend: 1948.41, Impressions: 442954, Clicks: 14141, Conversions: 56, Revenue: 8565.32},
		MetaPixelRevenue: &pixel,
	})
	require.NoError(t, err)

	p := Pixel(s)
	approx(t, 72991.03, p.AdditionalRevenue, 0.001)
	approx(t, 41.8580, p.PixelROAS, 0.001)
	approx(t, 10.5023, p.LastClickShare, 0.001)
	lc, _ := p.LastClickShare.Get()
	add, _ := p.AdditionalShare.Get()
	require.InDelta(t, 100, lc+add, 1e-9)

	withoutPixel := Pixel(edgePreCro(t))
	require.False(t, withoutPixel.PixelRevenue.Available())
	require.False(t, withoutPixel.PixelROAS.Available())
	approx(t, 2.4558, withoutPixel.LastClickROAS, 0.0001)
}

func TestDerivePlatformsOrdersBySpend(t *testing.T) {
	s, err := NewSnapshot(Snapshot{Platforms: map[string]Counters{
		"facebook":  {Spend: 1085.21, Impressions: 221512, Clicks: 9875, Conversions: 9, Revenue: 1381.65},
		"instagram": {Spend: 9514.73, Impressions: 2046079, Clicks: 47143, Conversions: 243, Revenue: 38283.70},
	}})
	require.NoError(t, err)
	got := DerivePlatforms(s)
	require.Len(t, got, 2)
	require.Equal(t, "instagram", got[0].Platform)
	approx(t, 4.0236, got[0].Derived.ROAS, 0.0001)
	approx(t, 1.2732, got[1].Derived.ROAS, 0.0001)
}

func TestValueJSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}{A: Of(2.5), B: Unavailable()})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":2.5,"b":null}`, string(raw))

	var back struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, Of(2.5), back.A)
	require.False(t, back.B.Available())
}

func TestValueNeverCarriesNaN(t *testing.T) {
	require.False(t, Of(math.NaN()).Available())
	require.False(t, Of(math.Inf(1)).Available())
	require.False(t, Ratio(1, 0).Available())
	require.Equal(t, 7.0, Unavailable().Or(7))
}
