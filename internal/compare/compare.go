// Package compare pairs the metrics of two campaigns row by row.
package compare

import "github.com/odyssey-erp/campaign-insights/internal/campaign"

// Kind tells the presentation layer how to render a row.
type Kind string

const (
	KindCurrency Kind = "currency"
	KindCount    Kind = "count"
	KindRatio    Kind = "ratio"
	KindPercent  Kind = "percent"
)

// LabelledMetric is one metric measured on both campaigns.
type LabelledMetric struct {
	Label string
	Kind  Kind
	A     campaign.Value
	B     campaign.Value
}

// Row is a paired metric with its delta.
type Row struct {
	Label string         `json:"label"`
	Kind  Kind           `json:"kind"`
	A     campaign.Value `json:"a"`
	B     campaign.Value `json:"b"`
	Delta Delta          `json:"delta"`
}

// Delta describes how B differs from A.
type Delta struct {
	Absolute         campaign.Value `json:"absolute"`
	RelativeMultiple campaign.Value `json:"relative_multiple"`
}

// Compare builds one row per metric, preserving input order.
func Compare(metrics []LabelledMetric) []Row {
	rows := make([]Row, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, Row{
			Label: m.Label,
			Kind:  m.Kind,
			A:     m.A,
			B:     m.B,
			Delta: DeltaOf(m.A, m.B),
		})
	}
	return rows
}

// DeltaOf returns b-a and b/a. Both are unavailable when either side is;
// the multiple is also unavailable when a is zero.
func DeltaOf(a, b campaign.Value) Delta {
	av, aok := a.Get()
	bv, bok := b.Get()
	if !aok || !bok {
		return Delta{}
	}
	return Delta{
		Absolute:         campaign.Of(bv - av),
		RelativeMultiple: campaign.Ratio(bv, av),
	}
}

// Leader returns the larger side's multiple over the smaller side and
// whether B leads. The multiple is unavailable when either value is
// unavailable or the smaller value is zero.
func Leader(a, b campaign.Value) (multiple campaign.Value, bLeads bool) {
	av, aok := a.Get()
	bv, bok := b.Get()
	if !aok || !bok {
		return campaign.Unavailable(), false
	}
	if bv >= av {
		return campaign.Ratio(bv, av), true
	}
	return campaign.Ratio(av, bv), false
}
