package svg

// TickFunc renders an axis tick value.
type TickFunc func(float64) string

// BarOpts customises the grouped bar renderer.
type BarOpts struct {
	Title        string
	Description  string
	SeriesALabel string
	SeriesBLabel string
	ColorA       string
	ColorB       string
	AxisColor    string
	GridColor    string
	Padding      float64
	TickCount    int
	Ticks        TickFunc
}

// LineOpts customises the line renderer.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	Ticks       TickFunc
	ShowDots    bool
}

// Slice is one pie segment.
type Slice struct {
	Label string
	Value float64
	Color string
}

// PieOpts customises the pie renderer.
type PieOpts struct {
	Title       string
	Description string
	TextColor   string
	// Legend renders the text next to a slice swatch; defaults to the label.
	Legend func(Slice) string
}

// Chart defaults.
const (
	DefaultWidth   = 720
	DefaultHeight  = 260
	DefaultPadding = 32.0
	DefaultTicks   = 5
)

// Palette used across the campaign dashboard.
const (
	ColorCampaignA = "#0088FE"
	ColorCampaignB = "#00C49F"
	ColorSpend     = "#8884d8"
	ColorRevenue   = "#82ca9d"
	ColorROAS      = "#ff7300"
	ColorAxis      = "#475569"
	ColorGrid      = "#cbd5e1"
)
