package svg

import (
	"fmt"
	"html/template"
	"math"
)

// Bars renders a grouped bar chart comparing two series per label.
func Bars(width, height int, seriesA, seriesB []float64, labels []string, opts BarOpts) (template.HTML, error) {
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	if len(seriesA) != len(labels) || len(seriesB) != len(labels) {
		return "", fmt.Errorf("svg: series length must match labels")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	ticks := opts.TickCount
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	tickFn := opts.Ticks
	if tickFn == nil {
		tickFn = formatTick
	}
	axis := fallback(opts.AxisColor, ColorAxis)
	colors := [2]string{fallback(opts.ColorA, ColorCampaignA), fallback(opts.ColorB, ColorCampaignB)}
	names := [2]string{fallback(opts.SeriesALabel, "A"), fallback(opts.SeriesBLabel, "B")}

	minVal, maxVal := bounds(seriesA, seriesB)
	p, err := newPlot(width, height, padding, minVal, maxVal)
	if err != nil {
		return "", err
	}

	c := newCanvas(width, height, fallback(opts.Title, "Bar chart"), fallback(opts.Description, "Grouped bar comparison"), "bar")
	p.grid(c, ticks, axis, fallback(opts.GridColor, ColorGrid), tickFn)

	group := p.width / float64(len(labels))
	bar := group / 3
	zero := p.y(0)
	for i, label := range labels {
		x := p.left + float64(i)*group + bar*0.4
		for s, v := range [2]float64{seriesA[i], seriesB[i]} {
			top := math.Min(p.y(v), zero)
			c.rect(x+float64(s)*(bar+bar*0.2), top, bar, math.Abs(p.y(v)-zero), colors[s], names[s]+" "+label)
		}
		c.text(p.left+float64(i)*group+group/2, p.bottom()+14, axis, "middle", label)
	}

	legendX := p.left
	for s := range names {
		c.rect(legendX, 6, 10, 10, colors[s], "")
		c.text(legendX+14, 15, axis, "start", names[s])
		legendX += 14 + float64(len(names[s]))*6 + 16
	}
	return c.html(), nil
}
