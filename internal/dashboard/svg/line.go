package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders a single series as a polyline across labelled points.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("svg: series required")
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
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
	stroke := fallback(opts.StrokeColor, ColorROAS)

	minVal, maxVal := bounds(series)
	p, err := newPlot(width, height, padding, minVal, maxVal)
	if err != nil {
		return "", err
	}

	c := newCanvas(width, height, fallback(opts.Title, "Line chart"), fallback(opts.Description, "Series trend"), "line")
	p.grid(c, ticks, axis, fallback(opts.GridColor, ColorGrid), tickFn)

	x := func(i int) float64 {
		if len(series) == 1 {
			return p.left + p.width/2
		}
		return p.left + float64(i)*p.width/float64(len(series)-1)
	}

	var d strings.Builder
	for i, v := range series {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&d, "%s%.2f %.2f ", cmd, x(i), p.y(v))
	}
	c.raw(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="3" stroke-linejoin="round"></path>`, strings.TrimSpace(d.String()), stroke))
	for i, v := range series {
		if opts.ShowDots {
			c.raw(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="5" fill="%s"></circle>`, x(i), p.y(v), stroke))
		}
		c.text(x(i), p.bottom()+14, axis, "middle", labels[i])
	}
	return c.html(), nil
}
