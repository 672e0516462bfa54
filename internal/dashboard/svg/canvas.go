package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// canvas accumulates SVG markup for a fixed viewport.
type canvas struct {
	b             strings.Builder
	width, height int
}

func newCanvas(width, height int, title, desc, idBase string) *canvas {
	c := &canvas{width: width, height: height}
	titleID := makeID(title, idBase+"-title")
	descID := makeID(title, idBase+"-desc")
	fmt.Fprintf(&c.b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, width, height, titleID, descID)
	fmt.Fprintf(&c.b, `<title id="%s">%s</title>`, titleID, esc(title))
	fmt.Fprintf(&c.b, `<desc id="%s">%s</desc>`, descID, esc(desc))
	return c
}

func (c *canvas) line(x1, y1, x2, y2 float64, stroke string, width float64, dashed bool) {
	dash := ""
	if dashed {
		dash = ` stroke-dasharray="3,3" aria-hidden="true"`
	}
	fmt.Fprintf(&c.b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.1f"%s></line>`, x1, y1, x2, y2, stroke, width, dash)
}

func (c *canvas) rect(x, y, w, h float64, fill, label string) {
	fmt.Fprintf(&c.b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"`, x, y, w, h, fill)
	if label != "" {
		fmt.Fprintf(&c.b, ` aria-label="%s"`, esc(label))
	}
	c.b.WriteString("></rect>")
}

func (c *canvas) text(x, y float64, fill, anchor, body string) {
	fmt.Fprintf(&c.b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="%s">%s</text>`, x, y, fill, anchor, esc(body))
}

func (c *canvas) raw(s string) {
	c.b.WriteString(s)
}

func (c *canvas) html() template.HTML {
	c.b.WriteString("</svg>")
	return template.HTML(c.b.String())
}

// plot is the drawable area inside the padding.
type plot struct {
	left, top, width, height float64
	min, max                 float64
}

func newPlot(width, height int, padding, minVal, maxVal float64) (plot, error) {
	p := plot{
		left:   padding,
		top:    padding,
		width:  float64(width) - 2*padding,
		height: float64(height) - 2*padding,
	}
	if p.width <= 0 || p.height <= 0 {
		return plot{}, fmt.Errorf("svg: viewport too small")
	}
	p.min = math.Min(minVal, 0)
	p.max = math.Max(maxVal, 0)
	if almostEqual(p.max, p.min) {
		p.max = p.min + 1
	}
	return p, nil
}

func (p plot) bottom() float64 { return p.top + p.height }

func (p plot) y(v float64) float64 {
	return p.bottom() - (v-p.min)/(p.max-p.min)*p.height
}

func (p plot) grid(c *canvas, ticks int, axis, grid string, format TickFunc) {
	for i := 0; i <= ticks; i++ {
		ratio := float64(i) / float64(ticks)
		v := p.min + (p.max-p.min)*ratio
		y := p.y(v)
		c.line(p.left, y, p.left+p.width, y, grid, 0.5, true)
		c.text(p.left-6, y+4, axis, "end", format(v))
	}
	c.raw(fmt.Sprintf(`<g stroke="%s">`, axis))
	c.line(p.left, p.top, p.left, p.bottom(), axis, 1, false)
	c.line(p.left, p.y(0), p.left+p.width, p.y(0), axis, 1, false)
	c.raw("</g>")
}

func esc(s string) string {
	return template.HTMLEscapeString(s)
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func bounds(series ...[]float64) (float64, float64) {
	first := true
	var minVal, maxVal float64
	for _, s := range series {
		for _, v := range s {
			if first {
				minVal, maxVal = v, v
				first = false
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

// formatTick is the tick renderer used when the caller supplies none.
func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	case almostEqual(v, math.Round(v)):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
