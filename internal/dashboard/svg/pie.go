package svg

import (
	"fmt"
	"html/template"
	"math"
)

// Pie renders slices proportionally around a circle with a legend.
// Non-positive slices are skipped.
func Pie(width, height int, slices []Slice, opts PieOpts) (template.HTML, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	total := 0.0
	for _, s := range slices {
		if s.Value > 0 {
			total += s.Value
		}
	}
	if total <= 0 {
		return "", fmt.Errorf("svg: pie needs a positive total")
	}
	legend := opts.Legend
	if legend == nil {
		legend = func(s Slice) string { return s.Label }
	}
	textColor := fallback(opts.TextColor, ColorAxis)

	radius := math.Min(float64(height)/2-DefaultPadding/2, float64(width)/4)
	if radius <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	cx := radius + DefaultPadding/2
	cy := float64(height) / 2

	c := newCanvas(width, height, fallback(opts.Title, "Pie chart"), fallback(opts.Description, "Share of total"), "pie")
	angle := -math.Pi / 2
	row := 0
	for _, s := range slices {
		if s.Value <= 0 {
			continue
		}
		share := s.Value / total
		color := fallback(s.Color, ColorCampaignA)
		if almostEqual(share, 1) {
			c.raw(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s"></circle>`, cx, cy, radius, color))
		} else {
			end := angle + share*2*math.Pi
			large := 0
			if share > 0.5 {
				large = 1
			}
			c.raw(fmt.Sprintf(`<path d="M%.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f Z" fill="%s" aria-label="%s"></path>`,
				cx, cy,
				cx+radius*math.Cos(angle), cy+radius*math.Sin(angle),
				radius, radius, large,
				cx+radius*math.Cos(end), cy+radius*math.Sin(end),
				color, esc(s.Label)))
			angle = end
		}
		ly := DefaultPadding + float64(row)*18
		c.rect(cx+radius+24, ly-9, 10, 10, color, "")
		c.text(cx+radius+38, ly, textColor, "start", legend(s))
		row++
	}
	return c.html(), nil
}
