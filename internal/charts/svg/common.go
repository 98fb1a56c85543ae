package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// frame is the plotting area shared by the cartesian charts.
type frame struct {
	width, height int
	padding       float64
	chartWidth    float64
	chartHeight   float64
	minVal        float64
	maxVal        float64
}

func newFrame(width, height int, padding float64, series []float64, fixed *Range) (frame, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if padding <= 0 {
		padding = DefaultPadding
	}
	f := frame{
		width:       width,
		height:      height,
		padding:     padding,
		chartWidth:  float64(width) - 2*padding,
		chartHeight: float64(height) - 2*padding,
	}
	if f.chartWidth <= 0 || f.chartHeight <= 0 {
		return frame{}, fmt.Errorf("svg: viewport too small")
	}
	switch {
	case fixed != nil:
		f.minVal, f.maxVal = fixed.Min, fixed.Max
	case len(series) > 0:
		f.minVal, f.maxVal = bounds(series)
		if f.minVal > 0 {
			f.minVal = 0
		}
		if f.maxVal < 0 {
			f.maxVal = 0
		}
	}
	if f.maxVal < f.minVal {
		f.minVal, f.maxVal = f.maxVal, f.minVal
	}
	if almostEqual(f.maxVal, f.minVal) {
		f.maxVal = f.minVal + 1
	}
	return f, nil
}

func (f frame) bottom() float64 { return f.padding + f.chartHeight }

// y maps a value onto the canvas, clamped to the axis range.
func (f frame) y(value float64) float64 {
	if value < f.minVal {
		value = f.minVal
	}
	if value > f.maxVal {
		value = f.maxVal
	}
	scale := f.chartHeight / (f.maxVal - f.minVal)
	return f.bottom() - (value-f.minVal)*scale
}

func writeOpen(b *strings.Builder, width, height int, title, desc, kind string) {
	titleID := makeID(title, kind+"-title")
	descID := makeID(title, kind+"-desc")
	b.WriteString(fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\" aria-labelledby=\"%s %s\">", width, height, titleID, descID))
	b.WriteString(fmt.Sprintf("<title id=\"%s\">%s</title>", titleID, template.HTMLEscapeString(title)))
	b.WriteString(fmt.Sprintf("<desc id=\"%s\">%s</desc>", descID, template.HTMLEscapeString(desc)))
}

func writeGrid(b *strings.Builder, f frame, ticks int, axisColor, gridColor string) {
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	for i := 0; i <= ticks; i++ {
		ratio := float64(i) / float64(ticks)
		value := f.minVal + (f.maxVal-f.minVal)*ratio
		y := f.bottom() - ratio*f.chartHeight
		b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\" aria-hidden=\"true\"></line>", f.padding, y, f.padding+f.chartWidth, y, gridColor))
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>", f.padding-6, y+4, axisColor, template.HTMLEscapeString(formatTick(value))))
	}
	b.WriteString(fmt.Sprintf("<g stroke=\"%s\" aria-label=\"Axes\">", axisColor))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", f.padding, f.padding, f.padding, f.bottom()))
	b.WriteString(fmt.Sprintf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", f.padding, f.bottom(), f.padding+f.chartWidth, f.bottom()))
	b.WriteString("</g>")
}

func writeGradient(b *strings.Builder, id string, g *Gradient) {
	x2, y2 := "0", "1"
	if g.Horizontal {
		x2, y2 = "1", "0"
	}
	b.WriteString(fmt.Sprintf("<defs><linearGradient id=\"%s\" x1=\"0\" y1=\"0\" x2=\"%s\" y2=\"%s\">", id, x2, y2))
	for _, stop := range g.Stops {
		b.WriteString(fmt.Sprintf("<stop offset=\"%.2f\" stop-color=\"%s\"></stop>", stop.Offset, template.HTMLEscapeString(stop.Color)))
	}
	b.WriteString("</linearGradient></defs>")
}

// openAnimated starts a group that fades in over the configured animation.
func openAnimated(b *strings.Builder, a Animation, cx, cy float64) {
	if a.Duration <= 0 {
		b.WriteString("<g>")
		return
	}
	b.WriteString("<g opacity=\"0\">")
	b.WriteString(fmt.Sprintf("<animate attributeName=\"opacity\" from=\"0\" to=\"1\" dur=\"%.3fs\" begin=\"%.3fs\" fill=\"freeze\"></animate>", a.Duration.Seconds(), a.Delay.Seconds()))
	if a.Rotate {
		b.WriteString(fmt.Sprintf("<animateTransform attributeName=\"transform\" type=\"rotate\" from=\"-90 %.2f %.2f\" to=\"0 %.2f %.2f\" dur=\"%.3fs\" begin=\"%.3fs\" fill=\"freeze\"></animateTransform>", cx, cy, cx, cy, a.Duration.Seconds(), a.Delay.Seconds()))
	}
}

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func bounds(series []float64) (float64, float64) {
	minVal := series[0]
	maxVal := series[0]
	for _, v := range series[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return fmt.Sprintf("%s-%s", cleaned, suffix)
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	default:
		if almostEqual(v, math.Round(v)) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.1f", v)
	}
}
