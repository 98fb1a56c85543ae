package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Bars renders a single-series SVG bar chart. An empty series draws the axes only.
func Bars(width, height int, series []float64, labels []string, opts BarOpts) (template.HTML, error) {
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: series length must match labels")
	}
	f, err := newFrame(width, height, opts.Padding, series, opts.Range)
	if err != nil {
		return "", err
	}
	axisColor := fallback(opts.AxisColor, "#9CA3AF")
	gridColor := fallback(opts.GridColor, "rgba(0,0,0,0.05)")
	title := fallback(opts.Title, "Bar chart")
	label := fallback(opts.Label, "Series")

	var b strings.Builder
	writeOpen(&b, f.width, f.height, title, fallback(opts.Description, "Bar comparison"), "bar")

	fill := fallback(opts.Color, "#1e3a6e")
	if opts.Gradient != nil {
		gradientID := makeID(title, "bar-fill")
		writeGradient(&b, gradientID, opts.Gradient)
		fill = fmt.Sprintf("url(#%s)", gradientID)
	}

	writeGrid(&b, f, opts.TickCount, axisColor, gridColor)

	stroke := ""
	if opts.BorderColor != "" && opts.BorderWidth > 0 {
		stroke = fmt.Sprintf(" stroke=\"%s\" stroke-width=\"%.1f\"", opts.BorderColor, opts.BorderWidth)
	}

	groupWidth := 0.0
	if len(series) > 0 {
		groupWidth = f.chartWidth / float64(len(series))
	}
	barWidth := groupWidth * 0.7

	openAnimated(&b, opts.Animation, 0, 0)
	for i, value := range series {
		x := f.padding + float64(i)*groupWidth + (groupWidth-barWidth)/2
		y := f.y(value)
		h := f.bottom() - y
		if h < 0 {
			h = 0
		}
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" rx=\"%.1f\" fill=\"%s\"%s aria-label=\"%s %s\"></rect>",
			x, y, barWidth, h, opts.Radius, fill, stroke, template.HTMLEscapeString(label), template.HTMLEscapeString(labels[i])))
	}
	b.WriteString("</g>")

	for i, l := range labels {
		center := f.padding + float64(i)*groupWidth + groupWidth/2
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", center, f.bottom()+14, axisColor, template.HTMLEscapeString(l)))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
