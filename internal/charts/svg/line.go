package svg

import (
	"fmt"
	"html/template"
	"strings"
)

type point struct{ x, y float64 }

// Line renders an SVG line chart. An empty series draws the axes only.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
	}
	f, err := newFrame(width, height, opts.Padding, series, opts.Range)
	if err != nil {
		return "", err
	}
	strokeColor := fallback(opts.StrokeColor, "#2563eb")
	axisColor := fallback(opts.AxisColor, "#9CA3AF")
	gridColor := fallback(opts.GridColor, "rgba(0,0,0,0.05)")
	strokeWidth := opts.StrokeWidth
	if strokeWidth <= 0 {
		strokeWidth = 2
	}
	title := fallback(opts.Title, "Line chart")

	points := make([]point, 0, len(series))
	step := 0.0
	if len(series) > 1 {
		step = f.chartWidth / float64(len(series)-1)
	}
	for i, value := range series {
		x := f.padding + f.chartWidth/2
		if len(series) > 1 {
			x = f.padding + float64(i)*step
		}
		points = append(points, point{x: x, y: f.y(value)})
	}

	var b strings.Builder
	writeOpen(&b, f.width, f.height, title, fallback(opts.Description, "Trend data"), "line")

	fill := opts.FillColor
	if opts.Gradient != nil {
		gradientID := makeID(title, "line-fill")
		writeGradient(&b, gradientID, opts.Gradient)
		fill = fmt.Sprintf("url(#%s)", gradientID)
	}

	writeGrid(&b, f, opts.TickCount, axisColor, gridColor)

	openAnimated(&b, opts.Animation, 0, 0)
	if len(points) > 0 {
		path := linePath(points, opts.Tension)
		if fill != "" {
			area := fmt.Sprintf("%s L%.2f %.2f L%.2f %.2f Z", path, points[len(points)-1].x, f.bottom(), points[0].x, f.bottom())
			b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"%s\" stroke=\"none\" aria-hidden=\"true\"></path>", area, fill))
		}
		b.WriteString(fmt.Sprintf("<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.1f\" stroke-linejoin=\"round\" stroke-linecap=\"round\"></path>", path, strokeColor, strokeWidth))
		if opts.ShowDots {
			dotColor := fallback(opts.DotColor, strokeColor)
			for _, p := range points {
				b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"4\" fill=\"%s\" stroke=\"%s\" stroke-width=\"2\"></circle>", p.x, p.y, dotColor, strokeColor))
			}
		}
	}
	b.WriteString("</g>")

	for i, label := range labels {
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>", points[i].x, f.bottom()+14, axisColor, template.HTMLEscapeString(label)))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

// linePath builds a polyline, or a cubic spline when tension is positive.
func linePath(points []point, tension float64) string {
	var path strings.Builder
	path.WriteString(fmt.Sprintf("M%.2f %.2f", points[0].x, points[0].y))
	if tension <= 0 || len(points) < 3 {
		for _, p := range points[1:] {
			path.WriteString(fmt.Sprintf(" L%.2f %.2f", p.x, p.y))
		}
		return path.String()
	}
	k := tension / 2
	at := func(i int) point {
		if i < 0 {
			return points[0]
		}
		if i >= len(points) {
			return points[len(points)-1]
		}
		return points[i]
	}
	for i := 0; i < len(points)-1; i++ {
		p0, p1, p2, p3 := at(i-1), at(i), at(i+1), at(i+2)
		c1 := point{x: p1.x + (p2.x-p0.x)*k, y: p1.y + (p2.y-p0.y)*k}
		c2 := point{x: p2.x - (p3.x-p1.x)*k, y: p2.y - (p3.y-p1.y)*k}
		path.WriteString(fmt.Sprintf(" C%.2f %.2f %.2f %.2f %.2f %.2f", c1.x, c1.y, c2.x, c2.y, p2.x, p2.y))
	}
	return path.String()
}
