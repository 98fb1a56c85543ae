package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

const legendRowHeight = 16.0

// Doughnut renders proportional ring segments with an optional legend below
// the ring. A zero total draws the empty track.
func Doughnut(width, height int, values []float64, labels, colors []string, opts DoughnutOpts) (template.HTML, error) {
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match values")
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	cutout := opts.Cutout
	if cutout <= 0 || cutout >= 1 {
		cutout = DefaultCutout
	}
	textColor := fallback(opts.TextColor, "#9CA3AF")
	trackColor := fallback(opts.TrackColor, "rgba(255,255,255,0.08)")
	title := fallback(opts.Title, "Doughnut chart")

	legendHeight := 0.0
	if opts.Legend && len(labels) > 0 {
		legendHeight = legendRowHeight + 8
	}
	cx := float64(width) / 2
	available := math.Min(float64(width), float64(height)-legendHeight)
	outer := available/2 - 4
	if outer <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	cy := outer + 4
	inner := outer * cutout

	total := 0.0
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}

	var b strings.Builder
	writeOpen(&b, width, height, title, fallback(opts.Description, "Share of total"), "doughnut")

	b.WriteString(fmt.Sprintf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.2f\" aria-hidden=\"true\"></circle>", cx, cy, (outer+inner)/2, trackColor, outer-inner))

	openAnimated(&b, opts.Animation, cx, cy)
	if total > 0 {
		start := -math.Pi / 2
		for i, v := range values {
			if v <= 0 {
				continue
			}
			sweep := v / total * 2 * math.Pi
			color := segmentColor(colors, i)
			label := template.HTMLEscapeString(labels[i])
			if sweep >= 2*math.Pi-1e-9 {
				// A single arc cannot close on itself, so the full ring is two halves.
				mid := start + math.Pi
				b.WriteString(arcPath(cx, cy, outer, inner, start, mid, color, label))
				b.WriteString(arcPath(cx, cy, outer, inner, mid, start+2*math.Pi, color, label))
			} else {
				b.WriteString(arcPath(cx, cy, outer, inner, start, start+sweep, color, label))
			}
			start += sweep
		}
	}
	b.WriteString("</g>")

	if legendHeight > 0 {
		writeLegend(&b, width, float64(height)-legendRowHeight/2, values, labels, colors, opts.Unit, textColor)
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func arcPath(cx, cy, outer, inner, from, to float64, color, label string) string {
	large := 0
	if to-from > math.Pi {
		large = 1
	}
	ox1, oy1 := cx+outer*math.Cos(from), cy+outer*math.Sin(from)
	ox2, oy2 := cx+outer*math.Cos(to), cy+outer*math.Sin(to)
	ix1, iy1 := cx+inner*math.Cos(to), cy+inner*math.Sin(to)
	ix2, iy2 := cx+inner*math.Cos(from), cy+inner*math.Sin(from)
	d := fmt.Sprintf("M%.2f %.2f A%.2f %.2f 0 %d 1 %.2f %.2f L%.2f %.2f A%.2f %.2f 0 %d 0 %.2f %.2f Z",
		ox1, oy1, outer, outer, large, ox2, oy2, ix1, iy1, inner, inner, large, ix2, iy2)
	return fmt.Sprintf("<path d=\"%s\" fill=\"%s\" aria-label=\"%s\"></path>", d, color, label)
}

func writeLegend(b *strings.Builder, width int, baseline float64, values []float64, labels, colors []string, unit, textColor string) {
	slot := float64(width) / float64(len(labels))
	for i, label := range labels {
		x := slot*float64(i) + slot/2 - 40
		b.WriteString(fmt.Sprintf("<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" rx=\"2\" fill=\"%s\"></rect>", x, baseline-9, segmentColor(colors, i)))
		text := fmt.Sprintf("%s %s%s", label, formatTick(values[i]), unit)
		b.WriteString(fmt.Sprintf("<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\">%s</text>", x+14, baseline, textColor, template.HTMLEscapeString(text)))
	}
}

func segmentColor(colors []string, i int) string {
	if i < len(colors) && strings.TrimSpace(colors[i]) != "" {
		return colors[i]
	}
	return "#A78BFA"
}
