package charts

import (
	"fmt"
	"html/template"
	"sync"

	"github.com/odyssey-erp/attendance-dashboard/internal/attendance"
	"github.com/odyssey-erp/attendance-dashboard/internal/charts/svg"
)

// Canvas is a drawing surface for one chart.
type Canvas interface {
	Draw(cfg Config) error
}

// Render draws cfg on canvas. A nil canvas is skipped silently.
func Render(canvas Canvas, cfg Config) error {
	if canvas == nil {
		return nil
	}
	return canvas.Draw(cfg)
}

// RenderTrend draws the monthly trend on canvas.
func RenderTrend(canvas Canvas, points []attendance.TrendPoint) error {
	return Render(canvas, Trend(points))
}

// RenderRatio draws the status ratio on canvas.
func RenderRatio(canvas Canvas, entries []attendance.StatusRatio) error {
	return Render(canvas, Ratio(entries))
}

// RenderDistribution draws the class distribution on canvas.
func RenderDistribution(canvas Canvas, entries []attendance.ClassDistribution) error {
	return Render(canvas, Distribution(entries))
}

// SVGCanvas draws charts as inline SVG.
type SVGCanvas struct {
	ID     string
	Width  int
	Height int

	mu    sync.RWMutex
	html  template.HTML
	drawn bool
}

// NewSVGCanvas returns a canvas of the given size; non-positive sizes use the
// svg package defaults.
func NewSVGCanvas(id string, width, height int) *SVGCanvas {
	return &SVGCanvas{ID: id, Width: width, Height: height}
}

// Draw implements Canvas.
func (c *SVGCanvas) Draw(cfg Config) error {
	var dataset Dataset
	if len(cfg.Datasets) > 0 {
		dataset = cfg.Datasets[0]
	}
	values := dataset.Data
	if values == nil {
		values = []float64{}
	}
	labels := cfg.Labels
	if labels == nil {
		labels = []string{}
	}
	anim := svg.Animation{
		Duration: cfg.Animation.Duration,
		Delay:    cfg.Animation.Delay,
		Rotate:   cfg.Animation.AnimateRotate,
	}

	var (
		out template.HTML
		err error
	)
	switch cfg.Type {
	case TypeLine:
		out, err = svg.Line(c.Width, c.Height, values, labels, svg.LineOpts{
			Title:       cfg.Title,
			Description: dataset.Label,
			StrokeColor: dataset.BorderColor,
			StrokeWidth: dataset.BorderWidth,
			Gradient:    toSVGGradient(dataset.Gradient, dataset.Fill),
			ShowDots:    dataset.PointRadius > 0,
			DotColor:    dataset.PointColor,
			Range:       toSVGRange(cfg.YAxis),
			Tension:     dataset.Tension,
			Animation:   anim,
		})
	case TypeDoughnut:
		out, err = svg.Doughnut(c.Width, c.Height, values, labels, dataset.BackgroundColors, svg.DoughnutOpts{
			Title:     cfg.Title,
			Cutout:    cfg.Cutout,
			Legend:    cfg.Legend.Display,
			Unit:      cfg.Unit,
			Animation: anim,
		})
	case TypeBar:
		out, err = svg.Bars(c.Width, c.Height, values, labels, svg.BarOpts{
			Title:       cfg.Title,
			Label:       dataset.Label,
			Gradient:    toSVGGradient(dataset.Gradient, true),
			BorderColor: dataset.BorderColor,
			BorderWidth: dataset.BorderWidth,
			Radius:      dataset.BorderRadius,
			Range:       toSVGRange(cfg.YAxis),
			Animation:   anim,
		})
	default:
		return fmt.Errorf("charts: unsupported chart type %q", cfg.Type)
	}
	if err != nil {
		return fmt.Errorf("charts: draw %s: %w", cfg.Type, err)
	}

	c.mu.Lock()
	c.html = out
	c.drawn = true
	c.mu.Unlock()
	return nil
}

// HTML returns the last drawn chart.
func (c *SVGCanvas) HTML() template.HTML {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.html
}

// Drawn reports whether a chart has been drawn.
func (c *SVGCanvas) Drawn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.drawn
}

func toSVGGradient(g *Gradient, fill bool) *svg.Gradient {
	if g == nil || !fill {
		return nil
	}
	stops := make([]svg.Stop, 0, len(g.Stops))
	for _, s := range g.Stops {
		stops = append(stops, svg.Stop{Offset: s.Offset, Color: s.Color})
	}
	return &svg.Gradient{Horizontal: g.Direction == Horizontal, Stops: stops}
}

func toSVGRange(a *Axis) *svg.Range {
	if a == nil {
		return nil
	}
	return &svg.Range{Min: a.Min, Max: a.Max}
}
