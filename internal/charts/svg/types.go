package svg

import "time"

// Range fixes the value axis.
type Range struct {
	Min float64
	Max float64
}

// Stop is one gradient stop.
type Stop struct {
	Offset float64
	Color  string
}

// Gradient is a linear fill. Vertical runs top to bottom, horizontal left to right.
type Gradient struct {
	Horizontal bool
	Stops      []Stop
}

// Animation is the entrance animation of a chart.
type Animation struct {
	Duration time.Duration
	Delay    time.Duration
	Rotate   bool
}

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	StrokeWidth float64
	FillColor   string
	Gradient    *Gradient
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	DotColor    string
	TickCount   int
	Range       *Range
	Tension     float64
	Animation   Animation
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	Label       string
	Color       string
	Gradient    *Gradient
	BorderColor string
	BorderWidth float64
	Radius      float64
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	Range       *Range
	Animation   Animation
}

// DoughnutOpts customises the doughnut renderer.
type DoughnutOpts struct {
	Title       string
	Description string
	// Cutout is the inner radius as a fraction of the outer radius.
	Cutout     float64
	TextColor  string
	TrackColor string
	Legend     bool
	Unit       string
	Animation  Animation
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 240
	DefaultPadding = 24.0
	DefaultTicks   = 4
	DefaultCutout  = 0.7
)
