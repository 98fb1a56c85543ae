// Package charts maps fetched attendance data onto chart configurations and
// draws them on a canvas.
package charts

import "time"

// Type names the visualization.
type Type string

const (
	TypeLine     Type = "line"
	TypeDoughnut Type = "doughnut"
	TypeBar      Type = "bar"
)

// Gradient directions.
const (
	Vertical   = "vertical"
	Horizontal = "horizontal"
)

// ColorStop is one stop of a gradient.
type ColorStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// Gradient is a linear fill.
type Gradient struct {
	Direction string      `json:"direction"`
	Stops     []ColorStop `json:"stops"`
}

// Dataset is one series of a chart.
type Dataset struct {
	Label            string    `json:"label,omitempty"`
	Data             []float64 `json:"data"`
	BackgroundColors []string  `json:"background_colors,omitempty"`
	Gradient         *Gradient `json:"gradient,omitempty"`
	BorderColor      string    `json:"border_color,omitempty"`
	BorderWidth      float64   `json:"border_width"`
	BorderRadius     float64   `json:"border_radius,omitempty"`
	Fill             bool      `json:"fill,omitempty"`
	Tension          float64   `json:"tension,omitempty"`
	PointRadius      float64   `json:"point_radius,omitempty"`
	PointColor       string    `json:"point_color,omitempty"`
	HoverOffset      float64   `json:"hover_offset,omitempty"`
}

// Axis fixes the value range of the y axis.
type Axis struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Legend controls legend placement.
type Legend struct {
	Display  bool   `json:"display"`
	Position string `json:"position,omitempty"`
}

// Animation describes the entrance animation.
type Animation struct {
	Duration      time.Duration `json:"duration"`
	Delay         time.Duration `json:"delay,omitempty"`
	Easing        string        `json:"easing,omitempty"`
	AnimateScale  bool          `json:"animate_scale,omitempty"`
	AnimateRotate bool          `json:"animate_rotate,omitempty"`
}

// Config is a complete, renderer-independent chart description.
type Config struct {
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Labels    []string  `json:"labels"`
	Datasets  []Dataset `json:"datasets"`
	YAxis     *Axis     `json:"y_axis,omitempty"`
	Cutout    float64   `json:"cutout,omitempty"`
	Legend    Legend    `json:"legend"`
	Animation Animation `json:"animation"`
	// Unit is appended to values in tooltips and labels.
	Unit string `json:"unit,omitempty"`
}
