package dashboard

import (
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/odyssey-erp/attendance-dashboard/internal/attendance"
)

// CounterDuration is how long a KPI counter takes to reach its target.
const CounterDuration = 3 * time.Second

// Format selects how a counter value is displayed.
type Format int

const (
	FormatInteger Format = iota
	FormatPercent
)

var printer = message.NewPrinter(language.English)

// FormatValue renders v the way a counter shows it: one decimal and a percent
// sign for percentages, floored and thousands-separated otherwise.
func FormatValue(v float64, f Format) string {
	if f == FormatPercent {
		return fmt.Sprintf("%.1f%%", v)
	}
	return printer.Sprintf("%d", int64(math.Floor(v)))
}

// Counter animates one KPI slot from zero to its target the first time the
// slot is observed.
type Counter struct {
	Slot   string
	Label  string
	Icon   string
	Format Format

	trigger Trigger

	mu      sync.RWMutex
	target  float64
	display string
	frames  []string
}

// CounterView is a snapshot of a counter for rendering.
type CounterView struct {
	Slot    string   `json:"slot"`
	Label   string   `json:"label"`
	Icon    string   `json:"icon"`
	Target  float64  `json:"target"`
	Display string   `json:"display"`
	Frames  []string `json:"frames,omitempty"`
	State   string   `json:"state"`
}

type slotSpec struct {
	slot   string
	label  string
	icon   string
	format Format
	value  func(attendance.KPISnapshot) attendance.Number
}

// The five KPI cards in page order.
var kpiSlots = []slotSpec{
	{"kpi-1", "Total Students", "icon-users", FormatInteger, func(k attendance.KPISnapshot) attendance.Number { return k.TotalStudents }},
	{"kpi-2", "Average Attendance", "icon-chart", FormatPercent, func(k attendance.KPISnapshot) attendance.Number { return k.AvgAttendance }},
	{"kpi-3", "Students at Risk", "icon-alert", FormatInteger, func(k attendance.KPISnapshot) attendance.Number { return k.RiskCount }},
	{"kpi-4", "Highest Attendance", "icon-trophy", FormatPercent, func(k attendance.KPISnapshot) attendance.Number { return k.HighestAttendance }},
	{"kpi-5", "Total Records", "icon-database", FormatInteger, func(k attendance.KPISnapshot) attendance.Number { return k.TotalRecords }},
}

func newCounters() []*Counter {
	counters := make([]*Counter, 0, len(kpiSlots))
	for _, spec := range kpiSlots {
		counters = append(counters, &Counter{
			Slot:    spec.slot,
			Label:   spec.label,
			Icon:    spec.icon,
			Format:  spec.format,
			display: FormatValue(0, spec.format),
		})
	}
	return counters
}

func (c *Counter) setTarget(v float64) {
	c.mu.Lock()
	c.target = v
	c.mu.Unlock()
}

// Target returns the value the counter animates towards.
func (c *Counter) Target() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.target
}

// Display returns the current text of the slot.
func (c *Counter) Display() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.display
}

func (c *Counter) play(a Animator) {
	target := c.Target()
	frames := make([]string, 0, 96)
	tween(a, 0, target, CounterDuration, ExpoOut, func(v float64) {
		frames = append(frames, FormatValue(v, c.Format))
	})
	if len(frames) == 0 {
		frames = append(frames, FormatValue(target, c.Format))
	}
	c.mu.Lock()
	c.frames = frames
	c.display = frames[len(frames)-1]
	c.mu.Unlock()
}

// View snapshots the counter.
func (c *Counter) View() CounterView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	frames := make([]string, len(c.frames))
	copy(frames, c.frames)
	return CounterView{
		Slot:    c.Slot,
		Label:   c.Label,
		Icon:    c.Icon,
		Target:  c.target,
		Display: c.display,
		Frames:  frames,
		State:   c.trigger.State().String(),
	}
}
