package charts

import (
	"strconv"
	"time"

	"github.com/odyssey-erp/attendance-dashboard/internal/attendance"
)

// Ratio category colors.
const (
	ColorPresent = "#3fb950"
	ColorAbsent  = "#f85149"
	ColorExcused = "#A78BFA"
)

// Status labels used by the ratio chart.
const (
	LabelPresent = "Present"
	LabelAbsent  = "Absent"
	LabelExcused = "Excused"
)

// Trend maps the monthly series onto a filled line chart fixed to 60-100%.
func Trend(points []attendance.TrendPoint) Config {
	labels := make([]string, 0, len(points))
	values := make([]float64, 0, len(points))
	for _, p := range points {
		labels = append(labels, strconv.Itoa(p.Month.Int())+"/"+strconv.Itoa(p.Year.Int()))
		values = append(values, p.AvgAttendancePct.Float())
	}
	return Config{
		Type:   TypeLine,
		Title:  "Monthly Attendance Trend",
		Labels: labels,
		Datasets: []Dataset{{
			Label:       "Average Attendance %",
			Data:        values,
			BorderColor: "#A78BFA",
			BorderWidth: 3,
			Gradient: &Gradient{Direction: Vertical, Stops: []ColorStop{
				{Offset: 0, Color: "rgba(139, 92, 246, 0.5)"},
				{Offset: 1, Color: "rgba(59, 130, 246, 0.0)"},
			}},
			Fill:        true,
			Tension:     0.4,
			PointRadius: 4,
			PointColor:  "#0B0F1A",
		}},
		YAxis:     &Axis{Min: 60, Max: 100},
		Legend:    Legend{Display: false},
		Animation: Animation{Duration: 2 * time.Second, Easing: "easeOutQuart"},
		Unit:      "%",
	}
}

// StatusLabel maps a status code onto its display label.
func StatusLabel(status string) string {
	switch status {
	case attendance.StatusPresent:
		return LabelPresent
	case attendance.StatusAbsent:
		return LabelAbsent
	default:
		return LabelExcused
	}
}

// StatusColor maps a status code onto its category color.
func StatusColor(status string) string {
	switch status {
	case attendance.StatusPresent:
		return ColorPresent
	case attendance.StatusAbsent:
		return ColorAbsent
	default:
		return ColorExcused
	}
}

// Ratio maps status shares onto a doughnut with a 70% cutout.
func Ratio(entries []attendance.StatusRatio) Config {
	labels := make([]string, 0, len(entries))
	values := make([]float64, 0, len(entries))
	colors := make([]string, 0, len(entries))
	for _, e := range entries {
		labels = append(labels, StatusLabel(e.Status))
		values = append(values, e.Percentage.Float())
		colors = append(colors, StatusColor(e.Status))
	}
	return Config{
		Type:   TypeDoughnut,
		Title:  "Attendance Status Ratio",
		Labels: labels,
		Datasets: []Dataset{{
			Data:             values,
			BackgroundColors: colors,
			HoverOffset:      4,
		}},
		Cutout: 0.7,
		Legend: Legend{Display: true, Position: "bottom"},
		Animation: Animation{
			Duration:      1500 * time.Millisecond,
			AnimateScale:  true,
			AnimateRotate: true,
		},
		Unit: "%",
	}
}

// Distribution maps per-class percentages onto a bar chart fixed to 50-100%.
func Distribution(entries []attendance.ClassDistribution) Config {
	labels := make([]string, 0, len(entries))
	values := make([]float64, 0, len(entries))
	for _, e := range entries {
		labels = append(labels, e.ClassName)
		values = append(values, e.AttendancePct.Float())
	}
	return Config{
		Type:   TypeBar,
		Title:  "Attendance by Class",
		Labels: labels,
		Datasets: []Dataset{{
			Label: "Attendance %",
			Data:  values,
			Gradient: &Gradient{Direction: Horizontal, Stops: []ColorStop{
				{Offset: 0, Color: "#8B5CF6"},
				{Offset: 1, Color: "#3B82F6"},
			}},
			BorderColor:  "#A78BFA",
			BorderWidth:  1,
			BorderRadius: 4,
		}},
		YAxis:     &Axis{Min: 50, Max: 100},
		Legend:    Legend{Display: false},
		Animation: Animation{Duration: 1500 * time.Millisecond, Delay: 200 * time.Millisecond},
		Unit:      "%",
	}
}
