package attendance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number accepts JSON numbers and numeric strings; anything unparseable reads as 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*n = 0
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = Number(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

// Float returns the value as float64.
func (n Number) Float() float64 { return float64(n) }

// Int returns the value rounded to the nearest integer.
func (n Number) Int() int { return int(math.Round(float64(n))) }

// KPISnapshot holds the headline metrics of the dashboard.
type KPISnapshot struct {
	TotalStudents     Number `json:"total_students"`
	AvgAttendance     Number `json:"avg_attendance"`
	RiskCount         Number `json:"risk_count"`
	HighestAttendance Number `json:"highest_attendance"`
	TotalRecords      Number `json:"total_records"`
}

// TrendPoint is the average attendance of one month.
type TrendPoint struct {
	Month            Number `json:"month" validate:"min=1,max=12"`
	Year             Number `json:"year" validate:"gt=0"`
	AvgAttendancePct Number `json:"avg_attendance_pct"`
}

// Status codes used by the ratio endpoint.
const (
	StatusPresent = "P"
	StatusAbsent  = "A"
)

// StatusRatio is the share of one attendance status.
type StatusRatio struct {
	Status     string `json:"status"`
	Percentage Number `json:"percentage"`
}

// ClassDistribution is the attendance percentage of one class.
type ClassDistribution struct {
	ClassName     string `json:"class_name"`
	AttendancePct Number `json:"attendance_pct"`
}

// Student is an opaque backend record.
type Student map[string]any

// ID returns the record identifier, or an empty string when absent.
func (s Student) ID() string {
	for _, key := range []string{"id", "student_id"} {
		v, ok := s[key]
		if !ok || v == nil {
			continue
		}
		switch id := v.(type) {
		case string:
			return id
		case float64:
			return strconv.FormatFloat(id, 'f', -1, 64)
		case json.Number:
			return id.String()
		default:
			return fmt.Sprint(id)
		}
	}
	return ""
}
