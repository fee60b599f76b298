// Package dateutil handles the calendar-date strings ("2006-01-02") that
// flow through orders. Dates are built from explicit year/month/day
// components in local time; going through time.Parse in UTC shifts the day
// for timezones west of Greenwich.
package dateutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var diasSemana = [7]string{"DOMINGO", "SEGUNDA", "TERÇA", "QUARTA", "QUINTA", "SEXTA", "SÁBADO"}

// ParseISO parses "YYYY-MM-DD" into a local-time date. ok is false for
// anything that does not split into three positive numbers.
func ParseISO(iso string) (time.Time, bool) {
	parts := strings.SplitN(iso, "-", 3)
	if len(parts) != 3 {
		return time.Time{}, false
	}
	y, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	d, _ := strconv.Atoi(parts[2])
	if y == 0 || m == 0 || d == 0 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local), true
}

// FormatISO renders a date back to "YYYY-MM-DD".
func FormatISO(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// TodayISO returns the local calendar day of now as "YYYY-MM-DD".
func TodayISO(now time.Time) string {
	return FormatISO(now)
}

// EachDay lists every day from start through end inclusive. Either bound
// failing to parse yields an empty slice.
func EachDay(startISO, endISO string) []string {
	s, okS := ParseISO(startISO)
	e, okE := ParseISO(endISO)
	if !okS || !okE {
		return nil
	}
	var days []string
	for cur := s; !cur.After(e); cur = cur.AddDate(0, 0, 1) {
		days = append(days, FormatISO(cur))
	}
	return days
}

// DayLabel returns the Portuguese weekday name for an ISO date, or "" when
// the date does not parse.
func DayLabel(iso string) string {
	d, ok := ParseISO(iso)
	if !ok {
		return ""
	}
	return diasSemana[int(d.Weekday())]
}

// WeekdayLabels returns the seven weekday abbreviations, Sunday first, in
// the order used by the weekday-distribution chart.
func WeekdayLabels() [7]string {
	return [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}
}

// MonthLabel renders "MM/YYYY" from an ISO date, or "" when malformed.
func MonthLabel(iso string) string {
	parts := strings.SplitN(iso, "-", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	m := parts[1]
	if len(m) < 2 {
		m = "0" + m
	}
	return m + "/" + parts[0]
}

// FormatBR converts "YYYY-MM-DD" to "DD/MM/YYYY" for printable views.
// Values already containing "/" pass through untouched.
func FormatBR(iso string) string {
	if iso == "" {
		return ""
	}
	if strings.Contains(iso, "/") {
		return iso
	}
	parts := strings.SplitN(iso, "-", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return iso
	}
	day := parts[2]
	if len(day) < 2 {
		day = "0" + day
	}
	month := parts[1]
	if len(month) < 2 {
		month = "0" + month
	}
	return day + "/" + month + "/" + parts[0]
}
