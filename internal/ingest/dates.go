package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

// Excel stores dates as days since 1899-12-30. Serials outside this window
// are treated as plain numbers.
const (
	minExcelSerial = 20000 // 1954-10-03
	maxExcelSerial = 80000 // 2119-01-10
)

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseDate reads a spreadsheet date cell. Slash, dash and dot separated
// day/month/year forms are read month first unless the first part cannot be
// a month.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if t, ok := parseNumericDate(s); ok {
		return t, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= minExcelSerial && f <= maxExcelSerial {
		days := math.Floor(f)
		secs := math.Round((f - days) * 86400)
		return excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second), true
	}
	return time.Time{}, false
}

// parseNumericDate handles a/b/yyyy with '/', '-' or '.' separators.
func parseNumericDate(s string) (time.Time, bool) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' || r == '.' })
	if len(parts) != 3 || len(parts[2]) != 4 {
		return time.Time{}, false
	}
	a, errA := strconv.Atoi(parts[0])
	b, errB := strconv.Atoi(parts[1])
	year, errY := strconv.Atoi(parts[2])
	if errA != nil || errB != nil || errY != nil {
		return time.Time{}, false
	}

	month, day := a, b
	if a > 12 {
		month, day = b, a
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		// Rolled over, e.g. 02/31.
		return time.Time{}, false
	}
	return t, true
}
