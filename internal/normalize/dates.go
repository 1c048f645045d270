package normalize

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// Location is the zone used for zone-less date strings and spreadsheet serials.
// The server sets it from TMS_TIMEZONE at startup.
var Location = time.Local

// emptyDate is what the TMS API sends for a date that was never set.
const emptyDate = "---"

const maxSerial = 2958465 // 9999-12-31

var turkishDateRe = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseDate turns a raw date field into a timestamp. The second result is false
// when the value is absent or cannot be read; it never panics.
func ParseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case float64, float32, int, int64:
		f, _ := ToNum(t)
		return fromSerial(f)
	case string:
		return parseDateString(t)
	default:
		return parseDateString(ToString(t))
	}
}

func parseDateString(raw string) (time.Time, bool) {
	s := clean(raw)
	if s == "" || s == emptyDate {
		return time.Time{}, false
	}

	if m := turkishDateRe.FindStringSubmatch(s); m != nil {
		return fromTurkishParts(m)
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromSerial(f)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, Location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromTurkishParts(m []string) (time.Time, bool) {
	atoi := func(s string) int {
		if s == "" {
			return 0
		}
		n, _ := strconv.Atoi(s)
		return n
	}

	day, month, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
	hour, minute, second := atoi(m[4]), atoi(m[5]), atoi(m[6])

	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, Location)
	// time.Date rolls 31.02 over into March; treat that as a bad value.
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// fromSerial reads a spreadsheet serial date. Serial 60 is the fictional
// 1900-02-29, so counting from 1899-12-30 is exact for every later day.
func fromSerial(f float64) (time.Time, bool) {
	if math.IsNaN(f) || f <= 0 || f > maxSerial {
		return time.Time{}, false
	}
	days := math.Floor(f)
	ms := math.Round((f - days) * 24 * float64(time.Hour/time.Millisecond))
	base := time.Date(1899, time.December, 30, 0, 0, 0, 0, Location)
	return base.AddDate(0, 0, int(days)).Add(time.Duration(ms) * time.Millisecond), true
}

// HoursDiff is the absolute difference between two raw dates in hours. The
// second result is false when either side does not parse.
func HoursDiff(a, b any) (float64, bool) {
	ta, ok := ParseDate(a)
	if !ok {
		return 0, false
	}
	tb, ok := ParseDate(b)
	if !ok {
		return 0, false
	}
	return math.Abs(ta.Sub(tb).Hours()), true
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatTurkish renders t the way the TMS UI shows dates.
func FormatTurkish(t time.Time) string {
	if t.IsZero() {
		return emptyDate
	}
	return t.In(Location).Format("02.01.2006 15:04")
}
