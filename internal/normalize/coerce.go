package normalize

import (
	"math"
	"strconv"
	"strings"
)

// ToBool coerces print-flag style values: true/false, 1/0, "1"/"0" and
// case-insensitive "true"/"false". Anything else is false.
func ToBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t == 1
	case float32:
		return t == 1
	case int:
		return t == 1
	case int64:
		return t == 1
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true":
			return true
		}
	}
	return false
}

// ToNum coerces numeric-ish values. The second result is false for nil, empty
// strings and anything that does not parse as a finite number.
func ToNum(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
