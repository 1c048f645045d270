package normalize

import (
	"regexp"
	"strings"
)

const (
	// DispatchPrefix marks a real despatch document number.
	DispatchPrefix = "SFR"

	// placeholderRequestPrefix marks request numbers the TMS fills in
	// before a vehicle request exists.
	placeholderRequestPrefix = "BOS"

	minBareDispatchDigits = 8
)

var (
	dispatchRe = regexp.MustCompile(`SFR\s*\d+`)
	digitsRe   = regexp.MustCompile(`^\d+$`)
)

// DispatchKey extracts the canonical SFR<digits> key from a raw despatch
// document number. Bare numbers of 8+ digits get the SFR prefix; anything else
// falls back to its first token and is later ignored by supply counts.
func DispatchKey(v any) string {
	s := strings.ToUpper(clean(v))
	if s == "" {
		return ""
	}
	if m := dispatchRe.FindString(s); m != "" {
		return strings.Join(strings.Fields(m), "")
	}
	if len(s) >= minBareDispatchDigits && digitsRe.MatchString(s) {
		return DispatchPrefix + s
	}
	return strings.Fields(s)[0]
}

// IsDispatchKey reports whether key can take part in supply aggregation.
func IsDispatchKey(key string) bool {
	return strings.HasPrefix(key, DispatchPrefix)
}

// RequestKey cleans a vehicle request document number.
func RequestKey(v any) string {
	return strings.ToUpper(clean(v))
}

// IsValidRequestKey is false for empty keys and "BOS..." placeholders.
func IsValidRequestKey(key string) bool {
	return key != "" && !strings.HasPrefix(key, placeholderRequestPrefix)
}
