// Package normalize holds the field-level helpers that turn loosely typed TMS
// values into comparable keys, timestamps and flags.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var cleanupReplacer = strings.NewReplacer(
	"\u00a0", " ",
	"\u200b", "",
	"\r\n", " ",
	"\r", " ",
	"\n", " ",
)

// ToString coerces a raw field to a string. nil becomes "".
func ToString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// clean strips invisible characters, folds line breaks to spaces and trims.
func clean(v any) string {
	return strings.TrimSpace(cleanupReplacer.Replace(ToString(v)))
}

// Upper uppercases s with Turkish casing rules (i -> İ, ı -> I). A Caser
// keeps state, so each call gets its own.
func Upper(s string) string {
	return cases.Upper(language.Turkish).String(s)
}

// Text canonicalizes a free-text field into the key used for project, city and
// county comparisons.
func Text(v any) string {
	s := clean(v)
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(Upper(s)), " ")
}

// Equal reports whether two raw values normalize to the same key.
func Equal(a, b any) bool {
	return Text(a) == Text(b)
}
