package validator

// checks.go holds the per-kind type checks. Every parser reports success as
// a bool instead of an error; invalid input is an expected outcome here.
// Blank input is never valid for any kind.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// numericRegex accepts plain decimal notation with an optional exponent.
	// Hex floats, "NaN" and "Inf" are rejected.
	numericRegex    = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
	identifierRegex = regexp.MustCompile(`^[+-]?\d+$`)
	dateRegex       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// DateLayout is the only accepted calendar format.
const DateLayout = "2006-01-02"

var (
	truthy = map[string]bool{"true": true, "si": true, "sí": true}
	falsy  = map[string]bool{"false": true, "no": true}
)

// IsBlank reports whether a cell counts as absent.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ParseDecimal parses any finite real number.
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseInteger parses a real number with no fractional part, so "7" and
// "7.0" are both integers.
func ParseInteger(s string) (float64, bool) {
	f, ok := ParseDecimal(s)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return f, true
}

// ParseIdentifier is the strict integer check used for the user identifier:
// digits only, with an optional sign. "7.0" and "7.5" are rejected.
func ParseIdentifier(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !identifierRegex.MatchString(s) {
		return "", false
	}
	return s, true
}

// ParseBoolean accepts true/false and the Spanish sí/no, case-insensitively.
func ParseBoolean(s string) (bool, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case truthy[v]:
		return true, true
	case falsy[v]:
		return false, true
	default:
		return false, false
	}
}

// ParseDate requires YYYY-MM-DD naming a real calendar day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if !dateRegex.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsEmail only requires an '@'.
func IsEmail(s string) bool {
	return !IsBlank(s) && strings.Contains(s, "@")
}

// Conforms dispatches to the check for kind.
func Conforms(kind DataKind, s string) bool {
	if IsBlank(s) {
		return false
	}
	switch kind {
	case KindText:
		return true
	case KindInteger:
		_, ok := ParseInteger(s)
		return ok
	case KindDecimal:
		_, ok := ParseDecimal(s)
		return ok
	case KindBoolean:
		_, ok := ParseBoolean(s)
		return ok
	case KindDate:
		_, ok := ParseDate(s)
		return ok
	case KindEmail:
		return IsEmail(s)
	default:
		return false
	}
}

// inSet reports whether the trimmed, upper-cased value is one of allowed.
func inSet(s string, allowed []string) bool {
	v := strings.ToUpper(strings.TrimSpace(s))
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
