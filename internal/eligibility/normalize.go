// Package eligibility evaluates candidate profiles against competitive-exam
// eligibility criteria. It performs no I/O; callers supply the profile and
// the exam records and receive verdict structures back.
package eligibility

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const NotSpecified = "Not specified"

// Generic no-restriction sentinels. Checkers add their own on top.
var genericSentinels = []string{"NOT APPLICABLE", "NA", "ANY"}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	rangeToken    = regexp.MustCompile(`(?i)\s+to\s+`)
	numberPrefix  = regexp.MustCompile(`^\s*[-+]?(\d+(\.\d*)?|\.\d+)`)
)

// Normalize upper-cases and trims a value and collapses inner whitespace.
func Normalize(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	return strings.ToUpper(whitespaceRun.ReplaceAllString(v, " "))
}

// ParseList splits a comma-separated value into normalized, non-empty tokens.
func ParseList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := Normalize(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// IsNoRestriction reports whether value is empty or one of the generic
// sentinels or any of the extra field-specific sentinels.
func IsNoRestriction(value string, extra ...string) bool {
	n := Normalize(value)
	if n == "" {
		return true
	}
	for _, s := range genericSentinels {
		if n == s {
			return true
		}
	}
	for _, s := range extra {
		if n == Normalize(s) {
			return true
		}
	}
	return false
}

// ParseNumber parses a plain decimal value. Thousands separators and
// surrounding whitespace are tolerated. NaN and infinities do not parse.
func ParseNumber(value string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	if cleaned == "" {
		return 0, false
	}
	return parseFinite(cleaned)
}

func parseFinite(value string) (float64, bool) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseFloatPrefix reads the number a value starts with, ignoring any
// trailing text ("65 kg" reads as 65). A value that does not start with a
// number does not parse.
func ParseFloatPrefix(value string) (float64, bool) {
	if f, ok := ParseNumber(value); ok {
		return f, true
	}
	m := numberPrefix.FindString(value)
	if m == "" {
		return 0, false
	}
	return parseFinite(strings.TrimSpace(m))
}

// IsRange reports whether the value is written as a range ("A-B" or "A to B").
func IsRange(value string) bool {
	v := strings.TrimSpace(value)
	if rangeToken.MatchString(v) {
		return true
	}
	// A leading minus sign alone is a negative number, not a range.
	return strings.Contains(strings.TrimPrefix(v, "-"), "-")
}

// ParseRange splits a range requirement into inclusive bounds. Bounds are
// returned low-high even when written the other way round.
func ParseRange(value string) (lo, hi float64, ok bool) {
	v := strings.TrimSpace(value)
	var parts []string
	if rangeToken.MatchString(v) {
		parts = rangeToken.Split(v, 2)
	} else {
		idx := strings.Index(strings.TrimPrefix(v, "-"), "-")
		if idx < 0 {
			return 0, 0, false
		}
		if strings.HasPrefix(v, "-") {
			idx++
		}
		parts = []string{v[:idx], v[idx+1:]}
	}
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, okLo := ParseFloatPrefix(parts[0])
	hi, okHi := ParseFloatPrefix(parts[1])
	if !okLo || !okHi {
		return 0, 0, false
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

// substringMatch is the deliberately loose membership rule shared by the
// allow-list checkers: either token may contain the other.
func substringMatch(allowed, user string) bool {
	if allowed == "" || user == "" {
		return false
	}
	return strings.Contains(allowed, user) || strings.Contains(user, allowed)
}

func exactMatch(allowed, user string) bool {
	return allowed != "" && allowed == user
}

func displayValue(user string) string {
	if strings.TrimSpace(user) == "" {
		return NotSpecified
	}
	return strings.TrimSpace(user)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func listDisplay(allowed []string, raw string) string {
	if len(allowed) == 0 {
		return strings.TrimSpace(raw)
	}
	return strings.Join(allowed, ", ")
}
