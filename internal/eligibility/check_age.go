package eligibility

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	time.RFC3339,
}

// ParseDate reads a calendar date in any of the accepted layouts.
func ParseDate(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CheckAge computes the candidate's age on asOf from a date of birth and
// tests it against a minimum or an inclusive range. Whole-number bounds are
// compared against completed years; fractional bounds (16.5 - 19.5) against
// the exact age.
func CheckAge(dateOfBirth, requirement string, asOf time.Time) FieldVerdict {
	v := FieldVerdict{Field: FieldAge, UserValue: displayValue(dateOfBirth)}
	if IsNoRestriction(requirement) {
		v.ExamRequirement = NoRestriction
		v.Eligible = true
		return v
	}
	v.ExamRequirement = strings.TrimSpace(requirement)

	var (
		lo, hi  float64
		isRange bool
		ok      bool
	)
	if IsRange(requirement) {
		lo, hi, ok = ParseRange(requirement)
		isRange = true
	} else {
		lo, ok = ParseFloatPrefix(requirement)
	}
	if ok {
		if isRange {
			v.ExamRequirement = fmt.Sprintf("%s - %s years", formatNumber(lo), formatNumber(hi))
		} else {
			v.ExamRequirement = fmt.Sprintf("Minimum %s years", formatNumber(lo))
		}
	}

	if strings.TrimSpace(dateOfBirth) == "" {
		return v
	}
	birth, parsed := ParseDate(dateOfBirth)
	if !parsed || !ok {
		v.Eligible = true
		if !parsed {
			v.Reason = "Date of birth could not be read"
		}
		return v
	}

	completed := completedYears(birth, asOf)
	exact := exactYears(birth, asOf)
	v.UserValue = fmt.Sprintf("%s (%d years)", strings.TrimSpace(dateOfBirth), completed)

	age := exact
	if isWhole(lo) && (!isRange || isWhole(hi)) {
		age = float64(completed)
	}
	if isRange {
		v.Eligible = age >= lo && age <= hi
	} else {
		v.Eligible = age >= lo
	}
	return v
}

func completedYears(birth, asOf time.Time) int {
	years := asOf.Year() - birth.Year()
	if asOf.Month() < birth.Month() || (asOf.Month() == birth.Month() && asOf.Day() < birth.Day()) {
		years--
	}
	return years
}

func exactYears(birth, asOf time.Time) float64 {
	years := completedYears(birth, asOf)
	anniversary := birth.AddDate(years, 0, 0)
	next := birth.AddDate(years+1, 0, 0)
	span := next.Sub(anniversary).Hours()
	if span <= 0 {
		return float64(years)
	}
	return float64(years) + asOf.Sub(anniversary).Hours()/span
}

func isWhole(f float64) bool {
	return f == math.Trunc(f)
}
