package eligibility

import (
	"fmt"
	"strconv"
	"strings"
)

func CheckWeight(user, requirement string) FieldVerdict {
	return checkMeasure(FieldWeight, "kg", user, requirement)
}

func CheckHeight(user, requirement string) FieldVerdict {
	return checkMeasure(FieldHeight, "cm", user, requirement)
}

func CheckPercentage(user, requirement string) FieldVerdict {
	return checkMeasure(FieldPercentage, "%", user, requirement)
}

// checkMeasure handles minimum and range requirements. A candidate value
// that is present but not numeric passes, as does a requirement that is
// neither a number nor a range.
func checkMeasure(field, unit, user, requirement string) FieldVerdict {
	v := FieldVerdict{Field: field, UserValue: displayValue(user)}
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
			v.ExamRequirement = fmt.Sprintf("%s - %s %s", formatNumber(lo), formatNumber(hi), unit)
		} else {
			v.ExamRequirement = fmt.Sprintf("Minimum %s %s", formatNumber(lo), unit)
		}
	}

	if strings.TrimSpace(user) == "" {
		return v
	}
	value, parsed := ParseFloatPrefix(user)
	if !parsed || !ok {
		v.Eligible = true
		return v
	}
	if isRange {
		v.Eligible = value >= lo && value <= hi
	} else {
		v.Eligible = value >= lo
	}
	return v
}

var (
	gapYearsOpenSentinels = []string{"APPLICABLE", "YES", "ALLOWED"}
	gapYearsZeroSentinels = []string{"NO", "NONE", "0", "NOT ALLOWED"}
)

// CheckGapYears compares the candidate's gap-year count against a cap. An
// absent or unreadable count is treated as zero.
func CheckGapYears(user, requirement string) FieldVerdict {
	count := parseCount(user)
	v := FieldVerdict{Field: FieldGapYears, UserValue: displayValue(user)}
	if IsNoRestriction(requirement, gapYearsOpenSentinels...) {
		v.ExamRequirement = NoRestriction
		v.Eligible = true
		return v
	}

	n := Normalize(requirement)
	for _, s := range gapYearsZeroSentinels {
		if n == s {
			v.ExamRequirement = "No gap years allowed"
			v.Eligible = count == 0
			return v
		}
	}

	limit, ok := ParseFloatPrefix(requirement)
	if !ok {
		v.ExamRequirement = strings.TrimSpace(requirement)
		v.Eligible = true
		return v
	}
	v.ExamRequirement = fmt.Sprintf("Maximum %s gap years", formatNumber(limit))
	v.Eligible = float64(count) <= limit
	return v
}

// parseCount reads a leading integer, falling back to zero.
func parseCount(value string) int {
	v := strings.TrimSpace(value)
	end := 0
	for end < len(v) && (v[end] >= '0' && v[end] <= '9' || end == 0 && (v[end] == '-' || v[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return 0
	}
	return n
}
