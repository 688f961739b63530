package eligibility

import "fmt"

var maritalSentinels = []string{"ALL APPLICABLE"}

// CheckMaritalStatus evaluates a marital-status requirement that may differ
// by gender. Membership is exact: marital statuses are a closed vocabulary.
func CheckMaritalStatus(user string, requirement Requirement, gender string) FieldVerdict {
	v := FieldVerdict{Field: FieldMaritalStatus, UserValue: displayValue(user)}

	scalar, resolved := resolveForGender(&v, requirement, gender, maritalSentinels)
	if resolved {
		return v
	}

	if IsNoRestriction(scalar, maritalSentinels...) {
		v.ExamRequirement = NoRestriction
		v.Eligible = true
		return v
	}
	allowed := ParseList(scalar)
	v.ExamRequirement = listDisplay(allowed, scalar)
	u := Normalize(user)
	if u == "" {
		v.Reason = "Marital status not provided"
		return v
	}
	for _, a := range allowed {
		if exactMatch(a, u) {
			v.Eligible = true
			return v
		}
	}
	v.Reason = fmt.Sprintf("%s is not among the accepted marital statuses", u)
	return v
}

// resolveForGender narrows a gender-keyed requirement to the scalar entry
// for the candidate's gender. When the verdict is already decided (gender
// missing, or no entry recorded for that gender) it fills v and reports
// resolved=true.
func resolveForGender(v *FieldVerdict, requirement Requirement, gender string, sentinels []string) (scalar string, resolved bool) {
	if !requirement.IsGenderKeyed() {
		return requirement.Value(), false
	}
	v.GenderRequirement = requirement.GenderMap()

	if allEntriesOpen(requirement, sentinels) {
		v.ExamRequirement = NoRestriction
		v.Eligible = true
		return "", true
	}

	g, ok := ParseGender(gender)
	if !ok {
		v.ExamRequirement = requirement.String()
		v.Eligible = false
		v.Reason = fmt.Sprintf("Gender is required to evaluate %s eligibility", v.Field)
		return "", true
	}
	s, ok := requirement.ForGender(g)
	if !ok {
		v.ExamRequirement = fmt.Sprintf("%s for %s", NoRestriction, g)
		v.Eligible = true
		v.Reason = fmt.Sprintf("No %s requirement recorded for %s candidates", v.Field, g)
		return "", true
	}
	return s, false
}

func allEntriesOpen(requirement Requirement, sentinels []string) bool {
	m := requirement.GenderMap()
	if len(m) == 0 {
		return false
	}
	for _, s := range m {
		if !IsNoRestriction(s, sentinels...) {
			return false
		}
	}
	return true
}
