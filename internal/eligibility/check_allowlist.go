package eligibility

// Field labels carried in FieldVerdict.Field.
const (
	FieldEmploymentStatus = "Employment Status"
	FieldGapYears         = "Gap Years"
	FieldMaritalStatus    = "Marital Status"
	FieldNCCWing          = "NCC Wing"
	FieldWeight           = "Weight"
	FieldHeight           = "Height"
	FieldAge              = "Age"
	FieldEducation        = "Education"
	FieldCategory         = "Category"
	FieldNationality      = "Nationality"
	FieldGender           = "Gender"
	FieldPercentage       = "Percentage"
)

const NoRestriction = "No restriction"

func CheckEmploymentStatus(user, requirement string) FieldVerdict {
	return checkAllowList(FieldEmploymentStatus, user, requirement)
}

func CheckNCCWing(user, requirement string) FieldVerdict {
	return checkAllowList(FieldNCCWing, user, requirement)
}

func CheckCategory(user, requirement string) FieldVerdict {
	return checkAllowList(FieldCategory, user, requirement, "ALL", "ALL CATEGORIES")
}

func CheckNationality(user, requirement string) FieldVerdict {
	return checkAllowList(FieldNationality, user, requirement)
}

// CheckGender matches the candidate's gender tag exactly against the allowed
// genders.
func CheckGender(user, requirement string) FieldVerdict {
	v := FieldVerdict{Field: FieldGender, UserValue: displayValue(user)}
	if IsNoRestriction(requirement, "ALL", "BOTH") {
		v.ExamRequirement = NoRestriction
		v.Eligible = true
		return v
	}
	allowed := ParseList(requirement)
	v.ExamRequirement = listDisplay(allowed, requirement)
	g, ok := ParseGender(user)
	if !ok {
		return v
	}
	for _, a := range allowed {
		if ag, ok := ParseGender(a); ok && ag == g {
			v.Eligible = true
			break
		}
	}
	return v
}

// checkAllowList applies the loose membership rule: any comma token of the
// requirement matching the candidate's value in either substring direction
// is enough. "ARMY" matches "ARMY WING", and also "PARAMILITARY".
func checkAllowList(field, user, requirement string, extraSentinels ...string) FieldVerdict {
	v := FieldVerdict{Field: field, UserValue: displayValue(user)}
	if IsNoRestriction(requirement, extraSentinels...) {
		v.ExamRequirement = NoRestriction
		v.Eligible = true
		return v
	}
	allowed := ParseList(requirement)
	v.ExamRequirement = listDisplay(allowed, requirement)
	u := Normalize(user)
	if u == "" {
		return v
	}
	for _, a := range allowed {
		if substringMatch(a, u) {
			v.Eligible = true
			break
		}
	}
	return v
}
