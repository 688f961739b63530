package eligibility

import "time"

// CheckContext carries the per-evaluation inputs some checkers need beyond
// the field value.
type CheckContext struct {
	Gender string
	AsOf   time.Time
}

// FieldChecker binds one checker to the profile key it reads and the exam
// record keys it may find its requirement under (first present wins).
type FieldChecker struct {
	Field           string
	ProfileKey      string
	RequirementKeys []string
	Check           func(user string, req Requirement, cc CheckContext) FieldVerdict
}

// Requirement picks this checker's requirement out of a requirement set.
// Absent keys yield an empty scalar, which every checker reads as "no
// restriction".
func (c FieldChecker) Requirement(reqs map[string]Requirement) Requirement {
	for _, k := range c.RequirementKeys {
		if r, ok := reqs[k]; ok {
			return r
		}
	}
	return Scalar("")
}

// scalarChecker adapts a scalar checker so that a gender-keyed requirement
// is first narrowed to the candidate's gender.
func scalarChecker(field string, fn func(user, requirement string) FieldVerdict) func(string, Requirement, CheckContext) FieldVerdict {
	return func(user string, req Requirement, cc CheckContext) FieldVerdict {
		v := FieldVerdict{Field: field, UserValue: displayValue(user)}
		scalar, resolved := resolveForGender(&v, req, cc.Gender, nil)
		if resolved {
			return v
		}
		out := fn(user, scalar)
		out.GenderRequirement = v.GenderRequirement
		return out
	}
}

var defaultCheckers = []FieldChecker{
	{
		Field:           FieldGender,
		ProfileKey:      ProfileGender,
		RequirementKeys: []string{"gender", "genderAllowed"},
		Check:           scalarChecker(FieldGender, CheckGender),
	},
	{
		Field:           FieldAge,
		ProfileKey:      ProfileDateOfBirth,
		RequirementKeys: []string{"ageLimit", "age"},
		Check: func(user string, req Requirement, cc CheckContext) FieldVerdict {
			return scalarChecker(FieldAge, func(u, r string) FieldVerdict {
				return CheckAge(u, r, cc.AsOf)
			})(user, req, cc)
		},
	},
	{
		Field:           FieldNationality,
		ProfileKey:      ProfileNationality,
		RequirementKeys: []string{"nationality"},
		Check:           scalarChecker(FieldNationality, CheckNationality),
	},
	{
		Field:           FieldCategory,
		ProfileKey:      ProfileCategory,
		RequirementKeys: []string{"category", "caste"},
		Check:           scalarChecker(FieldCategory, CheckCategory),
	},
	{
		Field:           FieldEducation,
		ProfileKey:      ProfileEducation,
		RequirementKeys: []string{"educationQualification", "education"},
		Check:           scalarChecker(FieldEducation, CheckEducation),
	},
	{
		Field:           FieldPercentage,
		ProfileKey:      ProfilePercentage,
		RequirementKeys: []string{"minimumPercentage", "percentage"},
		Check:           scalarChecker(FieldPercentage, CheckPercentage),
	},
	{
		Field:           FieldMaritalStatus,
		ProfileKey:      ProfileMaritalStatus,
		RequirementKeys: []string{"maritalStatus"},
		Check: func(user string, req Requirement, cc CheckContext) FieldVerdict {
			return CheckMaritalStatus(user, req, cc.Gender)
		},
	},
	{
		Field:           FieldEmploymentStatus,
		ProfileKey:      ProfileEmploymentStatus,
		RequirementKeys: []string{"employmentStatus"},
		Check:           scalarChecker(FieldEmploymentStatus, CheckEmploymentStatus),
	},
	{
		Field:           FieldGapYears,
		ProfileKey:      ProfileGapYears,
		RequirementKeys: []string{"gapYears", "gapYearsAllowed"},
		Check:           scalarChecker(FieldGapYears, CheckGapYears),
	},
	{
		Field:           FieldNCCWing,
		ProfileKey:      ProfileNCCWing,
		RequirementKeys: []string{"nccWing", "ncc"},
		Check:           scalarChecker(FieldNCCWing, CheckNCCWing),
	},
	{
		Field:           FieldHeight,
		ProfileKey:      ProfileHeight,
		RequirementKeys: []string{"height", "minimumHeight"},
		Check:           scalarChecker(FieldHeight, CheckHeight),
	},
	{
		Field:           FieldWeight,
		ProfileKey:      ProfileWeight,
		RequirementKeys: []string{"weight", "minimumWeight"},
		Check:           scalarChecker(FieldWeight, CheckWeight),
	},
}

// DefaultCheckers returns the registered checkers in evaluation order.
func DefaultCheckers() []FieldChecker {
	out := make([]FieldChecker, len(defaultCheckers))
	copy(out, defaultCheckers)
	return out
}

func requirementKeys(checkers []FieldChecker) map[string]bool {
	keys := make(map[string]bool)
	for _, c := range checkers {
		for _, k := range c.RequirementKeys {
			keys[k] = true
		}
	}
	return keys
}
