package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, data string) *ExamRecord {
	t.Helper()
	exam, err := ParseExamRecord([]byte(data))
	require.NoError(t, err)
	return exam
}

func TestEvaluate_FlatExam(t *testing.T) {
	exam := mustParse(t, `{"code":"SSC-GD","session":"2025","nationality":"Indian","weight":"50"}`)
	profile := UserProfile{ProfileNationality: "indian", ProfileWeight: "55"}

	verdicts := Evaluate(profile, exam)
	require.Len(t, verdicts, 1)
	v := verdicts[0]
	assert.Equal(t, FlatDivision, v.Division)
	assert.Equal(t, "2025", v.Session)
	assert.True(t, v.Eligible)
	assert.Len(t, v.Results, len(DefaultCheckers()))

	seen := map[string]int{}
	for _, r := range v.Results {
		seen[r.Field]++
		assert.NotEmpty(t, r.UserValue)
		assert.NotEmpty(t, r.ExamRequirement)
	}
	for _, c := range DefaultCheckers() {
		assert.Equal(t, 1, seen[c.Field], "checker %s must run exactly once", c.Field)
	}
}

func TestEvaluate_DivisionAggregation(t *testing.T) {
	exam := mustParse(t, `{
		"code": "AFCAT",
		"branches": {
			"Flying": {"height": "162.5"},
			"Technical": {"height": "157.5"},
			"Ground Duty": {"height": "152"}
		}
	}`)
	profile := UserProfile{ProfileHeight: "160"}

	verdicts := Evaluate(profile, exam)
	require.Len(t, verdicts, 3)
	assert.Equal(t, []string{"Flying", "Technical", "Ground Duty"},
		[]string{verdicts[0].Division, verdicts[1].Division, verdicts[2].Division})
	assert.False(t, verdicts[0].Eligible)
	assert.Equal(t, []string{FieldHeight}, verdicts[0].FailedFields())

	outcome := Outcome("AFCAT", verdicts)
	assert.True(t, outcome.Eligible)
	assert.Equal(t, []string{"Technical", "Ground Duty"}, outcome.EligibleDivisions)
}

func TestEvaluate_NoEligibleDivision(t *testing.T) {
	exam := mustParse(t, `{"posts":{"A":{"weight":"90"},"B":{"weight":"95"}}}`)
	outcome := Outcome("X", Evaluate(UserProfile{ProfileWeight: "60"}, exam))
	assert.False(t, outcome.Eligible)
	assert.NotNil(t, outcome.EligibleDivisions)
	assert.Empty(t, outcome.EligibleDivisions)
}

func TestEvaluate_DivisionsDefaultIndependently(t *testing.T) {
	exam := mustParse(t, `{
		"weight": "80",
		"posts": {
			"A": {"nccWing": "ARMY"},
			"B": {"weight": "40"},
			"C": {"weight": "60"}
		}
	}`)
	verdicts := Evaluate(UserProfile{ProfileWeight: "50", ProfileNCCWing: "ARMY"}, exam)
	require.Len(t, verdicts, 3)

	assert.True(t, verdicts[0].Eligible)
	for _, r := range verdicts[0].Results {
		if r.Field == FieldWeight {
			assert.Equal(t, NoRestriction, r.ExamRequirement)
		}
	}
	assert.True(t, verdicts[1].Eligible)
	assert.False(t, verdicts[2].Eligible)
	assert.Equal(t, []string{FieldWeight}, verdicts[2].FailedFields())
}

func TestEvaluate_AgeUsesReferenceDate(t *testing.T) {
	exam := mustParse(t, `{"ageLimit":"18-21","ageReferenceDate":"2025-01-01"}`)
	profile := UserProfile{ProfileDateOfBirth: "2004-06-15"}

	clock := func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	e := NewEvaluator(WithClock(clock))
	assert.True(t, e.Evaluate(profile, exam)[0].Eligible)

	exam.AgeReferenceDate = ""
	assert.False(t, e.Evaluate(profile, exam)[0].Eligible)
}

func TestEvaluate_GenderConditionedMarital(t *testing.T) {
	exam := mustParse(t, `{"maritalStatus":{"MALE":"UNMARRIED","FEMALE":"UNMARRIED, WIDOW"}}`)

	female := Evaluate(UserProfile{ProfileMaritalStatus: "WIDOW", ProfileGender: "FEMALE"}, exam)
	assert.True(t, female[0].Eligible)

	unknown := Evaluate(UserProfile{ProfileMaritalStatus: "WIDOW"}, exam)
	assert.False(t, unknown[0].Eligible)
	assert.Equal(t, []string{FieldMaritalStatus}, unknown[0].FailedFields())
}

func TestEvaluate_Idempotent(t *testing.T) {
	exam := mustParse(t, `{"nccWing":"ARMY","branches":{"A":{"weight":"50-80"},"B":{"gapYears":"NO"}}}`)
	profile := UserProfile{ProfileNCCWing: "Army Wing", ProfileWeight: "65", ProfileGapYears: "1"}

	first := Evaluate(profile, exam)
	second := Evaluate(profile, exam)
	assert.Equal(t, first, second)
}

func TestEvaluate_NilExam(t *testing.T) {
	assert.Empty(t, Evaluate(UserProfile{}, nil))
}

func TestEvaluator_CustomCheckers(t *testing.T) {
	e := NewEvaluator(WithCheckers(FieldChecker{
		Field:           FieldWeight,
		ProfileKey:      ProfileWeight,
		RequirementKeys: []string{"minWeightKg"},
		Check:           scalarChecker(FieldWeight, CheckWeight),
	}))
	exam, err := e.Parse([]byte(`{"minWeightKg": 70, "weight": "10"}`))
	require.NoError(t, err)

	verdicts := e.Evaluate(UserProfile{ProfileWeight: "65"}, exam)
	require.Len(t, verdicts, 1)
	require.Len(t, verdicts[0].Results, 1)
	assert.False(t, verdicts[0].Eligible)
	assert.Equal(t, "Minimum 70 kg", verdicts[0].Results[0].ExamRequirement)
}
