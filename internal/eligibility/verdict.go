package eligibility

// FieldVerdict is the outcome of one checker against one requirement.
type FieldVerdict struct {
	Field             string            `json:"field"`
	UserValue         string            `json:"userValue"`
	ExamRequirement   string            `json:"examRequirement"`
	Eligible          bool              `json:"eligible"`
	Reason            string            `json:"reason,omitempty"`
	GenderRequirement map[string]string `json:"genderRequirement,omitempty"`
}

// DivisionVerdict aggregates every field verdict for one division of an
// exam. Eligible is true only if every result is eligible.
type DivisionVerdict struct {
	ExamCode  string         `json:"examCode,omitempty"`
	ExamLabel string         `json:"examLabel,omitempty"`
	Division  string         `json:"division"`
	Session   string         `json:"session"`
	Eligible  bool           `json:"eligible"`
	Results   []FieldVerdict `json:"results"`
}

// FailedFields lists the fields that made the division ineligible.
func (d DivisionVerdict) FailedFields() []string {
	var out []string
	for _, r := range d.Results {
		if !r.Eligible {
			out = append(out, r.Field)
		}
	}
	return out
}

// ExamOutcome is the exam-level view used in exam-basis mode.
type ExamOutcome struct {
	ExamCode          string            `json:"examCode"`
	Eligible          bool              `json:"eligible"`
	EligibleDivisions []string          `json:"eligibleDivisions"`
	Divisions         []DivisionVerdict `json:"divisions"`
}

// Outcome derives exam-level eligibility: a candidate is eligible for the
// exam when eligible for at least one division.
func Outcome(examCode string, verdicts []DivisionVerdict) ExamOutcome {
	out := ExamOutcome{
		ExamCode:          examCode,
		EligibleDivisions: []string{},
		Divisions:         verdicts,
	}
	for _, v := range verdicts {
		if v.Eligible {
			out.EligibleDivisions = append(out.EligibleDivisions, v.Division)
		}
	}
	out.Eligible = len(out.EligibleDivisions) > 0
	return out
}

// SkippedExam records an exam that could not be evaluated during a scan.
type SkippedExam struct {
	ExamCode string `json:"examCode"`
	Reason   string `json:"reason"`
}

// BatchResult accumulates division verdicts across the exam corpus.
type BatchResult struct {
	Eligible          []DivisionVerdict `json:"eligible"`
	Ineligible        []DivisionVerdict `json:"ineligible"`
	EligibleCount     int               `json:"eligibleCount"`
	IneligibleCount   int               `json:"ineligibleCount"`
	TotalExamsChecked int               `json:"totalExamsChecked"`
	Skipped           []SkippedExam     `json:"skipped,omitempty"`
}

// ExamSummary groups eligible divisions by exam for display.
type ExamSummary struct {
	ExamCode      string   `json:"examCode"`
	ExamLabel     string   `json:"examLabel"`
	Divisions     []string `json:"divisions"`
	TotalEligible int      `json:"totalEligible"`
}

// Summaries groups the eligible division verdicts back by exam, in the
// order exams first appear in the eligible list. Verdicts without an exam
// code are grouped by label.
func (b *BatchResult) Summaries() []ExamSummary {
	if b == nil {
		return nil
	}
	index := make(map[string]int)
	out := []ExamSummary{}
	for _, v := range b.Eligible {
		key := "code:" + v.ExamCode
		if v.ExamCode == "" {
			key = "label:" + v.ExamLabel
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, ExamSummary{
				ExamCode:  v.ExamCode,
				ExamLabel: v.ExamLabel,
				Divisions: []string{},
			})
		}
		out[i].Divisions = append(out[i].Divisions, v.Division)
		out[i].TotalEligible++
	}
	return out
}
