package checkexameligibility

import (
	"encoding/json"

	"exam-eligibility/internal/eligibility"
)

// Input names an exam in the corpus by code, or carries the exam record
// inline. An inline record wins when both are set.
type Input struct {
	Profile  eligibility.UserProfile `json:"profile"`
	ExamCode string                  `json:"examCode,omitempty"`
	Exam     json.RawMessage         `json:"exam,omitempty"`
}

type Output struct {
	ExamCode          string                        `json:"examCode"`
	ExamLabel         string                        `json:"examLabel,omitempty"`
	Eligible          bool                          `json:"eligible"`
	EligibleDivisions []string                      `json:"eligibleDivisions"`
	Divisions         []eligibility.DivisionVerdict `json:"divisions"`
}
