package scanexameligibility

import "exam-eligibility/internal/eligibility"

type Input struct {
	Profile        eligibility.UserProfile `json:"profile"`
	ScanID         string                  `json:"scanId,omitempty"`
	CandidateEmail string                  `json:"candidateEmail,omitempty"`
}

type Output struct {
	ScanID            string                        `json:"scanId"`
	Eligible          []eligibility.DivisionVerdict `json:"eligible"`
	Ineligible        []eligibility.DivisionVerdict `json:"ineligible"`
	EligibleCount     int                           `json:"eligibleCount"`
	IneligibleCount   int                           `json:"ineligibleCount"`
	TotalExamsChecked int                           `json:"totalExamsChecked"`
	Skipped           []eligibility.SkippedExam     `json:"skipped"`
	Summaries         []eligibility.ExamSummary     `json:"summaries"`
	Indexed           bool                          `json:"indexed"`
}
