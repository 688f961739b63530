package notifyeligibilityresults

import "exam-eligibility/internal/eligibility"

type Input struct {
	ScanID         string                    `json:"scanId"`
	CandidateEmail string                    `json:"candidateEmail"`
	CandidateName  string                    `json:"candidateName,omitempty"`
	Summaries      []eligibility.ExamSummary `json:"summaries"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent" or "disabled"
	SentAt         string `json:"sentAt"` // RFC 3339
}

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)
