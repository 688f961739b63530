// Package corpus loads exam records from the store of record and caches
// them for the eligibility workers.
package corpus

import (
	"context"
	"errors"

	"exam-eligibility/internal/eligibility"
)

// ErrExamNotFound is returned by Get when no exam has the requested code.
var ErrExamNotFound = errors.New("EXAM_NOT_FOUND")

// Source provides the exam corpus as raw records. Parsing is left to the
// evaluator so a malformed record only affects its own exam.
type Source interface {
	LoadAll(ctx context.Context) ([]eligibility.ExamSource, error)
	Get(ctx context.Context, code string) (eligibility.ExamSource, error)
}
