package eligibility

import (
	"time"
)

// Evaluator runs a checker set against exam records. It holds no state
// between calls and is safe for concurrent use.
type Evaluator struct {
	checkers    []FieldChecker
	keys        map[string]bool
	now         func() time.Time
	concurrency int
}

type Option func(*Evaluator)

// WithCheckers replaces the default checker set.
func WithCheckers(checkers ...FieldChecker) Option {
	return func(e *Evaluator) {
		e.checkers = append([]FieldChecker(nil), checkers...)
	}
}

// WithClock sets the clock used for age checks when an exam does not name
// an age reference date.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// WithConcurrency bounds how many exams EvaluateAll evaluates at once.
func WithConcurrency(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		checkers:    DefaultCheckers(),
		now:         time.Now,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.keys = requirementKeys(e.checkers)
	return e
}

var defaultEvaluator = NewEvaluator()

// Evaluate runs the default checker set against one exam.
func Evaluate(profile UserProfile, exam *ExamRecord) []DivisionVerdict {
	return defaultEvaluator.Evaluate(profile, exam)
}

// Parse decodes an exam record, keeping the requirement keys this
// evaluator's checkers read.
func (e *Evaluator) Parse(data []byte) (*ExamRecord, error) {
	return parseExamRecord(data, e.keys)
}

// Evaluate produces one DivisionVerdict per evaluation unit of the exam, in
// source order. Every checker runs exactly once per unit.
func (e *Evaluator) Evaluate(profile UserProfile, exam *ExamRecord) []DivisionVerdict {
	if exam == nil {
		return []DivisionVerdict{}
	}
	cc := CheckContext{
		Gender: profile.Get(ProfileGender),
		AsOf:   e.referenceDate(exam),
	}
	units := exam.Units()
	out := make([]DivisionVerdict, 0, len(units))
	for _, u := range units {
		out = append(out, e.evaluateUnit(profile, u, cc))
	}
	return out
}

func (e *Evaluator) evaluateUnit(profile UserProfile, unit Division, cc CheckContext) DivisionVerdict {
	dv := DivisionVerdict{
		Division: unit.Name,
		Session:  unit.Session,
		Eligible: true,
		Results:  make([]FieldVerdict, 0, len(e.checkers)),
	}
	for _, c := range e.checkers {
		fv := c.Check(profile.Get(c.ProfileKey), c.Requirement(unit.Requirements), cc)
		if fv.Field == "" {
			fv.Field = c.Field
		}
		dv.Results = append(dv.Results, fv)
		dv.Eligible = dv.Eligible && fv.Eligible
	}
	return dv
}

func (e *Evaluator) referenceDate(exam *ExamRecord) time.Time {
	if t, ok := ParseDate(exam.AgeReferenceDate); ok {
		return t
	}
	return e.now()
}
