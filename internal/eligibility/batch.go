package eligibility

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ExamSource is one entry of the exam corpus as loaded from storage. Data is
// the raw exam record; it is parsed inside the scan so that a malformed
// record only affects its own exam.
type ExamSource struct {
	Code  string
	Label string
	Data  []byte
}

func (s ExamSource) displayName() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Code
}

// ProgressFunc is called once per completed exam with the number of exams
// completed so far.
type ProgressFunc func(examName string, current, total int)

type examRun struct {
	verdicts []DivisionVerdict
	skip     *SkippedExam
}

// EvaluateAll runs the default evaluator over the corpus.
func EvaluateAll(ctx context.Context, profile UserProfile, corpus []ExamSource, onProgress ProgressFunc) (*BatchResult, error) {
	return defaultEvaluator.EvaluateAll(ctx, profile, corpus, onProgress)
}

// EvaluateAll evaluates every exam in the corpus and partitions the division
// verdicts into eligible and ineligible sets. Results keep corpus order
// regardless of how many exams run at once. An exam that cannot be parsed or
// evaluated is recorded in Skipped and the scan carries on. The context is
// checked between exams only.
func (e *Evaluator) EvaluateAll(ctx context.Context, profile UserProfile, corpus []ExamSource, onProgress ProgressFunc) (*BatchResult, error) {
	runs := make([]examRun, len(corpus))
	total := len(corpus)

	var (
		mu        sync.Mutex
		completed int
	)
	report := func(name string) {
		if onProgress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		completed++
		onProgress(name, completed, total)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := range corpus {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			runs[i] = e.evaluateSource(profile, corpus[i], i)
			report(corpus[i].displayName())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &BatchResult{
		Eligible:   []DivisionVerdict{},
		Ineligible: []DivisionVerdict{},
	}
	for _, run := range runs {
		if run.skip != nil {
			result.Skipped = append(result.Skipped, *run.skip)
			continue
		}
		result.TotalExamsChecked++
		for _, v := range run.verdicts {
			if v.Eligible {
				result.Eligible = append(result.Eligible, v)
			} else {
				result.Ineligible = append(result.Ineligible, v)
			}
		}
	}
	result.EligibleCount = len(result.Eligible)
	result.IneligibleCount = len(result.Ineligible)
	return result, nil
}

// positionalCode identifies an exam that carries no code of its own by its
// 1-based corpus position.
func positionalCode(pos int) string {
	return fmt.Sprintf("#%d", pos+1)
}

func (e *Evaluator) evaluateSource(profile UserProfile, src ExamSource, pos int) (run examRun) {
	if src.Code == "" {
		defer func() {
			if run.skip != nil && run.skip.ExamCode == "" {
				run.skip.ExamCode = positionalCode(pos)
			}
		}()
	}
	defer func() {
		if r := recover(); r != nil {
			run = examRun{skip: &SkippedExam{ExamCode: src.Code, Reason: fmt.Sprintf("evaluation failed: %v", r)}}
		}
	}()

	exam, err := e.Parse(src.Data)
	if err != nil {
		return examRun{skip: &SkippedExam{ExamCode: src.Code, Reason: err.Error()}}
	}
	code := src.Code
	if code == "" {
		code = exam.Code
	}
	if code == "" {
		code = positionalCode(pos)
	}
	label := src.Label
	if label == "" {
		label = exam.Label()
	}
	if label == "" {
		label = code
	}

	verdicts := e.Evaluate(profile, exam)
	for i := range verdicts {
		verdicts[i].ExamCode = code
		verdicts[i].ExamLabel = label
	}
	return examRun{verdicts: verdicts}
}
