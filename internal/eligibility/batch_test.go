package eligibility

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func buildCorpus(n int) []ExamSource {
	corpus := make([]ExamSource, 0, n)
	for i := 0; i < n; i++ {
		corpus = append(corpus, ExamSource{
			Code: fmt.Sprintf("EXAM-%02d", i),
			Data: []byte(fmt.Sprintf(`{"name":"Exam %d","weight":"%d"}`, i, 40+i*5)),
		})
	}
	return corpus
}

func TestEvaluateAll_PartitionsAndCounts(t *testing.T) {
	corpus := buildCorpus(6)
	corpus = append(corpus, ExamSource{
		Code:  "NDA",
		Label: "National Defence Academy",
		Data:  []byte(`{"posts":{"Army":{"weight":"50"},"Navy":{"weight":"70"}}}`),
	})
	profile := UserProfile{ProfileWeight: "55"}

	result, err := EvaluateAll(context.Background(), profile, corpus, nil)
	require.NoError(t, err)

	// weights 40, 45, 50, 55 pass; 60, 65 fail; NDA Army passes, Navy fails
	assert.Equal(t, 7, result.TotalExamsChecked)
	assert.Equal(t, 5, result.EligibleCount)
	assert.Equal(t, 3, result.IneligibleCount)
	assert.Len(t, result.Eligible, result.EligibleCount)
	assert.Len(t, result.Ineligible, result.IneligibleCount)
	assert.Empty(t, result.Skipped)

	assert.Equal(t, "EXAM-00", result.Eligible[0].ExamCode)
	assert.Equal(t, "Exam 0", result.Eligible[0].ExamLabel)
	last := result.Eligible[len(result.Eligible)-1]
	assert.Equal(t, "NDA", last.ExamCode)
	assert.Equal(t, "National Defence Academy", last.ExamLabel)
	assert.Equal(t, "Army", last.Division)

	summaries := result.Summaries()
	require.Len(t, summaries, 5)
	assert.Equal(t, ExamSummary{
		ExamCode:      "NDA",
		ExamLabel:     "National Defence Academy",
		Divisions:     []string{"Army"},
		TotalEligible: 1,
	}, summaries[4])
}

func TestEvaluateAll_IsolatesMalformedExam(t *testing.T) {
	corpus := buildCorpus(10)
	corpus[4].Data = []byte(`{"weight": "50"`)
	profile := UserProfile{ProfileWeight: "100"}

	var calls []int
	result, err := EvaluateAll(context.Background(), profile, corpus, func(name string, current, total int) {
		assert.Equal(t, 10, total)
		calls = append(calls, current)
	})
	require.NoError(t, err)

	assert.Equal(t, 9, result.TotalExamsChecked)
	assert.Equal(t, 9, result.EligibleCount+result.IneligibleCount)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "EXAM-04", result.Skipped[0].ExamCode)
	assert.NotEmpty(t, result.Skipped[0].Reason)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, calls)

	for _, v := range result.Eligible {
		assert.NotEqual(t, "EXAM-04", v.ExamCode)
	}
}

func TestEvaluateAll_RecoversCheckerPanic(t *testing.T) {
	e := NewEvaluator(WithCheckers(FieldChecker{
		Field:           FieldWeight,
		ProfileKey:      ProfileWeight,
		RequirementKeys: []string{"weight"},
		Check: func(user string, req Requirement, cc CheckContext) FieldVerdict {
			if req.Value() == "60" {
				panic("checker blew up")
			}
			return CheckWeight(user, req.Value())
		},
	}))

	result, err := e.EvaluateAll(context.Background(), UserProfile{ProfileWeight: "100"}, buildCorpus(5), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalExamsChecked)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "EXAM-04", result.Skipped[0].ExamCode)
	assert.Contains(t, result.Skipped[0].Reason, "checker blew up")
}

func TestEvaluateAll_ConcurrentMatchesSequential(t *testing.T) {
	corpus := buildCorpus(40)
	corpus[7].Data = []byte(`not json`)
	profile := UserProfile{ProfileWeight: "120"}

	sequential, err := NewEvaluator().EvaluateAll(context.Background(), profile, corpus, nil)
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		seen  = map[string]bool{}
		count int
	)
	concurrent, err := NewEvaluator(WithConcurrency(8)).EvaluateAll(context.Background(), profile, corpus, func(name string, current, total int) {
		mu.Lock()
		defer mu.Unlock()
		seen[name] = true
		count++
	})
	require.NoError(t, err)

	assert.Equal(t, sequential, concurrent)
	assert.Equal(t, 40, count)
	assert.Len(t, seen, 40)
}

func TestEvaluateAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewEvaluator(WithConcurrency(4)).EvaluateAll(ctx, UserProfile{}, buildCorpus(20), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestEvaluateAll_EmptyCorpus(t *testing.T) {
	result, err := EvaluateAll(context.Background(), UserProfile{}, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, result.Eligible)
	assert.NotNil(t, result.Ineligible)
	assert.Zero(t, result.TotalExamsChecked)
	assert.Empty(t, result.Summaries())
}

func TestEvaluateAll_UncodedExamsStaySeparate(t *testing.T) {
	corpus := []ExamSource{
		{Data: []byte(`{"weight":"40"}`)},
		{Data: []byte(`{"posts":{"A":{},"B":{}}}`)},
		{Data: []byte(`{"weight": `)},
	}

	result, err := EvaluateAll(context.Background(), UserProfile{ProfileWeight: "55"}, corpus, nil)
	require.NoError(t, err)

	summaries := result.Summaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, "#1", summaries[0].ExamCode)
	assert.Equal(t, 1, summaries[0].TotalEligible)
	assert.Equal(t, "#2", summaries[1].ExamCode)
	assert.Equal(t, []string{"A", "B"}, summaries[1].Divisions)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "#3", result.Skipped[0].ExamCode)
}

func TestSummaries_GroupsByLabelWithoutCode(t *testing.T) {
	result := &BatchResult{Eligible: []DivisionVerdict{
		{ExamLabel: "Exam One", Division: FlatDivision, Eligible: true},
		{ExamLabel: "Exam Two", Division: "X", Eligible: true},
		{ExamLabel: "Exam Two", Division: "Y", Eligible: true},
	}}

	summaries := result.Summaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, "Exam One", summaries[0].ExamLabel)
	assert.Equal(t, []string{"X", "Y"}, summaries[1].Divisions)
}
