package checkexameligibility

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"exam-eligibility/internal/common/errors"
	"exam-eligibility/internal/common/logger"
	"exam-eligibility/internal/corpus"
	"exam-eligibility/internal/eligibility"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	t     *testing.T
	debug []map[string]interface{}
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
	entry := map[string]interface{}{"msg": msg}
	for k, v := range fields {
		entry[k] = v
	}
	tl.debug = append(tl.debug, entry)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

type fakeSource struct {
	exams map[string]eligibility.ExamSource
	err   error
}

func (f *fakeSource) LoadAll(ctx context.Context) ([]eligibility.ExamSource, error) {
	out := []eligibility.ExamSource{}
	for _, e := range f.exams {
		out = append(out, e)
	}
	return out, f.err
}

func (f *fakeSource) Get(ctx context.Context, code string) (eligibility.ExamSource, error) {
	if f.err != nil {
		return eligibility.ExamSource{}, f.err
	}
	e, ok := f.exams[code]
	if !ok {
		return e, corpus.ErrExamNotFound
	}
	return e, nil
}

func newTestHandler(t *testing.T, src corpus.Source) *Handler {
	clock := func() time.Time { return time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC) }
	return NewHandler(
		&Config{Timeout: 5 * time.Second, DefaultSession: "2025-26"},
		src,
		eligibility.NewEvaluator(eligibility.WithClock(clock)),
		&testLogger{t: t},
	)
}

func defenceCorpus() *fakeSource {
	return &fakeSource{exams: map[string]eligibility.ExamSource{
		"CDS": {Code: "CDS", Data: []byte(`{
			"code": "CDS",
			"name": "Combined Defence Services",
			"session": "CDS-II 2025",
			"academies": {
				"IMA": {"weight": "50", "maritalStatus": "UNMARRIED"},
				"OTA": {"weight": {"MALE": "50", "FEMALE": "42"}}
			}
		}`)},
		"BROKEN": {Code: "BROKEN", Data: []byte(`{"weight": {"ROBOT": "50"}}`)},
	}}
}

func TestHandler_Execute_ByCode(t *testing.T) {
	h := newTestHandler(t, defenceCorpus())

	out, err := h.Execute(context.Background(), &Input{
		Profile:  eligibility.UserProfile{"gender": "Female", "weight": "45", "maritalStatus": "Married"},
		ExamCode: "CDS",
	})
	require.NoError(t, err)

	assert.Equal(t, "CDS", out.ExamCode)
	assert.Equal(t, "Combined Defence Services", out.ExamLabel)
	assert.True(t, out.Eligible)
	assert.Equal(t, []string{"OTA"}, out.EligibleDivisions)
	require.Len(t, out.Divisions, 2)
	assert.Equal(t, "IMA", out.Divisions[0].Division)
	assert.False(t, out.Divisions[0].Eligible)
	assert.Equal(t, "CDS-II 2025", out.Divisions[1].Session)
	assert.Equal(t, "CDS", out.Divisions[1].ExamCode)
}

func TestHandler_Execute_LogsFailedFields(t *testing.T) {
	log := &testLogger{t: t}
	h := NewHandler(&Config{Timeout: 5 * time.Second}, defenceCorpus(), eligibility.NewEvaluator(), log)

	_, err := h.Execute(context.Background(), &Input{
		Profile:  eligibility.UserProfile{"gender": "Female", "weight": "45", "maritalStatus": "Married"},
		ExamCode: "CDS",
	})
	require.NoError(t, err)

	var entries []map[string]interface{}
	for _, e := range log.debug {
		if e["msg"] == "division ineligible" {
			entries = append(entries, e)
		}
	}
	require.Len(t, entries, 1)
	assert.Equal(t, "IMA", entries[0]["division"])
	assert.ElementsMatch(t,
		[]string{eligibility.FieldWeight, eligibility.FieldMaritalStatus},
		entries[0]["failedFields"])
}

func TestHandler_Execute_InlineExam(t *testing.T) {
	h := newTestHandler(t, &fakeSource{})

	out, err := h.Execute(context.Background(), &Input{
		Profile:  eligibility.UserProfile{"nationality": "Indian"},
		ExamCode: "SSC-GD",
		Exam:     json.RawMessage(`{"nationality": "Indian, Nepali"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "SSC-GD", out.ExamCode)
	assert.True(t, out.Eligible)
	assert.Equal(t, []string{eligibility.FlatDivision}, out.EligibleDivisions)
	assert.Equal(t, "2025-26", out.Divisions[0].Session)
}

func TestHandler_Execute_CorpusLabel(t *testing.T) {
	src := &fakeSource{exams: map[string]eligibility.ExamSource{
		"SSC-GD": {Code: "SSC-GD", Label: "SSC Constable GD", Data: []byte(`{"nationality": "Indian"}`)},
	}}
	h := newTestHandler(t, src)

	out, err := h.Execute(context.Background(), &Input{
		Profile:  eligibility.UserProfile{"nationality": "Indian"},
		ExamCode: "SSC-GD",
	})
	require.NoError(t, err)
	assert.Equal(t, "SSC Constable GD", out.ExamLabel)
	require.Len(t, out.Divisions, 1)
	assert.Equal(t, "SSC Constable GD", out.Divisions[0].ExamLabel)
	assert.Equal(t, "2025-26", out.Divisions[0].Session)
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source *fakeSource
		input  *Input
		code   errors.ErrorCode
	}{
		{
			name:   "unknown exam",
			source: defenceCorpus(),
			input:  &Input{ExamCode: "UPSC"},
			code:   errors.ErrCodeExamNotFound,
		},
		{
			name:   "corpus unavailable",
			source: &fakeSource{err: stderrors.New("connection refused")},
			input:  &Input{ExamCode: "CDS"},
			code:   errors.ErrCodeCorpusLoadFailed,
		},
		{
			name:   "invalid record",
			source: defenceCorpus(),
			input:  &Input{ExamCode: "BROKEN"},
			code:   errors.ErrCodeExamRecordInvalid,
		},
		{
			name:   "no exam given",
			source: defenceCorpus(),
			input:  &Input{},
			code:   errors.ErrCodeProfileValidationFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestHandler(t, tt.source).Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.AsStandardError(err).Code)
		})
	}
}

func TestParseInput(t *testing.T) {
	input, err := parseInput(`{"profile":{"gender":"M","weight":61.5,"pwd":null},"examCode":"NDA"}`)
	require.NoError(t, err)
	assert.Equal(t, "NDA", input.ExamCode)
	assert.Equal(t, "61.5", input.Profile.Get("weight"))
	_, present := input.Profile["pwd"]
	assert.False(t, present)

	for _, vars := range []string{
		`{"examCode":"NDA"}`,
		`{"profile":{"gender":"robot"},"examCode":"NDA"}`,
		`{"profile":{"education":["12TH"]},"examCode":"NDA"}`,
		`{"profile":{},"examCode":""}`,
	} {
		_, err := parseInput(vars)
		require.Error(t, err, vars)
		assert.Equal(t, errors.ErrCodeProfileValidationFailed, errors.AsStandardError(err).Code, vars)
	}
}
