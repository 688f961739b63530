package results

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"exam-eligibility/internal/eligibility"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r), nil
}

func esResponse(status int, body string) *http.Response {
	h := http.Header{}
	h.Set("X-Elastic-Product", "Elasticsearch")
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newIndexer(t *testing.T, rt roundTripFunc) *Indexer {
	t.Helper()
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://es:9200"},
		Transport: rt,
	})
	require.NoError(t, err)
	return NewIndexer(client, "eligibility-scans")
}

func sampleResult() *eligibility.BatchResult {
	return &eligibility.BatchResult{
		Eligible: []eligibility.DivisionVerdict{
			{ExamCode: "CDS", ExamLabel: "CDS I", Division: "IMA", Eligible: true},
			{ExamCode: "CDS", ExamLabel: "CDS I", Division: "OTA", Eligible: true},
		},
		Ineligible:        []eligibility.DivisionVerdict{{ExamCode: "NDA", Division: "ALL"}},
		EligibleCount:     2,
		IneligibleCount:   1,
		TotalExamsChecked: 2,
		Skipped:           []eligibility.SkippedExam{{ExamCode: "BAD", Reason: "invalid exam record"}},
	}
}

func TestNewScanDocument(t *testing.T) {
	at := time.Date(2025, 8, 1, 10, 0, 0, 0, time.FixedZone("IST", 19800))
	doc := NewScanDocument("scan-1", "a@b.c", sampleResult(), at)

	assert.Equal(t, 2, doc.EligibleCount)
	assert.Equal(t, 2, doc.TotalExamsChecked)
	require.Len(t, doc.Summaries, 1)
	assert.Equal(t, []string{"IMA", "OTA"}, doc.Summaries[0].Divisions)
	assert.Equal(t, time.UTC, doc.CompletedAt.Location())
}

func TestIndexer_IndexScan(t *testing.T) {
	var (
		method, path string
		sent         ScanDocument
	)
	idx := newIndexer(t, func(r *http.Request) *http.Response {
		method, path = r.Method, r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		return esResponse(http.StatusCreated, `{"result":"created"}`)
	})

	doc := NewScanDocument("scan-1", "a@b.c", sampleResult(), time.Now())
	require.NoError(t, idx.IndexScan(context.Background(), doc))

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/eligibility-scans/_doc/scan-1", path)
	assert.Equal(t, "scan-1", sent.ScanID)
	assert.Equal(t, "BAD", sent.Skipped[0].ExamCode)
}

func TestIndexer_IndexScanError(t *testing.T) {
	idx := newIndexer(t, func(r *http.Request) *http.Response {
		return esResponse(http.StatusServiceUnavailable, `{"error":"unavailable"}`)
	})
	err := idx.IndexScan(context.Background(), ScanDocument{ScanID: "scan-1"})
	assert.ErrorContains(t, err, "503")
}

func TestIndexer_GetScan(t *testing.T) {
	idx := newIndexer(t, func(r *http.Request) *http.Response {
		if strings.HasSuffix(r.URL.Path, "/missing") {
			return esResponse(http.StatusNotFound, `{"found":false}`)
		}
		return esResponse(http.StatusOK, `{"found":true,"_source":{"scanId":"scan-1","eligibleCount":4}}`)
	})

	doc, err := idx.GetScan(context.Background(), "scan-1")
	require.NoError(t, err)
	assert.Equal(t, 4, doc.EligibleCount)

	_, err = idx.GetScan(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrScanNotFound)
}

func TestIndexMappingIsValidJSON(t *testing.T) {
	assert.True(t, json.Valid([]byte(IndexMapping)))
}
