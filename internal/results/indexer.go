// Package results stores completed eligibility scans in Elasticsearch.
package results

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"exam-eligibility/internal/eligibility"

	"github.com/elastic/go-elasticsearch/v8"
)

var ErrScanNotFound = errors.New("SCAN_NOT_FOUND")

// IndexMapping is the mapping used when the results index is created.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "scanId":            {"type": "keyword"},
      "candidateEmail":    {"type": "keyword"},
      "eligibleCount":     {"type": "integer"},
      "ineligibleCount":   {"type": "integer"},
      "totalExamsChecked": {"type": "integer"},
      "summaries": {
        "type": "nested",
        "properties": {
          "examCode":      {"type": "keyword"},
          "examLabel":     {"type": "text"},
          "divisions":     {"type": "keyword"},
          "totalEligible": {"type": "integer"}
        }
      },
      "skipped": {
        "properties": {
          "examCode": {"type": "keyword"},
          "reason":   {"type": "text"}
        }
      },
      "completedAt": {"type": "date"}
    }
  }
}`

// ScanDocument is the indexed form of one scan. Division verdicts are kept
// out of the index; the summaries are what the result pages list.
type ScanDocument struct {
	ScanID            string                    `json:"scanId"`
	CandidateEmail    string                    `json:"candidateEmail,omitempty"`
	EligibleCount     int                       `json:"eligibleCount"`
	IneligibleCount   int                       `json:"ineligibleCount"`
	TotalExamsChecked int                       `json:"totalExamsChecked"`
	Summaries         []eligibility.ExamSummary `json:"summaries"`
	Skipped           []eligibility.SkippedExam `json:"skipped,omitempty"`
	CompletedAt       time.Time                 `json:"completedAt"`
}

// NewScanDocument builds the document for a finished batch.
func NewScanDocument(scanID, email string, result *eligibility.BatchResult, completedAt time.Time) ScanDocument {
	return ScanDocument{
		ScanID:            scanID,
		CandidateEmail:    email,
		EligibleCount:     result.EligibleCount,
		IneligibleCount:   result.IneligibleCount,
		TotalExamsChecked: result.TotalExamsChecked,
		Summaries:         result.Summaries(),
		Skipped:           result.Skipped,
		CompletedAt:       completedAt.UTC(),
	}
}

type Indexer struct {
	client *elasticsearch.Client
	index  string
}

func NewIndexer(client *elasticsearch.Client, index string) *Indexer {
	return &Indexer{client: client, index: index}
}

func (i *Indexer) Index() string { return i.index }

// IndexScan writes doc under its scan ID, replacing any earlier version.
func (i *Indexer) IndexScan(ctx context.Context, doc ScanDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode scan %s: %w", doc.ScanID, err)
	}

	res, err := i.client.Index(i.index, bytes.NewReader(body),
		i.client.Index.WithContext(ctx),
		i.client.Index.WithDocumentID(doc.ScanID),
	)
	if err != nil {
		return fmt.Errorf("index scan %s: %w", doc.ScanID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index scan %s: %s", doc.ScanID, res.Status())
	}
	return nil
}

// GetScan fetches a previously indexed scan.
func (i *Indexer) GetScan(ctx context.Context, scanID string) (*ScanDocument, error) {
	res, err := i.client.Get(i.index, scanID, i.client.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get scan %s: %w", scanID, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrScanNotFound, scanID)
	}
	if res.IsError() {
		return nil, fmt.Errorf("get scan %s: %s", scanID, res.Status())
	}

	var hit struct {
		Source ScanDocument `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&hit); err != nil {
		return nil, fmt.Errorf("decode scan %s: %w", scanID, err)
	}
	return &hit.Source, nil
}
