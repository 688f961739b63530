// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// ExamsEvaluated counts exams by outcome: eligible, ineligible or skipped.
	ExamsEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_exams_evaluated_total",
			Help: "Exams evaluated against a candidate profile, by outcome",
		},
		[]string{"outcome"},
	)

	DivisionsEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_divisions_evaluated_total",
			Help: "Division verdicts produced, by eligibility",
		},
		[]string{"eligible"},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eligibility_scan_duration_seconds",
			Help:    "Duration of a full corpus scan in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	CorpusCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_corpus_cache_requests_total",
			Help: "Corpus cache lookups, by result",
		},
		[]string{"result"},
	)
)

// RecordScan records the outcome counts of one corpus scan.
func RecordScan(eligible, ineligible, skipped, exams int, seconds float64) {
	DivisionsEvaluated.WithLabelValues("true").Add(float64(eligible))
	DivisionsEvaluated.WithLabelValues("false").Add(float64(ineligible))
	ExamsEvaluated.WithLabelValues("skipped").Add(float64(skipped))
	ExamsEvaluated.WithLabelValues("checked").Add(float64(exams))
	ScanDuration.Observe(seconds)
}
