package scanexameligibility

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"exam-eligibility/internal/common/errors"
	"exam-eligibility/internal/common/logger"
	"exam-eligibility/internal/common/metrics"
	"exam-eligibility/internal/common/observability"
	"exam-eligibility/internal/corpus"
	"exam-eligibility/internal/eligibility"
	"exam-eligibility/internal/results"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "scan-exam-eligibility"

// ResultIndexer stores finished scans. It is optional.
type ResultIndexer interface {
	IndexScan(ctx context.Context, doc results.ScanDocument) error
}

type Handler struct {
	config       *Config
	corpus       corpus.Source
	evaluator    *eligibility.Evaluator
	indexer      ResultIndexer
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

type HandlerOptions struct {
	Config    *Config
	Corpus    corpus.Source
	Evaluator *eligibility.Evaluator
	Indexer   ResultIndexer
	Obs       *observability.Observability
	Logger    logger.Logger
}

func NewHandler(opts HandlerOptions) *Handler {
	log := opts.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	obs := opts.Obs
	if obs == nil {
		obs = &observability.Observability{}
	}
	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = eligibility.NewEvaluator()
	}
	return &Handler{
		config:       opts.Config,
		corpus:       opts.Corpus,
		evaluator:    evaluator,
		indexer:      opts.Indexer,
		obs:          obs,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
		now:          time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput(job.Variables)
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	status := "completed"
	if err != nil {
		status = "failed"
		h.failJob(client, job, err)
	} else {
		h.completeJob(ctx, client, job, output)
		metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	}
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, status)
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(start), status)
}

func parseInput(variables string) (*Input, error) {
	if res := inputSchema.ValidateJSON(variables); !res.Valid {
		return nil, errors.NewProfileValidationFailedError(res.Error())
	}
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewProfileValidationFailedError(err.Error())
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	scanID := input.ScanID
	if scanID == "" {
		scanID = uuid.New().String()
	}
	log := h.logger.WithFields(map[string]interface{}{"scanId": scanID})

	exams, err := h.corpus.LoadAll(ctx)
	if err != nil {
		return nil, errors.NewCorpusLoadFailedError(err)
	}

	start := time.Now()
	result, err := h.evaluator.EvaluateAll(ctx, input.Profile, exams, h.progress(log))
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewScanCancelledError(err)
		}
		return nil, errors.NewInternalError(err)
	}
	elapsed := time.Since(start)

	h.fillSessions(result.Eligible)
	h.fillSessions(result.Ineligible)

	metrics.RecordScan(result.EligibleCount, result.IneligibleCount, len(result.Skipped), result.TotalExamsChecked, elapsed.Seconds())
	h.obs.RecordScan(ctx, result.TotalExamsChecked, len(result.Skipped))

	for _, s := range result.Skipped {
		log.Warn("exam skipped", map[string]interface{}{
			"examCode": s.ExamCode,
			"reason":   s.Reason,
		})
	}
	log.Info("scan completed", map[string]interface{}{
		"examsChecked":    result.TotalExamsChecked,
		"eligibleCount":   result.EligibleCount,
		"ineligibleCount": result.IneligibleCount,
		"skipped":         len(result.Skipped),
		"durationMs":      elapsed.Milliseconds(),
	})

	output := &Output{
		ScanID:            scanID,
		Eligible:          result.Eligible,
		Ineligible:        result.Ineligible,
		EligibleCount:     result.EligibleCount,
		IneligibleCount:   result.IneligibleCount,
		TotalExamsChecked: result.TotalExamsChecked,
		Skipped:           result.Skipped,
		Summaries:         result.Summaries(),
	}
	if output.Skipped == nil {
		output.Skipped = []eligibility.SkippedExam{}
	}

	if h.indexer != nil {
		doc := results.NewScanDocument(scanID, input.CandidateEmail, result, h.now())
		if err := h.indexer.IndexScan(ctx, doc); err != nil {
			return nil, errors.NewResultIndexFailedError(scanID, err)
		}
		output.Indexed = true
	}
	return output, nil
}

func (h *Handler) progress(log logger.Logger) eligibility.ProgressFunc {
	every := h.config.ProgressEvery
	return func(examName string, current, total int) {
		log.Debug("exam evaluated", map[string]interface{}{
			"exam":    examName,
			"current": current,
			"total":   total,
		})
		if current == total || (every > 0 && current%every == 0) {
			log.Info("scan progress", map[string]interface{}{
				"current": current,
				"total":   total,
			})
		}
	}
}

func (h *Handler) fillSessions(verdicts []eligibility.DivisionVerdict) {
	if h.config.DefaultSession == "" {
		return
	}
	for i := range verdicts {
		if verdicts[i].Session == "" {
			verdicts[i].Session = h.config.DefaultSession
		}
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.AsStandardError(err).Code)).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
}

// Execute is exported for tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
