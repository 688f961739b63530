package checkexameligibility

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"exam-eligibility/internal/common/errors"
	"exam-eligibility/internal/common/logger"
	"exam-eligibility/internal/common/metrics"
	"exam-eligibility/internal/corpus"
	"exam-eligibility/internal/eligibility"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "check-exam-eligibility"

type Handler struct {
	config       *Config
	corpus       corpus.Source
	evaluator    *eligibility.Evaluator
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, source corpus.Source, evaluator *eligibility.Evaluator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		corpus:       source,
		evaluator:    evaluator,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
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
	if err != nil {
		h.failJob(client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
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
	src, err := h.examData(ctx, input)
	if err != nil {
		return nil, err
	}

	exam, err := h.evaluator.Parse(src.Data)
	if err != nil {
		return nil, errors.NewExamRecordInvalidError(input.ExamCode, err)
	}
	if exam.Code == "" {
		exam.Code = input.ExamCode
	}
	label := exam.Label()
	if exam.Name == "" && src.Label != "" {
		label = src.Label
	}

	verdicts := h.evaluator.Evaluate(input.Profile, exam)
	for i := range verdicts {
		verdicts[i].ExamCode = exam.Code
		verdicts[i].ExamLabel = label
		if verdicts[i].Session == "" {
			verdicts[i].Session = h.config.DefaultSession
		}
	}
	outcome := eligibility.Outcome(exam.Code, verdicts)

	result := "ineligible"
	if outcome.Eligible {
		result = "eligible"
	}
	metrics.ExamsEvaluated.WithLabelValues(result).Inc()

	for _, v := range verdicts {
		if v.Eligible {
			continue
		}
		h.logger.Debug("division ineligible", map[string]interface{}{
			"examCode":     exam.Code,
			"division":     v.Division,
			"failedFields": v.FailedFields(),
		})
	}

	h.logger.Info("exam evaluated", map[string]interface{}{
		"examCode":          exam.Code,
		"eligible":          outcome.Eligible,
		"eligibleDivisions": len(outcome.EligibleDivisions),
		"divisions":         len(verdicts),
	})

	return &Output{
		ExamCode:          outcome.ExamCode,
		ExamLabel:         label,
		Eligible:          outcome.Eligible,
		EligibleDivisions: outcome.EligibleDivisions,
		Divisions:         outcome.Divisions,
	}, nil
}

// examData prefers an exam record passed inline with the job over the corpus.
func (h *Handler) examData(ctx context.Context, input *Input) (eligibility.ExamSource, error) {
	if len(input.Exam) > 0 && string(input.Exam) != "null" {
		return eligibility.ExamSource{Code: input.ExamCode, Data: input.Exam}, nil
	}
	if input.ExamCode == "" {
		return eligibility.ExamSource{}, errors.NewProfileValidationFailedError("either examCode or exam is required")
	}

	src, err := h.corpus.Get(ctx, input.ExamCode)
	switch {
	case stderrors.Is(err, corpus.ErrExamNotFound):
		return eligibility.ExamSource{}, errors.NewExamNotFoundError(input.ExamCode)
	case err != nil:
		return eligibility.ExamSource{}, errors.NewCorpusLoadFailedError(err)
	}
	return src, nil
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
