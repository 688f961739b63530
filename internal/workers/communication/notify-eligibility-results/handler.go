package notifyeligibilityresults

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"exam-eligibility/internal/common/aws"
	"exam-eligibility/internal/common/errors"
	"exam-eligibility/internal/common/logger"
	"exam-eligibility/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "notify-eligibility-results"

// EmailSender delivers one email and returns the provider message ID.
type EmailSender interface {
	SendEmail(ctx context.Context, email aws.Email) (string, error)
}

type Handler struct {
	config       *Config
	sender       EmailSender
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
	now          func() time.Time
}

func NewHandler(config *Config, sender EmailSender, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		sender:       sender,
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
	notificationID := uuid.New().String()
	sentAt := h.now().UTC().Format(time.RFC3339)

	if !h.config.EmailEnabled || h.sender == nil {
		h.logger.Info("email notifications disabled", map[string]interface{}{
			"scanId": input.ScanID,
		})
		return &Output{NotificationID: notificationID, Status: StatusDisabled, SentAt: sentAt}, nil
	}

	for i := range input.Summaries {
		if input.Summaries[i].ExamLabel == "" {
			input.Summaries[i].ExamLabel = input.Summaries[i].ExamCode
		}
	}

	msg, err := renderMessage(input)
	if err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("render notification: %w", err))
	}

	messageID, err := h.sender.SendEmail(ctx, aws.Email{
		From:     h.config.FromEmail,
		To:       input.CandidateEmail,
		Subject:  msg.Subject,
		TextBody: msg.Text,
		HTMLBody: msg.HTML,
	})
	if err != nil {
		return nil, errors.NewNotificationSendFailedError("email", err).
			WithMetadata("scanId", input.ScanID)
	}

	h.logger.Info("eligibility results sent", map[string]interface{}{
		"scanId":         input.ScanID,
		"notificationId": notificationID,
		"messageId":      messageID,
		"exams":          len(input.Summaries),
	})

	return &Output{NotificationID: notificationID, Status: StatusSent, SentAt: sentAt}, nil
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
