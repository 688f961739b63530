// internal/common/camunda/worker.go
package camunda

import (
	"exam-eligibility/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandlerFunc is the signature every worker's Handle method satisfies.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

// Workers tracks the job workers opened by StartWorker so they can be
// closed together on shutdown.
type Workers struct {
	client zbc.Client
	open   []worker.JobWorker
	logger *zap.Logger
}

func NewWorkers(client zbc.Client, logger *zap.Logger) *Workers {
	return &Workers{client: client, logger: logger}
}

// StartWorker opens a job worker for taskType unless it is disabled.
// It reports whether a worker was opened.
func (w *Workers) StartWorker(taskType string, wcfg config.WorkerConfig, handler JobHandlerFunc) bool {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", zap.String("taskType", taskType))
		return false
	}

	jw := w.client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()
	w.open = append(w.open, jw)

	w.logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return true
}

func (w *Workers) Count() int { return len(w.open) }

// Close stops every worker and waits for in-flight jobs to finish.
func (w *Workers) Close() {
	for _, jw := range w.open {
		jw.Close()
		jw.AwaitClose()
	}
	w.logger.Info("workers stopped", zap.Int("count", len(w.open)))
	w.open = nil
}
