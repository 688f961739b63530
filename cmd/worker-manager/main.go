// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"exam-eligibility/internal/common/aws"
	"exam-eligibility/internal/common/camunda"
	"exam-eligibility/internal/common/config"
	"exam-eligibility/internal/common/database"
	"exam-eligibility/internal/common/logger"
	"exam-eligibility/internal/common/observability"
	"exam-eligibility/internal/corpus"
	"exam-eligibility/internal/eligibility"
	"exam-eligibility/internal/results"

	notify "exam-eligibility/internal/workers/communication/notify-eligibility-results"
	check "exam-eligibility/internal/workers/eligibility/check-exam-eligibility"
	scan "exam-eligibility/internal/workers/eligibility/scan-exam-eligibility"
	"exam-eligibility/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("worker-manager", zapLog)

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFromApp(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if ok, err := pg.TableExists(ctx, cfg.Eligibility.ExamTable); err != nil || !ok {
		zapLog.Warn("exam table not found; scans will fail until it is created",
			zap.String("table", cfg.Eligibility.ExamTable),
			zap.Error(err),
		)
	}

	// --- Redis ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Elasticsearch (optional) ---
	var indexer scan.ResultIndexer
	if cfg.Eligibility.IndexResults {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
			if err != nil {
				return err
			}
			if err := esClient.Ping(ctx); err != nil {
				return err
			}
			return esClient.EnsureIndex(ctx, cfg.Eligibility.ResultsIndex, results.IndexMapping)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		indexer = results.NewIndexer(esClient.Client, cfg.Eligibility.ResultsIndex)
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", cfg.Eligibility.ResultsIndex))
	}

	// --- SES (optional) ---
	var sender notify.EmailSender
	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		sender = sesClient
	}

	// --- Eligibility engine ---
	evaluator := eligibility.NewEvaluator(eligibility.WithConcurrency(cfg.Eligibility.BatchConcurrency))
	source := corpus.NewCachedSource(
		corpus.NewPostgresSource(pg.DB, cfg.Eligibility.ExamTable),
		redis,
		cfg.Eligibility.CorpusCacheKey,
		cfg.Eligibility.CacheTTL(),
		log,
	)

	// --- Workers ---
	workers := camunda.NewWorkers(zeebe.Zeebe(), zapLog)

	checkCfg := config.GetWorkerConfig(cfg, check.TaskType)
	checkConfig := check.LoadConfig()
	checkConfig.Timeout = config.GetDuration(checkCfg.Timeout)
	checkConfig.DefaultSession = cfg.Eligibility.DefaultExamSession
	workers.StartWorker(check.TaskType, checkCfg, check.NewHandler(checkConfig, source, evaluator, log).Handle)

	scanCfg := config.GetWorkerConfig(cfg, scan.TaskType)
	scanConfig := scan.LoadConfig()
	scanConfig.Timeout = config.GetDuration(scanCfg.Timeout)
	scanConfig.DefaultSession = cfg.Eligibility.DefaultExamSession
	workers.StartWorker(scan.TaskType, scanCfg, scan.NewHandler(scan.HandlerOptions{
		Config:    scanConfig,
		Corpus:    source,
		Evaluator: evaluator,
		Indexer:   indexer,
		Obs:       obs,
		Logger:    log,
	}).Handle)

	notifyCfg := config.GetWorkerConfig(cfg, notify.TaskType)
	notifyConfig := notify.LoadConfig()
	notifyConfig.Timeout = config.GetDuration(notifyCfg.Timeout)
	notifyConfig.EmailEnabled = cfg.Notifications.Email.Enabled
	notifyConfig.FromEmail = cfg.Notifications.Email.FromEmail
	workers.StartWorker(notify.TaskType, notifyCfg, notify.NewHandler(notifyConfig, sender, log).Handle)

	zapLog.Info("workers registered", zap.Int("count", workers.Count()))
	checkRegistry(cfg.App.ActivityRegistry, zapLog, check.TaskType, scan.TaskType, notify.TaskType)

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		status := http.StatusOK
		for name, ping := range map[string]func(context.Context) error{
			"zeebe":    zeebe.HealthCheck,
			"postgres": pg.Ping,
			"redis":    redis.Ping,
		} {
			if err := ping(r.Context()); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		checks["time"] = time.Now().Format(time.RFC3339)
		writeJSON(w, status, checks)
	})
	mux.HandleFunc("/corpus/invalidate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := source.Invalidate(r.Context()); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workers.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing metrics", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// checkRegistry warns when the activity registry is out of step with the
// workers this process serves.
func checkRegistry(path string, log *zap.Logger, taskTypes ...string) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry not loaded", zap.String("path", path), zap.Error(err))
		return
	}
	if err := reg.Validate(); err != nil {
		log.Warn("activity registry invalid", zap.String("path", path), zap.Error(err))
		return
	}
	if missing := reg.Missing(taskTypes...); len(missing) > 0 {
		log.Warn("task types missing from activity registry", zap.Strings("taskTypes", missing))
		return
	}
	log.Info("activity registry loaded", zap.String("version", reg.Version), zap.Int("activities", len(reg.Activities)))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
