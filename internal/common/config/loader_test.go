package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalConfig = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: eligibility
    user: ${TEST_ELIGIBILITY_DB_USER}
  redis:
    address: localhost:6379
workers:
  scan-exam-eligibility:
    enabled: true
    max_jobs_active: 2
eligibility:
  batch_concurrency: 4
`

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_ELIGIBILITY_DB_USER", "exam_reader")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "exam_reader", cfg.Database.Postgres.User)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, 8080, cfg.App.HTTPPort)
	assert.Equal(t, 10, cfg.Camunda.MaxJobsActive)

	assert.Equal(t, 4, cfg.Eligibility.BatchConcurrency)
	assert.Equal(t, "exams", cfg.Eligibility.ExamTable)
	assert.Equal(t, "eligibility-scans", cfg.Eligibility.ResultsIndex)
	assert.Equal(t, 5*time.Minute, cfg.Eligibility.CacheTTL())

	w := GetWorkerConfig(cfg, "scan-exam-eligibility")
	assert.True(t, w.Enabled)
	assert.Equal(t, 2, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)

	assert.True(t, IsWorkerEnabled(cfg, "check-exam-eligibility"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "check-exam-eligibility").MaxJobsActive)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing broker",
			body:    "database:\n  postgres:\n    host: h\n    database: d\n    user: u\n  redis:\n    address: r\n",
			wantErr: "camunda.broker_address",
		},
		{
			name:    "missing redis",
			body:    "camunda:\n  broker_address: b\ndatabase:\n  postgres:\n    host: h\n    database: d\n    user: u\n",
			wantErr: "database.redis.address",
		},
		{
			name: "result indexing without elasticsearch",
			body: minimalConfig + "  index_results: true\n",
			wantErr: "database.elasticsearch",
		},
		{
			name: "email without sender",
			body: minimalConfig + "notifications:\n  email:\n    enabled: true\n",
			wantErr: "notifications.email.from_email",
		},
	}
	t.Setenv("TEST_ELIGIBILITY_DB_USER", "exam_reader")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
