package registry

import (
	"os"
	"path/filepath"
	"testing"

	"exam-eligibility/internal/common/errors"
	notify "exam-eligibility/internal/workers/communication/notify-eligibility-results"
	check "exam-eligibility/internal/workers/eligibility/check-exam-eligibility"
	scan "exam-eligibility/internal/workers/eligibility/scan-exam-eligibility"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippedRegistry(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	assert.Empty(t, reg.Missing(check.TaskType, scan.TaskType, notify.TaskType))

	known := map[string]bool{}
	for _, code := range []errors.ErrorCode{
		errors.ErrCodeExamNotFound,
		errors.ErrCodeCorpusLoadFailed,
		errors.ErrCodeProfileValidationFailed,
		errors.ErrCodeExamRecordInvalid,
		errors.ErrCodeResultIndexFailed,
		errors.ErrCodeNotificationSendFailed,
		errors.ErrCodeScanCancelled,
	} {
		known[string(code)] = true
	}
	for _, a := range reg.Activities {
		for _, code := range a.ErrorCodes {
			assert.True(t, known[code], "%s lists unknown error code %s", a.ID, code)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := Activity{ID: "a", DisplayName: "A", Category: "eligibility", TaskType: "a"}

	tests := []struct {
		name    string
		reg     ActivityRegistry
		wantErr string
	}{
		{"empty", ActivityRegistry{}, "no activities"},
		{"missing display name", ActivityRegistry{Activities: []Activity{{ID: "a", Category: "c", TaskType: "a"}}}, "DisplayName"},
		{"duplicate id", ActivityRegistry{Activities: []Activity{valid, valid}}, "duplicate activity ID"},
		{
			"duplicate task type",
			ActivityRegistry{Activities: []Activity{valid, {ID: "b", DisplayName: "B", Category: "c", TaskType: "a"}}},
			"duplicate task type",
		},
		{"valid", ActivityRegistry{Activities: []Activity{valid}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadRegistry(path)
	assert.Error(t, err)
}

func TestMissing(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{{TaskType: "known"}}}
	assert.Equal(t, []string{"unknown"}, reg.Missing("known", "unknown"))
}
