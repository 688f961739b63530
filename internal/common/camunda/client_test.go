package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"exam-eligibility/internal/common/config"
	"exam-eligibility/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   5 * time.Millisecond,
		},
	}}
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(stderrors.New("rpc error: code = Unavailable")))
	assert.True(t, isRetryableZeebeError(stderrors.New("context deadline exceeded")))
	assert.False(t, isRetryableZeebeError(stderrors.New("process not found")))
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		code errors.ErrorCode
	}{
		{"connection refused", errors.ErrCodeExternalService},
		{"deadline exceeded", errors.ErrCodeTimeout},
		{"job not found", errors.ErrCodeResourceNotFound},
		{"resource already exists", errors.ErrCodeBusinessRule},
		{"permission denied", errors.ErrCodeAuthentication},
		{"something odd", errors.ErrCodeExternalService},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := mapZeebeError(stderrors.New(tt.msg), "topology", 0)
			assert.Equal(t, tt.code, errors.AsStandardError(err).Code)
		})
	}
}

func TestExecuteWithRetry(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := testClient(3).ExecuteWithRetry(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return stderrors.New("unavailable")
			}
			return nil
		}, "topology")
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := testClient(2).ExecuteWithRetry(context.Background(), func(context.Context) error {
			calls++
			return stderrors.New("connection refused")
		}, "topology")
		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, errors.ErrCodeExternalService, errors.AsStandardError(err).Code)
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		calls := 0
		err := testClient(3).ExecuteWithRetry(context.Background(), func(context.Context) error {
			calls++
			return stderrors.New("unauthorized")
		}, "topology")
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		c := testClient(5)
		c.config.RetryConfig.BaseDelay = time.Hour
		c.config.RetryConfig.MaxDelay = time.Hour
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := c.ExecuteWithRetry(ctx, func(context.Context) error {
			return stderrors.New("timeout")
		}, "topology")
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, context.Canceled))
	})
}

func TestConfigFromApp(t *testing.T) {
	cfg := ConfigFromApp(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 2000})
	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.Equal(t, 2*time.Second, cfg.ConnectionTimeout)

	cfg = ConfigFromApp(config.CamundaConfig{BrokerAddress: "zeebe:26500"})
	assert.Equal(t, 10*time.Second, cfg.ConnectionTimeout)
}
