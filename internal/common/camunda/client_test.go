package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"complaint-triage/internal/common/config"
	"complaint-triage/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		RetryConfig: &RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   2 * time.Millisecond,
		},
	}}
}

func TestConfigFromApp(t *testing.T) {
	cfg := ConfigFromApp(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 1500})
	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
	assert.True(t, cfg.UsePlaintextConnection)

	cfg = ConfigFromApp(config.CamundaConfig{})
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestExecuteWithRetry(t *testing.T) {
	tests := []struct {
		name          string
		errs          []error
		wantCalls     int
		wantErr       bool
		wantErrorCode errors.ErrorCode
	}{
		{
			name:      "success first try",
			errs:      []error{nil},
			wantCalls: 1,
		},
		{
			name:      "transient then success",
			errs:      []error{stderrors.New("connection refused"), nil},
			wantCalls: 2,
		},
		{
			name:          "non retryable",
			errs:          []error{stderrors.New("permission denied")},
			wantCalls:     1,
			wantErr:       true,
			wantErrorCode: errors.ErrCodeAuthentication,
		},
		{
			name: "retries exhausted",
			errs: []error{
				stderrors.New("deadline exceeded"),
				stderrors.New("deadline exceeded"),
				stderrors.New("deadline exceeded"),
			},
			wantCalls:     3,
			wantErr:       true,
			wantErrorCode: "TIMEOUT_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := testClient(2)
			calls := 0
			result, err := client.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
				err := tt.errs[calls]
				calls++
				if err != nil {
					return nil, err
				}
				return "ok", nil
			}, "publish")

			assert.Equal(t, tt.wantCalls, calls)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "ok", result)
				return
			}
			require.Error(t, err)
			stdErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantErrorCode, stdErr.Code)
		})
	}
}

func TestExecuteWithRetry_Cancelled(t *testing.T) {
	client := testClient(5)
	client.config.RetryConfig.BaseDelay = time.Second
	client.config.RetryConfig.MaxDelay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
		return nil, stderrors.New("unavailable")
	}, "topology")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(stderrors.New("rpc error: code = Unavailable")))
	assert.True(t, isRetryableZeebeError(stderrors.New("i/o timeout")))
	assert.False(t, isRetryableZeebeError(stderrors.New("NOT_FOUND: job 1")))
}
