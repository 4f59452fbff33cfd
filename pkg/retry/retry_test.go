package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
)

func testLogger() *logging.MockLogger {
	logger := &logging.MockLogger{}
	logger.SetupDefaultExpectations()
	return logger
}

func fastConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
		JitterFactor:  0,
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	result, err := Retry(context.Background(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "done", nil
	}, fastConfig(), testLogger())

	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, 3, attempts)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	_, err := Retry(context.Background(), func() (int, error) {
		attempts++
		return 0, errors.New("permanent")
	}, fastConfig(), testLogger())

	require.Error(t, err)
	assert.Equal(t, 4, attempts)
	assert.Contains(t, err.Error(), "permanent")
}

func TestRetry_ShouldRetryShortCircuits(t *testing.T) {
	cfg := fastConfig()
	cfg.ShouldRetry = func(err error, attempt int) bool { return false }

	attempts := 0
	_, err := Retry(context.Background(), func() (int, error) {
		attempts++
		return 0, errors.New("fatal")
	}, cfg, testLogger())

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Retry(ctx, func() (int, error) {
		return 0, errors.New("transient")
	}, fastConfig(), testLogger())

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateNextDelay_CapsAtMax(t *testing.T) {
	next := CalculateNextDelay(8*time.Second, 2.0, 10*time.Second)
	assert.Equal(t, 10*time.Second, next)
}

func TestRetryConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RetryConfig)
		wantErr bool
	}{
		{"defaults are valid", func(c *RetryConfig) {}, false},
		{"negative retries", func(c *RetryConfig) { c.MaxRetries = -1 }, true},
		{"zero initial delay", func(c *RetryConfig) { c.InitialDelay = 0 }, true},
		{"backoff below one", func(c *RetryConfig) { c.BackoffFactor = 0.5 }, true},
		{"jitter above one", func(c *RetryConfig) { c.JitterFactor = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRetryConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
