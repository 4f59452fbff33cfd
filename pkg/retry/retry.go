package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
)

// RetryConfig holds the configuration for retry operations
type RetryConfig struct {
	MaxRetries      int           // Maximum number of retry attempts
	InitialDelay    time.Duration // Initial delay between retries
	MaxDelay        time.Duration // Maximum delay between retries
	BackoffFactor   float64       // Multiplier for exponential backoff
	JitterFactor    float64       // Factor for adding jitter to delays (% of delay)
	LogRetryAttempt bool          // Whether to log retry attempts
	ShouldRetry     func(error, int) bool
}

// DefaultRetryConfig returns a default configuration for retry operations
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:      3,
		InitialDelay:    500 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		BackoffFactor:   2.0,
		JitterFactor:    0.2,
		LogRetryAttempt: true,
		ShouldRetry:     nil,
	}
}

func (c *RetryConfig) Validate() error {
	if c.MaxRetries < 0 {
		return errors.New("MaxRetries must be >= 0")
	}
	if c.InitialDelay <= 0 {
		return errors.New("InitialDelay must be positive")
	}
	if c.MaxDelay <= 0 {
		return errors.New("MaxDelay must be positive")
	}
	if c.BackoffFactor < 1.0 {
		return errors.New("BackoffFactor must be >= 1.0")
	}
	if c.JitterFactor < 0 || c.JitterFactor > 1.0 {
		return errors.New("JitterFactor must be between 0.0 and 1.0")
	}
	return nil
}

// CalculateDelayWithJitter calculates the sleep duration for the given base delay with jitter applied
func CalculateDelayWithJitter(baseDelay time.Duration, jitterFactor float64) time.Duration {
	sleepDuration := baseDelay
	if jitterFactor > 0 {
		jitter := time.Duration(jitterFactor * float64(baseDelay) * rand.Float64())
		sleepDuration += jitter
	}
	return sleepDuration
}

// CalculateNextDelay calculates the next delay value using exponential backoff
func CalculateNextDelay(currentDelay time.Duration, backoffFactor float64, maxDelay time.Duration) time.Duration {
	nextDelay := time.Duration(float64(currentDelay) * backoffFactor)
	if nextDelay > maxDelay {
		nextDelay = maxDelay
	}
	return nextDelay
}

// Retry executes the given operation with exponential backoff and retry logic.
// Returns the result of the operation if successful, or an error if all attempts fail.
func Retry[T any](ctx context.Context, operation func() (T, error), retryConfig *RetryConfig, logger logging.Logger) (T, error) {
	var zero T

	if retryConfig == nil {
		retryConfig = DefaultRetryConfig()
	} else if err := retryConfig.Validate(); err != nil {
		return zero, fmt.Errorf("invalid retry config: %w", err)
	}

	delay := retryConfig.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= retryConfig.MaxRetries; attempt++ {
		result, err := operation()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if retryConfig.ShouldRetry != nil && !retryConfig.ShouldRetry(err, attempt) {
			return zero, err
		}
		if attempt == retryConfig.MaxRetries {
			break
		}

		if retryConfig.LogRetryAttempt && logger != nil {
			logger.Warnf("Attempt %d/%d failed: %v, retrying in %v",
				attempt+1, retryConfig.MaxRetries+1, err, delay)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(CalculateDelayWithJitter(delay, retryConfig.JitterFactor)):
		}

		delay = CalculateNextDelay(delay, retryConfig.BackoffFactor, retryConfig.MaxDelay)
	}

	return zero, fmt.Errorf("all %d attempts failed, last error: %w", retryConfig.MaxRetries+1, lastErr)
}
