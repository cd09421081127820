package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/Kudusch/twitter-user-stats/pkg/errors"
	"github.com/Kudusch/twitter-user-stats/pkg/logger"
)

func testConfig(maxAttempts int) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewNopLogger(),
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return nil
	}, testConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		if calls < 3 {
			return &errs.Error{Type: errs.ErrorTypeServerError, Message: "boom", Code: 503}
		}
		return nil
	}, testConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return &errs.Error{Type: errs.ErrorTypeNetwork, Message: "unreachable"}
	}, testConfig(3))

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "max retry attempts")
}

func TestDoDoesNotRetryFatalStatus(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return errs.NewFatalStatus(400, "bad query")
	}, testConfig(5))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoDoesNotRetryRateLimit(t *testing.T) {
	calls := 0
	err := Do(func() error {
		calls++
		return &errs.Error{Type: errs.ErrorTypeRateLimit, Message: "too many requests", Code: 429}
	}, testConfig(5))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := testConfig(5)
	cfg.Context = ctx
	cfg.Backoff = &ConstantBackoff{Delay: time.Hour}

	err := Do(func() error {
		return &errs.Error{Type: errs.ErrorTypeNetwork, Message: "unreachable"}
	}, cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	result, err := DoWithResult(func() (string, error) {
		calls++
		if calls < 2 {
			return "", &errs.Error{Type: errs.ErrorTypeServerError, Message: "boom", Code: 502}
		}
		return "ok", nil
	}, testConfig(3))

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, calls)
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.True(t, DefaultRetryIf(&errs.Error{Type: errs.ErrorTypeNetwork}))
	assert.True(t, DefaultRetryIf(&errs.Error{Type: errs.ErrorTypeServerError}))
	assert.False(t, DefaultRetryIf(&errs.Error{Type: errs.ErrorTypeRateLimit}))
	assert.False(t, DefaultRetryIf(&errs.Error{Type: errs.ErrorTypeFatalStatus}))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.True(t, DefaultRetryIf(errors.New("some transient thing")))
}

func TestExponentialBackoff(t *testing.T) {
	eb := DefaultExponentialBackoff()

	assert.Equal(t, time.Duration(0), eb.NextDelay(0))
	assert.Equal(t, 5*time.Second, eb.NextDelay(1))
	assert.Equal(t, 10*time.Second, eb.NextDelay(2))
	assert.Equal(t, 20*time.Second, eb.NextDelay(3))

	// Capped at MaxDelay
	assert.Equal(t, 120*time.Second, eb.NextDelay(10))
}
