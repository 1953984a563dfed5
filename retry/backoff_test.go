package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/record-crew/recordai/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries:   maxRetries,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     50 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func transientErr(msg string) error {
	return types.NewError(types.ErrTransientProvider, msg).WithRetryable(true)
}

func TestBackoffRetryer_FirstAttemptSucceeds(t *testing.T) {
	r := NewBackoffRetryer(testPolicy(2), zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestBackoffRetryer_RetriesThenSucceeds(t *testing.T) {
	r := NewBackoffRetryer(testPolicy(2), zap.NewNop())

	calls := 0
	result, err := r.DoWithResult(context.Background(), func() (any, error) {
		calls++
		if calls < 3 {
			return nil, transientErr("503 from provider")
		}
		return "transcript", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "transcript", result)
	assert.Equal(t, 3, calls)
}

func TestBackoffRetryer_ExhaustionEscalatesToPermanent(t *testing.T) {
	r := NewBackoffRetryer(testPolicy(2), zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return transientErr("gateway timeout")
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls, "1 initial + 2 retries")
	assert.Equal(t, types.ErrPermanentProvider, types.KindOf(err))
	assert.False(t, types.IsRetryable(err))

	// the transient cause stays reachable for diagnostics
	e, ok := types.AsError(err)
	require.True(t, ok)
	cause, ok := types.AsError(e.Cause)
	require.True(t, ok)
	assert.Equal(t, types.ErrTransientProvider, cause.Kind)
}

func TestBackoffRetryer_PermanentErrorNotRetried(t *testing.T) {
	r := NewBackoffRetryer(testPolicy(2), zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return types.NewError(types.ErrPermanentProvider, "400 bad request")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, types.ErrPermanentProvider, types.KindOf(err))
}

func TestBackoffRetryer_ForeignErrorNotRetried(t *testing.T) {
	r := NewBackoffRetryer(testPolicy(3), zap.NewNop())

	calls := 0
	err := r.Do(context.Background(), func() error {
		calls++
		return errors.New("unclassified")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestBackoffRetryer_ContextCanceled(t *testing.T) {
	policy := testPolicy(3)
	policy.InitialDelay = 100 * time.Millisecond
	r := NewBackoffRetryer(policy, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := r.Do(ctx, func() error {
		calls++
		return transientErr("still down")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoffRetryer_OnRetryCallback(t *testing.T) {
	policy := testPolicy(2)
	var attempts []int
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	}
	r := NewBackoffRetryer(policy, zap.NewNop())

	_ = r.Do(context.Background(), func() error {
		return transientErr("down")
	})

	assert.Equal(t, []int{1, 2}, attempts)
}

func TestBackoffRetryer_DelayGrowth(t *testing.T) {
	r := NewBackoffRetryer(Policy{
		MaxRetries:   3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     25 * time.Millisecond,
		Multiplier:   2.0,
	}, zap.NewNop()).(*backoffRetryer)

	assert.Equal(t, 10*time.Millisecond, r.calculateDelay(1))
	assert.Equal(t, 20*time.Millisecond, r.calculateDelay(2))
	assert.Equal(t, 25*time.Millisecond, r.calculateDelay(3), "capped at MaxDelay")
}

func TestDoWithResultTyped(t *testing.T) {
	r := NewBackoffRetryer(testPolicy(1), zap.NewNop())

	url, err := DoWithResultTyped(r, context.Background(), func() (string, error) {
		return "https://images.example/1.png", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/1.png", url)
}
