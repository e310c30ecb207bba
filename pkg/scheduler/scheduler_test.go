package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name     string
		policy   RetryPolicy
		failures int
		calls    int
		wantErr  bool
	}{
		{name: "first attempt", policy: RetryPolicy{Retries: 3}, failures: 0, calls: 1},
		{name: "recovers", policy: RetryPolicy{Retries: 3}, failures: 2, calls: 3},
		{name: "exhausted", policy: RetryPolicy{Retries: 3}, failures: 10, calls: 4, wantErr: true},
		{name: "no retries", policy: RetryPolicy{}, failures: 1, calls: 1, wantErr: true},
		{
			name:     "not retryable",
			policy:   RetryPolicy{Retries: 3, ShouldRetry: func(error) bool { return false }},
			failures: 1,
			calls:    1,
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.policy, func(context.Context) error {
				calls++
				if calls <= tt.failures {
					return boom
				}
				return nil
			}, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, boom)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.calls, calls)
		})
	}
}

func TestRetryRecoversPanic(t *testing.T) {
	err := Retry(context.Background(), RetryPolicy{}, func(context.Context) error {
		panic("bad row")
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad row")
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, RetryPolicy{Retries: 2, Delay: time.Hour}, func(context.Context) error {
		return errors.New("down")
	}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOnceRunsImmediately(t *testing.T) {
	var calls atomic.Int32
	s := New(SpecOnce, func(context.Context) error {
		calls.Add(1)
		return nil
	}, WithLockFile(filepath.Join(t.TempDir(), "run.lock")))
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, int32(1), calls.Load())
}

func TestFireSkipsWhenLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.lock")
	held := flock.New(path)
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer held.Unlock()

	called := false
	s := New(SpecOnce, func(context.Context) error {
		called = true
		return nil
	}, WithLockFile(path))
	assert.ErrorIs(t, s.Fire(context.Background()), ErrAlreadyRunning)
	assert.False(t, called)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("@once"))
	assert.NoError(t, Validate(""))
	assert.NoError(t, Validate("@daily"))
	assert.NoError(t, Validate("*/5 * * * *"))
	assert.Error(t, Validate("every tuesday"))
}

func TestRunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New("@every 1h", func(context.Context) error { return nil }).Run(ctx)
	}()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
