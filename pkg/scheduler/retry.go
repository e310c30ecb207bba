package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/oarkflow/log"
)

// RetryPolicy replays a failed job up to Retries more times.
type RetryPolicy struct {
	Retries         int
	Delay           time.Duration
	ShouldRetry     func(err error) bool
	BackoffStrategy func(attempt int) time.Duration
}

type Job func(ctx context.Context) error

// Retry runs job until it succeeds or the policy is exhausted. Every attempt
// is a full replay; nothing done by a failed attempt is undone.
func Retry(ctx context.Context, rp RetryPolicy, job Job, logger *log.Logger) error {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	var err error
	for attempt := 0; attempt <= rp.Retries; attempt++ {
		if err = safeJob(ctx, job); err == nil {
			return nil
		}
		if attempt == rp.Retries || (rp.ShouldRetry != nil && !rp.ShouldRetry(err)) {
			break
		}
		delay := rp.Delay
		if rp.BackoffStrategy != nil {
			delay = rp.BackoffStrategy(attempt)
		}
		logger.Warn().Err(err).Int("attempt", attempt+1).Dur("delay", delay).Msg("job failed, will retry")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func safeJob(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in job: %v", r)
		}
	}()
	return job(ctx)
}
