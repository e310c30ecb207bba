package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofrs/flock"
	"github.com/oarkflow/errors"
	"github.com/oarkflow/log"
	"github.com/robfig/cron/v3"
)

// SpecOnce runs the job a single time, immediately.
const SpecOnce = "@once"

var ErrAlreadyRunning = errors.New("another run holds the lock")

type Scheduler struct {
	spec   string
	job    Job
	policy RetryPolicy
	lock   *flock.Flock
	logger *log.Logger
}

type Option func(*Scheduler)

func WithRetryPolicy(rp RetryPolicy) Option {
	return func(s *Scheduler) {
		s.policy = rp
	}
}

// WithLockFile guards every fire with an exclusive file lock. A fire that
// finds the lock taken is skipped.
func WithLockFile(path string) Option {
	return func(s *Scheduler) {
		if path != "" {
			s.lock = flock.New(path)
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(spec string, job Job, opts ...Option) *Scheduler {
	s := &Scheduler{
		spec:   strings.TrimSpace(spec),
		job:    job,
		logger: &log.DefaultLogger,
	}
	if s.spec == "" {
		s.spec = SpecOnce
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate reports whether the schedule can be parsed.
func Validate(spec string) error {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == SpecOnce {
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Run fires the job per the schedule. With SpecOnce it returns the job's
// result; otherwise it blocks until ctx is done and waits for a running job
// to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.spec == SpecOnce {
		return s.Fire(ctx)
	}
	c := cron.New()
	_, err := c.AddFunc(s.spec, func() {
		if err := s.Fire(ctx); err != nil {
			s.logger.Error().Err(err).Str("schedule", s.spec).Msg("scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}
	s.logger.Info().Str("schedule", s.spec).Msg("scheduler started")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info().Str("schedule", s.spec).Msg("scheduler stopped")
	return nil
}

// Fire runs the job once under the lock and retry policy.
func (s *Scheduler) Fire(ctx context.Context) error {
	if s.lock != nil {
		locked, err := s.lock.TryLock()
		if err != nil {
			return fmt.Errorf("lock %s: %w", s.lock.Path(), err)
		}
		if !locked {
			s.logger.Warn().Str("lock", s.lock.Path()).Msg("previous run still active, skipping")
			return ErrAlreadyRunning
		}
		defer func() {
			_ = s.lock.Unlock()
		}()
	}
	return Retry(ctx, s.policy, s.job, s.logger)
}
