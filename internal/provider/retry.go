package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
	defaultMaxDelay    = 8 * time.Second
)

// Retrier runs provider calls with capped exponential backoff and feeds the
// outcome of every call into a Recorder.
type Retrier struct {
	metrics     *Recorder
	logger      *slog.Logger
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	now         func() time.Time
	newTimer    func() backoff.Timer
}

// RetryOption customises a Retrier.
type RetryOption func(*Retrier)

// WithMaxAttempts sets the total number of attempts, including the first one.
func WithMaxAttempts(n int) RetryOption {
	return func(r *Retrier) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithDelays overrides the first backoff delay and its cap.
func WithDelays(base, max time.Duration) RetryOption {
	return func(r *Retrier) {
		if base > 0 {
			r.baseDelay = base
		}
		if max > 0 {
			r.maxDelay = max
		}
	}
}

// WithRetryLogger sets the logger used for attempt failures.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(r *Retrier) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRetryClock replaces the clock used for latency measurement.
func WithRetryClock(now func() time.Time) RetryOption {
	return func(r *Retrier) {
		if now != nil {
			r.now = now
		}
	}
}

// WithTimerFactory replaces the timer used to wait between attempts.
func WithTimerFactory(factory func() backoff.Timer) RetryOption {
	return func(r *Retrier) {
		r.newTimer = factory
	}
}

// NewRetrier builds a Retrier that records into metrics.
func NewRetrier(metrics *Recorder, opts ...RetryOption) *Retrier {
	if metrics == nil {
		metrics = NewRecorder()
	}
	r := &Retrier{
		metrics:     metrics,
		logger:      slog.Default(),
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Metrics exposes the recorder the retrier writes to.
func (r *Retrier) Metrics() *Recorder {
	return r.metrics
}

func (r *Retrier) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.baseDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = r.maxDelay
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.maxAttempts-1)), ctx)
}

// Do invokes call until it succeeds or the attempt budget is spent.
// Exactly one metric is recorded per Do: a success with the latency since
// the first attempt began, or a failure with the total elapsed time.
func Do[T any](ctx context.Context, r *Retrier, id ID, call func(context.Context) (T, error)) (T, error) {
	var (
		result   T
		attempts int
	)

	start := r.now()
	op := func() error {
		attempts++
		v, err := call(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Warn("provider call failed, retrying",
			"provider", id.String(),
			"attempt", attempts,
			"max_attempts", r.maxAttempts,
			"wait", wait,
			"error", err,
		)
	}

	var timer backoff.Timer
	if r.newTimer != nil {
		timer = r.newTimer()
	}

	err := backoff.RetryNotifyWithTimer(op, r.policy(ctx), notify, timer)
	elapsed := r.now().Sub(start)
	if err != nil {
		r.metrics.RecordFailure(id, elapsed, err)
		r.logger.Error("provider call exhausted retries", "provider", id.String(), "attempts", attempts, "error", err)
		var zero T
		return zero, &CallError{Provider: id, Attempts: attempts, Err: err}
	}

	r.metrics.RecordSuccess(id, elapsed)
	r.logger.Debug("provider call succeeded", "provider", id.String(), "attempts", attempts, "elapsed", elapsed)
	return result, nil
}
