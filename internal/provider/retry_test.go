package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// fakeTimer fires immediately and advances the shared clock by the requested delay.
type fakeTimer struct {
	clock  *manualClock
	c      chan time.Time
	delays *[]time.Duration
}

func (t *fakeTimer) Start(d time.Duration) {
	*t.delays = append(*t.delays, d)
	t.clock.Advance(d)
	t.c <- t.clock.Now()
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time { return t.c }

func newTestRetrier(metrics *Recorder, clock *manualClock, delays *[]time.Duration, opts ...RetryOption) *Retrier {
	base := []RetryOption{
		WithRetryClock(clock.Now),
		WithRetryLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTimerFactory(func() backoff.Timer {
			return &fakeTimer{clock: clock, c: make(chan time.Time, 1), delays: delays}
		}),
	}
	return NewRetrier(metrics, append(base, opts...)...)
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	clock := newManualClock()
	metrics := NewRecorder()
	var delays []time.Duration
	retrier := newTestRetrier(metrics, clock, &delays)

	calls := 0
	got, err := Do(context.Background(), retrier, NewsAPI, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("temporary outage")
		}
		return "payload", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "payload" {
		t.Fatalf("unexpected result %q", got)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	assertDelays(t, delays, []time.Duration{time.Second, 2 * time.Second})

	m := metrics.Metric(NewsAPI)
	if m.SuccessCount != 1 || m.FailureCount != 0 {
		t.Fatalf("expected exactly one success, got %+v", m)
	}
	if m.TotalLatency < 3*time.Second {
		t.Fatalf("latency must span every attempt since the first, got %s", m.TotalLatency)
	}
}

func TestDoRecordsSingleFailureAfterExhaustion(t *testing.T) {
	clock := newManualClock()
	metrics := NewRecorder()
	var delays []time.Duration
	retrier := newTestRetrier(metrics, clock, &delays)

	boom := errors.New("upstream 503")
	calls := 0
	_, err := Do(context.Background(), retrier, Naver, func(context.Context) (int, error) {
		calls++
		return 0, boom
	})

	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %T (%v)", err, err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected the last attempt error to be wrapped")
	}
	if callErr.Attempts != 3 || calls != 3 {
		t.Fatalf("expected 3 attempts, got %d (calls %d)", callErr.Attempts, calls)
	}
	assertDelays(t, delays, []time.Duration{time.Second, 2 * time.Second})

	m := metrics.Metric(Naver)
	if m.FailureCount != 1 || m.SuccessCount != 0 {
		t.Fatalf("expected exactly one failure, got %+v", m)
	}
	if m.LastError == "" {
		t.Fatalf("expected last error to be recorded")
	}
}

func TestDoCapsDelay(t *testing.T) {
	clock := newManualClock()
	var delays []time.Duration
	retrier := newTestRetrier(NewRecorder(), clock, &delays, WithMaxAttempts(6))

	_, _ = Do(context.Background(), retrier, OpenAI, func(context.Context) (struct{}, error) {
		return struct{}{}, errors.New("nope")
	})

	assertDelays(t, delays, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 8 * time.Second,
	})
}

func TestDoFirstAttemptSuccessHasNoDelay(t *testing.T) {
	clock := newManualClock()
	metrics := NewRecorder()
	var delays []time.Duration
	retrier := newTestRetrier(metrics, clock, &delays)

	if _, err := Do(context.Background(), retrier, Skywork, func(context.Context) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(delays) != 0 {
		t.Fatalf("expected no waits, got %v", delays)
	}
	if m := metrics.Metric(Skywork); m.SuccessCount != 1 {
		t.Fatalf("expected one success, got %+v", m)
	}
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	clock := newManualClock()
	metrics := NewRecorder()
	var delays []time.Duration
	retrier := newTestRetrier(metrics, clock, &delays)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, retrier, ExchangeRate, func(ctx context.Context) (int, error) {
		calls++
		return 0, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
	if m := metrics.Metric(ExchangeRate); m.FailureCount != 1 {
		t.Fatalf("expected one failure, got %+v", m)
	}
}

func assertDelays(t *testing.T, got, want []time.Duration) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected delays %v, got %v", want, got)
	}
	for i := range want {
		if got[i].Truncate(time.Millisecond) != want[i] {
			t.Fatalf("delay %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
