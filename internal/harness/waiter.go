package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/tabledao/internal/config"
)

// Clock is the time source for polling.
type Clock interface {
	Now() time.Time

	// Sleep pauses for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// TimeoutError is returned when rows do not appear before the wait timeout.
type TimeoutError struct {
	Table   string
	Count   int
	Got     int
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	want := "at least one row"
	if e.Count > 0 {
		want = fmt.Sprintf("exactly %d rows", e.Count)
	}
	return fmt.Sprintf("waiting for %s in table %s within %s: got %d", want, e.Table, e.Timeout, e.Got)
}

// IsTimeout returns true if err is a wait timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// Waiter polls for rows until a count is reached or a timeout passes.
type Waiter struct {
	timeout  time.Duration
	interval time.Duration
	clock    Clock
}

// NewWaiter returns a waiter. Zero durations take the config defaults, and
// an interval not below the timeout is clamped to just under it.
func NewWaiter(timeout, interval time.Duration, clock Clock) *Waiter {
	if timeout <= 0 {
		timeout = config.DefaultWaitTimeout
	}
	if interval <= 0 {
		interval = config.DefaultWaitInterval
	}
	if interval >= timeout {
		interval = timeout - time.Millisecond
	}
	if interval <= 0 {
		interval = time.Millisecond
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Waiter{timeout: timeout, interval: interval, clock: clock}
}

// Timeout returns the wait timeout.
func (w *Waiter) Timeout() time.Duration { return w.timeout }

// Interval returns the poll interval.
func (w *Waiter) Interval() time.Duration { return w.interval }

// WaitRows calls fetch until it returns exactly count rows, or any rows when
// count is zero. The first fetch happens immediately.
func WaitRows[T any](ctx context.Context, w *Waiter, table string, count int, fetch func(context.Context) ([]T, error)) ([]T, error) {
	deadline := w.clock.Now().Add(w.timeout)
	for {
		rows, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if satisfied(len(rows), count) {
			return rows, nil
		}

		remaining := deadline.Sub(w.clock.Now())
		if remaining <= 0 {
			return rows, &TimeoutError{Table: table, Count: count, Got: len(rows), Timeout: w.timeout}
		}
		if err := w.clock.Sleep(ctx, min(w.interval, remaining)); err != nil {
			return rows, err
		}
	}
}

func satisfied(n, count int) bool {
	if count > 0 {
		return n == count
	}
	return n > 0
}
