package harness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tabledao/internal/config"
	"github.com/roach88/tabledao/internal/testutil"
)

// sequence returns a fetch func that yields n[i] rows on call i and then
// repeats the last count.
func sequence(n ...int) (func(context.Context) ([]int, error), *int) {
	calls := 0
	return func(context.Context) ([]int, error) {
		i := calls
		if i >= len(n) {
			i = len(n) - 1
		}
		calls++
		return make([]int, n[i]), nil
	}, &calls
}

func TestNewWaiter_Defaults(t *testing.T) {
	w := NewWaiter(0, 0, nil)
	assert.Equal(t, config.DefaultWaitTimeout, w.Timeout())
	assert.Equal(t, config.DefaultWaitInterval, w.Interval())
}

func TestNewWaiter_ClampsInterval(t *testing.T) {
	w := NewWaiter(time.Second, 5*time.Second, nil)
	assert.Equal(t, time.Second, w.Timeout())
	assert.Equal(t, 999*time.Millisecond, w.Interval())

	w = NewWaiter(time.Second, time.Second, nil)
	assert.Equal(t, 999*time.Millisecond, w.Interval())
}

func TestWaitRows_Immediate(t *testing.T) {
	clock := testutil.NewFakeClock(epoch)
	fetch, calls := sequence(1)

	rows, err := WaitRows(context.Background(), NewWaiter(time.Second, 100*time.Millisecond, clock), "t", 0, fetch)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, *calls)
	assert.Empty(t, clock.Sleeps())
}

func TestWaitRows_PollsUntilCount(t *testing.T) {
	clock := testutil.NewFakeClock(epoch)
	fetch, calls := sequence(0, 1, 3, 2)

	rows, err := WaitRows(context.Background(), NewWaiter(10*time.Second, time.Second, clock), "t", 2, fetch)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, 4, *calls)
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, clock.Sleeps())
}

func TestWaitRows_Timeout(t *testing.T) {
	clock := testutil.NewFakeClock(epoch)
	fetch, _ := sequence(1)

	rows, err := WaitRows(context.Background(), NewWaiter(3*time.Second, 2*time.Second, clock), "online_log", 2, fetch)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.False(t, IsAssertion(err))
	assert.Len(t, rows, 1)
	assert.Equal(t, "waiting for exactly 2 rows in table online_log within 3s: got 1", err.Error())
	assert.Equal(t, []time.Duration{2 * time.Second, time.Second}, clock.Sleeps())
}

func TestWaitRows_FetchError(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(context.Context) ([]int, error) { return nil, boom }

	_, err := WaitRows(context.Background(), NewWaiter(time.Second, 0, testutil.NewFakeClock(epoch)), "t", 0, fetch)
	assert.ErrorIs(t, err, boom)
}

func TestWaitRows_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetch, _ := sequence(0)

	_, err := WaitRows(ctx, NewWaiter(time.Second, 0, testutil.NewFakeClock(epoch)), "t", 0, fetch)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSystemClock_Sleep(t *testing.T) {
	var c systemClock
	require.NoError(t, c.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Sleep(ctx, time.Hour), context.Canceled)
}
