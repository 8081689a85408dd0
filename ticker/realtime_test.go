package ticker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRealtimeRunsAndCancels(t *testing.T) {
	r := NewRealtime()
	var count atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	task, err := r.Every("a", 5*time.Millisecond, func() { count.Add(1) })
	require.NoError(t, err)

	require.Eventually(t, func() bool { return count.Load() >= 3 }, time.Second, time.Millisecond)

	task.Cancel()
	require.False(t, r.Active("a"))

	// let a tick dispatched before Cancel finish
	time.Sleep(5 * time.Millisecond)
	after := count.Load()

	time.Sleep(30 * time.Millisecond)
	require.Equal(t, after, count.Load())

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestRealtimeRejectsDuplicate(t *testing.T) {
	r := NewRealtime()

	_, err := r.Every("a", time.Second, func() {})
	require.NoError(t, err)

	_, err = r.Every("a", time.Second, func() {})
	require.ErrorIs(t, err, ErrTaskExists)
	require.Equal(t, 1, r.Len())
}

func TestCancelAfterDispatchSkipsTick(t *testing.T) {
	q := newQueue()
	ran := false

	_, err := q.add("a", 5*time.Millisecond, 0, func() { ran = true })
	require.NoError(t, err)

	task, due, ok := q.dispatch(5*time.Millisecond, 5*time.Millisecond, true)
	require.True(t, ok)
	require.Equal(t, 5*time.Millisecond, due)

	// a Cancel from another goroutine lands between dispatch and the call
	task.Cancel()

	require.False(t, q.start(task))
	require.False(t, ran)
	require.Zero(t, q.len())
}
