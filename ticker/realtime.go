package ticker

import (
	"context"
	"time"
)

// Realtime is a wall-clock scheduler. Run dispatches every tick from the
// goroutine that called it.
type Realtime struct {
	q     *queue
	start time.Time
	wake  chan struct{}
}

var _ Scheduler = (*Realtime)(nil)

// NewRealtime creates a Realtime scheduler. Tasks may be registered before Run.
func NewRealtime() *Realtime {
	return &Realtime{
		q:     newQueue(),
		start: time.Now(),
		wake:  make(chan struct{}, 1),
	}
}

func (r *Realtime) elapsed() time.Duration {
	return time.Since(r.start)
}

func (r *Realtime) Every(name string, interval time.Duration, fn func()) (Task, error) {
	t, err := r.q.add(name, interval, r.elapsed(), fn)
	if err != nil {
		return nil, err
	}

	select {
	case r.wake <- struct{}{}:
	default:
	}

	return t, nil
}

func (r *Realtime) Active(name string) bool {
	return r.q.active(name)
}

func (r *Realtime) Len() int {
	return r.q.len()
}

// Run dispatches ticks until ctx is done. A tick that falls behind is not
// replayed; the task resumes one interval after the late tick.
func (r *Realtime) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		now := r.elapsed()
		if t, _, ok := r.q.dispatch(now, now, true); ok {
			if r.q.start(t) {
				t.fn()
			}
			continue
		}

		wait := time.Hour
		if next, ok := r.q.next(); ok {
			wait = next - now
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.wake:
		case <-timer.C:
		}
	}
}
