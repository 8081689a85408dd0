// Package ticker runs named periodic tasks. Serial keeps virtual time and is
// stepped by its caller; Realtime follows the wall clock. Both dispatch one
// tick at a time, so task callbacks never run concurrently with each other.
package ticker

import (
	"container/heap"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrTaskExists is returned when a task with the same name is active.
	ErrTaskExists = errors.New("task already scheduled")

	// ErrBadInterval is returned for a non-positive interval.
	ErrBadInterval = errors.New("interval must be positive")
)

// Task is a handle to a scheduled periodic task.
type Task interface {
	Name() string

	// Cancel removes the task. A tick that has not started when Cancel
	// returns never runs; one already running on another goroutine may
	// finish. Calling it again, or from inside the task's own callback, is
	// safe.
	Cancel()
}

// Scheduler registers periodic tasks under unique names.
type Scheduler interface {
	// Every runs fn every interval, the first time one interval from now.
	Every(name string, interval time.Duration, fn func()) (Task, error)

	// Active reports whether a task with this name is scheduled.
	Active(name string) bool

	// Len returns the number of scheduled tasks.
	Len() int
}

type task struct {
	name     string
	interval time.Duration
	due      time.Duration
	seq      uint64
	fn       func()
	index    int
	q        *queue
}

func (t *task) Name() string { return t.name }

func (t *task) Cancel() { t.q.cancel(t) }

// queue orders tasks by due time, ties by registration order.
type queue struct {
	sync.Mutex
	tasks  taskHeap
	byName map[string]*task
	seq    uint64
}

func newQueue() *queue {
	return &queue{byName: make(map[string]*task)}
}

func (q *queue) add(name string, interval, now time.Duration, fn func()) (*task, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s for %q", ErrBadInterval, interval, name)
	}

	q.Lock()
	defer q.Unlock()

	if _, ok := q.byName[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrTaskExists, name)
	}

	q.seq++
	t := &task{
		name:     name,
		interval: interval,
		due:      now + interval,
		seq:      q.seq,
		fn:       fn,
		q:        q,
	}

	heap.Push(&q.tasks, t)
	q.byName[name] = t

	return t, nil
}

func (q *queue) cancel(t *task) {
	q.Lock()
	defer q.Unlock()

	// index is -1 once removed
	if t.index < 0 {
		return
	}

	heap.Remove(&q.tasks, t.index)
	if q.byName[t.name] == t {
		delete(q.byName, t.name)
	}
}

func (q *queue) active(name string) bool {
	q.Lock()
	defer q.Unlock()
	_, ok := q.byName[name]
	return ok
}

func (q *queue) len() int {
	q.Lock()
	defer q.Unlock()
	return q.tasks.Len()
}

// next returns the due time of the earliest task.
func (q *queue) next() (time.Duration, bool) {
	q.Lock()
	defer q.Unlock()

	if q.tasks.Len() == 0 {
		return 0, false
	}
	return q.tasks[0].due, true
}

// dispatch takes the earliest task if it is due at or before limit and
// reschedules it one interval later. With skip set, a task that fell behind
// now is rescheduled relative to now rather than firing repeatedly to catch
// up. The caller passes the returned task to start before running it.
func (q *queue) dispatch(limit, now time.Duration, skip bool) (*task, time.Duration, bool) {
	q.Lock()
	defer q.Unlock()

	if q.tasks.Len() == 0 || q.tasks[0].due > limit {
		return nil, 0, false
	}

	t := q.tasks[0]
	due := t.due

	t.due += t.interval
	if skip && t.due <= now {
		t.due = now + t.interval
	}
	heap.Fix(&q.tasks, 0)

	return t, due, true
}

// start reports whether t is still scheduled and so may run the tick that
// dispatch handed out. Its callback must run without the lock held.
func (q *queue) start(t *task) bool {
	q.Lock()
	defer q.Unlock()
	return t.index >= 0
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
