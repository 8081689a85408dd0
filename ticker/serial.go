package ticker

import (
	"sync"
	"time"
)

// Serial is a scheduler on virtual time. Nothing happens until the caller
// calls Advance or Step, and callbacks run on the caller's goroutine.
type Serial struct {
	q *queue

	timeLock sync.RWMutex
	now      time.Duration

	runLock sync.Mutex
}

var _ Scheduler = (*Serial)(nil)

// NewSerial creates a Serial scheduler at time zero.
func NewSerial() *Serial {
	return &Serial{q: newQueue()}
}

// Now returns the virtual time elapsed since creation.
func (s *Serial) Now() time.Duration {
	s.timeLock.RLock()
	defer s.timeLock.RUnlock()
	return s.now
}

func (s *Serial) writeNow(t time.Duration) {
	s.timeLock.Lock()
	s.now = t
	s.timeLock.Unlock()
}

func (s *Serial) Every(name string, interval time.Duration, fn func()) (Task, error) {
	return s.q.add(name, interval, s.Now(), fn)
}

func (s *Serial) Active(name string) bool {
	return s.q.active(name)
}

func (s *Serial) Len() int {
	return s.q.len()
}

// Advance moves time forward by d, firing every tick due on the way in time
// order. It returns the number of ticks fired.
func (s *Serial) Advance(d time.Duration) int {
	s.runLock.Lock()
	defer s.runLock.Unlock()

	target := s.Now() + d
	fired := 0

	for {
		t, due, ok := s.q.dispatch(target, target, false)
		if !ok {
			break
		}

		s.writeNow(due)
		if s.q.start(t) {
			t.fn()
			fired++
		}
	}

	s.writeNow(target)
	return fired
}

// Step jumps to the next due tick and fires it. It returns false when no
// task is scheduled.
func (s *Serial) Step() bool {
	s.runLock.Lock()
	defer s.runLock.Unlock()

	next, ok := s.q.next()
	if !ok {
		return false
	}

	t, due, ok := s.q.dispatch(next, next, false)
	if !ok {
		return false
	}

	s.writeNow(due)
	if s.q.start(t) {
		t.fn()
	}
	return true
}
