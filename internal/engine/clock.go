package engine

import (
	"sort"
	"sync"
	"time"
)

// Scheduler defers a callback by a duration. The returned cancel stops
// the callback if it has not fired yet; cancelling a fired timer is a
// no-op. Session timers are always cancelled on question advance so a
// stale timer can never act on a newer question.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

type realScheduler struct{}

// NewScheduler returns the wall-clock Scheduler used in production.
func NewScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler is a deterministic Scheduler for tests: time only
// moves when Advance is called, and due callbacks fire synchronously in
// deadline order on the calling goroutine.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending map[int]manualTimer
}

type manualTimer struct {
	due time.Duration
	fn  func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{pending: make(map[int]manualTimer)}
}

func (m *ManualScheduler) After(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := m.seq
	m.pending[id] = manualTimer{due: m.now + d, fn: fn}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.pending, id)
	}
}

// Advance moves virtual time forward by d, firing every timer that
// comes due, including timers scheduled by earlier callbacks.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	for {
		id, timer, ok := m.nextDueLocked(target)
		if !ok {
			break
		}
		m.now = timer.due
		delete(m.pending, id)
		// Callbacks may re-enter After; release the lock while firing.
		m.mu.Unlock()
		timer.fn()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

func (m *ManualScheduler) nextDueLocked(target time.Duration) (int, manualTimer, bool) {
	ids := make([]int, 0, len(m.pending))
	for id, timer := range m.pending {
		if timer.due <= target {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, manualTimer{}, false
	}
	sort.Slice(ids, func(i, j int) bool {
		ti, tj := m.pending[ids[i]], m.pending[ids[j]]
		if ti.due != tj.due {
			return ti.due < tj.due
		}
		return ids[i] < ids[j]
	})
	id := ids[0]
	return id, m.pending[id], true
}
