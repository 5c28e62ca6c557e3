// Package debounce coalesces bursts of quantity edits per cart item.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is the quiescence period after the last edit of an item.
const DefaultWindow = 300 * time.Millisecond

// FireFunc receives the last quantity scheduled for an item.
type FireFunc func(itemID int64, qty int)

type entry struct {
	qty   int
	seq   uint64
	timer *time.Timer
}

// Queue holds at most one pending call per item. Each Schedule restarts the
// item's window; when it expires the last value is handed to fire once.
type Queue struct {
	window time.Duration
	fire   FireFunc

	mu       sync.Mutex
	pending  map[int64]*entry
	seq      uint64
	stopped  bool
	inflight sync.WaitGroup
}

func New(window time.Duration, fire FireFunc) *Queue {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Queue{
		window:  window,
		fire:    fire,
		pending: make(map[int64]*entry),
	}
}

// Schedule replaces any pending call for itemID with qty.
func (q *Queue) Schedule(itemID int64, qty int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}
	if e, ok := q.pending[itemID]; ok {
		e.timer.Stop()
	}

	q.seq++
	seq := q.seq
	e := &entry{qty: qty, seq: seq}
	e.timer = time.AfterFunc(q.window, func() { q.expire(itemID, seq) })
	q.pending[itemID] = e
}

// Cancel drops the pending call for itemID, if any.
func (q *Queue) Cancel(itemID int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e, ok := q.pending[itemID]; ok {
		e.timer.Stop()
		delete(q.pending, itemID)
	}
}

// Pending reports how many items have a call waiting.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush fires every pending call now, on the calling goroutine.
func (q *Queue) Flush() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	due := make(map[int64]int, len(q.pending))
	for id, e := range q.pending {
		e.timer.Stop()
		due[id] = e.qty
	}
	clear(q.pending)
	q.inflight.Add(len(due))
	q.mu.Unlock()

	for id, qty := range due {
		q.run(id, qty)
	}
}

// Stop drops pending calls and waits for calls already running. Schedule
// is a no-op afterwards.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.stopped = true
	for _, e := range q.pending {
		e.timer.Stop()
	}
	clear(q.pending)
	q.mu.Unlock()

	q.inflight.Wait()
}

func (q *Queue) expire(itemID int64, seq uint64) {
	q.mu.Lock()
	e, ok := q.pending[itemID]
	// A timer whose Stop lost the race still runs; seq tells it apart.
	if q.stopped || !ok || e.seq != seq {
		q.mu.Unlock()
		return
	}
	delete(q.pending, itemID)
	q.inflight.Add(1)
	q.mu.Unlock()

	q.run(itemID, e.qty)
}

func (q *Queue) run(itemID int64, qty int) {
	defer q.inflight.Done()
	q.fire(itemID, qty)
}
