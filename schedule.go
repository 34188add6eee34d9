package icoforge

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
)

// DefaultDebounce is the quiet period the scheduler waits for after the last
// effect change before rendering.
const DefaultDebounce = 250 * time.Millisecond

// Scheduler re-renders every binding of a table whenever the effects change.
// Bursts of updates are coalesced: rendering starts once no update arrived
// for the debounce delay, using the last effects received. Every flush starts
// a new generation and cancels the previous one; results of an older
// generation are never delivered once a newer one exists.
type Scheduler struct {
	table    *Table
	size     int
	workers  int
	deliver  func(Result)
	debounce func(func())

	mu      sync.Mutex
	gen     uint64
	pending Effects
	cancel  context.CancelFunc

	// deliverMu serialises deliveries so a stale generation cannot slip in
	// after a newer one.
	deliverMu sync.Mutex
	delivered map[string]uint64
}

// NewScheduler returns a scheduler rendering the bindings of table at the
// given size. deliver receives every fresh result; it may call Update. A
// delay of zero selects DefaultDebounce.
func NewScheduler(table *Table, size int, delay time.Duration, deliver func(Result)) *Scheduler {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Scheduler{
		table:     table,
		size:      size,
		deliver:   deliver,
		debounce:  debounce.New(delay),
		delivered: make(map[string]uint64),
	}
}

// SetWorkers bounds the number of concurrent renders of a flush.
func (s *Scheduler) SetWorkers(n int) {
	s.mu.Lock()
	s.workers = n
	s.mu.Unlock()
}

// Update records fx as the latest effects and (re)arms the debounce timer.
func (s *Scheduler) Update(fx Effects) {
	s.mu.Lock()
	s.pending = fx
	s.mu.Unlock()
	s.debounce(s.Flush)
}

// Cancel drops a pending update and stops the running flush, if any.
func (s *Scheduler) Cancel() {
	s.debounce(func() {})
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.mu.Unlock()
}

// Generation returns the generation of the latest flush.
func (s *Scheduler) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Flush renders immediately with the latest effects and blocks until the
// results are delivered or superseded.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.gen++
	gen, fx, workers := s.gen, s.pending, s.workers
	s.mu.Unlock()
	defer cancel()

	results, err := RenderAll(ctx, s.table, s.size, fx, workers)
	if err != nil {
		return
	}
	for _, r := range results {
		r.Generation = gen
		s.publish(r)
	}
}

func (s *Scheduler) publish(r Result) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	if r.Generation != s.Generation() || s.delivered[r.ID] > r.Generation {
		return
	}
	s.delivered[r.ID] = r.Generation
	if s.deliver != nil {
		s.deliver(r)
	}
}
