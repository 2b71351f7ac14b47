// Package reveal sequences scroll-triggered entrance animations. Elements
// that become visible together are grouped by their section and revealed
// one after another, Stagger apart.
package reveal

import (
	"sync"
	"time"

	"github.com/Zachkp/folio/internal/clock"
)

// Stagger is the delay between consecutive reveals inside one section.
const Stagger = 120 * time.Millisecond

// Entry is one animated element.
type Entry struct {
	ID      string `json:"id"`
	Section string `json:"section"`
}

// Step is an entry with the delay after which it should be revealed.
type Step struct {
	Entry
	Delay time.Duration `json:"delay"`
}

// Plan assigns delays to a batch of entries that became visible together.
// The n-th entry of a section gets n*Stagger; sections do not delay each
// other. Steps keep the input order.
func Plan(entries []Entry) []Step {
	seen := make(map[string]int)
	steps := make([]Step, 0, len(entries))
	for _, e := range entries {
		n := seen[e.Section]
		seen[e.Section] = n + 1
		steps = append(steps, Step{Entry: e, Delay: time.Duration(n) * Stagger})
	}
	return steps
}

// Scheduler watches a set of entries and fires onReveal for each one once,
// after its planned delay. An entry is unobserved as soon as it is
// scheduled, so it never animates twice.
type Scheduler struct {
	mu       sync.Mutex
	clock    clock.Clock
	onReveal func(Entry)
	observed map[string]Entry
	pending  map[string]clock.Timer
	stopped  bool
}

// NewScheduler returns a Scheduler. A nil clock uses real time.
func NewScheduler(c clock.Clock, onReveal func(Entry)) *Scheduler {
	if c == nil {
		c = clock.Real()
	}
	return &Scheduler{
		clock:    c,
		onReveal: onReveal,
		observed: make(map[string]Entry),
		pending:  make(map[string]clock.Timer),
	}
}

// Observe starts watching entries. Entries added after the first batch
// (e.g. content rendered later) are picked up the same way.
func (s *Scheduler) Observe(entries ...Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	for _, e := range entries {
		if _, busy := s.pending[e.ID]; busy {
			continue
		}
		s.observed[e.ID] = e
	}
}

// Intersect reports the ids that just entered the viewport. Observed ones
// are scheduled and returned with their delays; unknown ids are ignored.
func (s *Scheduler) Intersect(ids ...string) []Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	var batch []Entry
	for _, id := range ids {
		e, ok := s.observed[id]
		if !ok {
			continue
		}
		delete(s.observed, id)
		batch = append(batch, e)
	}
	steps := Plan(batch)
	for _, st := range steps {
		e := st.Entry
		s.pending[e.ID] = s.clock.AfterFunc(st.Delay, func() { s.fire(e) })
	}
	return steps
}

func (s *Scheduler) fire(e Entry) {
	s.mu.Lock()
	if _, ok := s.pending[e.ID]; !ok || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.pending, e.ID)
	fn := s.onReveal
	s.mu.Unlock()
	if fn != nil {
		fn(e)
	}
}

// Observed is the number of entries still waiting to become visible.
func (s *Scheduler) Observed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observed)
}

// Pending is the number of scheduled reveals that have not fired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending reveal and disconnects the watcher.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, t := range s.pending {
		t.Stop()
		delete(s.pending, id)
	}
	clear(s.observed)
}
