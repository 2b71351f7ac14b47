// Package clock abstracts deferred callbacks so settle windows and
// staggered animations can be driven by a fake clock in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks after a delay.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// Real returns a Clock backed by time.AfterFunc.
func Real() Clock { return realClock{} }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Fake is a manually advanced Clock. Callbacks run synchronously inside
// Advance, in deadline order.
type Fake struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	fake     *Fake
	deadline time.Duration
	seq      int
	fn       func()
	stopped  bool
}

// NewFake returns a Fake clock at time zero.
func NewFake() *Fake { return &Fake{} }

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &fakeTimer{fake: f, deadline: f.now + d, seq: f.seq, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.fake.mu.Lock()
	defer t.fake.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward and fires every timer that became due.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now += d
	var due []*fakeTimer
	var rest []*fakeTimer
	for _, t := range f.timers {
		switch {
		case t.stopped:
		case t.deadline <= f.now:
			t.stopped = true
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	f.timers = rest
	f.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].deadline == due[j].deadline {
			return due[i].seq < due[j].seq
		}
		return due[i].deadline < due[j].deadline
	})
	for _, t := range due {
		t.fn()
	}
}

// Pending reports how many timers are scheduled and not stopped.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}
