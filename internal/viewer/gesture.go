package viewer

import (
	"math"
	"sync"
	"time"

	"github.com/Zachkp/folio/internal/clock"
)

const (
	// MoveTolerance is how far a touch may travel on either axis before it
	// stops counting as a tap.
	MoveTolerance = 10.0
	// MinSwipeDistance is the horizontal travel required for navigation.
	MinSwipeDistance = 50.0
	// SettleWindow is how long clicks stay suppressed after a moving touch ends.
	SettleWindow = 150 * time.Millisecond
)

// Swipe is the outcome of one touch sequence.
type Swipe int

const (
	SwipeNone Swipe = iota
	SwipeNext
	SwipePrev
)

func (s Swipe) String() string {
	switch s {
	case SwipeNext:
		return "next"
	case SwipePrev:
		return "prev"
	default:
		return "none"
	}
}

// Point is a position in CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Classify decides whether a touch from start to end is a navigation swipe.
// Horizontal travel must dominate vertical travel 2:1 and exceed
// MinSwipeDistance; anything else is SwipeNone.
func Classify(start, end Point) Swipe {
	dx := start.X - end.X
	dy := start.Y - end.Y
	if math.Abs(dx) <= 2*math.Abs(dy) {
		return SwipeNone
	}
	switch {
	case dx > MinSwipeDistance:
		return SwipeNext
	case dx < -MinSwipeDistance:
		return SwipePrev
	default:
		return SwipeNone
	}
}

// gestureSession is the bookkeeping for one touch sequence.
type gestureSession struct {
	start   Point
	last    Point
	started bool
	hasMove bool
	moved   bool
}

// Recognizer turns touch start/move/end into swipe decisions and keeps a
// short settle window during which the trailing synthetic click is ignored.
type Recognizer struct {
	mu      sync.Mutex
	clock   clock.Clock
	session gestureSession
	settle  clock.Timer
	gen     uint64
}

// NewRecognizer returns a Recognizer using c for the settle window.
func NewRecognizer(c clock.Clock) *Recognizer {
	if c == nil {
		c = clock.Real()
	}
	return &Recognizer{clock: c}
}

// Start begins a new touch sequence at p.
func (r *Recognizer) Start(p Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopSettleLocked()
	r.session = gestureSession{start: p, started: true}
}

// Move records the latest touch position.
func (r *Recognizer) Move(p Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.session.started {
		return
	}
	r.session.last = p
	r.session.hasMove = true
	if math.Abs(p.X-r.session.start.X) > MoveTolerance || math.Abs(p.Y-r.session.start.Y) > MoveTolerance {
		r.session.moved = true
	}
}

// End classifies the sequence and opens the settle window.
func (r *Recognizer) End() Swipe {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.session.started {
		return SwipeNone
	}
	swipe := SwipeNone
	if r.session.hasMove {
		swipe = Classify(r.session.start, r.session.last)
	}

	r.stopSettleLocked()
	r.gen++
	gen := r.gen
	r.settle = r.clock.AfterFunc(SettleWindow, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.gen != gen {
			return
		}
		r.session = gestureSession{}
		r.settle = nil
	})
	return swipe
}

// SuppressClick reports whether a click belongs to a touch that moved.
func (r *Recognizer) SuppressClick() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.moved
}

// active reports whether a touch sequence or its settle window is in progress.
func (r *Recognizer) active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.started
}

// Stop cancels the settle window and clears the session.
func (r *Recognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopSettleLocked()
	r.session = gestureSession{}
}

func (r *Recognizer) stopSettleLocked() {
	r.gen++
	if r.settle != nil {
		r.settle.Stop()
		r.settle = nil
	}
}
