// Package viewer implements the project detail viewer: the image carousel,
// the fullscreen zoom/pan viewport, touch swipe recognition and keyboard
// routing.
//
// A Viewer is owned by one visitor. All mutations go through its mutex, and a
// slide change resets the viewport inside the same critical section, so a
// Snapshot never pairs a new slide with the previous image's zoom or pan.
package viewer

import (
	"sync"
	"time"

	"github.com/Zachkp/folio/internal/catalog"
	"github.com/Zachkp/folio/internal/clock"
)

// CopyFeedbackDuration is how long the "link copied" hint stays visible.
const CopyFeedbackDuration = 2 * time.Second

// Snapshot is a consistent, render-ready copy of the viewer state.
type Snapshot struct {
	Open       bool
	Project    catalog.Project
	Index      int
	Count      int
	Image      catalog.Image
	Empty      bool
	Fullscreen bool
	ShowInfo   bool

	Scale      float64
	Offset     Point
	State      ViewportState
	Loaded     bool
	CanZoomIn  bool
	CanZoomOut bool
	CanReset   bool

	Technical    TechnicalData
	CopyFeedback bool
}

// Viewer composes the slide index, viewport, gesture recognizer and key
// router for one open project.
type Viewer struct {
	mu       sync.Mutex
	clock    clock.Clock
	open     bool
	project  catalog.Project
	slides   *SlideIndex
	viewport *Viewport
	gestures *Recognizer
	keys     KeyRouter

	fullscreen bool
	showInfo   bool

	copyFeedback bool
	copyTimer    clock.Timer
	copyGen      uint64
}

// New returns a closed viewer. A nil clock uses real time.
func New(c clock.Clock) *Viewer {
	if c == nil {
		c = clock.Real()
	}
	return &Viewer{
		clock:    c,
		slides:   NewSlideIndex(0),
		viewport: NewViewport(),
		gestures: NewRecognizer(c),
		showInfo: true,
	}
}

// Open shows p starting from its first slide.
func (v *Viewer) Open(p catalog.Project) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.teardownLocked()
	v.project = p
	v.slides = NewSlideIndex(len(p.Images))
	v.viewport.ImageChanged()
	v.fullscreen = false
	v.open = true
	v.keys.Attach()
}

// Close hides the viewer and cancels pending timers.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closeLocked()
}

// Dismiss closes the viewer from a backdrop click, unless the click is the
// tail of a swipe.
func (v *Viewer) Dismiss() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open || v.gestures.SuppressClick() {
		return false
	}
	v.closeLocked()
	return true
}

// Refresh swaps in updated data for the open project, e.g. after an image
// override was saved. The slide position survives when still valid.
func (v *Viewer) Refresh(p catalog.Project) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open || p.ID != v.project.ID {
		return
	}
	idx := v.slides.Index()
	v.project = p
	v.slides = NewSlideIndex(len(p.Images))
	if !v.slides.Goto(idx) {
		v.viewport.ImageChanged()
	}
}

// IsOpen reports whether a project is shown.
func (v *Viewer) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}

// ProjectID returns the open project's id, or "" when closed.
func (v *Viewer) ProjectID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open {
		return ""
	}
	return v.project.ID
}

func (v *Viewer) Next() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.navigateLocked(v.slides.Next)
}

func (v *Viewer) Prev() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.navigateLocked(v.slides.Prev)
}

// Goto jumps to slide i; out-of-range requests are rejected.
func (v *Viewer) Goto(i int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.navigateLocked(func() bool { return v.slides.Goto(i) })
}

// EnterFullscreen enlarges the current slide. A click that is the tail of a
// swipe is ignored.
func (v *Viewer) EnterFullscreen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open || v.slides.Count() == 0 || v.gestures.SuppressClick() {
		return false
	}
	if !v.fullscreen {
		v.fullscreen = true
		v.viewport.ImageChanged()
	}
	return true
}

// ExitFullscreen handles the fullscreen close button. Like EnterFullscreen it
// ignores the trailing click of a swipe.
func (v *Viewer) ExitFullscreen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.gestures.SuppressClick() {
		return false
	}
	return v.exitFullscreenLocked()
}

// ToggleInfo flips the fullscreen info overlay.
func (v *Viewer) ToggleInfo() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open || !v.fullscreen {
		return false
	}
	v.showInfo = !v.showInfo
	return true
}

// HandleKey routes a key press and applies the resulting action.
func (v *Viewer) HandleKey(key string, carouselFocused bool) Action {
	v.mu.Lock()
	defer v.mu.Unlock()
	act := v.keys.Route(key, KeyContext{Open: v.open, Fullscreen: v.fullscreen, CarouselFocused: carouselFocused})
	switch act {
	case ActionExitFullscreen:
		v.exitFullscreenLocked()
	case ActionClose:
		v.closeLocked()
	case ActionPrev:
		v.navigateLocked(v.slides.Prev)
	case ActionNext:
		v.navigateLocked(v.slides.Next)
	case ActionToggleInfo:
		v.showInfo = !v.showInfo
	}
	return act
}

// Touch replays one complete touch sequence, start then moves in order, and
// navigates on a swipe.
func (v *Viewer) Touch(start Point, moves ...Point) Swipe {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open {
		return SwipeNone
	}
	v.gestures.Start(start)
	for _, p := range moves {
		v.gestures.Move(p)
	}
	s := v.gestures.End()
	switch s {
	case SwipeNext:
		v.navigateLocked(v.slides.Next)
	case SwipePrev:
		v.navigateLocked(v.slides.Prev)
	}
	return s
}

func (v *Viewer) ZoomIn() bool      { return v.withViewport((*Viewport).ZoomIn) }
func (v *Viewer) ZoomOut() bool     { return v.withViewport((*Viewport).ZoomOut) }
func (v *Viewer) ResetZoom() bool   { return v.withViewport((*Viewport).Reset) }
func (v *Viewer) DoubleClick() bool { return v.withViewport((*Viewport).DoubleClick) }
func (v *Viewer) DragEnd() bool     { return v.withViewport((*Viewport).DragEnd) }
func (v *Viewer) ImageLoaded() bool { return v.withViewport((*Viewport).MarkLoaded) }

func (v *Viewer) DragStart(p Point) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open && v.fullscreen && v.viewport.DragStart(p)
}

func (v *Viewer) DragMove(p Point) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open && v.fullscreen && v.viewport.DragMove(p)
}

// Share shows the copy feedback for CopyFeedbackDuration.
func (v *Viewer) Share() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open {
		return false
	}
	v.stopCopyLocked()
	v.copyFeedback = true
	gen := v.copyGen
	v.copyTimer = v.clock.AfterFunc(CopyFeedbackDuration, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.copyGen == gen {
			v.copyFeedback = false
			v.copyTimer = nil
		}
	})
	return true
}

// Snapshot returns the current state.
func (v *Viewer) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := Snapshot{
		Open:         v.open,
		Project:      v.project,
		Index:        v.slides.Index(),
		Count:        v.slides.Count(),
		Fullscreen:   v.fullscreen,
		ShowInfo:     v.showInfo,
		Scale:        v.viewport.Scale(),
		Offset:       v.viewport.Offset(),
		State:        v.viewport.State(),
		Loaded:       v.viewport.Loaded(),
		CanZoomIn:    v.viewport.CanZoomIn(),
		CanZoomOut:   v.viewport.CanZoomOut(),
		CanReset:     v.viewport.CanReset(),
		CopyFeedback: v.copyFeedback,
	}
	if !v.open {
		return s
	}
	if s.Count == 0 {
		s.Empty = true
		return s
	}
	s.Image = v.project.Images[s.Index]
	s.Technical = Technical(v.project.ID, s.Index)
	return s
}

func (v *Viewer) withViewport(fn func(*Viewport)) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.open || !v.fullscreen {
		return false
	}
	fn(v.viewport)
	return true
}

func (v *Viewer) navigateLocked(step func() bool) bool {
	if !v.open {
		return false
	}
	before := v.slides.Index()
	if !step() {
		return false
	}
	if v.slides.Index() != before {
		v.viewport.ImageChanged()
	}
	return true
}

func (v *Viewer) exitFullscreenLocked() bool {
	if !v.open || !v.fullscreen {
		return false
	}
	v.fullscreen = false
	v.viewport.ImageChanged()
	return true
}

func (v *Viewer) closeLocked() {
	v.teardownLocked()
	v.open = false
	v.fullscreen = false
	v.slides.Reset()
	v.viewport.ImageChanged()
}

// teardownLocked cancels timers and detaches the key router.
func (v *Viewer) teardownLocked() {
	v.keys.Detach()
	v.gestures.Stop()
	v.stopCopyLocked()
	v.copyFeedback = false
}

func (v *Viewer) stopCopyLocked() {
	v.copyGen++
	if v.copyTimer != nil {
		v.copyTimer.Stop()
		v.copyTimer = nil
	}
}
