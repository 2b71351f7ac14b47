package viewer

import (
	"testing"

	"github.com/Zachkp/folio/internal/catalog"
	"github.com/Zachkp/folio/internal/clock"
)

func threeImages() catalog.Project {
	return catalog.Project{
		ID:    "1",
		Title: "Brand Identity Design",
		Images: []catalog.Image{
			{URL: "a.png", Caption: "A"},
			{URL: "b.png", Caption: "B"},
			{URL: "c.png", Caption: "C"},
		},
	}
}

func TestOpenAndArrowNavigationWraps(t *testing.T) {
	v := New(clock.NewFake())
	v.Open(threeImages())
	if s := v.Snapshot(); s.Index != 0 || s.Count != 3 {
		t.Fatalf("after open: index=%d count=%d", s.Index, s.Count)
	}
	v.HandleKey("ArrowRight", true)
	v.HandleKey("ArrowRight", true)
	if s := v.Snapshot(); s.Index != 2 || s.Image.Caption != "C" {
		t.Fatalf("after two rights: %d %q", s.Index, s.Image.Caption)
	}
	v.HandleKey("ArrowRight", true)
	if s := v.Snapshot(); s.Index != 0 {
		t.Fatalf("expected wrap to 0, got %d", s.Index)
	}
}

func TestArrowsIgnoredOutsideCarousel(t *testing.T) {
	v := New(clock.NewFake())
	v.Open(threeImages())
	if act := v.HandleKey("ArrowRight", false); act != ActionNone {
		t.Fatalf("action = %v", act)
	}
	if v.Snapshot().Index != 0 {
		t.Fatalf("arrow moved the carousel without focus")
	}
}

func TestEscapeDismissesOneLevelAtATime(t *testing.T) {
	v := New(clock.NewFake())
	v.Open(threeImages())
	if !v.EnterFullscreen() {
		t.Fatalf("enter fullscreen failed")
	}
	if act := v.HandleKey("Escape", false); act != ActionExitFullscreen {
		t.Fatalf("first escape = %v", act)
	}
	s := v.Snapshot()
	if !s.Open || s.Fullscreen {
		t.Fatalf("first escape: open=%v fullscreen=%v", s.Open, s.Fullscreen)
	}
	if act := v.HandleKey("Escape", false); act != ActionClose {
		t.Fatalf("second escape = %v", act)
	}
	if v.IsOpen() {
		t.Fatalf("viewer still open")
	}
	if act := v.HandleKey("Escape", false); act != ActionNone {
		t.Fatalf("closed viewer routed %v", act)
	}
}

func TestFullscreenDoubleClickScenario(t *testing.T) {
	v := New(clock.NewFake())
	v.Open(threeImages())
	v.EnterFullscreen()
	v.DoubleClick()
	if s := v.Snapshot(); s.Scale != 2 {
		t.Fatalf("scale = %v, want 2", s.Scale)
	}
	v.DoubleClick()
	if s := v.Snapshot(); s.Scale != 1 || s.Offset != (Point{}) {
		t.Fatalf("scale = %v offset = %v", s.Scale, s.Offset)
	}
}

func TestSlideChangeResetsViewportAtomically(t *testing.T) {
	v := New(clock.NewFake())
	v.Open(threeImages())
	v.EnterFullscreen()
	v.ImageLoaded()
	v.ZoomIn()
	v.DragStart(Point{X: 0, Y: 0})
	v.DragMove(Point{X: 20, Y: 20})

	v.HandleKey("ArrowRight", false)
	s := v.Snapshot()
	if s.Index != 1 {
		t.Fatalf("index = %d", s.Index)
	}
	if s.Scale != 1 || s.Offset != (Point{}) || s.Loaded || s.State != Idle {
		t.Fatalf("viewport carried over: %+v", s)
	}
}

func TestViewportOpsRequireFullscreen(t *testing.T) {
	v := New(clock.NewFake())
	v.Open(threeImages())
	if v.ZoomIn() || v.DoubleClick() || v.DragStart(Point{}) {
		t.Fatalf("viewport ops accepted outside fullscreen")
	}
	if v.ToggleInfo() {
		t.Fatalf("info toggle accepted outside fullscreen")
	}
}

func TestInfoToggle(t *testing.T) {
	v := New(clock.NewFake())
	v.Open(threeImages())
	v.EnterFullscreen()
	if !v.Snapshot().ShowInfo {
		t.Fatalf("info overlay should start visible")
	}
	v.HandleKey("i", false)
	if v.Snapshot().ShowInfo {
		t.Fatalf("i did not hide the overlay")
	}
}

func TestSwipeNavigatesAndSuppressesFullscreenClick(t *testing.T) {
	fc := clock.NewFake()
	v := New(fc)
	v.Open(threeImages())
	if s := v.Touch(Point{X: 100, Y: 100}, Point{X: 40, Y: 95}); s != SwipeNext {
		t.Fatalf("swipe = %v", s)
	}
	if v.Snapshot().Index != 1 {
		t.Fatalf("swipe did not advance")
	}
	if v.EnterFullscreen() {
		t.Fatalf("trailing click opened fullscreen")
	}
	fc.Advance(SettleWindow)
	if !v.EnterFullscreen() {
		t.Fatalf("click after settle window was ignored")
	}

	v.Touch(Point{X: 100, Y: 100}, Point{X: 160, Y: 105})
	if v.Snapshot().Index != 0 {
		t.Fatalf("reverse swipe did not go back")
	}
}

func TestCloseTearsDownTimers(t *testing.T) {
	fc := clock.NewFake()
	v := New(fc)
	v.Open(threeImages())
	v.Share()
	v.Touch(Point{}, Point{X: 90})
	if fc.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", fc.Pending())
	}
	v.Close()
	if fc.Pending() != 0 {
		t.Fatalf("close left %d timers", fc.Pending())
	}
	if v.Next() {
		t.Fatalf("closed viewer navigated")
	}
}

func TestShareFeedbackExpires(t *testing.T) {
	fc := clock.NewFake()
	v := New(fc)
	v.Open(threeImages())
	v.Share()
	if !v.Snapshot().CopyFeedback {
		t.Fatalf("feedback not shown")
	}
	fc.Advance(CopyFeedbackDuration)
	if v.Snapshot().CopyFeedback {
		t.Fatalf("feedback did not expire")
	}
}

func TestReopenResetsIndex(t *testing.T) {
	v := New(clock.NewFake())
	v.Open(threeImages())
	v.Goto(2)
	other := threeImages()
	other.ID = "2"
	v.Open(other)
	if s := v.Snapshot(); s.Index != 0 || s.Project.ID != "2" {
		t.Fatalf("reopen: index=%d project=%s", s.Index, s.Project.ID)
	}
}

func TestGotoRejectsOutOfRange(t *testing.T) {
	v := New(clock.NewFake())
	v.Open(threeImages())
	v.Goto(1)
	if v.Goto(3) || v.Goto(-1) {
		t.Fatalf("out-of-range goto accepted")
	}
	if v.Snapshot().Index != 1 {
		t.Fatalf("index moved")
	}
}

func TestEmptyProjectRendersEmptyState(t *testing.T) {
	v := New(clock.NewFake())
	v.Open(catalog.Project{ID: "9", Title: "Empty"})
	if v.Next() || v.Prev() || v.EnterFullscreen() {
		t.Fatalf("navigation on empty project accepted")
	}
	s := v.Snapshot()
	if !s.Empty || s.Count != 0 {
		t.Fatalf("snapshot = %+v", s)
	}
}

func TestRefreshKeepsPosition(t *testing.T) {
	v := New(clock.NewFake())
	p := threeImages()
	v.Open(p)
	v.Goto(2)
	p.Images = append([]catalog.Image(nil), p.Images...)
	p.Images[2].URL = "data:image/png;base64,NEW"
	v.Refresh(p)
	s := v.Snapshot()
	if s.Index != 2 || s.Image.URL != "data:image/png;base64,NEW" {
		t.Fatalf("refresh: index=%d url=%s", s.Index, s.Image.URL)
	}
}

func TestTechnicalDataDependsOnlyOnSlide(t *testing.T) {
	a := Technical("1", 0)
	if a != Technical("1", 0) {
		t.Fatalf("technical data not deterministic")
	}
	if a.Resolution == "" || a.Format == "" || a.ColorSpace == "" || a.FileSize == "" {
		t.Fatalf("incomplete technical data: %+v", a)
	}
	v := New(clock.NewFake())
	v.Open(threeImages())
	v.Next()
	if v.Snapshot().Technical != Technical("1", 1) {
		t.Fatalf("snapshot technical data not derived from the current slide")
	}
}

func TestTouchUsesLastMoveInOrder(t *testing.T) {
	v := New(clock.NewFake())
	v.Open(threeImages())
	// A small early move followed by the real travel is still a swipe.
	if s := v.Touch(Point{X: 200, Y: 100}, Point{X: 195, Y: 100}, Point{X: 100, Y: 101}); s != SwipeNext {
		t.Fatalf("swipe = %v, want next", s)
	}
	if s := v.Touch(Point{X: 200, Y: 100}); s != SwipeNone {
		t.Fatalf("tap = %v, want none", s)
	}
	v.Close()
	if s := v.Touch(Point{X: 200, Y: 100}, Point{X: 100, Y: 100}); s != SwipeNone {
		t.Fatalf("closed viewer swiped: %v", s)
	}
}

func TestSwipeTailDoesNotDismissOrExit(t *testing.T) {
	fc := clock.NewFake()
	v := New(fc)
	v.Open(threeImages())
	v.Touch(Point{X: 100, Y: 100}, Point{X: 30, Y: 100})
	if v.Dismiss() || !v.IsOpen() {
		t.Fatalf("backdrop click after swipe closed the viewer")
	}
	fc.Advance(SettleWindow)
	if !v.EnterFullscreen() {
		t.Fatalf("enter fullscreen after settle")
	}

	v.Touch(Point{X: 100, Y: 100}, Point{X: 30, Y: 100})
	if v.ExitFullscreen() || !v.Snapshot().Fullscreen {
		t.Fatalf("close button click after swipe left fullscreen")
	}
	fc.Advance(SettleWindow)
	if !v.ExitFullscreen() {
		t.Fatalf("exit after settle was ignored")
	}
	if !v.Dismiss() || v.IsOpen() {
		t.Fatalf("backdrop click did not close")
	}
	if v.Dismiss() {
		t.Fatalf("dismiss on closed viewer reported a change")
	}
}
