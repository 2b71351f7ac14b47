package viewer

import (
	"testing"

	"github.com/Zachkp/folio/internal/clock"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		dx, dy float64
		want   Swipe
	}{
		{"right to left", 60, 5, SwipeNext},
		{"left to right", -60, 5, SwipePrev},
		{"vertical dominant", 20, 30, SwipeNone},
		{"too short", 40, 0, SwipeNone},
		{"exactly threshold", 50, 0, SwipeNone},
		{"diagonal", 80, 45, SwipeNone},
		{"just dominant", 81, 40, SwipeNext},
	}
	for _, tc := range cases {
		start := Point{X: 200, Y: 200}
		end := Point{X: start.X - tc.dx, Y: start.Y - tc.dy}
		if got := Classify(start, end); got != tc.want {
			t.Errorf("%s: Classify = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRecognizerSwipeAndSettleWindow(t *testing.T) {
	fc := clock.NewFake()
	r := NewRecognizer(fc)

	r.Start(Point{X: 100, Y: 100})
	r.Move(Point{X: 70, Y: 98})
	r.Move(Point{X: 40, Y: 95})
	if got := r.End(); got != SwipeNext {
		t.Fatalf("End = %v, want next", got)
	}
	if !r.SuppressClick() {
		t.Fatalf("click should be suppressed right after a swipe")
	}
	fc.Advance(SettleWindow - 1)
	if !r.SuppressClick() {
		t.Fatalf("click should stay suppressed inside the settle window")
	}
	fc.Advance(1)
	if r.SuppressClick() || r.active() {
		t.Fatalf("session should clear after the settle window")
	}
}

func TestRecognizerTapIsNotSwipe(t *testing.T) {
	fc := clock.NewFake()
	r := NewRecognizer(fc)
	r.Start(Point{X: 10, Y: 10})
	if got := r.End(); got != SwipeNone {
		t.Fatalf("tap classified as %v", got)
	}
	if r.SuppressClick() {
		t.Fatalf("a stationary tap must not suppress its click")
	}

	r.Start(Point{X: 10, Y: 10})
	r.Move(Point{X: 14, Y: 16})
	r.End()
	if r.SuppressClick() {
		t.Fatalf("movement within tolerance must not suppress the click")
	}
}

func TestRecognizerEndWithoutStart(t *testing.T) {
	r := NewRecognizer(clock.NewFake())
	if got := r.End(); got != SwipeNone {
		t.Fatalf("End without Start = %v", got)
	}
}

func TestRecognizerStopCancelsSettleTimer(t *testing.T) {
	fc := clock.NewFake()
	r := NewRecognizer(fc)
	r.Start(Point{X: 0, Y: 0})
	r.Move(Point{X: 100, Y: 0})
	r.End()
	if fc.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", fc.Pending())
	}
	r.Stop()
	if fc.Pending() != 0 {
		t.Fatalf("Stop left %d timers pending", fc.Pending())
	}
	if r.SuppressClick() {
		t.Fatalf("Stop should clear the session")
	}
}

func TestRecognizerNewTouchDuringSettleIgnoresStaleTimer(t *testing.T) {
	fc := clock.NewFake()
	r := NewRecognizer(fc)
	r.Start(Point{X: 0, Y: 0})
	r.Move(Point{X: 80, Y: 0})
	r.End()

	r.Start(Point{X: 0, Y: 0})
	r.Move(Point{X: 30, Y: 0})
	fc.Advance(SettleWindow)
	if !r.SuppressClick() {
		t.Fatalf("an expired settle timer cleared the live session")
	}
}
