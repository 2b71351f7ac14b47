package clock

import (
	"testing"
	"time"
)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	f := NewFake()
	var got []int
	f.AfterFunc(200*time.Millisecond, func() { got = append(got, 2) })
	f.AfterFunc(100*time.Millisecond, func() { got = append(got, 1) })
	f.AfterFunc(500*time.Millisecond, func() { got = append(got, 3) })

	f.Advance(250 * time.Millisecond)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v, want [1 2]", got)
	}
	if f.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", f.Pending())
	}
}

func TestFakeStopCancels(t *testing.T) {
	f := NewFake()
	fired := false
	timer := f.AfterFunc(10*time.Millisecond, func() { fired = true })
	if !timer.Stop() {
		t.Fatalf("first Stop should report true")
	}
	if timer.Stop() {
		t.Fatalf("second Stop should report false")
	}
	f.Advance(time.Second)
	if fired {
		t.Fatalf("stopped timer fired")
	}
}
