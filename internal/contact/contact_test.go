package contact

import (
	"context"
	"errors"
	"testing"
	"time"
)

var msg = Message{Name: "Ada", Email: "ada@example.com", Message: "Hello"}

func TestSubmitSuccessClearsDraft(t *testing.T) {
	var f Form
	if err := f.Submit(context.Background(), Simulated{}, msg); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if f.Status() != Success {
		t.Fatalf("status = %v", f.Status())
	}
	if f.Draft() != (Message{}) {
		t.Fatalf("draft kept after success: %+v", f.Draft())
	}
	f.Reset()
	if f.Status() != Idle {
		t.Fatalf("reset status = %v", f.Status())
	}
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	var f Form
	err := f.Submit(context.Background(), Simulated{Err: ErrSimulated}, msg)
	if !errors.Is(err, ErrSimulated) {
		t.Fatalf("err = %v", err)
	}
	if f.Status() != Failed || !errors.Is(f.Err(), ErrSimulated) {
		t.Fatalf("status = %v err = %v", f.Status(), f.Err())
	}
	if f.Draft() != msg {
		t.Fatalf("draft lost: %+v", f.Draft())
	}
}

func TestDoubleSubmitRejected(t *testing.T) {
	var f Form
	entered := make(chan struct{})
	release := make(chan struct{})
	slow := SubmitterFunc(func(ctx context.Context, _ Message) error {
		close(entered)
		<-release
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background(), slow, msg) }()
	<-entered

	if f.Status() != Submitting {
		t.Fatalf("status = %v, want submitting", f.Status())
	}
	if err := f.Submit(context.Background(), Simulated{}, msg); !errors.Is(err, ErrBusy) {
		t.Fatalf("second submit err = %v, want ErrBusy", err)
	}
	f.Reset()
	if f.Status() != Submitting {
		t.Fatalf("reset interrupted an in-flight submission")
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if f.Status() != Success {
		t.Fatalf("status = %v", f.Status())
	}
}

func TestSimulatedHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := Simulated{Latency: time.Hour}.Submit(ctx, msg)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("cancelled submit still waited")
	}
}

func TestSimulatedLatency(t *testing.T) {
	start := time.Now()
	if err := (Simulated{Latency: 20 * time.Millisecond}).Submit(context.Background(), msg); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatalf("returned before latency elapsed")
	}
}

func TestTrim(t *testing.T) {
	got := Message{Name: "  Ada ", Email: " a@b.c", Message: "hi\n"}.Trim()
	if got != (Message{Name: "Ada", Email: "a@b.c", Message: "hi"}) {
		t.Fatalf("trim = %+v", got)
	}
}
