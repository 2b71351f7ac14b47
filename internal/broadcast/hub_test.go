package broadcast

import "testing"

func TestPublishReachesAllSubscribers(t *testing.T) {
	h := New()
	a, cancelA := h.Subscribe()
	b, cancelB := h.Subscribe()
	defer cancelA()
	defer cancelB()

	h.Publish()
	for name, ch := range map[string]<-chan struct{}{"a": a, "b": b} {
		select {
		case <-ch:
		default:
			t.Fatalf("subscriber %s not signalled", name)
		}
	}
}

func TestPublishCoalescesAndNeverBlocks(t *testing.T) {
	h := New()
	ch, cancel := h.Subscribe()
	defer cancel()
	for i := 0; i < 10; i++ {
		h.Publish()
	}
	<-ch
	select {
	case <-ch:
		t.Fatalf("expected bursts to coalesce into one signal")
	default:
	}
}

func TestCancelUnsubscribes(t *testing.T) {
	h := New()
	ch, cancel := h.Subscribe()
	cancel()
	cancel()
	if h.Len() != 0 {
		t.Fatalf("len = %d after cancel", h.Len())
	}
	if _, ok := <-ch; ok {
		t.Fatalf("channel should be closed")
	}
	h.Publish()
}
