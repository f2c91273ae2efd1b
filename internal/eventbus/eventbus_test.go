package eventbus

import "testing"

func TestPublishSubscribe(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	b.Publish("tick")
	select {
	case ev := <-sub:
		if ev != "tick" {
			t.Fatalf("unexpected event %v", ev)
		}
	default:
		t.Fatalf("expected buffered event")
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	for i := 0; i < 20; i++ {
		b.Publish(i)
	}
	// Buffer is 8; the rest must have been dropped without blocking.
	n := 0
	for {
		select {
		case <-sub:
			n++
			continue
		default:
		}
		break
	}
	if n != 8 {
		t.Fatalf("expected 8 buffered events, got %d", n)
	}
	if got := b.Dropped(); got != 12 {
		t.Fatalf("expected 12 dropped events, got %d", got)
	}
}

func TestUnsubscribeCloses(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	b.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatalf("channel must be closed")
	}
	b.Publish("after") // must not panic
}

func TestCloseRejectsFurtherSubscribers(t *testing.T) {
	b := New()
	sub := b.Subscribe()
	b.Close()
	if _, ok := <-sub; ok {
		t.Fatalf("channel must be closed")
	}
	late := b.Subscribe()
	if _, ok := <-late; ok {
		t.Fatalf("late subscriber channel must be closed")
	}
}
