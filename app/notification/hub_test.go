package notification

import (
	"testing"

	"github.com/estateshq/estates-backend/estates-notification/model"
)

func TestHubBroadcastReachesAllObservers(t *testing.T) {
	hub := NewHub()
	ch1, dispose1 := hub.Subscribe()
	ch2, dispose2 := hub.Subscribe()
	defer dispose1()
	defer dispose2()

	hub.Broadcast(model.Signal{Kind: model.SignalInvalidate})

	for i, ch := range []<-chan model.Signal{ch1, ch2} {
		select {
		case sig := <-ch:
			if sig.Kind != model.SignalInvalidate {
				t.Fatalf("observer %d got %q, want invalidate", i, sig.Kind)
			}
		default:
			t.Fatalf("observer %d got nothing", i)
		}
	}
}

func TestHubDisposeDetachesObserver(t *testing.T) {
	hub := NewHub()
	ch, dispose := hub.Subscribe()

	dispose()
	dispose() // second call is harmless

	if hub.Observers() != 0 {
		t.Fatalf("got %d observers after dispose, want 0", hub.Observers())
	}
	if _, ok := <-ch; ok {
		t.Fatal("disposed channel not closed")
	}
}

func TestHubBroadcastNeverBlocksOnSlowObserver(t *testing.T) {
	hub := NewHub()
	_, dispose := hub.Subscribe()
	defer dispose()

	// Overflow the observer buffer; Broadcast must drop, not hang.
	for i := 0; i < 100; i++ {
		hub.Broadcast(model.Signal{Kind: model.SignalInvalidate})
	}
}

func TestHubCloseDetachesEveryone(t *testing.T) {
	hub := NewHub()
	ch, _ := hub.Subscribe()
	hub.Close()

	if _, ok := <-ch; ok {
		t.Fatal("channel not closed by hub close")
	}

	// Subscribing after close yields a dead channel, not a panic.
	ch2, dispose := hub.Subscribe()
	dispose()
	if _, ok := <-ch2; ok {
		t.Fatal("post-close subscribe returned a live channel")
	}
}
