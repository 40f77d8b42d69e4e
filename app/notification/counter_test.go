package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/estateshq/estates-backend/estates-notification/consts"
	"github.com/estateshq/estates-backend/estates-notification/model"
)

func TestUnreadCounterDerivesFromAggregate(t *testing.T) {
	store := newMemStore()
	base := time.Now().UTC()
	store.seed("owner-1", consts.CategoryBooking, false, base)
	store.seed("owner-1", consts.CategoryPayment, false, base)
	store.seed("owner-1", consts.CategorySystem, true, base)
	store.seed("owner-2", consts.CategoryBooking, false, base)

	counter := NewUnreadCounter("owner-1", store, nil)
	count, err := counter.Count(context.Background())
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("got count %d, want 2", count)
	}
}

func TestUnreadCounterCachesUntilInvalidated(t *testing.T) {
	store := newMemStore()
	store.seed("owner-1", consts.CategoryBooking, false, time.Now().UTC())
	counter := NewUnreadCounter("owner-1", store, nil)

	if _, err := counter.Count(context.Background()); err != nil {
		t.Fatalf("Count returned error: %v", err)
	}

	// A new row appears; without invalidation the cached value stands.
	store.seed("owner-1", consts.CategoryPayment, false, time.Now().UTC())
	count, err := counter.Count(context.Background())
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("got %d, want cached 1", count)
	}

	counter.Invalidate()
	count, err = counter.Count(context.Background())
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("got %d after invalidate, want 2", count)
	}
}

func TestUnreadCounterKeepsLastValueOnFailure(t *testing.T) {
	store := newMemStore()
	store.seed("owner-1", consts.CategoryBooking, false, time.Now().UTC())
	counter := NewUnreadCounter("owner-1", store, nil)

	if _, err := counter.Count(context.Background()); err != nil {
		t.Fatalf("Count returned error: %v", err)
	}

	store.failReads(errors.New("store down"))
	counter.Invalidate()

	count, err := counter.Count(context.Background())
	if err == nil {
		t.Fatal("expected fetch error")
	}
	var fetchErr *model.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("got %T, want *model.FetchError", err)
	}
	if count != 1 {
		t.Fatalf("got %d, want last-known 1", count)
	}
}

// The poll re-derives the count with zero push events (a silently dead feed).
func TestUnreadCounterPollConverges(t *testing.T) {
	store := newMemStore()
	counter := NewUnreadCounter("owner-1", store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go counter.Run(ctx, 10*time.Millisecond)

	store.seed("owner-1", consts.CategoryBooking, false, time.Now().UTC())

	ok := eventually(t, time.Second, func() bool {
		count, err := counter.Count(context.Background())
		return err == nil && count == 1
	})
	if !ok {
		t.Fatal("poll never converged the counter to 1")
	}
}

func TestUnreadCounterNotifiesObserverOnRefresh(t *testing.T) {
	store := newMemStore()
	store.seed("owner-1", consts.CategoryBooking, false, time.Now().UTC())

	var observed []int64
	counter := NewUnreadCounter("owner-1", store, func(count int64) {
		observed = append(observed, count)
	})

	if _, err := counter.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	store.seed("owner-1", consts.CategoryPayment, false, time.Now().UTC())
	if _, err := counter.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	if len(observed) != 2 || observed[0] != 1 || observed[1] != 2 {
		t.Fatalf("observer saw %v, want [1 2]", observed)
	}
}
