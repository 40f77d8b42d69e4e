package notification

import (
	"context"
	"sync"
	"time"

	"github.com/estateshq/estates-backend/estates-notification/app/config"
	"github.com/estateshq/estates-backend/estates-notification/model"
	"github.com/estateshq/estates-backend/estates-notification/util"
)

// session wires one owner's list cache, unread counter, read-state tracker,
// feed subscriber and alert dispatcher together and owns their lifetime. Both
// the feed subscription and the poll ticker stop when the session closes;
// neither may outlive the caches they invalidate.
type session struct {
	ownerID    string
	cache      *ListCache
	counter    *UnreadCounter
	tracker    *ReadStateTracker
	subscriber *FeedSubscriber
	alerts     *AlertDispatcher
	hub        *Hub

	cancel context.CancelFunc
	wg     sync.WaitGroup

	usedMu sync.Mutex
	used   time.Time
}

// touch records use; the idle reaper only drops sessions past their TTL.
func (s *session) touch() {
	s.usedMu.Lock()
	s.used = time.Now()
	s.usedMu.Unlock()
}

func (s *session) lastUsed() time.Time {
	s.usedMu.Lock()
	defer s.usedMu.Unlock()
	return s.used
}

func newSession(ownerID string, store Store, feed Feed, pusher Pusher, conf *config.Config) *session {
	ctx, cancel := context.WithCancel(context.Background())

	s := &session{
		ownerID: ownerID,
		hub:     NewHub(),
		cancel:  cancel,
		used:    time.Now(),
	}

	s.cache = NewListCache(ownerID, store)
	s.alerts = NewAlertDispatcher(ownerID, pusher, func() {
		s.hub.Broadcast(model.Signal{Kind: model.SignalChime})
	})
	s.counter = NewUnreadCounter(ownerID, store, func(count int64) {
		s.alerts.Observe(ctx, count)
		s.hub.Broadcast(model.Signal{Kind: model.SignalUnreadCount, UnreadCount: count})
	})
	s.tracker = NewReadStateTracker(ownerID, store, func() {
		s.invalidate(ctx)
	})
	s.subscriber = NewFeedSubscriber(ownerID, feed, conf.ReconnectDelay, func(evCtx context.Context, ev model.ChangeEvent) {
		// The event payload is only a signal; re-fetch is the source of
		// truth.
		s.invalidate(evCtx)
	})

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.subscriber.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.counter.Run(ctx, conf.PollInterval)
	}()

	// Prime the alert baseline so unread rows that predate the session never
	// fire an alert.
	go func() {
		defer util.RecoverGoroutinePanic(nil)
		s.counter.Refresh(ctx)
	}()

	return s
}

// invalidate marks both caches stale, re-derives the count and hints attached
// observers. Safe under any interleaving of feed events and poll ticks.
func (s *session) invalidate(ctx context.Context) {
	s.cache.Invalidate()
	s.counter.Invalidate()
	s.counter.Refresh(ctx)
	s.hub.Broadcast(model.Signal{Kind: model.SignalInvalidate})
}

// close releases the feed subscription, stops the poll ticker and detaches
// every observer.
func (s *session) close() {
	s.cancel()
	s.wg.Wait()
	s.hub.Close()
}
