package notification

import (
	"context"
	"sync"
	"time"

	"github.com/estateshq/estates-backend/estates-notification/model"
	"github.com/estateshq/estates-backend/estates-notification/util"
	"github.com/sirupsen/logrus"
)

// State - change feed subscription state
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	default:
		return "disconnected"
	}
}

// FeedSubscriber holds the live change feed subscription for one owner. Each
// received event only triggers cache invalidation; the payload is never
// applied to a cache, since pushed payloads may arrive out of order or be
// partial. Re-fetching is the source of truth.
type FeedSubscriber struct {
	ownerID        string
	feed           Feed
	onEvent        func(ctx context.Context, ev model.ChangeEvent)
	reconnectDelay time.Duration
	logger         logrus.FieldLogger

	mu      sync.Mutex
	state   State
	running bool
}

// NewFeedSubscriber creates the per-owner feed subscriber.
func NewFeedSubscriber(ownerID string, feed Feed, reconnectDelay time.Duration, onEvent func(ctx context.Context, ev model.ChangeEvent)) *FeedSubscriber {
	return &FeedSubscriber{
		ownerID:        ownerID,
		feed:           feed,
		onEvent:        onEvent,
		reconnectDelay: reconnectDelay,
		logger:         logrus.StandardLogger().WithField("owner", ownerID),
	}
}

// State reports the current subscription state.
func (s *FeedSubscriber) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *FeedSubscriber) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Run subscribes and dispatches events until ctx is done, reconnecting with
// the same owner filter after every drop. Calling Run twice is a no-op: at
// most one feed subscription exists per owner per session, so a reconnect can
// never stack duplicate subscriptions into an invalidation storm.
func (s *FeedSubscriber) Run(ctx context.Context) {
	defer util.RecoverGoroutinePanic(nil)

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.state = StateDisconnected
		s.mu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		s.setState(StateConnecting)
		events, release, err := s.feed.Subscribe(s.ownerID)
		if err != nil {
			s.logger.WithError(err).Warn("change feed subscribe failed")
			s.setState(StateDisconnected)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.reconnectDelay):
			}
			continue
		}

		s.setState(StateSubscribed)
		s.drain(ctx, events, release)
		s.setState(StateDisconnected)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *FeedSubscriber) drain(ctx context.Context, events <-chan model.ChangeEvent, release func() error) {
	defer func() {
		if err := release(); err != nil {
			s.logger.WithError(err).Warn("unable to release feed subscription")
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				s.logger.Info("change feed dropped, scheduling reconnect")
				return
			}
			s.onEvent(ctx, ev)
		}
	}
}
