package notification

import (
	"context"
	"sync"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/estateshq/estates-backend/estates-notification/app/config"
	"github.com/estateshq/estates-backend/estates-notification/consts"
	"github.com/estateshq/estates-backend/estates-notification/model"
	"github.com/estateshq/estates-backend/estates-notification/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Service - defines the notification delivery and read-state service
type Service interface {
	GetNotificationList(ctx context.Context, ownerID string, filter model.Filter) ([]model.Notification, bool, error)
	GetUnreadCount(ctx context.Context, ownerID string) (int64, error)
	MarkNotificationAsRead(ctx context.Context, ownerID, notificationID string) error
	MarkAllNotificationAsRead(ctx context.Context, ownerID string) error
	DeleteNotification(ctx context.Context, ownerID, notificationID string) error
	DeleteAllRead(ctx context.Context, ownerID string) error
	CreateNotification(ctx context.Context, n *model.Notification) error
	RegisterPushSubscription(ctx context.Context, ownerID string, sub *webpush.Subscription) error
	RemovePushSubscription(ctx context.Context, ownerID string) error
	Subscribe(ownerID string) (<-chan model.Signal, func())
	FeedState(ownerID string) State
	Close()
}

type service struct {
	config   *config.Config
	store    Store
	feed     Feed
	pusher   Pusher
	registry PushRegistry

	mu       sync.Mutex
	sessions map[string]*session

	done      chan struct{}
	closeOnce sync.Once
}

// NewService - creates new notification service backed by mysql, redis and
// mongo.
func NewService(repos *model.Repos, conf *config.Config) Service {
	registry := NewMongoRegistry(repos.MongoDB)
	return newService(
		NewSQLStore(repos.MasterDB, repos.ReplicaDB),
		NewRedisFeed(repos.Cache),
		NewWebPusher(registry, conf),
		registry,
		conf,
	)
}

func newService(store Store, feed Feed, pusher Pusher, registry PushRegistry, conf *config.Config) *service {
	s := &service{
		config:   conf,
		store:    store,
		feed:     feed,
		pusher:   pusher,
		registry: registry,
		sessions: make(map[string]*session),
		done:     make(chan struct{}),
	}
	go s.reapIdleSessions()
	return s
}

// session returns the owner's session, creating it lazily.
func (s *service) session(ownerID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[ownerID]; ok {
		sess.touch()
		return sess
	}
	sess := newSession(ownerID, s.store, s.feed, s.pusher, s.config)
	s.sessions[ownerID] = sess
	return sess
}

// reapIdleSessions periodically drops sessions with no attached observers and
// no recent use, releasing their feed subscription and poll ticker.
func (s *service) reapIdleSessions() {
	defer util.RecoverGoroutinePanic(nil)

	ttl := s.config.SessionTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		var idle []*session
		s.mu.Lock()
		for owner, sess := range s.sessions {
			if sess.hub.Observers() > 0 || time.Since(sess.lastUsed()) < ttl {
				continue
			}
			delete(s.sessions, owner)
			idle = append(idle, sess)
		}
		s.mu.Unlock()

		for _, sess := range idle {
			sess.close()
		}
	}
}

func (s *service) GetNotificationList(ctx context.Context, ownerID string, filter model.Filter) ([]model.Notification, bool, error) {
	return s.session(ownerID).cache.List(ctx, filter)
}

func (s *service) GetUnreadCount(ctx context.Context, ownerID string) (int64, error) {
	return s.session(ownerID).counter.Count(ctx)
}

func (s *service) MarkNotificationAsRead(ctx context.Context, ownerID, notificationID string) error {
	return s.session(ownerID).tracker.MarkRead(ctx, notificationID)
}

func (s *service) MarkAllNotificationAsRead(ctx context.Context, ownerID string) error {
	return s.session(ownerID).tracker.MarkAllRead(ctx)
}

func (s *service) DeleteNotification(ctx context.Context, ownerID, notificationID string) error {
	return s.session(ownerID).tracker.Delete(ctx, notificationID)
}

func (s *service) DeleteAllRead(ctx context.Context, ownerID string) error {
	return s.session(ownerID).tracker.DeleteAllRead(ctx)
}

// CreateNotification is the collaborator-facing ingest: insert the row, then
// signal the owner's change feed. Losing the signal is tolerated; the poll
// bounds how stale the owner's badge can get.
func (s *service) CreateNotification(ctx context.Context, n *model.Notification) error {
	if n.OwnerID == "" {
		return errors.New("notification owner is required")
	}
	if !validCategory(n.Category) {
		return errors.Errorf("unknown notification category %q", n.Category)
	}
	if n.Priority == "" {
		n.Priority = consts.PriorityNormal
	}
	if !validPriority(n.Priority) {
		return errors.Errorf("unknown notification priority %q", n.Priority)
	}

	if err := s.store.Insert(ctx, n); err != nil {
		return err
	}

	if err := s.feed.Publish(n.OwnerID, model.ChangeEvent{Operation: consts.OpInsert}); err != nil {
		logrus.WithError(err).WithField("owner", n.OwnerID).Warn("unable to publish change event")
	}
	return nil
}

func (s *service) RegisterPushSubscription(ctx context.Context, ownerID string, sub *webpush.Subscription) error {
	record := &model.PushSubscription{OwnerID: ownerID}
	record.FromWebPush(sub)
	return s.registry.Save(ctx, record)
}

func (s *service) RemovePushSubscription(ctx context.Context, ownerID string) error {
	return s.registry.Remove(ctx, ownerID)
}

// Subscribe attaches an observer (one browser tab) to the owner's session.
func (s *service) Subscribe(ownerID string) (<-chan model.Signal, func()) {
	return s.session(ownerID).hub.Subscribe()
}

// FeedState reports the owner's change feed subscription state.
func (s *service) FeedState(ownerID string) State {
	return s.session(ownerID).subscriber.State()
}

// Close tears down every session.
func (s *service) Close() {
	s.closeOnce.Do(func() { close(s.done) })

	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.close()
	}
}

func validCategory(category string) bool {
	switch category {
	case consts.CategoryBooking, consts.CategoryPayment, consts.CategoryProperty, consts.CategorySystem, consts.CategoryMessage:
		return true
	}
	return false
}

func validPriority(priority string) bool {
	switch priority {
	case consts.PriorityLow, consts.PriorityNormal, consts.PriorityHigh, consts.PriorityUrgent:
		return true
	}
	return false
}
