package notification

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/estateshq/estates-backend/estates-notification/consts"
	"github.com/estateshq/estates-backend/estates-notification/model"
	"github.com/google/uuid"
)

// memStore is an in-memory Store with the same row-level semantics as the
// mysql adapter.
type memStore struct {
	mu      sync.Mutex
	rows    map[string]*model.Notification
	readErr error
	listN   int
	countN  int
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]*model.Notification)}
}

func (s *memStore) failReads(err error) {
	s.mu.Lock()
	s.readErr = err
	s.mu.Unlock()
}

func (s *memStore) List(ctx context.Context, ownerID string, filter model.Filter) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listN++
	if s.readErr != nil {
		return nil, s.readErr
	}

	out := []model.Notification{}
	for _, n := range s.rows {
		if n.OwnerID != ownerID {
			continue
		}
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		if filter.Category != "" && n.Category != filter.Category {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > consts.ListLimit {
		out = out[:consts.ListLimit]
	}
	return out, nil
}

func (s *memStore) CountUnread(ctx context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countN++
	if s.readErr != nil {
		return 0, s.readErr
	}

	var count int64
	for _, n := range s.rows {
		if n.OwnerID == ownerID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *memStore) Insert(ctx context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	cp := *n
	s.rows[n.ID] = &cp
	return nil
}

func (s *memStore) MarkRead(ctx context.Context, ownerID, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.rows[id]
	if !ok || n.OwnerID != ownerID {
		return &model.NotFoundError{ID: id}
	}
	if !n.IsRead {
		n.IsRead = true
		n.ReadAt = model.NullTime{Time: at, Valid: true}
	}
	return nil
}

func (s *memStore) MarkAllRead(ctx context.Context, ownerID string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var affected int64
	for _, n := range s.rows {
		if n.OwnerID == ownerID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = model.NullTime{Time: at, Valid: true}
			affected++
		}
	}
	return affected, nil
}

func (s *memStore) Delete(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.rows[id]
	if !ok || n.OwnerID != ownerID {
		return &model.NotFoundError{ID: id}
	}
	delete(s.rows, id)
	return nil
}

func (s *memStore) DeleteAllRead(ctx context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var affected int64
	for id, n := range s.rows {
		if n.OwnerID == ownerID && n.IsRead {
			delete(s.rows, id)
			affected++
		}
	}
	return affected, nil
}

func (s *memStore) seed(ownerID, category string, read bool, createdAt time.Time) string {
	n := &model.Notification{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Category:  category,
		Title:     "title",
		Body:      "body",
		Priority:  consts.PriorityNormal,
		IsRead:    read,
		CreatedAt: createdAt,
	}
	if read {
		n.ReadAt = model.NullTime{Time: createdAt, Valid: true}
	}
	s.mu.Lock()
	s.rows[n.ID] = n
	s.mu.Unlock()
	return n.ID
}

func (s *memStore) listCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listN
}

// memFeed is an in-memory Feed fanning events out per owner.
type memFeed struct {
	mu           sync.Mutex
	subs         map[string]map[int]chan model.ChangeEvent
	nextID       int
	subscribeErr error
}

func newMemFeed() *memFeed {
	return &memFeed{subs: make(map[string]map[int]chan model.ChangeEvent)}
}

func (f *memFeed) Publish(ownerID string, ev model.ChangeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[ownerID] {
		ch <- ev
	}
	return nil
}

func (f *memFeed) Subscribe(ownerID string) (<-chan model.ChangeEvent, func() error, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return nil, nil, f.subscribeErr
	}

	id := f.nextID
	f.nextID++
	ch := make(chan model.ChangeEvent, 16)
	if f.subs[ownerID] == nil {
		f.subs[ownerID] = make(map[int]chan model.ChangeEvent)
	}
	f.subs[ownerID][id] = ch

	release := func() error {
		f.mu.Lock()
		defer f.mu.Unlock()
		if c, ok := f.subs[ownerID][id]; ok {
			delete(f.subs[ownerID], id)
			close(c)
		}
		return nil
	}
	return ch, release, nil
}

func (f *memFeed) setSubscribeErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribeErr = err
}

// dropAll closes every live subscription, simulating a feed outage.
func (f *memFeed) dropAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for owner, subs := range f.subs {
		for id, ch := range subs {
			delete(subs, id)
			close(ch)
		}
		delete(f.subs, owner)
	}
}

func (f *memFeed) subscriptions(ownerID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[ownerID])
}

// fakePusher records every native alert.
type fakePusher struct {
	mu     sync.Mutex
	pushes []string
	err    error
}

func (p *fakePusher) Push(ctx context.Context, ownerID string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.pushes = append(p.pushes, ownerID)
	return nil
}

func (p *fakePusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushes)
}

// fakeRegistry keeps push subscriptions in a map.
type fakeRegistry struct {
	mu   sync.Mutex
	subs map[string]*model.PushSubscription
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{subs: make(map[string]*model.PushSubscription)}
}

func (r *fakeRegistry) Save(ctx context.Context, sub *model.PushSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.OwnerID] = sub
	return nil
}

func (r *fakeRegistry) Find(ctx context.Context, ownerID string) (*model.PushSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[ownerID]
	if !ok {
		return nil, &model.PermissionDenied{OwnerID: ownerID}
	}
	return sub, nil
}

func (r *fakeRegistry) Remove(ctx context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, ownerID)
	return nil
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
