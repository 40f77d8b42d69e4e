package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/gorilla/mux"

	"github.com/estateshq/estates-backend/estates-notification/api/common"
	"github.com/estateshq/estates-backend/estates-notification/app"
	"github.com/estateshq/estates-backend/estates-notification/app/config"
	"github.com/estateshq/estates-backend/estates-notification/app/jwtauth"
	"github.com/estateshq/estates-backend/estates-notification/app/notification"
	"github.com/estateshq/estates-backend/estates-notification/consts"
	"github.com/estateshq/estates-backend/estates-notification/model"
)

// stubService records calls and plays back canned results.
type stubService struct {
	listResult  []model.Notification
	listStale   bool
	listErr     error
	count       int64
	countErr    error
	markReadErr error
	created     []model.Notification
	markedRead  []string
	deleted     []string
	markedAll   int
	sweptRead   int
	subs        []webpush.Subscription
	subsRemoved int
}

func (s *stubService) GetNotificationList(ctx context.Context, ownerID string, filter model.Filter) ([]model.Notification, bool, error) {
	return s.listResult, s.listStale, s.listErr
}

func (s *stubService) GetUnreadCount(ctx context.Context, ownerID string) (int64, error) {
	return s.count, s.countErr
}

func (s *stubService) MarkNotificationAsRead(ctx context.Context, ownerID, notificationID string) error {
	if s.markReadErr != nil {
		return s.markReadErr
	}
	s.markedRead = append(s.markedRead, notificationID)
	return nil
}

func (s *stubService) MarkAllNotificationAsRead(ctx context.Context, ownerID string) error {
	s.markedAll++
	return nil
}

func (s *stubService) DeleteNotification(ctx context.Context, ownerID, notificationID string) error {
	s.deleted = append(s.deleted, notificationID)
	return nil
}

func (s *stubService) DeleteAllRead(ctx context.Context, ownerID string) error {
	s.sweptRead++
	return nil
}

func (s *stubService) CreateNotification(ctx context.Context, n *model.Notification) error {
	if n.OwnerID == "" {
		return &app.ValidationError{Message: "ownerID is required"}
	}
	n.ID = "generated-id"
	s.created = append(s.created, *n)
	return nil
}

func (s *stubService) RegisterPushSubscription(ctx context.Context, ownerID string, sub *webpush.Subscription) error {
	s.subs = append(s.subs, *sub)
	return nil
}

func (s *stubService) RemovePushSubscription(ctx context.Context, ownerID string) error {
	s.subsRemoved++
	return nil
}

func (s *stubService) Subscribe(ownerID string) (<-chan model.Signal, func()) {
	ch := make(chan model.Signal)
	return ch, func() {}
}

func (s *stubService) FeedState(ownerID string) notification.State {
	return notification.StateSubscribed
}

func (s *stubService) Close() {}

func newTestAPI(t *testing.T, svc notification.Service) (*mux.Router, string) {
	t.Helper()

	appConf := &config.Config{JWTKey: "test-signing-key"}
	a := &API{
		App: &app.App{
			Config:              appConf,
			NotificationService: svc,
			JwtService:          jwtauth.NewService(appConf),
		},
		Config: &common.Config{
			MaxContentSize: 1,
			AuthCookieName: "estates_token",
			InternalAPIKey: "internal-test-key",
		},
	}

	r := mux.NewRouter()
	a.Init(r)

	token, err := a.App.JwtService.CreateJWTToken("owner-1", time.Minute)
	if err != nil {
		t.Fatalf("CreateJWTToken returned error: %v", err)
	}
	return r, token.Value
}

func doRequest(r *mux.Router, method, path, token, body string, extra map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range extra {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not json: %v\n%s", err, rec.Body.String())
	}
	return envelope
}

func TestAuthRequired(t *testing.T) {
	r, _ := newTestAPI(t, &stubService{})

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/notifications"},
		{http.MethodGet, "/notifications/count"},
		{http.MethodPut, "/notifications/read-all"},
		{http.MethodPut, "/notifications/n1/read"},
		{http.MethodDelete, "/notifications/n1"},
	}
	for _, p := range paths {
		rec := doRequest(r, p.method, p.path, "", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: got %d, want 401", p.method, p.path, rec.Code)
		}
	}
}

func TestAuthAcceptsCookieAndQueryToken(t *testing.T) {
	svc := &stubService{count: 4}
	r, token := newTestAPI(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/notifications/count", nil)
	req.AddCookie(&http.Cookie{Name: "estates_token", Value: token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("cookie auth: got %d, want 200", rec.Code)
	}

	rec = doRequest(r, http.MethodGet, "/notifications/count?token="+token, "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("query token auth: got %d, want 200", rec.Code)
	}
}

func TestListNotifications(t *testing.T) {
	svc := &stubService{
		listResult: []model.Notification{
			{ID: "n1", OwnerID: "owner-1", Category: consts.CategoryBooking, Title: "Booking confirmed"},
		},
	}
	r, token := newTestAPI(t, svc)

	rec := doRequest(r, http.MethodGet, "/notifications?filter=unread", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200: %s", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]interface{})
	if data["stale"] != false {
		t.Fatalf("expected fresh response, got %v", data["stale"])
	}
	if items := data["notifications"].([]interface{}); len(items) != 1 {
		t.Fatalf("got %d notifications, want 1", len(items))
	}
}

func TestListNotificationsRejectsUnknownFilter(t *testing.T) {
	r, token := newTestAPI(t, &stubService{})

	rec := doRequest(r, http.MethodGet, "/notifications?filter=archived", token, "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
}

func TestListNotificationsServesStaleSnapshot(t *testing.T) {
	svc := &stubService{
		listResult: []model.Notification{{ID: "n1", OwnerID: "owner-1"}},
		listStale:  true,
		listErr:    &model.FetchError{Err: context.DeadlineExceeded},
	}
	r, token := newTestAPI(t, svc)

	rec := doRequest(r, http.MethodGet, "/notifications", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200 with stale payload", rec.Code)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	if data["stale"] != true {
		t.Fatal("expected stale flag on degraded response")
	}
}

func TestListNotificationsUnavailableWithoutSnapshot(t *testing.T) {
	svc := &stubService{
		listStale: false,
		listErr:   &model.FetchError{Err: context.DeadlineExceeded},
	}
	r, token := newTestAPI(t, svc)

	rec := doRequest(r, http.MethodGet, "/notifications", token, "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d, want 503", rec.Code)
	}
}

func TestMarkReadErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing row", &model.NotFoundError{ID: "n1"}, http.StatusNotFound},
		{"write conflict", &model.WriteConflict{Op: "markRead", Err: context.DeadlineExceeded}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{markReadErr: tt.err}
			r, token := newTestAPI(t, svc)

			rec := doRequest(r, http.MethodPut, "/notifications/n1/read", token, "", nil)
			if rec.Code != tt.want {
				t.Fatalf("got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMarkReadTargetsPathID(t *testing.T) {
	svc := &stubService{}
	r, token := newTestAPI(t, svc)

	rec := doRequest(r, http.MethodPut, "/notifications/n42/read", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if len(svc.markedRead) != 1 || svc.markedRead[0] != "n42" {
		t.Fatalf("service saw %v, want [n42]", svc.markedRead)
	}
}

func TestInternalIngest(t *testing.T) {
	svc := &stubService{}
	r, _ := newTestAPI(t, svc)
	body := `{"ownerId":"owner-1","category":"booking","title":"New booking","priority":"high"}`

	// Missing key is rejected.
	rec := doRequest(r, http.MethodPost, "/internal/notifications", "", body, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("without key: got %d, want 403", rec.Code)
	}

	rec = doRequest(r, http.MethodPost, "/internal/notifications", "", body,
		map[string]string{"X-Internal-Key": "internal-test-key"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("with key: got %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if len(svc.created) != 1 || svc.created[0].Category != consts.CategoryBooking {
		t.Fatalf("service saw %+v, want one booking notification", svc.created)
	}
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	if data["id"] != "generated-id" {
		t.Fatalf("response id %v, want generated-id", data["id"])
	}
}

func TestInternalIngestRejectsBadPayload(t *testing.T) {
	r, _ := newTestAPI(t, &stubService{})

	rec := doRequest(r, http.MethodPost, "/internal/notifications", "", "{not json",
		map[string]string{"X-Internal-Key": "internal-test-key"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rec.Code)
	}
}

func TestPushSubscriptionLifecycle(t *testing.T) {
	svc := &stubService{}
	r, token := newTestAPI(t, svc)

	rec := doRequest(r, http.MethodPost, "/notifications/push-subscription", token,
		`{"endpoint":"https://push.example.com/ep","keys":{"auth":"a","p256dh":"p"}}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register: got %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(svc.subs) != 1 || svc.subs[0].Endpoint != "https://push.example.com/ep" {
		t.Fatalf("service saw %+v", svc.subs)
	}

	// Incomplete subscription is a client error.
	rec = doRequest(r, http.MethodPost, "/notifications/push-subscription", token,
		`{"endpoint":"https://push.example.com/ep"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("incomplete register: got %d, want 400", rec.Code)
	}

	rec = doRequest(r, http.MethodDelete, "/notifications/push-subscription", token, "", nil)
	if rec.Code != http.StatusOK || svc.subsRemoved != 1 {
		t.Fatalf("remove: got %d removed=%d", rec.Code, svc.subsRemoved)
	}
}

func TestBulkRoutes(t *testing.T) {
	svc := &stubService{}
	r, token := newTestAPI(t, svc)

	if rec := doRequest(r, http.MethodPut, "/notifications/read-all", token, "", nil); rec.Code != http.StatusOK {
		t.Fatalf("read-all: got %d, want 200", rec.Code)
	}
	if rec := doRequest(r, http.MethodDelete, "/notifications/read", token, "", nil); rec.Code != http.StatusOK {
		t.Fatalf("delete read: got %d, want 200", rec.Code)
	}
	if svc.markedAll != 1 || svc.sweptRead != 1 {
		t.Fatalf("markedAll=%d sweptRead=%d, want 1 and 1", svc.markedAll, svc.sweptRead)
	}
}

func TestHealthz(t *testing.T) {
	r, _ := newTestAPI(t, &stubService{})
	rec := doRequest(r, http.MethodGet, "/healthz", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
}
