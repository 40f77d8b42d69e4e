package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/estateshq/estates-backend/estates-notification/api/common"
	"github.com/estateshq/estates-backend/estates-notification/app"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// API estates notification api
type API struct {
	App      *app.App
	Config   *common.Config
	upgrader websocket.Upgrader
}

// New creates a new api
func New(a *app.App) (api *API, err error) {
	api = &API{App: a}
	api.Config, err = common.InitConfig()
	if err != nil {
		return nil, err
	}
	api.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	return api, nil
}

// Init registers routes. The owner on every client route comes from the JWT
// claims; nothing client-side names an owner id.
func (a *API) Init(r *mux.Router) {

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"OK","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
	})

	// client surface
	r.Handle("/notifications", a.handler(a.ListNotifications, true)).Methods(http.MethodGet)
	r.Handle("/notifications/count", a.handler(a.UnreadCount, true)).Methods(http.MethodGet)
	r.Handle("/notifications/read-all", a.handler(a.MarkAllNotificationsAsRead, true)).Methods(http.MethodPut)
	r.Handle("/notifications/read", a.handler(a.DeleteAllReadNotifications, true)).Methods(http.MethodDelete)
	r.Handle("/notifications/push-subscription", a.handler(a.RegisterPushSubscription, true)).Methods(http.MethodPost)
	r.Handle("/notifications/push-subscription", a.handler(a.RemovePushSubscription, true)).Methods(http.MethodDelete)
	r.Handle("/notifications/ws", a.handler(a.NotificationSocket, true)).Methods(http.MethodGet)
	r.Handle("/notifications/{notificationID}/read", a.handler(a.MarkNotificationAsRead, true)).Methods(http.MethodPut)
	r.Handle("/notifications/{notificationID}", a.handler(a.DeleteNotification, true)).Methods(http.MethodDelete)

	// collaborator ingest
	r.Handle("/internal/notifications", a.internalHandler(a.CreateNotification)).Methods(http.MethodPost)
}
