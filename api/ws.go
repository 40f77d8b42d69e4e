package api

import (
	"net/http"
	"time"

	"github.com/estateshq/estates-backend/estates-notification/app"
	"github.com/estateshq/estates-backend/estates-notification/util"
	"github.com/gorilla/websocket"
)

const wsPingInterval = 30 * time.Second

// NotificationSocket - GET /notifications/ws
//
// Streams invalidation signals for the authenticated owner to one browser
// tab. Several tabs each hold their own socket and observer; a write from one
// tab reaches the others through the session's observer hub without any of
// them issuing a write.
func (a *API) NotificationSocket(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		ctx.Logger.WithError(err).Warn("websocket upgrade failed")
		return nil
	}

	signals, dispose := a.App.NotificationService.Subscribe(ctx.OwnerID)

	go func() {
		defer util.RecoverGoroutinePanic(nil)
		defer dispose()
		defer conn.Close()

		// The read loop only notices the tab going away.
		go func() {
			defer util.RecoverGoroutinePanic(nil)
			defer dispose()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()

		for {
			select {
			case sig, ok := <-signals:
				if !ok {
					return
				}
				if err := conn.WriteJSON(sig); err != nil {
					ctx.Logger.WithError(err).Debug("websocket write failed, detaching tab")
					return
				}
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	return nil
}
