package api

import (
	"encoding/json"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/estateshq/estates-backend/estates-notification/app"
	"github.com/estateshq/estates-backend/estates-notification/util"
)

// RegisterPushSubscription - POST /notifications/push-subscription
//
// Registering the browser subscription is the explicit permission grant; it
// only ever happens on user action, never automatically.
func (a *API) RegisterPushSubscription(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	var sub webpush.Subscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		return &app.ValidationError{Message: "invalid push subscription payload"}
	}
	if sub.Endpoint == "" || sub.Keys.Auth == "" || sub.Keys.P256dh == "" {
		return &app.ValidationError{Message: "incomplete push subscription"}
	}

	if err := a.App.NotificationService.RegisterPushSubscription(r.Context(), ctx.OwnerID, &sub); err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(util.SetResponse(nil, 1, "Push subscription registered."))
}

// RemovePushSubscription - DELETE /notifications/push-subscription
func (a *API) RemovePushSubscription(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	if err := a.App.NotificationService.RemovePushSubscription(r.Context(), ctx.OwnerID); err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(util.SetResponse(nil, 1, "Push subscription removed."))
}
