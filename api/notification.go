package api

import (
	"encoding/json"
	"net/http"

	"github.com/estateshq/estates-backend/estates-notification/app"
	"github.com/estateshq/estates-backend/estates-notification/consts"
	"github.com/estateshq/estates-backend/estates-notification/model"
	"github.com/estateshq/estates-backend/estates-notification/util"
)

func parseFilter(raw string) (model.Filter, error) {
	switch raw {
	case "", "all":
		return model.FilterAll, nil
	case "unread":
		return model.FilterUnread, nil
	case consts.CategoryBooking, consts.CategoryPayment, consts.CategoryProperty, consts.CategorySystem, consts.CategoryMessage:
		return model.FilterCategory(raw), nil
	}
	return model.Filter{}, &app.ValidationError{Message: "unknown filter: " + raw}
}

// ListNotifications - GET /notifications?filter=all|unread|<category>
func (a *API) ListNotifications(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	filter, err := parseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		return err
	}

	notifications, stale, err := a.App.NotificationService.GetNotificationList(r.Context(), ctx.OwnerID, filter)
	if err != nil {
		if _, ok := err.(*model.FetchError); ok && stale {
			// Serve last-known-good data instead of flashing empty.
			ctx.Logger.WithError(err).Warn("serving stale notification snapshot")
			return json.NewEncoder(w).Encode(util.SetResponse(map[string]interface{}{
				"notifications": notifications,
				"stale":         true,
			}, 1, "Notification list (stale)"))
		}
		return &app.UserError{Message: "notifications are temporarily unavailable", StatusCode: http.StatusServiceUnavailable}
	}

	return json.NewEncoder(w).Encode(util.SetResponse(map[string]interface{}{
		"notifications": notifications,
		"stale":         false,
	}, 1, "Notification list"))
}

// UnreadCount - GET /notifications/count
func (a *API) UnreadCount(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	count, err := a.App.NotificationService.GetUnreadCount(r.Context(), ctx.OwnerID)
	if err != nil {
		if _, ok := err.(*model.FetchError); ok {
			// Stale badge beats no badge.
			ctx.Logger.WithError(err).Warn("serving stale unread count")
			return json.NewEncoder(w).Encode(util.SetResponse(map[string]interface{}{
				"count": count,
				"stale": true,
			}, 1, "Unread count (stale)"))
		}
		return err
	}

	return json.NewEncoder(w).Encode(util.SetResponse(map[string]interface{}{
		"count": count,
		"stale": false,
	}, 1, "Unread count"))
}

// MarkNotificationAsRead - PUT /notifications/{notificationID}/read
func (a *API) MarkNotificationAsRead(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	err := a.App.NotificationService.MarkNotificationAsRead(r.Context(), ctx.OwnerID, ctx.Vars["notificationID"])
	if err != nil {
		return mapWriteError(err)
	}
	return json.NewEncoder(w).Encode(util.SetResponse(nil, 1, "Notification marked as read."))
}

// MarkAllNotificationsAsRead - PUT /notifications/read-all
func (a *API) MarkAllNotificationsAsRead(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	err := a.App.NotificationService.MarkAllNotificationAsRead(r.Context(), ctx.OwnerID)
	if err != nil {
		return mapWriteError(err)
	}
	return json.NewEncoder(w).Encode(util.SetResponse(nil, 1, "All notifications marked as read."))
}

// DeleteNotification - DELETE /notifications/{notificationID}
func (a *API) DeleteNotification(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	err := a.App.NotificationService.DeleteNotification(r.Context(), ctx.OwnerID, ctx.Vars["notificationID"])
	if err != nil {
		return mapWriteError(err)
	}
	return json.NewEncoder(w).Encode(util.SetResponse(nil, 1, "Notification deleted."))
}

// DeleteAllReadNotifications - DELETE /notifications/read
func (a *API) DeleteAllReadNotifications(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	err := a.App.NotificationService.DeleteAllRead(r.Context(), ctx.OwnerID)
	if err != nil {
		return mapWriteError(err)
	}
	return json.NewEncoder(w).Encode(util.SetResponse(nil, 1, "Read notifications deleted."))
}

// CreateNotification - POST /internal/notifications (collaborator ingest)
func (a *API) CreateNotification(ctx *app.Context, w http.ResponseWriter, r *http.Request) error {
	var n model.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		return &app.ValidationError{Message: "invalid notification payload"}
	}

	if err := a.App.NotificationService.CreateNotification(r.Context(), &n); err != nil {
		if _, ok := err.(*model.WriteConflict); ok {
			return mapWriteError(err)
		}
		return &app.ValidationError{Message: err.Error()}
	}

	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(util.SetResponse(map[string]interface{}{"id": n.ID}, 1, "Notification created."))
}

// mapWriteError converts domain errors into HTTP errors: data-integrity
// failures surface so the UI can tell the user the action did not take
// effect.
func mapWriteError(err error) error {
	switch err.(type) {
	case *model.NotFoundError:
		return &app.UserError{Message: err.Error(), StatusCode: http.StatusNotFound}
	case *model.WriteConflict:
		return &app.UserError{Message: err.Error(), StatusCode: http.StatusConflict}
	default:
		return err
	}
}
