package notification

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/estateshq/estates-backend/estates-notification/model"
	"github.com/sirupsen/logrus"
)

// AlertDispatcher decides, on every counter refresh, whether new
// notifications arrived: a strictly greater unread count than the previously
// observed one counts as an arrival. It then fires exactly one alert cycle -
// an audible cue signal plus at most one native push - no matter how many
// rows landed in that refresh, so a burst of inserts never floods the owner.
type AlertDispatcher struct {
	ownerID string
	pusher  Pusher
	chime   func()
	logger  logrus.FieldLogger

	mu     sync.Mutex
	last   int64
	primed bool
}

// NewAlertDispatcher creates the per-owner alert dispatcher. chime is
// best-effort and may be nil.
func NewAlertDispatcher(ownerID string, pusher Pusher, chime func()) *AlertDispatcher {
	return &AlertDispatcher{
		ownerID: ownerID,
		pusher:  pusher,
		chime:   chime,
		logger:  logrus.StandardLogger().WithField("owner", ownerID),
	}
}

// Observe records a freshly derived unread count and alerts when it grew.
// The first observation only primes the baseline: existing unread rows at
// session start are not news.
func (d *AlertDispatcher) Observe(ctx context.Context, count int64) {
	d.mu.Lock()
	fire := d.primed && count > d.last
	d.last = count
	d.primed = true
	d.mu.Unlock()

	if !fire {
		return
	}

	// Audible cue is best-effort: no connected tab able to play it is not an
	// error.
	if d.chime != nil {
		d.chime()
	}

	payload, err := json.Marshal(model.Signal{Kind: model.SignalUnreadCount, UnreadCount: count})
	if err != nil {
		d.logger.WithError(err).Error("unable to marshal alert payload")
		return
	}

	err = d.pusher.Push(ctx, d.ownerID, payload)
	if err != nil {
		if _, ok := err.(*model.PermissionDenied); ok {
			// Permission was never granted or has been revoked; recorded,
			// never retried automatically.
			d.logger.Debug("push permission not granted, skipping native alert")
			return
		}
		d.logger.WithError(err).Warn("unable to deliver native alert")
	}
}
