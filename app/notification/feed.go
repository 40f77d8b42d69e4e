package notification

import (
	"encoding/json"

	"github.com/estateshq/estates-backend/estates-notification/cache"
	"github.com/estateshq/estates-backend/estates-notification/consts"
	"github.com/estateshq/estates-backend/estates-notification/model"
	"github.com/estateshq/estates-backend/estates-notification/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// redisFeed implements Feed on redis pub/sub, one channel per owner.
type redisFeed struct {
	cache *cache.Cache
}

// NewRedisFeed creates the redis-backed change feed adapter.
func NewRedisFeed(c *cache.Cache) Feed {
	return &redisFeed{cache: c}
}

func feedChannel(ownerID string) string {
	return consts.FeedChannelPrefix + ownerID
}

func (f *redisFeed) Publish(ownerID string, ev model.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "unable to marshal change event")
	}
	return f.cache.Publish(feedChannel(ownerID), string(payload))
}

func (f *redisFeed) Subscribe(ownerID string) (<-chan model.ChangeEvent, func() error, error) {
	messages, closer, err := f.cache.Subscribe(feedChannel(ownerID))
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to subscribe to change feed")
	}

	events := make(chan model.ChangeEvent)
	go func() {
		defer util.RecoverGoroutinePanic(nil)
		defer close(events)
		for msg := range messages {
			var ev model.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				// A mangled payload still signals a change; the payload is
				// never trusted for correctness, only its arrival.
				logrus.WithError(err).Warn("unreadable change event payload")
				ev = model.ChangeEvent{}
			}
			events <- ev
		}
	}()

	return events, closer, nil
}
