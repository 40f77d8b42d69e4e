package notification

import (
	"context"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/estateshq/estates-backend/estates-notification/app/config"
	"github.com/estateshq/estates-backend/estates-notification/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// webPusher implements Pusher over web push with VAPID keys. Permission state
// lives in the registry and is looked up on every push, never cached here.
type webPusher struct {
	registry PushRegistry
	config   *config.Config
}

// NewWebPusher creates the web-push alert sender.
func NewWebPusher(registry PushRegistry, conf *config.Config) Pusher {
	return &webPusher{registry: registry, config: conf}
}

func (p *webPusher) Push(ctx context.Context, ownerID string, payload []byte) error {
	sub, err := p.registry.Find(ctx, ownerID)
	if err != nil {
		return err
	}

	resp, err := webpush.SendNotification(payload, sub.ToWebPush(), &webpush.Options{
		Subscriber:      p.config.VapidSubscriber,
		VAPIDPublicKey:  p.config.VapidPublicKey,
		VAPIDPrivateKey: p.config.VapidPrivateKey,
		TTL:             60,
	})
	if err != nil {
		return errors.Wrap(err, "unable to send web push")
	}
	defer resp.Body.Close()

	// 404/410 means the browser revoked the subscription: drop it so the
	// next permission check reflects the OS truth.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		if rerr := p.registry.Remove(ctx, ownerID); rerr != nil {
			logrus.WithError(rerr).Error("unable to drop revoked push subscription")
		}
		return &model.PermissionDenied{OwnerID: ownerID}
	}
	if resp.StatusCode >= 400 {
		return errors.Errorf("push endpoint returned %d", resp.StatusCode)
	}
	return nil
}
