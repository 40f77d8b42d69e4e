package model

import (
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// PushSubscription - one owner's browser push subscription. Its presence in
// the registry is the permission grant; removing it revokes permission.
type PushSubscription struct {
	OwnerID     string    `bson:"ownerId" json:"ownerId"`
	Endpoint    string    `bson:"endpoint" json:"endpoint"`
	Auth        string    `bson:"auth" json:"auth"`
	P256dh      string    `bson:"p256dh" json:"p256dh"`
	CreatedDate time.Time `bson:"createdDate" json:"createdDate"`
}

func (p *PushSubscription) FromWebPush(s *webpush.Subscription) {
	p.Endpoint = s.Endpoint
	p.Auth = s.Keys.Auth
	p.P256dh = s.Keys.P256dh
}

func (p *PushSubscription) ToWebPush() *webpush.Subscription {
	return &webpush.Subscription{
		Endpoint: p.Endpoint,
		Keys: webpush.Keys{
			Auth:   p.Auth,
			P256dh: p.P256dh,
		},
	}
}
