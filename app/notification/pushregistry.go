package notification

import (
	"context"
	"time"

	"github.com/estateshq/estates-backend/estates-notification/consts"
	"github.com/estateshq/estates-backend/estates-notification/model"
	"github.com/estateshq/estates-backend/estates-notification/mongodatabase"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoRegistry implements PushRegistry on the PushSubscription collection,
// one document per owner.
type mongoRegistry struct {
	db *mongodatabase.DBConfig
}

// NewMongoRegistry creates the mongo-backed push subscription registry.
func NewMongoRegistry(db *mongodatabase.DBConfig) PushRegistry {
	return &mongoRegistry{db: db}
}

func (r *mongoRegistry) Save(ctx context.Context, sub *model.PushSubscription) error {
	dbConn, err := r.db.New(consts.PushSubscription)
	if err != nil {
		return err
	}
	defer dbConn.Client.Disconnect(context.TODO())

	if sub.CreatedDate.IsZero() {
		sub.CreatedDate = time.Now().UTC()
	}

	filter := bson.M{"ownerId": sub.OwnerID}
	update := bson.M{"$set": sub}
	opts := options.Update().SetUpsert(true)

	_, err = dbConn.Collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return errors.Wrap(err, "unable to save push subscription")
	}
	return nil
}

func (r *mongoRegistry) Find(ctx context.Context, ownerID string) (*model.PushSubscription, error) {
	dbConn, err := r.db.New(consts.PushSubscription)
	if err != nil {
		return nil, err
	}
	defer dbConn.Client.Disconnect(context.TODO())

	var sub model.PushSubscription
	err = dbConn.Collection.FindOne(ctx, bson.M{"ownerId": ownerID}).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return nil, &model.PermissionDenied{OwnerID: ownerID}
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to find push subscription")
	}
	return &sub, nil
}

func (r *mongoRegistry) Remove(ctx context.Context, ownerID string) error {
	dbConn, err := r.db.New(consts.PushSubscription)
	if err != nil {
		return err
	}
	defer dbConn.Client.Disconnect(context.TODO())

	_, err = dbConn.Collection.DeleteOne(ctx, bson.M{"ownerId": ownerID})
	if err != nil {
		return errors.Wrap(err, "unable to remove push subscription")
	}
	return nil
}
