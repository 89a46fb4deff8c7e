// Package notificationstore persists per-user notification records.
// Actual delivery (push, toast) belongs to an external collaborator;
// this store is only the record of what should be shown.
package notificationstore

import (
	"context"
	"time"

	"github.com/nibrashq/nibras/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListLimit caps the inbox query.
const ListLimit = 100

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Insert writes one notification record.
func (s *Store) Insert(ctx context.Context, n models.Notification) error {
	n.ID = primitive.NewObjectID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := s.c.InsertOne(ctx, n)
	return err
}

// ListForUser returns the user's notifications, newest first.
func (s *Store) ListForUser(ctx context.Context, uid string) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(ListLimit)
	cur, err := s.c.Find(ctx, bson.M{"uid": uid}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountUnread returns the user's unread notification count.
func (s *Store) CountUnread(ctx context.Context, uid string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"uid": uid, "read": false})
}

// MarkRead marks one notification read. Scoped to the uid so a user
// cannot mark someone else's notification.
func (s *Store) MarkRead(ctx context.Context, id primitive.ObjectID, uid string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "uid": uid},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkAllRead marks every unread notification for the user read and
// returns how many changed.
func (s *Store) MarkAllRead(ctx context.Context, uid string) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"uid": uid, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
