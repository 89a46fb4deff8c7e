package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification kinds.
const (
	NotificationAnnouncement    = "announcement"
	NotificationInternalRequest = "internal_request"
)

// Notification is one in-portal notification for one user. The upstream
// store kept these under users/{uid}/notifications; here they live in the
// "notifications" collection with an explicit uid key. Delivery beyond
// this record (push, toast) is someone else's job.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UID       string             `bson:"uid"`
	Title     string             `bson:"title"`
	Body      string             `bson:"body"`
	Type      string             `bson:"type"`
	Link      string             `bson:"link"`
	AnnID     string             `bson:"annId,omitempty"`
	RequestID string             `bson:"requestId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	Read      bool               `bson:"read"`
}
