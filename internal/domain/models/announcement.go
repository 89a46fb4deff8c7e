package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Announcement is an organization-wide broadcast in the "announcements"
// collection. AudTokens is the audience token set the broadcast targets;
// it is never empty. Announcements are immutable after creation except
// for the pinned flag and deletion.
type Announcement struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	AudTokens []string           `bson:"audTokens"`
	CreatedBy string             `bson:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt"`
	Pinned    bool               `bson:"pinned"`
}

// AnnouncementRead marks an announcement as read by one reader. The
// upstream store kept these as a reads/{uid} subcollection; here they live
// in "announcement_reads" keyed by (announcement_id, uid). Absence of a
// document means unread.
type AnnouncementRead struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	AnnouncementID primitive.ObjectID `bson:"announcement_id"`
	UID            string             `bson:"uid"`
	ReadAt         time.Time          `bson:"readAt"`
}
