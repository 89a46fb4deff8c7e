// Package announcementstore persists broadcasts and per-reader read marks.
//
// Visibility is decided by the store's "any of these tokens" filter over
// audTokens; the caller's subject token set is truncated to the query cap
// before it reaches here.
package announcementstore

import (
	"context"
	"errors"
	"time"

	"github.com/nibrashq/nibras/internal/app/system/audience"
	"github.com/nibrashq/nibras/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListLimit caps the visible-announcements query.
const ListLimit = 50

// ErrEmptyAudience mirrors audience.ErrEmptyAudience at the store
// boundary: a broadcast is never persisted without at least one token.
var ErrEmptyAudience = audience.ErrEmptyAudience

type Store struct {
	anns  *mongo.Collection
	reads *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		anns:  db.Collection("announcements"),
		reads: db.Collection("announcement_reads"),
	}
}

// CreateInput holds the fields for a new broadcast.
type CreateInput struct {
	Title     string
	Content   string
	AudTokens []string
	CreatedBy string
}

// Create persists a broadcast. The token set must be non-empty.
func (s *Store) Create(ctx context.Context, in CreateInput) (models.Announcement, error) {
	if len(in.AudTokens) == 0 {
		return models.Announcement{}, ErrEmptyAudience
	}

	ann := models.Announcement{
		ID:        primitive.NewObjectID(),
		Title:     in.Title,
		Content:   in.Content,
		AudTokens: in.AudTokens,
		CreatedBy: in.CreatedBy,
		CreatedAt: time.Now(),
	}
	if _, err := s.anns.InsertOne(ctx, ann); err != nil {
		return models.Announcement{}, err
	}
	return ann, nil
}

// GetByID loads one broadcast.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Announcement, error) {
	var ann models.Announcement
	if err := s.anns.FindOne(ctx, bson.M{"_id": id}).Decode(&ann); err != nil {
		return nil, err
	}
	return &ann, nil
}

// ListVisibleTo returns the broadcasts whose token set overlaps the
// reader's subject tokens, pinned first then newest first. The subject
// set is truncated to the any-of query cap with all:all retained, so a
// broadcast to everyone always reaches every reader.
func (s *Store) ListVisibleTo(ctx context.Context, subjectTokens []string) ([]models.Announcement, error) {
	tokens := audience.Truncate(subjectTokens, audience.MaxQueryTokens)
	if len(tokens) == 0 {
		return nil, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "pinned", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetLimit(ListLimit)
	cur, err := s.anns.Find(ctx, bson.M{"audTokens": bson.M{"$in": tokens}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var anns []models.Announcement
	if err := cur.All(ctx, &anns); err != nil {
		return nil, err
	}
	return anns, nil
}

// SetPinned pins or unpins a broadcast.
func (s *Store) SetPinned(ctx context.Context, id primitive.ObjectID, pinned bool) error {
	res, err := s.anns.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"pinned": pinned}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a broadcast and its read marks. Deletion is the only
// mutation a broadcast supports besides pinning.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.anns.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return err
	}
	_, err := s.reads.DeleteMany(ctx, bson.M{"announcement_id": id})
	return err
}

// ToggleRead flips the reader's read mark: absent → read, present →
// unread. Returns the new read state.
func (s *Store) ToggleRead(ctx context.Context, annID primitive.ObjectID, uid string) (bool, error) {
	filter := bson.M{"announcement_id": annID, "uid": uid}

	res, err := s.reads.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	_, err = s.reads.InsertOne(ctx, models.AnnouncementRead{
		ID:             primitive.NewObjectID(),
		AnnouncementID: annID,
		UID:            uid,
		ReadAt:         time.Now(),
	})
	if err != nil {
		// A concurrent toggle may have inserted first; treat as read.
		if errors.Is(err, mongo.ErrNoDocuments) {
			return true, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// ReadSet returns which of the given announcements the reader has marked
// read.
func (s *Store) ReadSet(ctx context.Context, uid string, annIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	read := make(map[primitive.ObjectID]bool, len(annIDs))
	if len(annIDs) == 0 {
		return read, nil
	}

	cur, err := s.reads.Find(ctx, bson.M{
		"uid":             uid,
		"announcement_id": bson.M{"$in": annIDs},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var r models.AnnouncementRead
		if cur.Decode(&r) == nil {
			read[r.AnnouncementID] = true
		}
	}
	return read, cur.Err()
}

// CountUnreadFor counts visible broadcasts the reader has not marked
// read. Bounded by ListLimit, same as the list view.
func (s *Store) CountUnreadFor(ctx context.Context, uid string, subjectTokens []string) (int, error) {
	anns, err := s.ListVisibleTo(ctx, subjectTokens)
	if err != nil {
		return 0, err
	}
	ids := make([]primitive.ObjectID, 0, len(anns))
	for _, a := range anns {
		ids = append(ids, a.ID)
	}
	read, err := s.ReadSet(ctx, uid, ids)
	if err != nil {
		return 0, err
	}
	return len(ids) - len(read), nil
}
