package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/nibrashq/nibras/internal/app/system/authz"
	"github.com/nibrashq/nibras/internal/app/system/normalize"
	"github.com/nibrashq/nibras/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageCap bounds every directory category query. Recipient resolution is
// best-effort beyond this size.
const PageCap = 500

var (
	// ErrDuplicate is returned when a uid or email already exists.
	ErrDuplicate = errors.New("a user with this uid or email already exists")
	errBadStatus = errors.New(`status must be "active"|"disabled"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUID loads a user by organization uid. Returns mongo.ErrNoDocuments
// if not found.
func (s *Store) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"uid": uid}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing and validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	if u.UID == "" {
		u.UID = u.ID.Hex()
	}
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = string(authz.ParseRole(u.Role))
	var tags []string
	for _, t := range u.Tags {
		if t = normalize.Tag(t); t != "" {
			tags = append(tags, t)
		}
	}
	u.Tags = tags
	if u.Status == "" {
		u.Status = "active"
	}

	switch normalize.Status(u.Status) {
	case "active", "disabled":
		// ok
	default:
		return models.User{}, errBadStatus
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, err
	}
	return u, nil
}

// List returns active staff ordered by folded name, capped at PageCap.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}}).
		SetLimit(PageCap)
	cur, err := s.c.Find(ctx, bson.M{"status": "active"}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Directory lookups below back audience resolution. Each returns at most
// PageCap identities; callers union the results.

// FindBySchoolKey returns active users at the given school.
func (s *Store) FindBySchoolKey(ctx context.Context, schoolKey string) ([]models.User, error) {
	return s.findCapped(ctx, bson.M{"schoolKey": schoolKey, "status": "active"})
}

// FindByUnit returns active users in the given unit.
func (s *Store) FindByUnit(ctx context.Context, unit string) ([]models.User, error) {
	return s.findCapped(ctx, bson.M{"unit": unit, "status": "active"})
}

// FindByRole returns active users holding the given role.
func (s *Store) FindByRole(ctx context.Context, role string) ([]models.User, error) {
	return s.findCapped(ctx, bson.M{"role": role, "status": "active"})
}

// FindByTag returns active users carrying the given tag.
func (s *Store) FindByTag(ctx context.Context, tag string) ([]models.User, error) {
	return s.findCapped(ctx, bson.M{"tags": tag, "status": "active"})
}

func (s *Store) findCapped(ctx context.Context, filter bson.M) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetLimit(PageCap))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetPasswordHash stores a new bcrypt hash for the user.
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now(),
	}})
	return err
}

// SetStatus enables or disables an account.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	switch normalize.Status(status) {
	case "active", "disabled":
	default:
		return errBadStatus
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     normalize.Status(status),
		"updated_at": time.Now(),
	}})
	return err
}
