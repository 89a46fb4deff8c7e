// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nibrashq/nibras/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// UserSpec describes a test user. Zero values are filled with sensible
// defaults; only set the fields the test cares about.
type UserSpec struct {
	UID        string
	FullName   string
	Email      string
	Role       string
	Unit       string
	SchoolKey  string
	SchoolType string
	Tags       []string
	Status     string
}

// CreateUser inserts a test user with the given profile.
func (f *Fixtures) CreateUser(ctx context.Context, spec UserSpec) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		UID:        spec.UID,
		Email:      spec.Email,
		FullName:   spec.FullName,
		Role:       spec.Role,
		Unit:       spec.Unit,
		SchoolKey:  spec.SchoolKey,
		SchoolType: spec.SchoolType,
		Tags:       spec.Tags,
		Status:     spec.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if u.UID == "" {
		u.UID = u.ID.Hex()
	}
	if u.FullName == "" {
		u.FullName = "Test User"
	}
	if u.Email == "" {
		u.Email = u.UID + "@example.com"
	}
	if u.Role == "" {
		u.Role = "employee"
	}
	if u.Status == "" {
		u.Status = "active"
	}
	u.FullNameCI = text.Fold(u.FullName)

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateAnnouncement inserts a test announcement targeting the given
// audience tokens.
func (f *Fixtures) CreateAnnouncement(ctx context.Context, title string, audTokens []string) models.Announcement {
	f.t.Helper()

	ann := models.Announcement{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Content:   "test content",
		AudTokens: audTokens,
		CreatedBy: "fixture",
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("announcements").InsertOne(ctx, ann); err != nil {
		f.t.Fatalf("failed to create test announcement: %v", err)
	}
	return ann
}

// CreateRequest inserts an internal request in status open with a seed
// submitted action, assigned to the given role.
func (f *Fixtures) CreateRequest(ctx context.Context, title, createdByUID, assigneeRole string) models.InternalRequest {
	f.t.Helper()

	now := time.Now().UTC()
	req := models.InternalRequest{
		ID:           primitive.NewObjectID(),
		Title:        title,
		Type:         models.TypeGeneral,
		CreatedByUID: createdByUID,
		Status:       models.StatusOpen,
		CurrentAssignee: models.Assignee{
			Role: assigneeRole,
		},
		Actions: []models.RequestAction{{
			At:         now,
			FromUID:    createdByUID,
			FromRole:   "employee",
			ToRole:     assigneeRole,
			ActionType: models.ActionSubmitted,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("internalRequests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("failed to create test request: %v", err)
	}
	return req
}
