// Package requeststore persists internal-request aggregates.
//
// A request is mutated exclusively by appending a RequestAction and
// recomputing the status/assignee projection; the actions array is the
// source of truth. Appends carry an optimistic concurrency check so two
// concurrent actors cannot silently clobber each other's updates.
package requeststore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nibrashq/nibras/internal/app/system/metrics"
	"github.com/nibrashq/nibras/internal/app/system/workflow"
	"github.com/nibrashq/nibras/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListLimit caps request list queries.
const ListLimit = 100

var (
	// ErrNotFound is returned when the request does not exist.
	ErrNotFound = errors.New("request not found")
	// ErrValidation is returned for caller-correctable input problems.
	ErrValidation = errors.New("invalid request input")
	// ErrConflict is returned when a concurrent writer appended to the
	// same request between our read and our update. Retryable.
	ErrConflict = errors.New("request was modified concurrently")
)

type Store struct {
	c      *mongo.Collection
	policy workflow.Policy
}

func New(db *mongo.Database, policy workflow.Policy) *Store {
	return &Store{c: db.Collection("internalRequests"), policy: policy}
}

// CreateInput holds the fields for a new internal request.
type CreateInput struct {
	Title       string
	Type        models.RequestType
	Description string

	CreatedByUID   string
	CreatedByEmail string
	CreatedByRole  string
	CreatedByDept  string

	InitialAssigneeUID  string
	InitialAssigneeRole string
}

// Create inserts a new request in status open with a single seed
// submitted action. Title and initial routing are required; routing must
// resolve to someone, even if only by role.
func (s *Store) Create(ctx context.Context, in CreateInput) (models.InternalRequest, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.InternalRequest{}, ErrValidation
	}
	if in.InitialAssigneeUID == "" && in.InitialAssigneeRole == "" {
		return models.InternalRequest{}, ErrValidation
	}
	if in.Type == "" {
		in.Type = models.TypeGeneral
	}

	now := time.Now()
	req := models.InternalRequest{
		ID:             primitive.NewObjectID(),
		Title:          strings.TrimSpace(in.Title),
		Type:           in.Type,
		Description:    in.Description,
		CreatedByUID:   in.CreatedByUID,
		CreatedByEmail: in.CreatedByEmail,
		CreatedByDept:  in.CreatedByDept,
		Status:         models.StatusOpen,
		CurrentAssignee: models.Assignee{
			UID:  in.InitialAssigneeUID,
			Role: in.InitialAssigneeRole,
		},
		Actions: []models.RequestAction{{
			At:         now,
			FromUID:    in.CreatedByUID,
			FromRole:   in.CreatedByRole,
			ToUID:      in.InitialAssigneeUID,
			ToRole:     in.InitialAssigneeRole,
			ActionType: models.ActionSubmitted,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, req); err != nil {
		return models.InternalRequest{}, err
	}
	return req, nil
}

// GetByID loads one request.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.InternalRequest, error) {
	var req models.InternalRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// ActionInput describes one action an actor performs on a request.
type ActionInput struct {
	ActionType models.RequestActionType
	ActorUID   string
	ActorRole  string
	Comment    string

	// Forward target, or recipient for direct addressing.
	TargetUID  string
	TargetRole string

	// Explicit status override; takes precedence over the projection
	// table (cancellation uses this).
	NewStatus models.RequestStatus
}

// ApplyAction appends an action to the request's history and recomputes
// the status/assignee projection. The update filter requires the actions
// array to still have the length observed at read time; a concurrent
// append makes the filter miss and the call returns ErrConflict for the
// caller to retry.
func (s *Store) ApplyAction(ctx context.Context, id primitive.ObjectID, in ActionInput) (*models.InternalRequest, error) {
	req, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.policy.Check(req.Status); err != nil {
		return nil, err
	}

	next := workflow.Step(
		workflow.Projection{Status: req.Status, Assignee: req.CurrentAssignee},
		models.RequestAction{
			ActionType: in.ActionType,
			ToUID:      in.TargetUID,
			ToRole:     in.TargetRole,
		},
		in.NewStatus,
	)

	now := time.Now()
	action := models.RequestAction{
		At:         now,
		FromUID:    in.ActorUID,
		FromRole:   in.ActorRole,
		ToUID:      in.TargetUID,
		ToRole:     in.TargetRole,
		ActionType: in.ActionType,
		Comment:    in.Comment,
	}

	filter := bson.M{
		"_id":     id,
		"actions": bson.M{"$size": len(req.Actions)},
	}
	update := bson.M{
		"$push": bson.M{"actions": action},
		"$set": bson.M{
			"status":          next.Status,
			"currentAssignee": next.Assignee,
			"updatedAt":       now,
		},
	}
	if in.ActionType == models.ActionGeneratedPDF && in.Comment != "" {
		// generated_pdf carries the file URL in its comment.
		update["$set"].(bson.M)["pdfUrl"] = in.Comment
	}

	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		// The document exists (we just read it), so the action count moved.
		metrics.WorkflowConflict()
		return nil, ErrConflict
	}
	metrics.WorkflowTransition(string(in.ActionType), string(next.Status))

	req.Actions = append(req.Actions, action)
	req.Status = next.Status
	req.CurrentAssignee = next.Assignee
	req.UpdatedAt = now
	return req, nil
}

// ListByCreator returns the creator's requests, newest first.
func (s *Store) ListByCreator(ctx context.Context, uid string) ([]models.InternalRequest, error) {
	return s.list(ctx, bson.M{"createdByUid": uid})
}

// ListAssignedToRole returns the active requests currently held by the
// given role, newest first. Status filtering happens after the query,
// the same way the upstream consumer filters its snapshot.
func (s *Store) ListAssignedToRole(ctx context.Context, role string) ([]models.InternalRequest, error) {
	reqs, err := s.list(ctx, bson.M{"currentAssignee.role": role})
	if err != nil {
		return nil, err
	}
	active := reqs[:0]
	for _, r := range reqs {
		if r.Status == models.StatusOpen || r.Status == models.StatusInProgress {
			active = append(active, r)
		}
	}
	return active, nil
}

// ListAssignedToUID returns the active requests currently held by the
// given user, newest first.
func (s *Store) ListAssignedToUID(ctx context.Context, uid string) ([]models.InternalRequest, error) {
	reqs, err := s.list(ctx, bson.M{"currentAssignee.uid": uid})
	if err != nil {
		return nil, err
	}
	active := reqs[:0]
	for _, r := range reqs {
		if r.Status == models.StatusOpen || r.Status == models.StatusInProgress {
			active = append(active, r)
		}
	}
	return active, nil
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.InternalRequest, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(ListLimit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var reqs []models.InternalRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// SetArchived flags a request as archived. Archival hides it from lists;
// requests are never deleted in normal operation.
func (s *Store) SetArchived(ctx context.Context, id primitive.ObjectID, archived bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"archived":  archived,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
