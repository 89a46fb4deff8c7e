package requeststore_test

import (
	"errors"
	"testing"

	requeststore "github.com/nibrashq/nibras/internal/app/store/requests"
	"github.com/nibrashq/nibras/internal/app/system/workflow"
	"github.com/nibrashq/nibras/internal/domain/models"
	"github.com/nibrashq/nibras/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateSeedsSubmittedAction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := requeststore.New(db, workflow.Policy{})

	req, err := store.Create(ctx, requeststore.CreateInput{
		Title:               "  Laptop replacement  ",
		Type:                models.TypeIT,
		Description:         "screen is cracked",
		CreatedByUID:        "emp1",
		CreatedByRole:       "employee",
		InitialAssigneeRole: "it",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if req.Title != "Laptop replacement" {
		t.Errorf("title = %q, want trimmed", req.Title)
	}
	if req.Status != models.StatusOpen {
		t.Errorf("status = %q, want open", req.Status)
	}
	if req.CurrentAssignee.Role != "it" {
		t.Errorf("assignee role = %q, want it", req.CurrentAssignee.Role)
	}
	if len(req.Actions) != 1 || req.Actions[0].ActionType != models.ActionSubmitted {
		t.Fatalf("actions = %+v, want single submitted seed", req.Actions)
	}
	if req.Actions[0].FromUID != "emp1" || req.Actions[0].ToRole != "it" {
		t.Errorf("seed action parties = %+v", req.Actions[0])
	}

	got, err := store.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.StatusOpen || len(got.Actions) != 1 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestCreateValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := requeststore.New(db, workflow.Policy{})

	_, err := store.Create(ctx, requeststore.CreateInput{
		Title:               "   ",
		InitialAssigneeRole: "hr",
	})
	if !errors.Is(err, requeststore.ErrValidation) {
		t.Errorf("blank title: got %v, want ErrValidation", err)
	}

	_, err = store.Create(ctx, requeststore.CreateInput{
		Title:        "No routing",
		CreatedByUID: "emp1",
	})
	if !errors.Is(err, requeststore.ErrValidation) {
		t.Errorf("missing assignee: got %v, want ErrValidation", err)
	}
}

func TestApplyActionForwardThenApprove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := requeststore.New(db, workflow.Policy{})
	fix := testutil.NewFixtures(t, db)

	req := fix.CreateRequest(ctx, "Budget increase", "emp1", "hr")

	got, err := store.ApplyAction(ctx, req.ID, requeststore.ActionInput{
		ActionType: models.ActionForwarded,
		ActorUID:   "hr1",
		ActorRole:  "hr",
		TargetUID:  "ceo1",
		TargetRole: "ceo",
	})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if got.Status != models.StatusInProgress {
		t.Errorf("status after forward = %q, want in_progress", got.Status)
	}
	if got.CurrentAssignee.UID != "ceo1" || got.CurrentAssignee.Role != "ceo" {
		t.Errorf("assignee after forward = %+v", got.CurrentAssignee)
	}
	if len(got.Actions) != 2 {
		t.Fatalf("actions after forward = %d, want 2", len(got.Actions))
	}

	got, err = store.ApplyAction(ctx, req.ID, requeststore.ActionInput{
		ActionType: models.ActionApproved,
		ActorUID:   "ceo1",
		ActorRole:  "ceo",
		Comment:    "go ahead",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != models.StatusApproved {
		t.Errorf("status after approve = %q, want approved", got.Status)
	}
	if got.CurrentAssignee.UID != "" || got.CurrentAssignee.Role != "" {
		t.Errorf("assignee after approve = %+v, want cleared", got.CurrentAssignee)
	}

	// The stored document must agree with the returned projection.
	stored, err := store.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != models.StatusApproved || len(stored.Actions) != 3 {
		t.Errorf("stored = status %q actions %d, want approved/3", stored.Status, len(stored.Actions))
	}
}

func TestApplyActionConcurrentAppendConflicts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := requeststore.New(db, workflow.Policy{})
	fix := testutil.NewFixtures(t, db)

	req := fix.CreateRequest(ctx, "Shared request", "emp1", "hr")

	if _, err := store.ApplyAction(ctx, req.ID, requeststore.ActionInput{
		ActionType: models.ActionComment,
		ActorUID:   "hr1",
		ActorRole:  "hr",
		Comment:    "looking at this",
	}); err != nil {
		t.Fatalf("first append: %v", err)
	}

	// A writer holding the original one-action snapshot must miss the
	// size-guarded filter, which is what ApplyAction maps to ErrConflict.
	res, err := db.Collection("internalRequests").UpdateOne(ctx,
		bson.M{"_id": req.ID, "actions": bson.M{"$size": 1}},
		bson.M{"$set": bson.M{"status": "open"}},
	)
	if err != nil {
		t.Fatalf("stale update: %v", err)
	}
	if res.MatchedCount != 0 {
		t.Errorf("stale size filter matched %d documents, want 0", res.MatchedCount)
	}
}

func TestApplyActionTerminalPolicy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fix := testutil.NewFixtures(t, db)

	strict := requeststore.New(db, workflow.Policy{})
	lax := requeststore.New(db, workflow.Policy{AllowTerminalActions: true})

	req := fix.CreateRequest(ctx, "Already settled", "emp1", "hr")
	if _, err := strict.ApplyAction(ctx, req.ID, requeststore.ActionInput{
		ActionType: models.ActionRejected,
		ActorUID:   "hr1",
		ActorRole:  "hr",
	}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	_, err := strict.ApplyAction(ctx, req.ID, requeststore.ActionInput{
		ActionType: models.ActionComment,
		ActorUID:   "emp1",
		Comment:    "please reconsider",
	})
	if !errors.Is(err, workflow.ErrTerminal) {
		t.Errorf("strict policy: got %v, want ErrTerminal", err)
	}

	got, err := lax.ApplyAction(ctx, req.ID, requeststore.ActionInput{
		ActionType: models.ActionComment,
		ActorUID:   "emp1",
		Comment:    "please reconsider",
	})
	if err != nil {
		t.Fatalf("lax policy: %v", err)
	}
	if got.Status != models.StatusRejected {
		t.Errorf("status after terminal comment = %q, want rejected unchanged", got.Status)
	}
}

func TestApplyActionGeneratedPDFSetsURL(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := requeststore.New(db, workflow.Policy{})
	fix := testutil.NewFixtures(t, db)

	req := fix.CreateRequest(ctx, "Leave certificate", "emp1", "hr")

	if _, err := store.ApplyAction(ctx, req.ID, requeststore.ActionInput{
		ActionType: models.ActionGeneratedPDF,
		ActorUID:   "hr1",
		ActorRole:  "hr",
		Comment:    "https://files.example.com/leave.pdf",
	}); err != nil {
		t.Fatalf("generate pdf: %v", err)
	}

	stored, err := store.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.PDFURL != "https://files.example.com/leave.pdf" {
		t.Errorf("pdfUrl = %q", stored.PDFURL)
	}
	if stored.Status != models.StatusOpen {
		t.Errorf("status = %q, want unchanged open", stored.Status)
	}
}

func TestApplyActionCancellationOverride(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := requeststore.New(db, workflow.Policy{})
	fix := testutil.NewFixtures(t, db)

	req := fix.CreateRequest(ctx, "Changed my mind", "emp1", "hr")

	got, err := store.ApplyAction(ctx, req.ID, requeststore.ActionInput{
		ActionType: models.ActionClosed,
		ActorUID:   "emp1",
		ActorRole:  "employee",
		NewStatus:  models.StatusCancelled,
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != models.StatusCancelled {
		t.Errorf("status = %q, want cancelled override", got.Status)
	}
	if got.CurrentAssignee.UID != "" || got.CurrentAssignee.Role != "" {
		t.Errorf("assignee = %+v, want cleared", got.CurrentAssignee)
	}
}

func TestApplyActionMissingRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := requeststore.New(db, workflow.Policy{})

	_, err := store.ApplyAction(ctx, primitive.NewObjectID(), requeststore.ActionInput{
		ActionType: models.ActionComment,
		ActorUID:   "nobody",
	})
	if !errors.Is(err, requeststore.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestListQueries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := requeststore.New(db, workflow.Policy{})
	fix := testutil.NewFixtures(t, db)

	fix.CreateRequest(ctx, "Mine open", "emp1", "hr")
	mine2 := fix.CreateRequest(ctx, "Mine rejected", "emp1", "hr")
	fix.CreateRequest(ctx, "Someone else's", "emp2", "hr")
	other := fix.CreateRequest(ctx, "For finance", "emp2", "finance")

	if _, err := store.ApplyAction(ctx, mine2.ID, requeststore.ActionInput{
		ActionType: models.ActionRejected,
		ActorUID:   "hr1",
		ActorRole:  "hr",
	}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	byCreator, err := store.ListByCreator(ctx, "emp1")
	if err != nil {
		t.Fatalf("ListByCreator: %v", err)
	}
	if len(byCreator) != 2 {
		t.Errorf("ListByCreator = %d requests, want 2 regardless of status", len(byCreator))
	}

	// Inbox lists drop requests that have reached a decision.
	byRole, err := store.ListAssignedToRole(ctx, "hr")
	if err != nil {
		t.Fatalf("ListAssignedToRole: %v", err)
	}
	if len(byRole) != 2 {
		t.Errorf("ListAssignedToRole(hr) = %d requests, want the 2 still active", len(byRole))
	}
	for _, r := range byRole {
		if r.Status != models.StatusOpen && r.Status != models.StatusInProgress {
			t.Errorf("inactive request %q in role inbox", r.Title)
		}
	}

	if _, err := store.ApplyAction(ctx, other.ID, requeststore.ActionInput{
		ActionType: models.ActionForwarded,
		ActorUID:   "fin1",
		ActorRole:  "finance",
		TargetUID:  "mgr1",
		TargetRole: "manager",
	}); err != nil {
		t.Fatalf("forward: %v", err)
	}
	byUID, err := store.ListAssignedToUID(ctx, "mgr1")
	if err != nil {
		t.Fatalf("ListAssignedToUID: %v", err)
	}
	if len(byUID) != 1 || byUID[0].ID != other.ID {
		t.Errorf("ListAssignedToUID(mgr1) = %+v, want the forwarded request", byUID)
	}
}
