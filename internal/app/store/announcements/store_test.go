package announcementstore_test

import (
	"errors"
	"testing"

	announcementstore "github.com/nibrashq/nibras/internal/app/store/announcements"
	"github.com/nibrashq/nibras/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateRejectsEmptyAudience(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := announcementstore.New(db)

	_, err := store.Create(ctx, announcementstore.CreateInput{
		Title:   "Silent broadcast",
		Content: "nobody will see this",
	})
	if !errors.Is(err, announcementstore.ErrEmptyAudience) {
		t.Errorf("got %v, want ErrEmptyAudience", err)
	}
}

func TestListVisibleToOverlap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := announcementstore.New(db)
	fix := testutil.NewFixtures(t, db)

	everyone := fix.CreateAnnouncement(ctx, "To everyone", []string{"all:all"})
	boys := fix.CreateAnnouncement(ctx, "Boys school only", []string{"schoolKey:manar_boys"})
	fix.CreateAnnouncement(ctx, "Admin office only", []string{"unit:admin"})

	// A boys-school teacher sees the broadcast to everyone and the one
	// addressed to their school, but not the admin-office one.
	subject := []string{"all:all", "unit:school", "schoolKey:manar_boys", "schoolType:boys"}
	anns, err := store.ListVisibleTo(ctx, subject)
	if err != nil {
		t.Fatalf("ListVisibleTo: %v", err)
	}
	if len(anns) != 2 {
		t.Fatalf("visible = %d announcements, want 2", len(anns))
	}
	seen := map[primitive.ObjectID]bool{}
	for _, a := range anns {
		seen[a.ID] = true
	}
	if !seen[everyone.ID] || !seen[boys.ID] {
		t.Errorf("visible set missing expected announcements: %v", seen)
	}
}

func TestListVisibleToPinnedFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := announcementstore.New(db)
	fix := testutil.NewFixtures(t, db)

	fix.CreateAnnouncement(ctx, "Older", []string{"all:all"})
	pinned := fix.CreateAnnouncement(ctx, "Pinned policy", []string{"all:all"})
	fix.CreateAnnouncement(ctx, "Newest", []string{"all:all"})

	if err := store.SetPinned(ctx, pinned.ID, true); err != nil {
		t.Fatalf("SetPinned: %v", err)
	}

	anns, err := store.ListVisibleTo(ctx, []string{"all:all"})
	if err != nil {
		t.Fatalf("ListVisibleTo: %v", err)
	}
	if len(anns) != 3 {
		t.Fatalf("visible = %d announcements, want 3", len(anns))
	}
	if anns[0].ID != pinned.ID {
		t.Errorf("first announcement = %q, want the pinned one", anns[0].Title)
	}
}

func TestSetPinnedMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := announcementstore.New(db)

	if err := store.SetPinned(ctx, primitive.NewObjectID(), true); err == nil {
		t.Error("SetPinned on a missing announcement should fail")
	}
}

func TestToggleReadFlips(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := announcementstore.New(db)
	fix := testutil.NewFixtures(t, db)

	ann := fix.CreateAnnouncement(ctx, "Read me", []string{"all:all"})

	read, err := store.ToggleRead(ctx, ann.ID, "u1")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !read {
		t.Error("first toggle should mark read")
	}

	read, err = store.ToggleRead(ctx, ann.ID, "u1")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if read {
		t.Error("second toggle should mark unread again")
	}

	// Read marks are per reader.
	if _, err := store.ToggleRead(ctx, ann.ID, "u1"); err != nil {
		t.Fatalf("third toggle: %v", err)
	}
	set, err := store.ReadSet(ctx, "u2", []primitive.ObjectID{ann.ID})
	if err != nil {
		t.Fatalf("ReadSet: %v", err)
	}
	if set[ann.ID] {
		t.Error("u2 should not inherit u1's read mark")
	}
}

func TestCountUnreadFor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := announcementstore.New(db)
	fix := testutil.NewFixtures(t, db)

	a1 := fix.CreateAnnouncement(ctx, "One", []string{"all:all"})
	fix.CreateAnnouncement(ctx, "Two", []string{"all:all"})
	fix.CreateAnnouncement(ctx, "Invisible", []string{"unit:admin"})

	subject := []string{"all:all", "unit:school"}
	n, err := store.CountUnreadFor(ctx, "u1", subject)
	if err != nil {
		t.Fatalf("CountUnreadFor: %v", err)
	}
	if n != 2 {
		t.Errorf("unread = %d, want 2 visible unread", n)
	}

	if _, err := store.ToggleRead(ctx, a1.ID, "u1"); err != nil {
		t.Fatalf("ToggleRead: %v", err)
	}
	n, err = store.CountUnreadFor(ctx, "u1", subject)
	if err != nil {
		t.Fatalf("CountUnreadFor: %v", err)
	}
	if n != 1 {
		t.Errorf("unread after marking one = %d, want 1", n)
	}
}

func TestDeleteRemovesReadMarks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := announcementstore.New(db)
	fix := testutil.NewFixtures(t, db)

	ann := fix.CreateAnnouncement(ctx, "Short lived", []string{"all:all"})
	if _, err := store.ToggleRead(ctx, ann.ID, "u1"); err != nil {
		t.Fatalf("ToggleRead: %v", err)
	}

	if err := store.Delete(ctx, ann.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	anns, err := store.ListVisibleTo(ctx, []string{"all:all"})
	if err != nil {
		t.Fatalf("ListVisibleTo: %v", err)
	}
	if len(anns) != 0 {
		t.Errorf("announcement still visible after delete: %+v", anns)
	}
	set, err := store.ReadSet(ctx, "u1", []primitive.ObjectID{ann.ID})
	if err != nil {
		t.Fatalf("ReadSet: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("read marks survived delete: %v", set)
	}
}
