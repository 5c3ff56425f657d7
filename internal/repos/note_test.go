package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/refera/refera-backend/internal/repos/testutil"
	"github.com/refera/refera-backend/internal/types"
)

func TestNoteRepoPopulateParent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewNoteRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "note-owner@example.com")
	library := testutil.SeedLibrary(t, ctx, tx, owner.ID, "notes")
	collection := testutil.SeedCollection(t, ctx, tx, library.ID, "main")
	item := testutil.SeedItem(t, ctx, tx, collection.ID, library.ID, "paper")

	onItem, err := repo.Create(ctx, tx, &types.Note{
		ID:         uuid.New(),
		ParentKind: types.NoteParentItem,
		ParentID:   item.ID,
		Text:       "first impressions",
	})
	if err != nil {
		t.Fatalf("Create (item note): %v", err)
	}
	if err := repo.PopulateParent(ctx, tx, onItem); err != nil {
		t.Fatalf("PopulateParent (item note): %v", err)
	}
	if onItem.ParentItem == nil || onItem.ParentItem.Parent == nil || onItem.ParentItem.Parent.Parent == nil {
		t.Fatalf("PopulateParent: item chain not loaded")
	}
	if ok, err := onItem.CanView(owner.ID); err != nil || !ok {
		t.Fatalf("CanView (owner): got %v, %v", ok, err)
	}

	onCollection, err := repo.Create(ctx, tx, &types.Note{
		ID:         uuid.New(),
		ParentKind: types.NoteParentCollection,
		ParentID:   collection.ID,
	})
	if err != nil {
		t.Fatalf("Create (collection note): %v", err)
	}
	if err := repo.PopulateParent(ctx, tx, onCollection); err != nil {
		t.Fatalf("PopulateParent (collection note): %v", err)
	}
	if onCollection.ParentCollection == nil || onCollection.ParentCollection.Parent == nil {
		t.Fatalf("PopulateParent: collection chain not loaded")
	}

	itemNotes, err := repo.ListByParent(ctx, tx, types.NoteParentItem, item.ID, nil)
	if err != nil {
		t.Fatalf("ListByParent: %v", err)
	}
	if len(itemNotes) != 1 || itemNotes[0].ID != onItem.ID {
		t.Fatalf("ListByParent: unexpected notes: %+v", itemNotes)
	}

	bad := &types.Note{ParentKind: "library", ParentID: library.ID}
	if err := repo.PopulateParent(ctx, tx, bad); err == nil {
		t.Fatalf("PopulateParent: expected error for unknown parent kind")
	}
}

func TestTagRepoUniquePerItem(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewTagRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "tag-owner@example.com")
	library := testutil.SeedLibrary(t, ctx, tx, owner.ID, "tags")
	collection := testutil.SeedCollection(t, ctx, tx, library.ID, "main")
	item := testutil.SeedItem(t, ctx, tx, collection.ID, library.ID, "paper")
	other := testutil.SeedItem(t, ctx, tx, collection.ID, library.ID, "other paper")

	first := testutil.SeedTag(t, ctx, tx, item.ID, "ml")

	// Same name on another item is fine.
	testutil.SeedTag(t, ctx, tx, other.ID, "ml")

	tags, err := repo.ListByItem(ctx, tx, item.ID, nil)
	if err != nil {
		t.Fatalf("ListByItem: %v", err)
	}
	if len(tags) != 1 || tags[0].ID != first.ID {
		t.Fatalf("ListByItem: unexpected tags: %+v", tags)
	}
	if tags[0].Color != types.DefaultTagColor {
		t.Fatalf("ListByItem: expected default color, got %q", tags[0].Color)
	}

	// Same name on the same item violates the unique index. Last, since the
	// failed insert poisons the wrapping transaction.
	if _, err := repo.Create(ctx, tx, &types.Tag{
		ID:     uuid.New(),
		ItemID: item.ID,
		Name:   "ml",
	}); err == nil {
		t.Fatalf("Create: duplicate tag name on one item should fail")
	}
}
