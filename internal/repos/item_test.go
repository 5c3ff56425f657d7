package repos

import (
	"context"
	"testing"

	"github.com/refera/refera-backend/internal/repos/testutil"
	"github.com/refera/refera-backend/internal/types"
)

func TestItemRepoRelate(t *testing.T) {
	db := testutil.DB(t)

	repo := NewItemRepo(db, testutil.Logger(t))
	ctx := context.Background()

	// Relate commits its own transaction, so clean up rather than roll back.
	owner := testutil.SeedUser(t, ctx, db, "relate-owner@example.com")
	library := testutil.SeedLibrary(t, ctx, db, owner.ID, "relate")
	collection := testutil.SeedCollection(t, ctx, db, library.ID, "main")
	a := testutil.SeedItem(t, ctx, db, collection.ID, library.ID, "alpha")
	b := testutil.SeedItem(t, ctx, db, collection.ID, library.ID, "beta")
	t.Cleanup(func() {
		db.Exec(`DELETE FROM "item_relation" WHERE "item_id" IN (?, ?)`, a.ID, b.ID)
		db.Unscoped().Delete(&types.Item{}, "id IN (?, ?)", a.ID, b.ID)
		db.Unscoped().Delete(&types.Collection{}, "id = ?", collection.ID)
		db.Unscoped().Delete(&types.Library{}, "id = ?", library.ID)
		db.Unscoped().Delete(&types.User{}, "id = ?", owner.ID)
	})

	if err := repo.Relate(ctx, a, b); err != nil {
		t.Fatalf("Relate: %v", err)
	}

	got, err := repo.GetByID(ctx, nil, a.ID, "Related")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Related) != 1 || got.Related[0].RelatedID != b.ID || got.Related[0].RelatedName != "beta" {
		t.Fatalf("Relate: forward side not written: %+v", got.Related)
	}

	got, err = repo.GetByID(ctx, nil, b.ID, "Related")
	if err != nil {
		t.Fatalf("GetByID (other side): %v", err)
	}
	if len(got.Related) != 1 || got.Related[0].RelatedID != a.ID || got.Related[0].RelatedName != "alpha" {
		t.Fatalf("Relate: backward side not written: %+v", got.Related)
	}

	if err := repo.Unrelate(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Unrelate: %v", err)
	}
	got, err = repo.GetByID(ctx, nil, a.ID, "Related")
	if err != nil {
		t.Fatalf("GetByID after unrelate: %v", err)
	}
	if len(got.Related) != 0 {
		t.Fatalf("Unrelate: relations remain: %+v", got.Related)
	}
}

func TestItemRepoParentChain(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewItemRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "chain-owner@example.com")
	stranger := testutil.SeedUser(t, ctx, tx, "chain-stranger@example.com")
	library := testutil.SeedLibrary(t, ctx, tx, owner.ID, "chain")
	collection := testutil.SeedCollection(t, ctx, tx, library.ID, "main")
	item := testutil.SeedItem(t, ctx, tx, collection.ID, library.ID, "paper")

	got, err := repo.GetWithParent(ctx, tx, item.ID)
	if err != nil {
		t.Fatalf("GetWithParent: %v", err)
	}
	if got.Parent == nil || got.Parent.Parent == nil {
		t.Fatalf("GetWithParent: chain not populated")
	}

	if ok, err := got.CanView(owner.ID); err != nil || !ok {
		t.Fatalf("CanView (owner): got %v, %v", ok, err)
	}
	if ok, _ := got.CanView(stranger.ID); ok {
		t.Fatalf("CanView (stranger): expected false on a private library")
	}
	if ok, _ := got.CanEdit(stranger.ID); ok {
		t.Fatalf("CanEdit (stranger): expected false")
	}
}
