package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/refera/refera-backend/internal/repos/testutil"
)

func TestLibraryRepoVisibility(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewLibraryRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "lib-owner@example.com")
	member := testutil.SeedUser(t, ctx, tx, "lib-member@example.com")
	outsider := testutil.SeedUser(t, ctx, tx, "lib-outsider@example.com")

	group := testutil.SeedGroup(t, ctx, tx, owner.ID, "Lab")
	testutil.SeedGroupMember(t, ctx, tx, group.ID, member.ID)

	personal := testutil.SeedLibrary(t, ctx, tx, owner.ID, "personal")

	shared := testutil.SeedLibrary(t, ctx, tx, owner.ID, "shared")
	if _, err := repo.UpdateByID(ctx, tx, shared.ID, map[string]any{"group_id": group.ID}); err != nil {
		t.Fatalf("UpdateByID (group_id): %v", err)
	}

	public := testutil.SeedLibrary(t, ctx, tx, outsider.ID, "public")
	if _, err := repo.UpdateByID(ctx, tx, public.ID, map[string]any{"private": false}); err != nil {
		t.Fatalf("UpdateByID (private): %v", err)
	}

	forOwner, err := repo.ListVisible(ctx, tx, owner.ID, nil)
	if err != nil {
		t.Fatalf("ListVisible (owner): %v", err)
	}
	if len(forOwner) != 2 {
		t.Fatalf("ListVisible (owner): expected 2 libraries, got %d", len(forOwner))
	}

	forMember, err := repo.ListVisible(ctx, tx, member.ID, nil)
	if err != nil {
		t.Fatalf("ListVisible (member): %v", err)
	}
	if len(forMember) != 1 || forMember[0].ID != shared.ID {
		t.Fatalf("ListVisible (member): expected only the shared library, got %+v", forMember)
	}

	publics, err := repo.ListPublic(ctx, tx, nil)
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	if len(publics) != 1 || publics[0].ID != public.ID {
		t.Fatalf("ListPublic: expected only the public library, got %+v", publics)
	}

	withGroup, err := repo.GetWithGroup(ctx, tx, shared.ID)
	if err != nil {
		t.Fatalf("GetWithGroup: %v", err)
	}
	if withGroup.Group == nil || len(withGroup.Group.Members) != 1 {
		t.Fatalf("GetWithGroup: group chain not populated: %+v", withGroup.Group)
	}
	if ok, err := withGroup.CanView(member.ID); err != nil || !ok {
		t.Fatalf("CanView (member): got %v, %v", ok, err)
	}
	if ok, _ := withGroup.CanView(outsider.ID); ok {
		t.Fatalf("CanView (outsider): expected false")
	}

	unfiled := testutil.SeedCollection(t, ctx, tx, personal.ID, "unfiled items")
	duplicates := testutil.SeedCollection(t, ctx, tx, personal.ID, "duplicates-std")
	bin := testutil.SeedCollection(t, ctx, tx, personal.ID, "bin-std")
	if err := repo.SetSpecialCollections(ctx, tx, personal.ID, unfiled.ID, duplicates.ID, bin.ID); err != nil {
		t.Fatalf("SetSpecialCollections: %v", err)
	}
	got, err := repo.GetByID(ctx, tx, personal.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.UnfiledItemsID == nil || *got.UnfiledItemsID != unfiled.ID {
		t.Fatalf("SetSpecialCollections: unfiled id not persisted")
	}
	if !got.Initialized() {
		t.Fatalf("Initialized: expected true after special collections set")
	}

	if _, err := repo.GetByID(ctx, tx, uuid.New()); err == nil {
		t.Fatalf("GetByID (missing): expected error")
	}
}
