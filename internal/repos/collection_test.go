package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/refera/refera-backend/internal/repos/testutil"
	"github.com/refera/refera-backend/internal/types"
)

func TestCollectionRepoSearchItems(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewCollectionRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "search-owner@example.com")
	library := testutil.SeedLibrary(t, ctx, tx, owner.ID, "papers")

	a := testutil.SeedCollection(t, ctx, tx, library.ID, "to read")
	b := testutil.SeedCollection(t, ctx, tx, library.ID, "archive")

	// "attention" lives under both collections, the others under one.
	testutil.SeedItem(t, ctx, tx, a.ID, library.ID, "attention")
	testutil.SeedItem(t, ctx, tx, b.ID, library.ID, "attention")
	testutil.SeedItem(t, ctx, tx, a.ID, library.ID, "resnet")
	testutil.SeedItem(t, ctx, tx, b.ID, library.ID, "bert")

	duplicates, err := repo.Create(ctx, tx, &types.Collection{
		ID:          uuid.New(),
		Name:        types.CollectionNameDuplicates,
		ParentID:    library.ID,
		Type:        types.CollectionTypeSearching,
		SearchQuery: datatypes.JSONMap{"duplicate": true},
	})
	if err != nil {
		t.Fatalf("Create (searching): %v", err)
	}

	found, err := repo.SearchItems(ctx, tx, duplicates, nil)
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("SearchItems: expected the 2 duplicated items, got %d", len(found))
	}
	for _, item := range found {
		if item.Name != "attention" {
			t.Fatalf("SearchItems: unexpected item %q", item.Name)
		}
	}

	byName, err := repo.Create(ctx, tx, &types.Collection{
		ID:          uuid.New(),
		Name:        "berts",
		ParentID:    library.ID,
		Type:        types.CollectionTypeSearching,
		SearchQuery: datatypes.JSONMap{"name": "bert"},
	})
	if err != nil {
		t.Fatalf("Create (by name): %v", err)
	}
	found, err = repo.SearchItems(ctx, tx, byName, nil)
	if err != nil {
		t.Fatalf("SearchItems (by name): %v", err)
	}
	if len(found) != 1 || found[0].Name != "bert" {
		t.Fatalf("SearchItems (by name): unexpected result: %+v", found)
	}
}

func TestCollectionRepoTypeGuard(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewCollectionRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "guard-owner@example.com")
	library := testutil.SeedLibrary(t, ctx, tx, owner.ID, "guarded")

	_, err := repo.Create(ctx, tx, &types.Collection{
		ID:       uuid.New(),
		Name:     "broken searching",
		ParentID: library.ID,
		Type:     types.CollectionTypeSearching,
	})
	if err == nil {
		t.Fatalf("Create: searching collection without a query should fail")
	}

	_, err = repo.Create(ctx, tx, &types.Collection{
		ID:          uuid.New(),
		Name:        "broken plain",
		ParentID:    library.ID,
		Type:        types.CollectionTypeStandard,
		SearchQuery: datatypes.JSONMap{"name": "x"},
	})
	if err == nil {
		t.Fatalf("Create: plain collection with a query should fail")
	}
}
