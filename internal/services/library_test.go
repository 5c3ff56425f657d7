package services_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/repos"
	"github.com/refera/refera-backend/internal/repos/testutil"
	"github.com/refera/refera-backend/internal/requestdata"
	"github.com/refera/refera-backend/internal/services"
	"github.com/refera/refera-backend/internal/storage"
	"github.com/refera/refera-backend/internal/types"
)

type testServices struct {
	Library    services.LibraryService
	Collection services.CollectionService
	Item       services.ItemService
	Attachment services.AttachmentService
	Note       services.NoteService
	Tag        services.TagService
	StoreDir   string
}

func newTestServices(t *testing.T, tx *gorm.DB) testServices {
	t.Helper()
	log := testutil.Logger(t)
	storeDir := t.TempDir()
	store, err := storage.NewLocal(log, storeDir, "http://localhost/files")
	if err != nil {
		t.Fatalf("init local store: %v", err)
	}

	libraryRepo := repos.NewLibraryRepo(tx, log)
	collectionRepo := repos.NewCollectionRepo(tx, log)
	itemRepo := repos.NewItemRepo(tx, log)
	groupRepo := repos.NewGroupRepo(tx, log)
	attachmentRepo := repos.NewAttachmentRepo(tx, log)
	attachmentTypeRepo := repos.NewAttachmentTypeRepo(tx, log)
	noteRepo := repos.NewNoteRepo(tx, log)
	tagRepo := repos.NewTagRepo(tx, log)

	libraries := services.NewLibraryService(tx, log, libraryRepo, collectionRepo, itemRepo, groupRepo, store)
	collections := services.NewCollectionService(tx, log, collectionRepo, itemRepo, libraries)
	items := services.NewItemService(tx, log, itemRepo, collections, store)
	attachments := services.NewAttachmentService(tx, log, attachmentRepo, attachmentTypeRepo, itemRepo, items, store)
	notes := services.NewNoteService(tx, log, noteRepo)
	tags := services.NewTagService(tx, log, tagRepo, items, libraries, collections)
	return testServices{
		Library:    libraries,
		Collection: collections,
		Item:       items,
		Attachment: attachments,
		Note:       notes,
		Tag:        tags,
		StoreDir:   storeDir,
	}
}

func asStatus(t *testing.T, err error, status int) *apierr.Error {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected api error, got %v", err)
	}
	if ae.Status != status {
		t.Fatalf("expected status %d, got %d (%v)", status, ae.Status, ae)
	}
	return ae
}

func TestLibraryCreateInitializesSpecialCollections(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newTestServices(t, tx)

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	rd := &requestdata.RequestData{UserID: owner.ID, Role: "user"}

	library, err := svc.Library.Create(ctx, rd, &types.Library{Name: "Papers", Private: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !library.Initialized() {
		t.Fatal("expected special collections to be set")
	}

	collections, err := svc.Collection.List(ctx, rd, library.ID, &query.ListQuery{All: true})
	if err != nil {
		t.Fatalf("List collections failed: %v", err)
	}
	byName := map[string]*types.Collection{}
	for _, c := range collections {
		byName[c.Name] = c
	}
	if len(collections) != 3 {
		t.Fatalf("expected 3 special collections, got %d", len(collections))
	}
	dup, ok := byName[types.CollectionNameDuplicates]
	if !ok || dup.Type != types.CollectionTypeSearching {
		t.Fatalf("duplicates collection missing or wrong type: %+v", dup)
	}
	if v, ok := dup.SearchQuery["duplicate"].(bool); !ok || !v {
		t.Fatalf("duplicates search query not set: %v", dup.SearchQuery)
	}
}

func TestSpecialCollectionsAreGuarded(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newTestServices(t, tx)

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	rd := &requestdata.RequestData{UserID: owner.ID, Role: "user"}

	library, err := svc.Library.Create(ctx, rd, &types.Library{Name: "Papers", Private: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Collection.Update(ctx, rd, *library.BinID, map[string]any{"name": "Trash"})
	asStatus(t, err, 400)

	err = svc.Collection.Delete(ctx, rd, *library.DuplicatesID)
	asStatus(t, err, 400)
}

func TestItemCreateRejectedInSearchingCollection(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newTestServices(t, tx)

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	rd := &requestdata.RequestData{UserID: owner.ID, Role: "user"}

	library, err := svc.Library.Create(ctx, rd, &types.Library{Name: "Papers", Private: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Item.Create(ctx, rd, *library.DuplicatesID, &types.Item{Name: "attention is all you need"})
	asStatus(t, err, 400)
}

func TestItemMove(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newTestServices(t, tx)

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	rd := &requestdata.RequestData{UserID: owner.ID, Role: "user"}

	library, err := svc.Library.Create(ctx, rd, &types.Library{Name: "Papers", Private: true})
	if err != nil {
		t.Fatalf("Create library failed: %v", err)
	}
	src, err := svc.Collection.Create(ctx, rd, library.ID, &types.Collection{Name: "To read"})
	if err != nil {
		t.Fatalf("Create collection failed: %v", err)
	}
	dst, err := svc.Collection.Create(ctx, rd, library.ID, &types.Collection{Name: "Read"})
	if err != nil {
		t.Fatalf("Create collection failed: %v", err)
	}

	item, err := svc.Item.Create(ctx, rd, src.ID, &types.Item{Name: "attention is all you need"})
	if err != nil {
		t.Fatalf("Create item failed: %v", err)
	}
	if item.LibraryID != library.ID || item.ParentID != src.ID {
		t.Fatalf("item not filed correctly: %+v", item)
	}

	moved, err := svc.Item.Move(ctx, rd, item.ID, dst.ID)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if moved.ParentID != dst.ID {
		t.Fatalf("expected item in %s, got %s", dst.ID, moved.ParentID)
	}

	// Moving into the searching collection is rejected.
	_, err = svc.Item.Move(ctx, rd, item.ID, *library.DuplicatesID)
	asStatus(t, err, 400)

	// Cross-library moves are rejected.
	other, err := svc.Library.Create(ctx, rd, &types.Library{Name: "Other", Private: true})
	if err != nil {
		t.Fatalf("Create library failed: %v", err)
	}
	otherColl, err := svc.Collection.Create(ctx, rd, other.ID, &types.Collection{Name: "Inbox"})
	if err != nil {
		t.Fatalf("Create collection failed: %v", err)
	}
	_, err = svc.Item.Move(ctx, rd, item.ID, otherColl.ID)
	asStatus(t, err, 400)
}

func TestCollectionDeleteMovesItemsToUnfiled(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newTestServices(t, tx)

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	rd := &requestdata.RequestData{UserID: owner.ID, Role: "user"}

	library, err := svc.Library.Create(ctx, rd, &types.Library{Name: "Papers", Private: true})
	if err != nil {
		t.Fatalf("Create library failed: %v", err)
	}
	coll, err := svc.Collection.Create(ctx, rd, library.ID, &types.Collection{Name: "To read"})
	if err != nil {
		t.Fatalf("Create collection failed: %v", err)
	}
	item, err := svc.Item.Create(ctx, rd, coll.ID, &types.Item{Name: "attention is all you need"})
	if err != nil {
		t.Fatalf("Create item failed: %v", err)
	}

	if err := svc.Collection.Delete(ctx, rd, coll.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := svc.Item.Get(ctx, rd, item.ID)
	if err != nil {
		t.Fatalf("Get item failed: %v", err)
	}
	if got.ParentID != *library.UnfiledItemsID {
		t.Fatalf("expected item in unfiled items, got %s", got.ParentID)
	}
}

func TestStrangerCannotViewPrivateLibrary(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newTestServices(t, tx)

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	stranger := testutil.SeedUser(t, ctx, tx, "stranger@example.com")

	library, err := svc.Library.Create(ctx, rdFor(owner), &types.Library{Name: "Papers", Private: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Library.Get(ctx, rdFor(stranger), library.ID)
	asStatus(t, err, 403)

	// Admins bypass the ownership check.
	admin := testutil.SeedUser(t, ctx, tx, "admin@example.com")
	if _, err := svc.Library.Get(ctx, &requestdata.RequestData{UserID: admin.ID, Role: types.RoleAdmin}, library.ID); err != nil {
		t.Fatalf("admin Get failed: %v", err)
	}
}

func TestLibraryDeleteCascades(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newTestServices(t, tx)

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	rd := rdFor(owner)

	library, err := svc.Library.Create(ctx, rd, &types.Library{Name: "Papers", Private: true})
	if err != nil {
		t.Fatalf("Create library failed: %v", err)
	}
	coll, err := svc.Collection.Create(ctx, rd, library.ID, &types.Collection{Name: "To read"})
	if err != nil {
		t.Fatalf("Create collection failed: %v", err)
	}
	first, err := svc.Item.Create(ctx, rd, coll.ID, &types.Item{Name: "paper one"})
	if err != nil {
		t.Fatalf("Create item failed: %v", err)
	}
	second, err := svc.Item.Create(ctx, rd, coll.ID, &types.Item{Name: "paper two"})
	if err != nil {
		t.Fatalf("Create item failed: %v", err)
	}
	if err := svc.Item.Relate(ctx, rd, first.ID, second.ID); err != nil {
		t.Fatalf("Relate failed: %v", err)
	}
	if _, err := svc.Tag.Create(ctx, rd, first.ID, "ml", ""); err != nil {
		t.Fatalf("Create tag failed: %v", err)
	}
	if _, err := svc.Note.Create(ctx, rd, types.NoteParentItem, first.ID, "read this first"); err != nil {
		t.Fatalf("Create item note failed: %v", err)
	}
	if _, err := svc.Note.Create(ctx, rd, types.NoteParentCollection, coll.ID, "backlog"); err != nil {
		t.Fatalf("Create collection note failed: %v", err)
	}
	if _, err := svc.Attachment.Upload(ctx, rd, first.ID, &types.Attachment{Name: "manuscript.pdf"}, strings.NewReader("%PDF-1.4")); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if countFiles(t, svc.StoreDir) == 0 {
		t.Fatal("expected a stored file before delete")
	}

	if err := svc.Library.Delete(ctx, rd, library.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	for _, check := range []struct {
		name  string
		model any
	}{
		{"collections", &types.Collection{}},
		{"items", &types.Item{}},
		{"relations", &types.ItemRelation{}},
		{"tags", &types.Tag{}},
		{"notes", &types.Note{}},
		{"attachments", &types.Attachment{}},
		{"libraries", &types.Library{}},
	} {
		var n int64
		if err := tx.Model(check.model).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", check.name, err)
		}
		if n != 0 {
			t.Fatalf("expected no %s after delete, found %d", check.name, n)
		}
	}
	if n := countFiles(t, svc.StoreDir); n != 0 {
		t.Fatalf("expected stored files removed, found %d", n)
	}
}

func TestCollectionSearchQueryGuarded(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newTestServices(t, tx)

	owner := testutil.SeedUser(t, ctx, tx, "owner@example.com")
	rd := rdFor(owner)

	library, err := svc.Library.Create(ctx, rd, &types.Library{Name: "Papers", Private: true})
	if err != nil {
		t.Fatalf("Create library failed: %v", err)
	}
	plain, err := svc.Collection.Create(ctx, rd, library.ID, &types.Collection{Name: "To read"})
	if err != nil {
		t.Fatalf("Create collection failed: %v", err)
	}

	// A plain collection cannot acquire a query through PATCH.
	_, err = svc.Collection.Update(ctx, rd, plain.ID, map[string]any{"search_query": datatypes.JSONMap{"name": "x"}})
	asStatus(t, err, 400)

	searching, err := svc.Collection.Create(ctx, rd, library.ID, &types.Collection{
		Name:        "recent",
		Type:        types.CollectionTypeSearching,
		SearchQuery: datatypes.JSONMap{"name": "x"},
	})
	if err != nil {
		t.Fatalf("Create searching collection failed: %v", err)
	}

	// A searching collection cannot lose its query.
	_, err = svc.Collection.Update(ctx, rd, searching.ID, map[string]any{"search_query": datatypes.JSONMap{}})
	asStatus(t, err, 400)

	updated, err := svc.Collection.Update(ctx, rd, searching.ID, map[string]any{"search_query": datatypes.JSONMap{"name": "y"}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if v, ok := updated.SearchQuery["name"].(string); !ok || v != "y" {
		t.Fatalf("expected replaced query, got %v", updated.SearchQuery)
	}
}

func TestLibraryGroupBindingRequiresMembership(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newTestServices(t, tx)

	groupOwner := testutil.SeedUser(t, ctx, tx, "groupowner@example.com")
	member := testutil.SeedUser(t, ctx, tx, "member@example.com")
	outsider := testutil.SeedUser(t, ctx, tx, "outsider@example.com")
	group := testutil.SeedGroup(t, ctx, tx, groupOwner.ID, "lab")
	testutil.SeedGroupMember(t, ctx, tx, group.ID, member.ID)

	_, err := svc.Library.Create(ctx, rdFor(outsider), &types.Library{Name: "Notes", Private: true, GroupID: &group.ID})
	asStatus(t, err, 403)

	library, err := svc.Library.Create(ctx, rdFor(member), &types.Library{Name: "Notes", Private: true, GroupID: &group.ID})
	if err != nil {
		t.Fatalf("member Create failed: %v", err)
	}

	// Rebinding on update runs the same check.
	otherGroup := testutil.SeedGroup(t, ctx, tx, groupOwner.ID, "other lab")
	_, err = svc.Library.Update(ctx, rdFor(member), library.ID, map[string]any{"group_id": otherGroup.ID})
	asStatus(t, err, 403)

	// A dangling group id is a bad reference, not a permission problem.
	_, err = svc.Library.Create(ctx, rdFor(member), &types.Library{Name: "Misc", Private: true, GroupID: testutil.PtrUUID(uuid.New())})
	asStatus(t, err, 400)
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk store: %v", err)
	}
	return n
}

func rdFor(u *types.User) *requestdata.RequestData {
	return &requestdata.RequestData{UserID: u.ID, Role: u.Role}
}
