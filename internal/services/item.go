package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/repos"
	"github.com/refera/refera-backend/internal/requestdata"
	"github.com/refera/refera-backend/internal/storage"
	"github.com/refera/refera-backend/internal/types"
)

type ItemService interface {
	Create(ctx context.Context, rd *requestdata.RequestData, collectionID uuid.UUID, item *types.Item) (*types.Item, error)
	Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Item, error)
	Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.Item, error)
	Move(ctx context.Context, rd *requestdata.RequestData, id, collectionID uuid.UUID) (*types.Item, error)
	Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error
	Relate(ctx context.Context, rd *requestdata.RequestData, id, otherID uuid.UUID) error
	Unrelate(ctx context.Context, rd *requestdata.RequestData, id, otherID uuid.UUID) error

	// RequireView loads the item with its parent chain and fails unless
	// the user may see the library it belongs to.
	RequireView(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Item, error)
}

type itemService struct {
	db          *gorm.DB
	log         *logger.Logger
	itemRepo    repos.ItemRepo
	collections CollectionService
	store       storage.Store
}

func NewItemService(
	db *gorm.DB,
	log *logger.Logger,
	itemRepo repos.ItemRepo,
	collections CollectionService,
	store storage.Store,
) ItemService {
	return &itemService{
		db:          db,
		log:         log.With("service", "ItemService"),
		itemRepo:    itemRepo,
		collections: collections,
		store:       store,
	}
}

func (is *itemService) Create(ctx context.Context, rd *requestdata.RequestData, collectionID uuid.UUID, item *types.Item) (*types.Item, error) {
	collection, err := is.collections.RequireView(ctx, rd, collectionID)
	if err != nil {
		return nil, err
	}
	if collection.IsSearching() {
		return nil, apierr.BadRequest("cannot add items to a searching collection")
	}
	library := collection.Parent
	if !rd.IsAdmin() {
		ok, err := library.CanAdd(rd.UserID)
		if err != nil && !errors.Is(err, types.ErrNotMember) {
			return nil, err
		}
		if !ok {
			return nil, apierr.Forbidden("no add access to this library")
		}
	}
	if item.Name == "" {
		return nil, apierr.BadRequest("item name must not be empty")
	}
	item.ID = uuid.New()
	item.ParentID = collectionID
	item.LibraryID = library.ID
	created, err := is.itemRepo.Create(ctx, nil, item)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return created, nil
}

func (is *itemService) Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Item, error) {
	if _, err := is.RequireView(ctx, rd, id); err != nil {
		return nil, err
	}
	// Reload with the association set callers expect on a detail view.
	return is.itemRepo.GetByID(ctx, nil, id, "Attachments", "Tags", "Related")
}

func (is *itemService) RequireView(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Item, error) {
	item, err := is.itemRepo.GetWithParent(ctx, nil, id)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	if item.Parent == nil || item.Parent.Parent == nil {
		return nil, apierr.New(400, "invalid_reference", fmt.Errorf("item has no parent chain"))
	}
	if rd.IsAdmin() {
		return item, nil
	}
	ok, err := item.CanView(rd.UserID)
	if err != nil {
		if errors.Is(err, types.ErrGroupNotPopulated) {
			return nil, apierr.New(400, "invalid_reference", err)
		}
		return nil, err
	}
	if !ok {
		return nil, apierr.Forbidden("no access to this item")
	}
	return item, nil
}

func (is *itemService) Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.Item, error) {
	item, err := is.RequireView(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	if err := is.requireEdit(rd, item); err != nil {
		return nil, err
	}
	updated, err := is.itemRepo.UpdateByID(ctx, nil, id, updates)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return updated, nil
}

// Move reparents an item onto another collection of the same library.
func (is *itemService) Move(ctx context.Context, rd *requestdata.RequestData, id, collectionID uuid.UUID) (*types.Item, error) {
	item, err := is.RequireView(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	if err := is.requireEdit(rd, item); err != nil {
		return nil, err
	}
	target, err := is.collections.RequireView(ctx, rd, collectionID)
	if err != nil {
		return nil, err
	}
	if target.IsSearching() {
		return nil, apierr.BadRequest("cannot move items into a searching collection")
	}
	if target.ParentID != item.LibraryID {
		return nil, apierr.BadRequest("cannot move items across libraries")
	}
	updated, err := is.itemRepo.UpdateByID(ctx, nil, id, map[string]any{"parent_id": collectionID})
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return updated, nil
}

// Delete removes the item, its attachments, notes, tags and relations, then
// clears its stored files.
func (is *itemService) Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error {
	item, err := is.RequireView(ctx, rd, id)
	if err != nil {
		return err
	}
	library := item.Parent.Parent
	if !rd.IsAdmin() && library.OwnerID != rd.UserID {
		ok, err := library.CanDelete(rd.UserID)
		if err != nil && !errors.Is(err, types.ErrNotMember) {
			return err
		}
		if !ok {
			return apierr.Forbidden("no delete access to this library")
		}
	}

	if err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&types.Tag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ? OR related_id = ?", id, id).Delete(&types.ItemRelation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_id = ?", id).Delete(&types.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_kind = ? AND parent_id = ?", types.NoteParentItem, id).Delete(&types.Note{}).Error; err != nil {
			return err
		}
		return is.itemRepo.Delete(ctx, tx, item)
	}); err != nil {
		return apierr.Translate(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	prefix := storage.ItemPrefix(id)
	g.Go(func() error {
		if err := is.store.DeletePrefix(gctx, prefix); err != nil {
			is.log.Warn("failed to delete item files", "prefix", prefix, "error", err)
		}
		return nil
	})
	_ = g.Wait()
	return nil
}

// Relate links two items symmetrically. Both must be visible to the user
// and belong to the same library.
func (is *itemService) Relate(ctx context.Context, rd *requestdata.RequestData, id, otherID uuid.UUID) error {
	if id == otherID {
		return apierr.BadRequest("cannot relate an item to itself")
	}
	a, err := is.RequireView(ctx, rd, id)
	if err != nil {
		return err
	}
	b, err := is.RequireView(ctx, rd, otherID)
	if err != nil {
		return err
	}
	if a.LibraryID != b.LibraryID {
		return apierr.BadRequest("cannot relate items across libraries")
	}
	if err := is.requireEdit(rd, a); err != nil {
		return err
	}
	if err := is.itemRepo.Relate(ctx, a, b); err != nil {
		return apierr.Translate(err)
	}
	return nil
}

func (is *itemService) Unrelate(ctx context.Context, rd *requestdata.RequestData, id, otherID uuid.UUID) error {
	a, err := is.RequireView(ctx, rd, id)
	if err != nil {
		return err
	}
	if err := is.requireEdit(rd, a); err != nil {
		return err
	}
	if err := is.itemRepo.Unrelate(ctx, id, otherID); err != nil {
		return apierr.Translate(err)
	}
	return nil
}

func (is *itemService) requireEdit(rd *requestdata.RequestData, item *types.Item) error {
	if rd.IsAdmin() {
		return nil
	}
	ok, err := item.CanEdit(rd.UserID)
	if err != nil && !errors.Is(err, types.ErrNotMember) {
		return err
	}
	if !ok {
		return apierr.Forbidden("no edit access to this item")
	}
	return nil
}
