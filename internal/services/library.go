package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/repos"
	"github.com/refera/refera-backend/internal/requestdata"
	"github.com/refera/refera-backend/internal/storage"
	"github.com/refera/refera-backend/internal/types"
)

type LibraryService interface {
	Create(ctx context.Context, rd *requestdata.RequestData, library *types.Library) (*types.Library, error)
	Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Library, error)
	List(ctx context.Context, rd *requestdata.RequestData, lq *query.ListQuery) ([]*types.Library, error)
	ListPublic(ctx context.Context, lq *query.ListQuery) ([]*types.Library, error)
	Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.Library, error)
	Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error

	// RequireView loads the library with its group chain and fails unless
	// the user may see it. Other services use it as the root of their
	// permission walks.
	RequireView(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Library, error)
}

type libraryService struct {
	db             *gorm.DB
	log            *logger.Logger
	libraryRepo    repos.LibraryRepo
	collectionRepo repos.CollectionRepo
	itemRepo       repos.ItemRepo
	groupRepo      repos.GroupRepo
	store          storage.Store
}

func NewLibraryService(
	db *gorm.DB,
	log *logger.Logger,
	libraryRepo repos.LibraryRepo,
	collectionRepo repos.CollectionRepo,
	itemRepo repos.ItemRepo,
	groupRepo repos.GroupRepo,
	store storage.Store,
) LibraryService {
	return &libraryService{
		db:             db,
		log:            log.With("service", "LibraryService"),
		libraryRepo:    libraryRepo,
		collectionRepo: collectionRepo,
		itemRepo:       itemRepo,
		groupRepo:      groupRepo,
		store:          store,
	}
}

// Create inserts the library and initializes its three special collections
// in one transaction: "unfiled items" for items without a collection, the
// "duplicates" searching collection, and the "bin".
func (ls *libraryService) Create(ctx context.Context, rd *requestdata.RequestData, library *types.Library) (*types.Library, error) {
	if library.Name == "" {
		return nil, apierr.New(400, "invalid_input", fmt.Errorf("library name must not be empty"))
	}
	library.ID = uuid.New()
	library.OwnerID = rd.UserID
	if library.GroupID != nil {
		if err := ls.requireGroupMembership(ctx, rd, *library.GroupID); err != nil {
			return nil, err
		}
	}

	if err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ls.libraryRepo.Create(ctx, tx, library); err != nil {
			return err
		}

		unfiled := &types.Collection{
			ID:       uuid.New(),
			Name:     types.CollectionNameUnfiled,
			ParentID: library.ID,
			Type:     types.CollectionTypeStandard,
		}
		duplicates := &types.Collection{
			ID:          uuid.New(),
			Name:        types.CollectionNameDuplicates,
			ParentID:    library.ID,
			Type:        types.CollectionTypeSearching,
			SearchQuery: datatypes.JSONMap{"duplicate": true},
		}
		bin := &types.Collection{
			ID:       uuid.New(),
			Name:     types.CollectionNameBin,
			ParentID: library.ID,
			Type:     types.CollectionTypeStandard,
		}
		for _, c := range []*types.Collection{unfiled, duplicates, bin} {
			if _, err := ls.collectionRepo.Create(ctx, tx, c); err != nil {
				return err
			}
		}

		if err := ls.libraryRepo.SetSpecialCollections(ctx, tx, library.ID, unfiled.ID, duplicates.ID, bin.ID); err != nil {
			return err
		}
		library.UnfiledItemsID = &unfiled.ID
		library.DuplicatesID = &duplicates.ID
		library.BinID = &bin.ID
		return nil
	}); err != nil {
		return nil, apierr.Translate(err)
	}
	return library, nil
}

// requireGroupMembership rejects binding a library to a group the caller
// does not belong to.
func (ls *libraryService) requireGroupMembership(ctx context.Context, rd *requestdata.RequestData, groupID uuid.UUID) error {
	group, err := ls.groupRepo.GetWithMembers(ctx, nil, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.New(400, "invalid_reference", fmt.Errorf("group does not exist"))
		}
		return err
	}
	if rd.IsAdmin() || group.Has(rd.UserID) {
		return nil
	}
	return apierr.Forbidden("not a member of this group")
}

func (ls *libraryService) Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Library, error) {
	return ls.RequireView(ctx, rd, id)
}

func (ls *libraryService) RequireView(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Library, error) {
	library, err := ls.libraryRepo.GetWithGroup(ctx, nil, id)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	if rd.IsAdmin() {
		return library, nil
	}
	ok, err := library.CanView(rd.UserID)
	if err != nil {
		if errors.Is(err, types.ErrGroupNotPopulated) {
			return nil, apierr.New(400, "invalid_reference", err)
		}
		return nil, err
	}
	if !ok {
		return nil, apierr.New(403, "forbidden", fmt.Errorf("no access to this library"))
	}
	return library, nil
}

func (ls *libraryService) List(ctx context.Context, rd *requestdata.RequestData, lq *query.ListQuery) ([]*types.Library, error) {
	if rd.IsAdmin() {
		return ls.libraryRepo.Find(ctx, nil, nil, lq)
	}
	return ls.libraryRepo.ListVisible(ctx, nil, rd.UserID, lq)
}

func (ls *libraryService) ListPublic(ctx context.Context, lq *query.ListQuery) ([]*types.Library, error) {
	return ls.libraryRepo.ListPublic(ctx, nil, lq)
}

func (ls *libraryService) Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.Library, error) {
	library, err := ls.RequireView(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	if !rd.IsAdmin() {
		ok, err := library.CanEdit(rd.UserID)
		if err != nil && !errors.Is(err, types.ErrNotMember) {
			return nil, err
		}
		if !ok {
			return nil, apierr.New(403, "forbidden", fmt.Errorf("no edit access to this library"))
		}
	}
	if groupID, ok := updates["group_id"].(uuid.UUID); ok {
		if err := ls.requireGroupMembership(ctx, rd, groupID); err != nil {
			return nil, err
		}
	}
	updated, err := ls.libraryRepo.UpdateByID(ctx, nil, id, updates)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return updated, nil
}

// Delete removes the library, its collections, items, attachments, notes
// and tags, then clears the stored files per item concurrently. Row cleanup
// is transactional; file cleanup is best effort afterwards.
func (ls *libraryService) Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error {
	library, err := ls.RequireView(ctx, rd, id)
	if err != nil {
		return err
	}
	if !rd.IsAdmin() && library.OwnerID != rd.UserID {
		ok, err := library.CanDelete(rd.UserID)
		if err != nil && !errors.Is(err, types.ErrNotMember) {
			return err
		}
		if !ok {
			return apierr.New(403, "forbidden", fmt.Errorf("no delete access to this library"))
		}
	}

	items, err := ls.itemRepo.Find(ctx, nil, map[string]any{"library_id": id}, &query.ListQuery{All: true})
	if err != nil {
		return fmt.Errorf("failed to list library items: %w", err)
	}

	if err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		itemIDs := make([]uuid.UUID, 0, len(items))
		for _, it := range items {
			itemIDs = append(itemIDs, it.ID)
		}
		if len(itemIDs) > 0 {
			if err := tx.Where("item_id IN ?", itemIDs).Delete(&types.Tag{}).Error; err != nil {
				return err
			}
			if err := tx.Where("item_id IN ? OR related_id IN ?", itemIDs, itemIDs).Delete(&types.ItemRelation{}).Error; err != nil {
				return err
			}
			if err := tx.Where("parent_id IN ?", itemIDs).Delete(&types.Attachment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("parent_kind = ? AND parent_id IN ?", types.NoteParentItem, itemIDs).Delete(&types.Note{}).Error; err != nil {
				return err
			}
			if err := tx.Where("library_id = ?", id).Delete(&types.Item{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("parent_kind = ? AND parent_id IN (SELECT id FROM collection WHERE parent_id = ?)",
			types.NoteParentCollection, id).Delete(&types.Note{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_id = ?", id).Delete(&types.Collection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&types.Library{}, "id = ?", id).Error
	}); err != nil {
		return apierr.Translate(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, it := range items {
		prefix := storage.ItemPrefix(it.ID)
		g.Go(func() error {
			if err := ls.store.DeletePrefix(gctx, prefix); err != nil {
				ls.log.Warn("failed to delete item files", "prefix", prefix, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return nil
}
