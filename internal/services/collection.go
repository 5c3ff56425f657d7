package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/repos"
	"github.com/refera/refera-backend/internal/requestdata"
	"github.com/refera/refera-backend/internal/types"
)

type CollectionService interface {
	Create(ctx context.Context, rd *requestdata.RequestData, libraryID uuid.UUID, collection *types.Collection) (*types.Collection, error)
	Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Collection, error)
	List(ctx context.Context, rd *requestdata.RequestData, libraryID uuid.UUID, lq *query.ListQuery) ([]*types.Collection, error)
	Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.Collection, error)
	Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error

	// Items lists the contents of a collection. For a searching collection
	// that means running its stored query against the library.
	Items(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, lq *query.ListQuery) ([]*types.Item, error)

	// RequireView loads the collection with its parent chain and fails
	// unless the user may see the library it belongs to.
	RequireView(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Collection, error)
}

type collectionService struct {
	db             *gorm.DB
	log            *logger.Logger
	collectionRepo repos.CollectionRepo
	itemRepo       repos.ItemRepo
	libraries      LibraryService
}

func NewCollectionService(
	db *gorm.DB,
	log *logger.Logger,
	collectionRepo repos.CollectionRepo,
	itemRepo repos.ItemRepo,
	libraries LibraryService,
) CollectionService {
	return &collectionService{
		db:             db,
		log:            log.With("service", "CollectionService"),
		collectionRepo: collectionRepo,
		itemRepo:       itemRepo,
		libraries:      libraries,
	}
}

func (cs *collectionService) Create(ctx context.Context, rd *requestdata.RequestData, libraryID uuid.UUID, collection *types.Collection) (*types.Collection, error) {
	library, err := cs.libraries.RequireView(ctx, rd, libraryID)
	if err != nil {
		return nil, err
	}
	if !rd.IsAdmin() {
		ok, err := library.CanAdd(rd.UserID)
		if err != nil && !errors.Is(err, types.ErrNotMember) {
			return nil, err
		}
		if !ok {
			return nil, apierr.Forbidden("no add access to this library")
		}
	}
	if collection.Name == "" {
		return nil, apierr.BadRequest("collection name must not be empty")
	}
	collection.ID = uuid.New()
	collection.ParentID = libraryID
	if collection.Type == "" {
		collection.Type = types.CollectionTypeStandard
	}
	created, err := cs.collectionRepo.Create(ctx, nil, collection)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return created, nil
}

func (cs *collectionService) Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Collection, error) {
	return cs.RequireView(ctx, rd, id)
}

func (cs *collectionService) RequireView(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Collection, error) {
	collection, err := cs.collectionRepo.GetWithParent(ctx, nil, id)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	if collection.Parent == nil {
		return nil, apierr.New(400, "invalid_reference", fmt.Errorf("collection has no parent library"))
	}
	if rd.IsAdmin() {
		return collection, nil
	}
	ok, err := collection.CanView(rd.UserID)
	if err != nil {
		if errors.Is(err, types.ErrGroupNotPopulated) {
			return nil, apierr.New(400, "invalid_reference", err)
		}
		return nil, err
	}
	if !ok {
		return nil, apierr.Forbidden("no access to this collection")
	}
	return collection, nil
}

func (cs *collectionService) List(ctx context.Context, rd *requestdata.RequestData, libraryID uuid.UUID, lq *query.ListQuery) ([]*types.Collection, error) {
	if _, err := cs.libraries.RequireView(ctx, rd, libraryID); err != nil {
		return nil, err
	}
	return cs.collectionRepo.ListByLibrary(ctx, nil, libraryID, lq)
}

func (cs *collectionService) Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.Collection, error) {
	collection, err := cs.RequireView(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	if err := cs.requireEdit(rd, collection); err != nil {
		return nil, err
	}
	if cs.isSpecial(collection) {
		return nil, apierr.BadRequest("the special collections of a library cannot be edited")
	}
	// Updates bypass BeforeSave, so enforce the query invariant against the
	// loaded row here.
	if raw, ok := updates["search_query"]; ok {
		if !collection.IsSearching() {
			return nil, apierr.BadRequest("a plain collection cannot store a search query")
		}
		switch sq := raw.(type) {
		case datatypes.JSONMap:
			if len(sq) == 0 {
				return nil, apierr.BadRequest("a searching collection must store a search query")
			}
		case map[string]any:
			if len(sq) == 0 {
				return nil, apierr.BadRequest("a searching collection must store a search query")
			}
		default:
			return nil, apierr.BadRequest("search_query must be an object")
		}
	}
	updated, err := cs.collectionRepo.UpdateByID(ctx, nil, id, updates)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return updated, nil
}

// Delete removes a collection and moves its items to the library's unfiled
// collection rather than destroying them.
func (cs *collectionService) Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error {
	collection, err := cs.RequireView(ctx, rd, id)
	if err != nil {
		return err
	}
	library := collection.Parent
	if !rd.IsAdmin() && library.OwnerID != rd.UserID {
		ok, err := library.CanDelete(rd.UserID)
		if err != nil && !errors.Is(err, types.ErrNotMember) {
			return err
		}
		if !ok {
			return apierr.Forbidden("no delete access to this library")
		}
	}
	if cs.isSpecial(collection) {
		return apierr.BadRequest("the special collections of a library cannot be deleted")
	}

	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if library.UnfiledItemsID != nil && !collection.IsSearching() {
			if err := tx.Model(&types.Item{}).
				Where("parent_id = ?", collection.ID).
				Update("parent_id", *library.UnfiledItemsID).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("parent_kind = ? AND parent_id = ?", types.NoteParentCollection, collection.ID).
			Delete(&types.Note{}).Error; err != nil {
			return err
		}
		return cs.collectionRepo.Delete(ctx, tx, collection)
	})
}

func (cs *collectionService) Items(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, lq *query.ListQuery) ([]*types.Item, error) {
	collection, err := cs.RequireView(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	if collection.IsSearching() {
		return cs.collectionRepo.SearchItems(ctx, nil, collection, lq)
	}
	return cs.itemRepo.ListByCollection(ctx, nil, id, lq)
}

func (cs *collectionService) requireEdit(rd *requestdata.RequestData, collection *types.Collection) error {
	if rd.IsAdmin() {
		return nil
	}
	ok, err := collection.CanEdit(rd.UserID)
	if err != nil && !errors.Is(err, types.ErrNotMember) {
		return err
	}
	if !ok {
		return apierr.Forbidden("no edit access to this collection")
	}
	return nil
}

func (cs *collectionService) isSpecial(collection *types.Collection) bool {
	library := collection.Parent
	if library == nil {
		return false
	}
	for _, id := range []*uuid.UUID{library.UnfiledItemsID, library.DuplicatesID, library.BinID} {
		if id != nil && *id == collection.ID {
			return true
		}
	}
	return false
}
