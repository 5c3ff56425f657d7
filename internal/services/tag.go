package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/repos"
	"github.com/refera/refera-backend/internal/requestdata"
	"github.com/refera/refera-backend/internal/types"
)

type TagService interface {
	Create(ctx context.Context, rd *requestdata.RequestData, itemID uuid.UUID, name, color string) (*types.Tag, error)
	List(ctx context.Context, rd *requestdata.RequestData, itemID uuid.UUID, lq *query.ListQuery) ([]*types.Tag, error)
	ListForUser(ctx context.Context, rd *requestdata.RequestData) ([]*types.Tag, error)
	ListForLibrary(ctx context.Context, rd *requestdata.RequestData, libraryID uuid.UUID) ([]*types.Tag, error)
	ListForCollection(ctx context.Context, rd *requestdata.RequestData, collectionID uuid.UUID) ([]*types.Tag, error)
	Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.Tag, error)
	Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error
}

type tagService struct {
	db          *gorm.DB
	log         *logger.Logger
	tagRepo     repos.TagRepo
	items       ItemService
	libraries   LibraryService
	collections CollectionService
}

func NewTagService(db *gorm.DB, log *logger.Logger, tagRepo repos.TagRepo, items ItemService, libraries LibraryService, collections CollectionService) TagService {
	return &tagService{
		db:          db,
		log:         log.With("service", "TagService"),
		tagRepo:     tagRepo,
		items:       items,
		libraries:   libraries,
		collections: collections,
	}
}

func (ts *tagService) Create(ctx context.Context, rd *requestdata.RequestData, itemID uuid.UUID, name, color string) (*types.Tag, error) {
	if name == "" {
		return nil, apierr.BadRequest("tag name must not be empty")
	}
	item, err := ts.items.RequireView(ctx, rd, itemID)
	if err != nil {
		return nil, err
	}
	if !rd.IsAdmin() {
		ok, err := item.Parent.Parent.CanAdd(rd.UserID)
		if err != nil && !errors.Is(err, types.ErrNotMember) {
			return nil, err
		}
		if !ok {
			return nil, apierr.Forbidden("no add access to this library")
		}
	}
	if color == "" {
		color = types.DefaultTagColor
	}
	tag, err := ts.tagRepo.Create(ctx, nil, &types.Tag{
		ID:     uuid.New(),
		ItemID: itemID,
		Name:   name,
		Color:  color,
	})
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return tag, nil
}

func (ts *tagService) List(ctx context.Context, rd *requestdata.RequestData, itemID uuid.UUID, lq *query.ListQuery) ([]*types.Tag, error) {
	if _, err := ts.items.RequireView(ctx, rd, itemID); err != nil {
		return nil, err
	}
	return ts.tagRepo.ListByItem(ctx, nil, itemID, lq)
}

// ListForUser returns every tag name in use across the caller's own
// libraries, so clients can offer existing names for reuse.
func (ts *tagService) ListForUser(ctx context.Context, rd *requestdata.RequestData) ([]*types.Tag, error) {
	return ts.tagRepo.ListByOwner(ctx, nil, rd.UserID)
}

func (ts *tagService) ListForLibrary(ctx context.Context, rd *requestdata.RequestData, libraryID uuid.UUID) ([]*types.Tag, error) {
	if _, err := ts.libraries.RequireView(ctx, rd, libraryID); err != nil {
		return nil, err
	}
	return ts.tagRepo.ListByLibrary(ctx, nil, libraryID)
}

// ListForCollection materializes the collection's items first, so searching
// collections report the tags of their current matches.
func (ts *tagService) ListForCollection(ctx context.Context, rd *requestdata.RequestData, collectionID uuid.UUID) ([]*types.Tag, error) {
	items, err := ts.collections.Items(ctx, rd, collectionID, &query.ListQuery{All: true})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ts.tagRepo.ListByItems(ctx, nil, ids)
}

func (ts *tagService) Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.Tag, error) {
	tag, err := ts.tagRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	if err := ts.requireEdit(ctx, rd, tag.ItemID); err != nil {
		return nil, err
	}
	updated, err := ts.tagRepo.UpdateByID(ctx, nil, id, updates)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return updated, nil
}

func (ts *tagService) Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error {
	tag, err := ts.tagRepo.GetByID(ctx, nil, id)
	if err != nil {
		return apierr.Translate(err)
	}
	if err := ts.requireEdit(ctx, rd, tag.ItemID); err != nil {
		return err
	}
	if err := ts.tagRepo.DeleteByID(ctx, nil, id); err != nil {
		return apierr.Translate(err)
	}
	return nil
}

func (ts *tagService) requireEdit(ctx context.Context, rd *requestdata.RequestData, itemID uuid.UUID) error {
	item, err := ts.items.RequireView(ctx, rd, itemID)
	if err != nil {
		return err
	}
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
