package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/types"
)

type TagRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tag *types.Tag) (*types.Tag, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, preloads ...string) (*types.Tag, error)
	Find(ctx context.Context, tx *gorm.DB, filter map[string]any, lq *ListQuery, preloads ...string) ([]*types.Tag, error)
	ListByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, lq *ListQuery) ([]*types.Tag, error)
	ListByItems(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.Tag, error)
	ListByLibrary(ctx context.Context, tx *gorm.DB, libraryID uuid.UUID) ([]*types.Tag, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Tag, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) (*types.Tag, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type tagRepo struct {
	*Generic[types.Tag]
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return &tagRepo{Generic: NewGeneric[types.Tag](db, baseLog, "TagRepo")}
}

func (tr *tagRepo) ListByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, lq *ListQuery) ([]*types.Tag, error) {
	return tr.Find(ctx, tx, map[string]any{"item_id": itemID}, lq)
}

func (tr *tagRepo) ListByItems(ctx context.Context, tx *gorm.DB, itemIDs []uuid.UUID) ([]*types.Tag, error) {
	tags := []*types.Tag{}
	if len(itemIDs) == 0 {
		return tags, nil
	}
	err := tr.conn(tx).WithContext(ctx).
		Where(`"item_id" IN ?`, itemIDs).
		Order(`"name"`).
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// ListByLibrary returns the tags used across a library's items, one row per
// name (the first color wins, as on the per-item unique index).
func (tr *tagRepo) ListByLibrary(ctx context.Context, tx *gorm.DB, libraryID uuid.UUID) ([]*types.Tag, error) {
	tags := []*types.Tag{}
	err := tr.conn(tx).WithContext(ctx).
		Model(&types.Tag{}).
		Select(`DISTINCT ON ("tag"."name") "tag".*`).
		Joins(`JOIN "item" ON "item"."id" = "tag"."item_id" AND "item"."deleted_at" IS NULL`).
		Where(`"item"."library_id" = ?`, libraryID).
		Order(`"tag"."name"`).
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// ListByOwner returns the tags used across the items of every library the
// user owns, one row per name.
func (tr *tagRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Tag, error) {
	tags := []*types.Tag{}
	err := tr.conn(tx).WithContext(ctx).
		Model(&types.Tag{}).
		Select(`DISTINCT ON ("tag"."name") "tag".*`).
		Joins(`JOIN "item" ON "item"."id" = "tag"."item_id" AND "item"."deleted_at" IS NULL`).
		Joins(`JOIN "library" ON "library"."id" = "item"."library_id" AND "library"."deleted_at" IS NULL`).
		Where(`"library"."owner_id" = ?`, ownerID).
		Order(`"tag"."name"`).
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}
