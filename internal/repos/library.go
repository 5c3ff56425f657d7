package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/types"
)

type LibraryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, library *types.Library) (*types.Library, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, preloads ...string) (*types.Library, error)
	GetWithGroup(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Library, error)
	Find(ctx context.Context, tx *gorm.DB, filter map[string]any, lq *ListQuery, preloads ...string) ([]*types.Library, error)
	ListVisible(ctx context.Context, tx *gorm.DB, userID uuid.UUID, lq *ListQuery) ([]*types.Library, error)
	ListPublic(ctx context.Context, tx *gorm.DB, lq *ListQuery) ([]*types.Library, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) (*types.Library, error)
	Save(ctx context.Context, tx *gorm.DB, library *types.Library) (*types.Library, error)
	Delete(ctx context.Context, tx *gorm.DB, library *types.Library) error
	SetSpecialCollections(ctx context.Context, tx *gorm.DB, id uuid.UUID, unfiled, duplicates, bin uuid.UUID) error
}

type libraryRepo struct {
	*Generic[types.Library]
}

func NewLibraryRepo(db *gorm.DB, baseLog *logger.Logger) LibraryRepo {
	return &libraryRepo{Generic: NewGeneric[types.Library](db, baseLog, "LibraryRepo")}
}

// GetWithGroup loads the library together with its group and member list so
// the permission cascade can be evaluated without further queries.
func (lr *libraryRepo) GetWithGroup(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Library, error) {
	return lr.GetByID(ctx, tx, id, "Group", "Group.Members")
}

// ListVisible returns libraries the user owns, libraries of groups the user
// belongs to, and public libraries of those groups.
func (lr *libraryRepo) ListVisible(ctx context.Context, tx *gorm.DB, userID uuid.UUID, lq *ListQuery) ([]*types.Library, error) {
	results := []*types.Library{}
	q := lr.conn(tx).WithContext(ctx).
		Model(&types.Library{}).
		Where(`"library"."owner_id" = ?
			OR "library"."group_id" IN (SELECT "group_id" FROM "group_member" WHERE "user_id" = ?)
			OR "library"."group_id" IN (SELECT "id" FROM "group" WHERE "owner_id" = ?)`,
			userID, userID, userID)
	if lq != nil {
		q = lq.Apply(q)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (lr *libraryRepo) ListPublic(ctx context.Context, tx *gorm.DB, lq *ListQuery) ([]*types.Library, error) {
	return lr.Find(ctx, tx, map[string]any{"private": false}, lq)
}

func (lr *libraryRepo) SetSpecialCollections(ctx context.Context, tx *gorm.DB, id uuid.UUID, unfiled, duplicates, bin uuid.UUID) error {
	return lr.conn(tx).WithContext(ctx).
		Model(&types.Library{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"unfiled_items_id": unfiled,
			"duplicates_id":    duplicates,
			"bin_id":           bin,
		}).Error
}
