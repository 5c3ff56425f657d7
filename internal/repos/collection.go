package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/types"
)

type CollectionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, collection *types.Collection) (*types.Collection, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, preloads ...string) (*types.Collection, error)
	GetWithParent(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Collection, error)
	Find(ctx context.Context, tx *gorm.DB, filter map[string]any, lq *ListQuery, preloads ...string) ([]*types.Collection, error)
	ListByLibrary(ctx context.Context, tx *gorm.DB, libraryID uuid.UUID, lq *ListQuery) ([]*types.Collection, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) (*types.Collection, error)
	Save(ctx context.Context, tx *gorm.DB, collection *types.Collection) (*types.Collection, error)
	Delete(ctx context.Context, tx *gorm.DB, collection *types.Collection) error
	SearchItems(ctx context.Context, tx *gorm.DB, collection *types.Collection, lq *ListQuery) ([]*types.Item, error)
}

type collectionRepo struct {
	*Generic[types.Collection]
}

func NewCollectionRepo(db *gorm.DB, baseLog *logger.Logger) CollectionRepo {
	return &collectionRepo{Generic: NewGeneric[types.Collection](db, baseLog, "CollectionRepo")}
}

// GetWithParent loads the collection together with its library, group and
// member list so permission checks can walk the full chain.
func (cr *collectionRepo) GetWithParent(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Collection, error) {
	return cr.GetByID(ctx, tx, id, "Parent", "Parent.Group", "Parent.Group.Members")
}

func (cr *collectionRepo) ListByLibrary(ctx context.Context, tx *gorm.DB, libraryID uuid.UUID, lq *ListQuery) ([]*types.Collection, error) {
	return cr.Find(ctx, tx, map[string]any{"parent_id": libraryID}, lq)
}

// SearchItems materializes the stored query of a searching collection against
// the items of its library. The "duplicate" key selects items whose name
// occurs under more than one collection of the same library; every other key
// is matched against item columns directly.
func (cr *collectionRepo) SearchItems(ctx context.Context, tx *gorm.DB, collection *types.Collection, lq *ListQuery) ([]*types.Item, error) {
	items := []*types.Item{}
	q := cr.conn(tx).WithContext(ctx).
		Model(&types.Item{}).
		Where(`"item"."library_id" = ?`, collection.ParentID)

	for key, value := range collection.SearchQuery {
		if key == "duplicate" {
			if enabled, ok := value.(bool); ok && enabled {
				q = q.Where(`"item"."name" IN (
					SELECT "name" FROM "item"
					WHERE "library_id" = ?
					GROUP BY "name"
					HAVING COUNT(DISTINCT "parent_id") > 1)`, collection.ParentID)
			}
			continue
		}
		q = q.Where(map[string]any{key: value})
	}

	if lq != nil {
		q = lq.Apply(q)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
