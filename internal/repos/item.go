package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/types"
)

type ItemRepo interface {
	Create(ctx context.Context, tx *gorm.DB, item *types.Item) (*types.Item, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, preloads ...string) (*types.Item, error)
	GetWithParent(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Item, error)
	Find(ctx context.Context, tx *gorm.DB, filter map[string]any, lq *ListQuery, preloads ...string) ([]*types.Item, error)
	ListByCollection(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, lq *ListQuery) ([]*types.Item, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) (*types.Item, error)
	Save(ctx context.Context, tx *gorm.DB, item *types.Item) (*types.Item, error)
	Delete(ctx context.Context, tx *gorm.DB, item *types.Item) error
	Relate(ctx context.Context, a, b *types.Item) error
	Unrelate(ctx context.Context, aID, bID uuid.UUID) error
}

type itemRepo struct {
	*Generic[types.Item]
}

func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return &itemRepo{Generic: NewGeneric[types.Item](db, baseLog, "ItemRepo")}
}

// GetWithParent loads the item with its collection, library, group and member
// list for permission evaluation.
func (ir *itemRepo) GetWithParent(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Item, error) {
	return ir.GetByID(ctx, tx, id, "Parent", "Parent.Parent", "Parent.Parent.Group", "Parent.Parent.Group.Members")
}

func (ir *itemRepo) ListByCollection(ctx context.Context, tx *gorm.DB, collectionID uuid.UUID, lq *ListQuery) ([]*types.Item, error) {
	return ir.Find(ctx, tx, map[string]any{"parent_id": collectionID}, lq)
}

// Relate records the relationship in both directions inside one transaction,
// so either both rows exist or neither does.
func (ir *itemRepo) Relate(ctx context.Context, a, b *types.Item) error {
	return ir.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		forward := &types.ItemRelation{ItemID: a.ID, RelatedID: b.ID, RelatedName: b.Name}
		if err := tx.Create(forward).Error; err != nil {
			return err
		}
		backward := &types.ItemRelation{ItemID: b.ID, RelatedID: a.ID, RelatedName: a.Name}
		return tx.Create(backward).Error
	})
}

func (ir *itemRepo) Unrelate(ctx context.Context, aID, bID uuid.UUID) error {
	return ir.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ? AND related_id = ?", aID, bID).
			Delete(&types.ItemRelation{}).Error; err != nil {
			return err
		}
		return tx.Where("item_id = ? AND related_id = ?", bID, aID).
			Delete(&types.ItemRelation{}).Error
	})
}
