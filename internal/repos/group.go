package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/types"
)

type GroupRepo interface {
	Create(ctx context.Context, tx *gorm.DB, group *types.Group) (*types.Group, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, preloads ...string) (*types.Group, error)
	GetWithMembers(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Group, error)
	Find(ctx context.Context, tx *gorm.DB, filter map[string]any, lq *ListQuery, preloads ...string) ([]*types.Group, error)
	ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, lq *ListQuery) ([]*types.Group, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) (*types.Group, error)
	Save(ctx context.Context, tx *gorm.DB, group *types.Group) (*types.Group, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	GetMember(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) (*types.GroupMember, error)
	AddMember(ctx context.Context, tx *gorm.DB, member *types.GroupMember) (*types.GroupMember, error)
	UpdateMember(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID, updates map[string]any) (*types.GroupMember, error)
	RemoveMember(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) error
}

type groupRepo struct {
	*Generic[types.Group]
}

func NewGroupRepo(db *gorm.DB, baseLog *logger.Logger) GroupRepo {
	return &groupRepo{Generic: NewGeneric[types.Group](db, baseLog, "GroupRepo")}
}

func (gr *groupRepo) GetWithMembers(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Group, error) {
	return gr.GetByID(ctx, tx, id, "Members")
}

// ListForUser returns groups the user owns or belongs to.
func (gr *groupRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, lq *ListQuery) ([]*types.Group, error) {
	results := []*types.Group{}
	q := gr.conn(tx).WithContext(ctx).
		Model(&types.Group{}).
		Where(`"group"."owner_id" = ? OR "group"."id" IN (SELECT "group_id" FROM "group_member" WHERE "user_id" = ?)`, userID, userID)
	if lq != nil {
		q = lq.Apply(q)
	}
	if err := q.Preload("Members").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (gr *groupRepo) GetMember(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) (*types.GroupMember, error) {
	var member types.GroupMember
	if err := gr.conn(tx).WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (gr *groupRepo) AddMember(ctx context.Context, tx *gorm.DB, member *types.GroupMember) (*types.GroupMember, error) {
	if err := gr.conn(tx).WithContext(ctx).Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func (gr *groupRepo) UpdateMember(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID, updates map[string]any) (*types.GroupMember, error) {
	res := gr.conn(tx).WithContext(ctx).
		Model(&types.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return gr.GetMember(ctx, tx, groupID, userID)
}

func (gr *groupRepo) RemoveMember(ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) error {
	res := gr.conn(tx).WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&types.GroupMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
