package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/types"
)

type AttachmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attachment *types.Attachment) (*types.Attachment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, preloads ...string) (*types.Attachment, error)
	GetWithParent(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Attachment, error)
	Find(ctx context.Context, tx *gorm.DB, filter map[string]any, lq *ListQuery, preloads ...string) ([]*types.Attachment, error)
	ListByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, lq *ListQuery) ([]*types.Attachment, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) (*types.Attachment, error)
	Save(ctx context.Context, tx *gorm.DB, attachment *types.Attachment) (*types.Attachment, error)
	Delete(ctx context.Context, tx *gorm.DB, attachment *types.Attachment) error
}

type attachmentRepo struct {
	*Generic[types.Attachment]
}

func NewAttachmentRepo(db *gorm.DB, baseLog *logger.Logger) AttachmentRepo {
	return &attachmentRepo{Generic: NewGeneric[types.Attachment](db, baseLog, "AttachmentRepo")}
}

func (ar *attachmentRepo) GetWithParent(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Attachment, error) {
	return ar.GetByID(ctx, tx, id,
		"Parent", "Parent.Parent", "Parent.Parent.Parent",
		"Parent.Parent.Parent.Group", "Parent.Parent.Parent.Group.Members")
}

func (ar *attachmentRepo) ListByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, lq *ListQuery) ([]*types.Attachment, error) {
	return ar.Find(ctx, tx, map[string]any{"parent_id": itemID}, lq)
}
