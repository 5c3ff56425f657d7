package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/types"
)

type AttachmentTypeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, at *types.AttachmentType) (*types.AttachmentType, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, preloads ...string) (*types.AttachmentType, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.AttachmentType, error)
	Find(ctx context.Context, tx *gorm.DB, filter map[string]any, lq *ListQuery, preloads ...string) ([]*types.AttachmentType, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) (*types.AttachmentType, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type attachmentTypeRepo struct {
	*Generic[types.AttachmentType]
}

func NewAttachmentTypeRepo(db *gorm.DB, baseLog *logger.Logger) AttachmentTypeRepo {
	return &attachmentTypeRepo{Generic: NewGeneric[types.AttachmentType](db, baseLog, "AttachmentTypeRepo")}
}

func (ar *attachmentTypeRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.AttachmentType, error) {
	at := &types.AttachmentType{}
	if err := ar.conn(tx).WithContext(ctx).Where("name = ?", name).First(at).Error; err != nil {
		return nil, err
	}
	return at, nil
}
