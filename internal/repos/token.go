package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/types"
)

type RevokedTokenRepo interface {
	Add(ctx context.Context, tx *gorm.DB, token *types.RevokedToken) (*types.RevokedToken, error)
	IsRevoked(ctx context.Context, tx *gorm.DB, token string) (bool, error)
	PurgeExpired(ctx context.Context, tx *gorm.DB) (int64, error)
}

type revokedTokenRepo struct {
	*Generic[types.RevokedToken]
}

func NewRevokedTokenRepo(db *gorm.DB, baseLog *logger.Logger) RevokedTokenRepo {
	return &revokedTokenRepo{Generic: NewGeneric[types.RevokedToken](db, baseLog, "RevokedTokenRepo")}
}

func (rr *revokedTokenRepo) Add(ctx context.Context, tx *gorm.DB, token *types.RevokedToken) (*types.RevokedToken, error) {
	return rr.Create(ctx, tx, token)
}

func (rr *revokedTokenRepo) IsRevoked(ctx context.Context, tx *gorm.DB, token string) (bool, error) {
	var count int64
	if err := rr.conn(tx).WithContext(ctx).
		Model(&types.RevokedToken{}).
		Where("token = ?", token).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (rr *revokedTokenRepo) PurgeExpired(ctx context.Context, tx *gorm.DB) (int64, error) {
	res := rr.conn(tx).WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&types.RevokedToken{})
	return res.RowsAffected, res.Error
}
