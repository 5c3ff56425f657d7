package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/repos"
	"github.com/refera/refera-backend/internal/requestdata"
	"github.com/refera/refera-backend/internal/types"
)

// AttachmentTypeService manages the shared catalog of attachment types.
// Everyone may read it; only admins may change it.
type AttachmentTypeService interface {
	Create(ctx context.Context, rd *requestdata.RequestData, at *types.AttachmentType) (*types.AttachmentType, error)
	Get(ctx context.Context, id uuid.UUID) (*types.AttachmentType, error)
	List(ctx context.Context, lq *query.ListQuery) ([]*types.AttachmentType, error)
	Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.AttachmentType, error)
	Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error
}

type attachmentTypeService struct {
	db       *gorm.DB
	log      *logger.Logger
	typeRepo repos.AttachmentTypeRepo
}

func NewAttachmentTypeService(db *gorm.DB, log *logger.Logger, typeRepo repos.AttachmentTypeRepo) AttachmentTypeService {
	return &attachmentTypeService{
		db:       db,
		log:      log.With("service", "AttachmentTypeService"),
		typeRepo: typeRepo,
	}
}

func (s *attachmentTypeService) Create(ctx context.Context, rd *requestdata.RequestData, at *types.AttachmentType) (*types.AttachmentType, error) {
	if !rd.IsAdmin() {
		return nil, apierr.Forbidden("only admins may manage attachment types")
	}
	if at.Name == "" {
		return nil, apierr.BadRequest("attachment type name must not be empty")
	}
	at.ID = uuid.New()
	created, err := s.typeRepo.Create(ctx, nil, at)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return created, nil
}

func (s *attachmentTypeService) Get(ctx context.Context, id uuid.UUID) (*types.AttachmentType, error) {
	at, err := s.typeRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return at, nil
}

func (s *attachmentTypeService) List(ctx context.Context, lq *query.ListQuery) ([]*types.AttachmentType, error) {
	return s.typeRepo.Find(ctx, nil, nil, lq)
}

func (s *attachmentTypeService) Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.AttachmentType, error) {
	if !rd.IsAdmin() {
		return nil, apierr.Forbidden("only admins may manage attachment types")
	}
	at, err := s.typeRepo.UpdateByID(ctx, nil, id, updates)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return at, nil
}

func (s *attachmentTypeService) Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error {
	if !rd.IsAdmin() {
		return apierr.Forbidden("only admins may manage attachment types")
	}
	if err := s.typeRepo.DeleteByID(ctx, nil, id); err != nil {
		return apierr.Translate(err)
	}
	return nil
}
