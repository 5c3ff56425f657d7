package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/repos"
	"github.com/refera/refera-backend/internal/requestdata"
	"github.com/refera/refera-backend/internal/storage"
	"github.com/refera/refera-backend/internal/types"
)

type AttachmentService interface {
	Upload(ctx context.Context, rd *requestdata.RequestData, itemID uuid.UUID, attachment *types.Attachment, file io.Reader) (*types.Attachment, error)
	Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Attachment, error)
	List(ctx context.Context, rd *requestdata.RequestData, itemID uuid.UUID, lq *query.ListQuery) ([]*types.Attachment, error)
	Download(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Attachment, io.ReadCloser, error)
	Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.Attachment, error)
	Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error
	SetPrimary(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Item, error)
}

type attachmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	attachmentRepo repos.AttachmentRepo
	typeRepo       repos.AttachmentTypeRepo
	itemRepo       repos.ItemRepo
	items          ItemService
	store          storage.Store
}

func NewAttachmentService(
	db *gorm.DB,
	log *logger.Logger,
	attachmentRepo repos.AttachmentRepo,
	typeRepo repos.AttachmentTypeRepo,
	itemRepo repos.ItemRepo,
	items ItemService,
	store storage.Store,
) AttachmentService {
	return &attachmentService{
		db:             db,
		log:            log.With("service", "AttachmentService"),
		attachmentRepo: attachmentRepo,
		typeRepo:       typeRepo,
		itemRepo:       itemRepo,
		items:          items,
		store:          store,
	}
}

// Upload stores the file and its row. The storage key embeds the type and
// original filename, so re-uploading the same pair replaces the file.
func (s *attachmentService) Upload(ctx context.Context, rd *requestdata.RequestData, itemID uuid.UUID, attachment *types.Attachment, file io.Reader) (*types.Attachment, error) {
	item, err := s.items.RequireView(ctx, rd, itemID)
	if err != nil {
		return nil, err
	}
	library := item.Parent.Parent
	if !rd.IsAdmin() {
		ok, err := library.CanAdd(rd.UserID)
		if err != nil && !errors.Is(err, types.ErrNotMember) {
			return nil, err
		}
		if !ok {
			return nil, apierr.Forbidden("no add access to this library")
		}
	}
	if attachment.Name == "" {
		return nil, apierr.BadRequest("attachment name must not be empty")
	}
	if attachment.Filename == "" {
		attachment.Filename = attachment.Name
	}

	typeName := "file"
	if attachment.TypeID != nil {
		at, err := s.typeRepo.GetByID(ctx, nil, *attachment.TypeID)
		if err != nil {
			return nil, apierr.New(400, "invalid_reference", fmt.Errorf("no such attachment type"))
		}
		typeName = at.Name
	}

	key := storage.AttachmentKey(itemID, typeName, attachment.Filename)
	if err := s.store.Upload(ctx, key, file); err != nil {
		return nil, fmt.Errorf("failed to store attachment file: %w", err)
	}

	attachment.ID = uuid.New()
	attachment.ParentID = itemID
	attachment.URL = s.store.PublicURL(key)
	created, err := s.attachmentRepo.Create(ctx, nil, attachment)
	if err != nil {
		// The row failed, drop the stored file again.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn("failed to clean up orphaned file", "key", key, "error", delErr)
		}
		return nil, apierr.Translate(err)
	}
	return created, nil
}

func (s *attachmentService) Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Attachment, error) {
	attachment, err := s.requireView(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *attachmentService) List(ctx context.Context, rd *requestdata.RequestData, itemID uuid.UUID, lq *query.ListQuery) ([]*types.Attachment, error) {
	if _, err := s.items.RequireView(ctx, rd, itemID); err != nil {
		return nil, err
	}
	return s.attachmentRepo.ListByItem(ctx, nil, itemID, lq)
}

func (s *attachmentService) Download(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Attachment, io.ReadCloser, error) {
	attachment, err := s.requireView(ctx, rd, id)
	if err != nil {
		return nil, nil, err
	}
	typeName := "file"
	if attachment.TypeID != nil {
		if at, err := s.typeRepo.GetByID(ctx, nil, *attachment.TypeID); err == nil {
			typeName = at.Name
		}
	}
	key := storage.AttachmentKey(attachment.ParentID, typeName, attachment.Filename)
	r, err := s.store.Download(ctx, key)
	if err != nil {
		return nil, nil, apierr.NotFound("attachment file is missing")
	}
	return attachment, r, nil
}

func (s *attachmentService) Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.Attachment, error) {
	attachment, err := s.requireView(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireEdit(rd, attachment); err != nil {
		return nil, err
	}
	updated, err := s.attachmentRepo.UpdateByID(ctx, nil, id, updates)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return updated, nil
}

func (s *attachmentService) Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error {
	attachment, err := s.requireView(ctx, rd, id)
	if err != nil {
		return err
	}
	library := attachment.Parent.Parent.Parent
	if !rd.IsAdmin() && library.OwnerID != rd.UserID {
		ok, err := library.CanDelete(rd.UserID)
		if err != nil && !errors.Is(err, types.ErrNotMember) {
			return err
		}
		if !ok {
			return apierr.Forbidden("no delete access to this library")
		}
	}

	typeName := "file"
	if attachment.TypeID != nil {
		if at, err := s.typeRepo.GetByID(ctx, nil, *attachment.TypeID); err == nil {
			typeName = at.Name
		}
	}
	key := storage.AttachmentKey(attachment.ParentID, typeName, attachment.Filename)

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Unset as primary attachment if it is one.
		if err := tx.Model(&types.Item{}).
			Where("primary_attachment_id = ?", id).
			Update("primary_attachment_id", nil).Error; err != nil {
			return err
		}
		return s.attachmentRepo.Delete(ctx, tx, attachment)
	}); err != nil {
		return apierr.Translate(err)
	}

	if err := s.store.Delete(ctx, key); err != nil {
		s.log.Warn("failed to delete attachment file", "key", key, "error", err)
	}
	return nil
}

// SetPrimary marks this attachment as its item's primary one.
func (s *attachmentService) SetPrimary(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Item, error) {
	attachment, err := s.requireView(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireEdit(rd, attachment); err != nil {
		return nil, err
	}
	item, err := s.itemRepo.UpdateByID(ctx, nil, attachment.ParentID, map[string]any{"primary_attachment_id": id})
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return item, nil
}

func (s *attachmentService) requireView(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Attachment, error) {
	attachment, err := s.attachmentRepo.GetWithParent(ctx, nil, id)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	if attachment.Parent == nil || attachment.Parent.Parent == nil || attachment.Parent.Parent.Parent == nil {
		return nil, apierr.New(400, "invalid_reference", fmt.Errorf("attachment has no parent chain"))
	}
	if rd.IsAdmin() {
		return attachment, nil
	}
	ok, err := attachment.CanView(rd.UserID)
	if err != nil {
		if errors.Is(err, types.ErrGroupNotPopulated) {
			return nil, apierr.New(400, "invalid_reference", err)
		}
		return nil, err
	}
	if !ok {
		return nil, apierr.Forbidden("no access to this attachment")
	}
	return attachment, nil
}

func (s *attachmentService) requireEdit(rd *requestdata.RequestData, attachment *types.Attachment) error {
	if rd.IsAdmin() {
		return nil
	}
	ok, err := attachment.CanEdit(rd.UserID)
	if err != nil && !errors.Is(err, types.ErrNotMember) {
		return err
	}
	if !ok {
		return apierr.Forbidden("no edit access to this attachment")
	}
	return nil
}
