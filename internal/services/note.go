package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/repos"
	"github.com/refera/refera-backend/internal/requestdata"
	"github.com/refera/refera-backend/internal/types"
)

type NoteService interface {
	Create(ctx context.Context, rd *requestdata.RequestData, kind string, parentID uuid.UUID, text string) (*types.Note, error)
	Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Note, error)
	List(ctx context.Context, rd *requestdata.RequestData, kind string, parentID uuid.UUID, lq *query.ListQuery) ([]*types.Note, error)
	Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, text string) (*types.Note, error)
	Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error
}

type noteService struct {
	db       *gorm.DB
	log      *logger.Logger
	noteRepo repos.NoteRepo
}

func NewNoteService(db *gorm.DB, log *logger.Logger, noteRepo repos.NoteRepo) NoteService {
	return &noteService{
		db:       db,
		log:      log.With("service", "NoteService"),
		noteRepo: noteRepo,
	}
}

func (ns *noteService) Create(ctx context.Context, rd *requestdata.RequestData, kind string, parentID uuid.UUID, text string) (*types.Note, error) {
	if kind != types.NoteParentItem && kind != types.NoteParentCollection {
		return nil, apierr.BadRequest("unknown note parent kind %q", kind)
	}
	note := &types.Note{
		ID:         uuid.New(),
		ParentKind: kind,
		ParentID:   parentID,
		Text:       text,
	}
	if err := ns.noteRepo.PopulateParent(ctx, nil, note); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(400, "invalid_reference", fmt.Errorf("note parent does not exist"))
		}
		return nil, err
	}
	if err := ns.requireEdit(rd, note); err != nil {
		return nil, err
	}
	created, err := ns.noteRepo.Create(ctx, nil, note)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return created, nil
}

func (ns *noteService) Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Note, error) {
	note, err := ns.requireView(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (ns *noteService) List(ctx context.Context, rd *requestdata.RequestData, kind string, parentID uuid.UUID, lq *query.ListQuery) ([]*types.Note, error) {
	// One permission walk for the shared parent covers every note under it.
	scope := &types.Note{ParentKind: kind, ParentID: parentID}
	if err := ns.noteRepo.PopulateParent(ctx, nil, scope); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(400, "invalid_reference", fmt.Errorf("note parent does not exist"))
		}
		return nil, err
	}
	if err := ns.checkView(rd, scope); err != nil {
		return nil, err
	}
	return ns.noteRepo.ListByParent(ctx, nil, kind, parentID, lq)
}

func (ns *noteService) Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, text string) (*types.Note, error) {
	note, err := ns.requireView(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	if err := ns.requireEdit(rd, note); err != nil {
		return nil, err
	}
	updated, err := ns.noteRepo.UpdateByID(ctx, nil, id, map[string]any{"text": text})
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return updated, nil
}

func (ns *noteService) Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error {
	note, err := ns.requireView(ctx, rd, id)
	if err != nil {
		return err
	}
	if err := ns.requireEdit(rd, note); err != nil {
		return err
	}
	if err := ns.noteRepo.DeleteByID(ctx, nil, id); err != nil {
		return apierr.Translate(err)
	}
	return nil
}

func (ns *noteService) requireView(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Note, error) {
	note, err := ns.noteRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	if err := ns.noteRepo.PopulateParent(ctx, nil, note); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(400, "invalid_reference", fmt.Errorf("note parent does not exist"))
		}
		return nil, err
	}
	if err := ns.checkView(rd, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (ns *noteService) checkView(rd *requestdata.RequestData, note *types.Note) error {
	if rd.IsAdmin() {
		return nil
	}
	ok, err := note.CanView(rd.UserID)
	if err != nil {
		if errors.Is(err, types.ErrGroupNotPopulated) {
			return apierr.New(400, "invalid_reference", err)
		}
		return err
	}
	if !ok {
		return apierr.Forbidden("no access to this note")
	}
	return nil
}

func (ns *noteService) requireEdit(rd *requestdata.RequestData, note *types.Note) error {
	if rd.IsAdmin() {
		return nil
	}
	ok, err := note.CanEdit(rd.UserID)
	if err != nil {
		if errors.Is(err, types.ErrGroupNotPopulated) {
			return apierr.New(400, "invalid_reference", err)
		}
		if errors.Is(err, types.ErrNotMember) {
			return apierr.Forbidden("no edit access to this note")
		}
		return err
	}
	if !ok {
		return apierr.Forbidden("no edit access to this note")
	}
	return nil
}
