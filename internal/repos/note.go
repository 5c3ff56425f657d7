package repos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/types"
)

type NoteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, note *types.Note) (*types.Note, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, preloads ...string) (*types.Note, error)
	Find(ctx context.Context, tx *gorm.DB, filter map[string]any, lq *ListQuery, preloads ...string) ([]*types.Note, error)
	ListByParent(ctx context.Context, tx *gorm.DB, kind string, parentID uuid.UUID, lq *ListQuery) ([]*types.Note, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) (*types.Note, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	PopulateParent(ctx context.Context, tx *gorm.DB, note *types.Note) error
}

type noteRepo struct {
	*Generic[types.Note]
}

func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return &noteRepo{Generic: NewGeneric[types.Note](db, baseLog, "NoteRepo")}
}

func (nr *noteRepo) ListByParent(ctx context.Context, tx *gorm.DB, kind string, parentID uuid.UUID, lq *ListQuery) ([]*types.Note, error) {
	return nr.Find(ctx, tx, map[string]any{"parent_kind": kind, "parent_id": parentID}, lq)
}

// PopulateParent resolves the note's parent, loading enough of the chain
// above it for permission checks.
func (nr *noteRepo) PopulateParent(ctx context.Context, tx *gorm.DB, note *types.Note) error {
	db := nr.conn(tx).WithContext(ctx)
	switch note.ParentKind {
	case types.NoteParentItem:
		item := &types.Item{}
		err := db.Preload("Parent").
			Preload("Parent.Parent").
			Preload("Parent.Parent.Group").
			Preload("Parent.Parent.Group.Members").
			First(item, "id = ?", note.ParentID).Error
		if err != nil {
			return err
		}
		note.ParentItem = item
	case types.NoteParentCollection:
		collection := &types.Collection{}
		err := db.Preload("Parent").
			Preload("Parent.Group").
			Preload("Parent.Group.Members").
			First(collection, "id = ?", note.ParentID).Error
		if err != nil {
			return err
		}
		note.ParentCollection = collection
	default:
		return fmt.Errorf("unknown note parent kind %q", note.ParentKind)
	}
	return nil
}
