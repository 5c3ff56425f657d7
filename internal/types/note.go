package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note parents form a tagged union: the kind discriminates which entity
// ParentID points at.
const (
	NoteParentItem       = "item"
	NoteParentCollection = "collection"
)

type Note struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ParentKind string    `gorm:"not null;column:parent_kind" json:"parent_kind"`
	ParentID   uuid.UUID `gorm:"type:uuid;not null;index;column:parent_id" json:"parent_id"`
	Text       string    `gorm:"not null;default:'';column:text" json:"text"`

	// Resolved by NoteRepo.PopulateParent, never persisted.
	ParentItem       *Item       `gorm:"-" json:"parent_item,omitempty"`
	ParentCollection *Collection `gorm:"-" json:"parent_collection,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Note) TableName() string { return "note" }

// CanView delegates to whichever parent the note hangs off.
func (n *Note) CanView(userID uuid.UUID) (bool, error) {
	switch {
	case n == nil:
		return false, errors.New("note is nil")
	case n.ParentKind == NoteParentItem && n.ParentItem != nil:
		return n.ParentItem.CanView(userID)
	case n.ParentKind == NoteParentCollection && n.ParentCollection != nil:
		return n.ParentCollection.CanView(userID)
	}
	return false, errors.New("note parent not populated")
}

// CanEdit delegates to whichever parent the note hangs off.
func (n *Note) CanEdit(userID uuid.UUID) (bool, error) {
	switch {
	case n == nil:
		return false, errors.New("note is nil")
	case n.ParentKind == NoteParentItem && n.ParentItem != nil:
		return n.ParentItem.CanEdit(userID)
	case n.ParentKind == NoteParentCollection && n.ParentCollection != nil:
		return n.ParentCollection.CanEdit(userID)
	}
	return false, errors.New("note parent not populated")
}
