package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrGroupNotPopulated is returned when a permission walk reaches a
// group-owned library whose group reference has not been loaded. Callers
// must treat it as a bad request, never as a grant or a deny.
var ErrGroupNotPopulated = errors.New("library group reference not populated")

type Library struct {
	ID      uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_library_owner_name;column:owner_id" json:"owner_id"`
	Name    string     `gorm:"not null;uniqueIndex:idx_library_owner_name;column:name" json:"name"`
	GroupID *uuid.UUID `gorm:"type:uuid;index;column:group_id" json:"group_id,omitempty"`
	Private bool       `gorm:"not null;default:true;column:private" json:"private"`

	// Special collections, set by initialization.
	UnfiledItemsID *uuid.UUID `gorm:"type:uuid;column:unfiled_items_id" json:"unfiled_items_id,omitempty"`
	DuplicatesID   *uuid.UUID `gorm:"type:uuid;column:duplicates_id" json:"duplicates_id,omitempty"`
	BinID          *uuid.UUID `gorm:"type:uuid;column:bin_id" json:"bin_id,omitempty"`

	Group       *Group       `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Collections []Collection `gorm:"foreignKey:ParentID" json:"collections,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Library) TableName() string { return "library" }

// Initialized reports whether the three special collections exist.
func (l *Library) Initialized() bool {
	return l != nil && l.UnfiledItemsID != nil && l.DuplicatesID != nil && l.BinID != nil
}

// CanView: public libraries are visible to everyone; private ones to the
// owner and, for group-owned libraries, to anyone the group recognizes.
func (l *Library) CanView(userID uuid.UUID) (bool, error) {
	if l == nil {
		return false, errors.New("library is nil")
	}
	if !l.Private {
		return true, nil
	}
	if l.OwnerID == userID {
		return true, nil
	}
	if l.GroupID != nil {
		if l.Group == nil {
			return false, ErrGroupNotPopulated
		}
		return l.Group.Has(userID), nil
	}
	return false, nil
}

func (l *Library) CanAdd(userID uuid.UUID) (bool, error) {
	return l.delegate(userID, (*Group).CanAdd)
}

func (l *Library) CanEdit(userID uuid.UUID) (bool, error) {
	return l.delegate(userID, (*Group).CanEdit)
}

func (l *Library) CanDelete(userID uuid.UUID) (bool, error) {
	return l.delegate(userID, (*Group).CanDelete)
}

func (l *Library) delegate(userID uuid.UUID, capability func(*Group, uuid.UUID) (bool, error)) (bool, error) {
	if l == nil {
		return false, errors.New("library is nil")
	}
	if l.OwnerID == userID {
		return true, nil
	}
	if l.GroupID != nil {
		if l.Group == nil {
			return false, ErrGroupNotPopulated
		}
		return capability(l.Group, userID)
	}
	return false, nil
}
