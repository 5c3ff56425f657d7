package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Attachment struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ParentID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_attachment_parent_name_type;column:parent_id" json:"parent_id"`
	Name     string     `gorm:"not null;uniqueIndex:idx_attachment_parent_name_type;column:name" json:"name"`
	TypeID   *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_attachment_parent_name_type;column:type_id" json:"type_id,omitempty"`

	Filename string `gorm:"column:filename" json:"filename,omitempty"`
	URL      string `gorm:"column:url" json:"url,omitempty"`
	Pages    *int   `gorm:"column:pages" json:"pages,omitempty"`

	Parent *Item           `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Type   *AttachmentType `gorm:"foreignKey:TypeID" json:"type,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Attachment) TableName() string { return "attachment" }

// CanView delegates to the parent item.
func (a *Attachment) CanView(userID uuid.UUID) (bool, error) {
	if a == nil || a.Parent == nil {
		return false, errors.New("attachment parent item not populated")
	}
	return a.Parent.CanView(userID)
}

// CanEdit delegates to the parent item.
func (a *Attachment) CanEdit(userID uuid.UUID) (bool, error) {
	if a == nil || a.Parent == nil {
		return false, errors.New("attachment parent item not populated")
	}
	return a.Parent.CanEdit(userID)
}

type AttachmentType struct {
	ID   uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	API  *string   `gorm:"uniqueIndex;column:api" json:"api,omitempty"`
	Icon string    `gorm:"not null;default:public/icons/type.png;column:icon" json:"icon"`

	// Metadata key names recognized for items of this type.
	MetadataKeys datatypes.JSONSlice[string] `gorm:"column:metadata_keys" json:"metadata_keys,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AttachmentType) TableName() string { return "attachment_type" }
