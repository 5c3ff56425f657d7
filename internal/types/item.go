package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Item struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ParentID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_item_parent_name;column:parent_id" json:"parent_id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_item_parent_name;column:name" json:"name"`
	LibraryID uuid.UUID `gorm:"type:uuid;not null;index;column:library_id" json:"library_id"`

	ItemTypeID          *uuid.UUID `gorm:"type:uuid;column:item_type_id" json:"item_type_id,omitempty"`
	PrimaryAttachmentID *uuid.UUID `gorm:"type:uuid;column:primary_attachment_id" json:"primary_attachment_id,omitempty"`

	Metadata datatypes.JSONMap `gorm:"column:metadata" json:"metadata,omitempty"`

	Parent      *Collection    `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Attachments []Attachment   `gorm:"foreignKey:ParentID" json:"attachments,omitempty"`
	Tags        []Tag          `gorm:"foreignKey:ItemID" json:"tags,omitempty"`
	Related     []ItemRelation `gorm:"foreignKey:ItemID" json:"related,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Item) TableName() string { return "item" }

// CanView delegates to the parent collection.
func (i *Item) CanView(userID uuid.UUID) (bool, error) {
	if i == nil || i.Parent == nil {
		return false, errors.New("item parent collection not populated")
	}
	return i.Parent.CanView(userID)
}

// CanEdit delegates to the parent collection.
func (i *Item) CanEdit(userID uuid.UUID) (bool, error) {
	if i == nil || i.Parent == nil {
		return false, errors.New("item parent collection not populated")
	}
	return i.Parent.CanEdit(userID)
}

// ItemRelation is one direction of a symmetric item link. Relating A to B
// writes two rows, one per side, each caching the other's display name.
type ItemRelation struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID      uuid.UUID `gorm:"type:uuid;not null;index;column:item_id" json:"item_id"`
	RelatedID   uuid.UUID `gorm:"type:uuid;not null;column:related_id" json:"related_id"`
	RelatedName string    `gorm:"not null;column:related_name" json:"related_name"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ItemRelation) TableName() string { return "item_relation" }
