package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultTagColor = "#00A9B7"

type Tag struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ItemID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tag_item_name;column:item_id" json:"item_id"`
	Name   string    `gorm:"not null;uniqueIndex:idx_tag_item_name;column:name" json:"name"`
	Color  string    `gorm:"not null;default:#00A9B7;column:color" json:"color"`

	Item *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Tag) TableName() string { return "tag" }
