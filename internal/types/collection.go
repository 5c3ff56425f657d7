package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CollectionTypeStandard  = "Collection"
	CollectionTypeSearching = "SearchingCollection"
)

// Names of the special collections every initialized library carries.
const (
	CollectionNameUnfiled    = "unfiled items"
	CollectionNameDuplicates = "duplicates"
	CollectionNameBin        = "bin"
)

type Collection struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name     string    `gorm:"not null;uniqueIndex:idx_collection_name_parent;column:name" json:"name"`
	ParentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_collection_name_parent;column:parent_id" json:"parent_id"`
	Type     string    `gorm:"not null;default:Collection;column:type" json:"type"`

	// Present iff Type is SearchingCollection.
	SearchQuery datatypes.JSONMap `gorm:"column:search_query" json:"search_query,omitempty"`

	Parent *Library `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Items  []Item   `gorm:"foreignKey:ParentID" json:"items,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Collection) TableName() string { return "collection" }

func (c *Collection) IsSearching() bool {
	return c != nil && c.Type == CollectionTypeSearching
}

func (c *Collection) BeforeSave(tx *gorm.DB) error {
	switch c.Type {
	case CollectionTypeSearching:
		if len(c.SearchQuery) == 0 {
			return errors.New("a searching collection must store a search query")
		}
	case CollectionTypeStandard:
		if len(c.SearchQuery) != 0 {
			return errors.New("a plain collection cannot store a search query")
		}
	default:
		return errors.New("unknown collection type")
	}
	return nil
}

// CanView delegates to the parent library.
func (c *Collection) CanView(userID uuid.UUID) (bool, error) {
	if c == nil || c.Parent == nil {
		return false, errors.New("collection parent library not populated")
	}
	return c.Parent.CanView(userID)
}

// CanEdit delegates to the parent library.
func (c *Collection) CanEdit(userID uuid.UUID) (bool, error) {
	if c == nil || c.Parent == nil {
		return false, errors.New("collection parent library not populated")
	}
	return c.Parent.CanEdit(userID)
}
