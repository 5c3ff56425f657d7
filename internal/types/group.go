package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotMember is returned by group capability checks when the user is
// neither the owner nor a listed member.
var ErrNotMember = errors.New("user is not a member of the group")

type Group struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name    string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index;column:owner_id" json:"owner_id"`
	Logo    string    `gorm:"not null;default:public/icons/group.png;column:logo" json:"logo"`

	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Group) TableName() string { return "group" }

// GroupMember grants a user per-capability access to the group's libraries.
type GroupMember struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GroupID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_member;column:group_id" json:"group_id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_member;column:user_id" json:"user_id"`

	CanAdd    bool `gorm:"not null;default:true;column:can_add" json:"can_add"`
	CanEdit   bool `gorm:"not null;default:false;column:can_edit" json:"can_edit"`
	CanDelete bool `gorm:"not null;default:false;column:can_delete" json:"can_delete"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (GroupMember) TableName() string { return "group_member" }

// Has reports whether the user is the group owner or a listed member.
// Members must be populated.
func (g *Group) Has(userID uuid.UUID) bool {
	if g == nil {
		return false
	}
	if g.OwnerID == userID {
		return true
	}
	return g.member(userID) != nil
}

func (g *Group) member(userID uuid.UUID) *GroupMember {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i]
		}
	}
	return nil
}

func (g *Group) CanAdd(userID uuid.UUID) (bool, error) {
	return g.capability(userID, func(m *GroupMember) bool { return m.CanAdd })
}

func (g *Group) CanEdit(userID uuid.UUID) (bool, error) {
	return g.capability(userID, func(m *GroupMember) bool { return m.CanEdit })
}

func (g *Group) CanDelete(userID uuid.UUID) (bool, error) {
	return g.capability(userID, func(m *GroupMember) bool { return m.CanDelete })
}

func (g *Group) capability(userID uuid.UUID, flag func(*GroupMember) bool) (bool, error) {
	if g == nil {
		return false, ErrNotMember
	}
	if g.OwnerID == userID {
		return true, nil
	}
	m := g.member(userID)
	if m == nil {
		return false, ErrNotMember
	}
	return flag(m), nil
}
