package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name     string    `gorm:"not null;column:name" json:"name"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`
	Role     string    `gorm:"not null;default:user;column:role" json:"role"`
	Profile  string    `gorm:"column:profile" json:"profile"`

	// Tokens issued before this unix timestamp are rejected.
	AllowedSessionsAfter int64 `gorm:"not null;default:0;column:allowed_sessions_after" json:"-"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

// AllowedSession reports whether a token issued at the given unix time is
// still acceptable for this user.
func (u *User) AllowedSession(issuedAt int64) bool {
	return issuedAt >= u.AllowedSessionsAfter
}

// RevokedToken is a blacklisted credential. Rows are only meaningful until
// ExpiresAt, after which the token would be rejected anyway.
type RevokedToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null;column:token" json:"-"`
	IssuedAt  int64     `gorm:"column:issued_at" json:"issued_at"`
	ExpiresAt time.Time `gorm:"index;column:expires_at" json:"expires_at"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (RevokedToken) TableName() string { return "revoked_token" }
