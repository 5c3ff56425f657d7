package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/types"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Name:     "Test User",
		Email:    email,
		Password: "pw",
		Role:     types.RoleUser,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedGroup(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string) *types.Group {
	tb.Helper()
	g := &types.Group{
		ID:      uuid.New(),
		Name:    name,
		OwnerID: ownerID,
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed group: %v", err)
	}
	return g
}

func SeedGroupMember(tb testing.TB, ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) *types.GroupMember {
	tb.Helper()
	m := &types.GroupMember{
		ID:      uuid.New(),
		GroupID: groupID,
		UserID:  userID,
		CanAdd:  true,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed group member: %v", err)
	}
	return m
}

func SeedLibrary(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string) *types.Library {
	tb.Helper()
	l := &types.Library{
		ID:      uuid.New(),
		Name:    name,
		OwnerID: ownerID,
		Private: true,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed library: %v", err)
	}
	return l
}

func SeedCollection(tb testing.TB, ctx context.Context, tx *gorm.DB, libraryID uuid.UUID, name string) *types.Collection {
	tb.Helper()
	c := &types.Collection{
		ID:       uuid.New(),
		Name:     name,
		ParentID: libraryID,
		Type:     types.CollectionTypeStandard,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed collection: %v", err)
	}
	return c
}

func SeedItem(tb testing.TB, ctx context.Context, tx *gorm.DB, collectionID, libraryID uuid.UUID, name string) *types.Item {
	tb.Helper()
	i := &types.Item{
		ID:        uuid.New(),
		Name:      name,
		ParentID:  collectionID,
		LibraryID: libraryID,
	}
	if err := tx.WithContext(ctx).Create(i).Error; err != nil {
		tb.Fatalf("seed item: %v", err)
	}
	return i
}

func SeedAttachment(tb testing.TB, ctx context.Context, tx *gorm.DB, itemID uuid.UUID, name string) *types.Attachment {
	tb.Helper()
	a := &types.Attachment{
		ID:       uuid.New(),
		Name:     name,
		ParentID: itemID,
		Filename: name + ".pdf",
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed attachment: %v", err)
	}
	return a
}

func SeedTag(tb testing.TB, ctx context.Context, tx *gorm.DB, itemID uuid.UUID, name string) *types.Tag {
	tb.Helper()
	t := &types.Tag{
		ID:     uuid.New(),
		ItemID: itemID,
		Name:   name,
		Color:  types.DefaultTagColor,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed tag: %v", err)
	}
	return t
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrString(v string) *string { return &v }
