package repos

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/repos/testutil"
)

func TestGroupRepoMembers(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewGroupRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedUser(t, ctx, tx, "group-owner@example.com")
	member := testutil.SeedUser(t, ctx, tx, "group-member@example.com")
	outsider := testutil.SeedUser(t, ctx, tx, "group-outsider@example.com")

	group := testutil.SeedGroup(t, ctx, tx, owner.ID, "Research Group")
	testutil.SeedGroupMember(t, ctx, tx, group.ID, member.ID)

	got, err := repo.GetWithMembers(ctx, tx, group.ID)
	if err != nil {
		t.Fatalf("GetWithMembers: %v", err)
	}
	if len(got.Members) != 1 || got.Members[0].UserID != member.ID {
		t.Fatalf("GetWithMembers: unexpected members: %+v", got.Members)
	}

	forOwner, err := repo.ListForUser(ctx, tx, owner.ID, nil)
	if err != nil {
		t.Fatalf("ListForUser (owner): %v", err)
	}
	if len(forOwner) != 1 {
		t.Fatalf("ListForUser (owner): expected 1 group, got %d", len(forOwner))
	}

	forMember, err := repo.ListForUser(ctx, tx, member.ID, nil)
	if err != nil {
		t.Fatalf("ListForUser (member): %v", err)
	}
	if len(forMember) != 1 {
		t.Fatalf("ListForUser (member): expected 1 group, got %d", len(forMember))
	}

	forOutsider, err := repo.ListForUser(ctx, tx, outsider.ID, nil)
	if err != nil {
		t.Fatalf("ListForUser (outsider): %v", err)
	}
	if len(forOutsider) != 0 {
		t.Fatalf("ListForUser (outsider): expected 0 groups, got %d", len(forOutsider))
	}

	updated, err := repo.UpdateMember(ctx, tx, group.ID, member.ID, map[string]any{"can_edit": true})
	if err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}
	if !updated.CanEdit {
		t.Fatalf("UpdateMember: can_edit not persisted")
	}

	if _, err := repo.UpdateMember(ctx, tx, group.ID, outsider.ID, map[string]any{"can_edit": true}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("UpdateMember (missing): expected ErrRecordNotFound, got %v", err)
	}

	if err := repo.RemoveMember(ctx, tx, group.ID, member.ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if err := repo.RemoveMember(ctx, tx, group.ID, member.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("RemoveMember (repeat): expected ErrRecordNotFound, got %v", err)
	}
}
