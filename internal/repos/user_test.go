package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/refera/refera-backend/internal/repos/testutil"
	"github.com/refera/refera-backend/internal/types"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, &types.User{
		ID:       uuid.New(),
		Name:     "User Repo",
		Email:    "userrepo@example.com",
		Password: "pw",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != created.Email {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	byEmail, err := repo.GetByEmail(ctx, tx, created.Email)
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("GetByEmail: unexpected result: %+v", byEmail)
	}

	exists, err := repo.EmailExists(ctx, tx, created.Email)
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: expected true")
	}

	exists, err = repo.EmailExists(ctx, tx, "does-not-exist@example.com")
	if err != nil {
		t.Fatalf("EmailExists (missing): %v", err)
	}
	if exists {
		t.Fatalf("EmailExists (missing): expected false")
	}

	now := time.Now()
	if err := repo.InvalidateSessions(ctx, tx, created.ID, now); err != nil {
		t.Fatalf("InvalidateSessions: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, created.ID)
	if err != nil {
		t.Fatalf("GetByID after invalidate: %v", err)
	}
	if got.AllowedSessionsAfter != now.Unix() {
		t.Fatalf("InvalidateSessions: expected %d, got %d", now.Unix(), got.AllowedSessionsAfter)
	}
	if got.AllowedSession(now.Unix() - 1) {
		t.Fatalf("AllowedSession: token issued before cutoff should be rejected")
	}
}

func TestRevokedTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewRevokedTokenRepo(db, testutil.Logger(t))
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "revoked@example.com")

	_, err := repo.Add(ctx, tx, &types.RevokedToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Token:     "some.jwt.token",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	revoked, err := repo.IsRevoked(ctx, tx, "some.jwt.token")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatalf("IsRevoked: expected true")
	}

	revoked, err = repo.IsRevoked(ctx, tx, "another.jwt.token")
	if err != nil {
		t.Fatalf("IsRevoked (missing): %v", err)
	}
	if revoked {
		t.Fatalf("IsRevoked (missing): expected false")
	}
}
