package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/repos"
	"github.com/refera/refera-backend/internal/requestdata"
	"github.com/refera/refera-backend/internal/types"
	"github.com/refera/refera-backend/internal/utils"
)

type UserService interface {
	Get(ctx context.Context, id uuid.UUID) (*types.User, error)
	List(ctx context.Context, lq *query.ListQuery) ([]*types.User, error)
	Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.User, error)
	UpdatePassword(ctx context.Context, rd *requestdata.RequestData, current, next string) (*types.User, error)
	SetAvatar(ctx context.Context, rd *requestdata.RequestData, raw []byte) (*types.User, error)
	Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	auth     AuthService
	avatars  AvatarService
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, auth AuthService, avatars AvatarService) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
		auth:     auth,
		avatars:  avatars,
	}
}

func (us *userService) Get(ctx context.Context, id uuid.UUID) (*types.User, error) {
	user, err := us.userRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return user, nil
}

func (us *userService) List(ctx context.Context, lq *query.ListQuery) ([]*types.User, error) {
	return us.userRepo.Find(ctx, nil, nil, lq)
}

// Update edits profile fields. Only the user themselves or an admin may do
// it; role changes are reserved for admins.
func (us *userService) Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.User, error) {
	if rd.UserID != id && !rd.IsAdmin() {
		return nil, apierr.New(403, "forbidden", fmt.Errorf("cannot edit another user"))
	}
	if _, ok := updates["role"]; ok && !rd.IsAdmin() {
		return nil, apierr.New(403, "forbidden", fmt.Errorf("only admins may change roles"))
	}
	if email, ok := updates["email"].(string); ok {
		email = utils.NormalizeEmail(email)
		if err := utils.ValidateEmail(email); err != nil {
			return nil, apierr.New(400, "invalid_email", err)
		}
		updates["email"] = email
	}
	user, err := us.userRepo.UpdateByID(ctx, nil, id, updates)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return user, nil
}

// UpdatePassword verifies the current password, stores the new hash and
// invalidates every other session.
func (us *userService) UpdatePassword(ctx context.Context, rd *requestdata.RequestData, current, next string) (*types.User, error) {
	user, err := us.userRepo.GetByID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	if err := utils.CheckPassword(user.Password, current); err != nil {
		return nil, apierr.New(401, "invalid_credentials", fmt.Errorf("current password is wrong"))
	}
	if err := utils.ValidatePassword(next); err != nil {
		return nil, apierr.New(400, "invalid_password", err)
	}
	hashed, err := utils.HashPassword(next)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err = us.userRepo.UpdateByID(ctx, nil, user.ID, map[string]any{"password": hashed})
	if err != nil {
		return nil, apierr.Translate(err)
	}
	if err := us.auth.InvalidateOtherSessions(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (us *userService) SetAvatar(ctx context.Context, rd *requestdata.RequestData, raw []byte) (*types.User, error) {
	user, err := us.userRepo.GetByID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	if err := us.avatars.SetUserAvatarFromImage(ctx, nil, user, raw); err != nil {
		return nil, apierr.New(400, "invalid_input", err)
	}
	if _, err := us.userRepo.Save(ctx, nil, user); err != nil {
		return nil, apierr.Translate(err)
	}
	return user, nil
}

func (us *userService) Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error {
	if rd.UserID != id && !rd.IsAdmin() {
		return apierr.New(403, "forbidden", fmt.Errorf("cannot delete another user"))
	}
	if err := us.userRepo.DeleteByID(ctx, nil, id); err != nil {
		return apierr.Translate(err)
	}
	return nil
}
