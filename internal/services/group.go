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
)

type GroupService interface {
	Create(ctx context.Context, rd *requestdata.RequestData, name string) (*types.Group, error)
	Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Group, error)
	List(ctx context.Context, rd *requestdata.RequestData, lq *query.ListQuery) ([]*types.Group, error)
	Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.Group, error)
	SetLogo(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, raw []byte) (*types.Group, error)
	Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error

	AddMember(ctx context.Context, rd *requestdata.RequestData, groupID, userID uuid.UUID) (*types.GroupMember, error)
	UpdateMember(ctx context.Context, rd *requestdata.RequestData, groupID, userID uuid.UUID, updates map[string]any) (*types.GroupMember, error)
	RemoveMember(ctx context.Context, rd *requestdata.RequestData, groupID, userID uuid.UUID) error
}

type groupService struct {
	db        *gorm.DB
	log       *logger.Logger
	groupRepo repos.GroupRepo
	userRepo  repos.UserRepo
	avatars   AvatarService
}

func NewGroupService(db *gorm.DB, log *logger.Logger, groupRepo repos.GroupRepo, userRepo repos.UserRepo, avatars AvatarService) GroupService {
	return &groupService{
		db:        db,
		log:       log.With("service", "GroupService"),
		groupRepo: groupRepo,
		userRepo:  userRepo,
		avatars:   avatars,
	}
}

func (gs *groupService) Create(ctx context.Context, rd *requestdata.RequestData, name string) (*types.Group, error) {
	if name == "" {
		return nil, apierr.New(400, "invalid_input", fmt.Errorf("group name must not be empty"))
	}
	group := &types.Group{
		ID:      uuid.New(),
		Name:    name,
		OwnerID: rd.UserID,
	}
	if err := gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if gs.avatars != nil {
			if err := gs.avatars.CreateGroupLogo(ctx, tx, group); err != nil {
				return fmt.Errorf("failed to create group logo: %w", err)
			}
		}
		_, err := gs.groupRepo.Create(ctx, tx, group)
		return err
	}); err != nil {
		return nil, apierr.Translate(err)
	}
	return group, nil
}

// Get returns the group with its members. Only the owner and members may see
// the roster.
func (gs *groupService) Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Group, error) {
	group, err := gs.groupRepo.GetWithMembers(ctx, nil, id)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	if !group.Has(rd.UserID) && !rd.IsAdmin() {
		return nil, apierr.New(403, "forbidden", types.ErrNotMember)
	}
	return group, nil
}

func (gs *groupService) List(ctx context.Context, rd *requestdata.RequestData, lq *query.ListQuery) ([]*types.Group, error) {
	if rd.IsAdmin() {
		return gs.groupRepo.Find(ctx, nil, nil, lq, "Members")
	}
	return gs.groupRepo.ListForUser(ctx, nil, rd.UserID, lq)
}

func (gs *groupService) Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, updates map[string]any) (*types.Group, error) {
	if err := gs.requireOwner(ctx, rd, id); err != nil {
		return nil, err
	}
	group, err := gs.groupRepo.UpdateByID(ctx, nil, id, updates)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return group, nil
}

func (gs *groupService) SetLogo(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, raw []byte) (*types.Group, error) {
	if err := gs.requireOwner(ctx, rd, id); err != nil {
		return nil, err
	}
	group, err := gs.groupRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	if err := gs.avatars.SetGroupLogoFromImage(ctx, nil, group, raw); err != nil {
		return nil, apierr.New(400, "invalid_input", err)
	}
	if _, err := gs.groupRepo.Save(ctx, nil, group); err != nil {
		return nil, apierr.Translate(err)
	}
	return group, nil
}

func (gs *groupService) Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error {
	if err := gs.requireOwner(ctx, rd, id); err != nil {
		return err
	}
	if err := gs.groupRepo.DeleteByID(ctx, nil, id); err != nil {
		return apierr.Translate(err)
	}
	return nil
}

func (gs *groupService) AddMember(ctx context.Context, rd *requestdata.RequestData, groupID, userID uuid.UUID) (*types.GroupMember, error) {
	if err := gs.requireOwner(ctx, rd, groupID); err != nil {
		return nil, err
	}
	if _, err := gs.userRepo.GetByID(ctx, nil, userID); err != nil {
		return nil, apierr.New(400, "invalid_reference", fmt.Errorf("no such user"))
	}
	member, err := gs.groupRepo.AddMember(ctx, nil, &types.GroupMember{
		ID:      uuid.New(),
		GroupID: groupID,
		UserID:  userID,
		CanAdd:  true,
	})
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return member, nil
}

func (gs *groupService) UpdateMember(ctx context.Context, rd *requestdata.RequestData, groupID, userID uuid.UUID, updates map[string]any) (*types.GroupMember, error) {
	if err := gs.requireOwner(ctx, rd, groupID); err != nil {
		return nil, err
	}
	member, err := gs.groupRepo.UpdateMember(ctx, nil, groupID, userID, updates)
	if err != nil {
		return nil, apierr.Translate(err)
	}
	return member, nil
}

// RemoveMember: the owner may remove anyone; a member may leave.
func (gs *groupService) RemoveMember(ctx context.Context, rd *requestdata.RequestData, groupID, userID uuid.UUID) error {
	group, err := gs.groupRepo.GetByID(ctx, nil, groupID)
	if err != nil {
		return apierr.Translate(err)
	}
	if group.OwnerID != rd.UserID && rd.UserID != userID && !rd.IsAdmin() {
		return apierr.New(403, "forbidden", fmt.Errorf("only the group owner may remove other members"))
	}
	if err := gs.groupRepo.RemoveMember(ctx, nil, groupID, userID); err != nil {
		return apierr.Translate(err)
	}
	return nil
}

func (gs *groupService) requireOwner(ctx context.Context, rd *requestdata.RequestData, groupID uuid.UUID) error {
	group, err := gs.groupRepo.GetByID(ctx, nil, groupID)
	if err != nil {
		return apierr.Translate(err)
	}
	if group.OwnerID != rd.UserID && !rd.IsAdmin() {
		return apierr.New(403, "forbidden", fmt.Errorf("only the group owner may do this"))
	}
	return nil
}
