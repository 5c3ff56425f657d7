package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/services"
	"github.com/refera/refera-backend/internal/storage"
)

type Services struct {
	Avatar         services.AvatarService
	Auth           services.AuthService
	User           services.UserService
	Group          services.GroupService
	Library        services.LibraryService
	Collection     services.CollectionService
	Item           services.ItemService
	Attachment     services.AttachmentService
	AttachmentType services.AttachmentTypeService
	Note           services.NoteService
	Tag            services.TagService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, store storage.Store, cache *goredis.Client) (Services, error) {
	log.Info("Wiring services...")

	avatarService, err := services.NewAvatarService(log, store)
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}
	authService, err := services.NewAuthService(db, log, r.User, r.RevokedToken, avatarService, cache, cfg.JWTSecretKey, cfg.TokenTTL)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	libraryService := services.NewLibraryService(db, log, r.Library, r.Collection, r.Item, r.Group, store)
	collectionService := services.NewCollectionService(db, log, r.Collection, r.Item, libraryService)
	itemService := services.NewItemService(db, log, r.Item, collectionService, store)

	return Services{
		Avatar:         avatarService,
		Auth:           authService,
		User:           services.NewUserService(db, log, r.User, authService, avatarService),
		Group:          services.NewGroupService(db, log, r.Group, r.User, avatarService),
		Library:        libraryService,
		Collection:     collectionService,
		Item:           itemService,
		Attachment:     services.NewAttachmentService(db, log, r.Attachment, r.AttachmentType, r.Item, itemService, store),
		AttachmentType: services.NewAttachmentTypeService(db, log, r.AttachmentType),
		Note:           services.NewNoteService(db, log, r.Note),
		Tag:            services.NewTagService(db, log, r.Tag, itemService, libraryService, collectionService),
	}, nil
}
