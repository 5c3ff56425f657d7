package app

import (
	"github.com/refera/refera-backend/internal/handlers"
	"github.com/refera/refera-backend/internal/logger"
)

type Handlers struct {
	Auth           *handlers.AuthHandler
	User           *handlers.UserHandler
	Group          *handlers.GroupHandler
	Library        *handlers.LibraryHandler
	Collection     *handlers.CollectionHandler
	Item           *handlers.ItemHandler
	Attachment     *handlers.AttachmentHandler
	AttachmentType *handlers.AttachmentTypeHandler
	Note           *handlers.NoteHandler
	Tag            *handlers.TagHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:           handlers.NewAuthHandler(log, s.Auth, s.User),
		User:           handlers.NewUserHandler(log, s.User),
		Group:          handlers.NewGroupHandler(log, s.Group),
		Library:        handlers.NewLibraryHandler(log, s.Library),
		Collection:     handlers.NewCollectionHandler(log, s.Collection),
		Item:           handlers.NewItemHandler(log, s.Item, s.Collection),
		Attachment:     handlers.NewAttachmentHandler(log, s.Attachment),
		AttachmentType: handlers.NewAttachmentTypeHandler(log, s.AttachmentType),
		Note:           handlers.NewNoteHandler(log, s.Note),
		Tag:            handlers.NewTagHandler(log, s.Tag),
	}
}
