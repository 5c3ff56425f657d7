package app

import (
	"github.com/gin-gonic/gin"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/server"
)

func wireRouter(log *logger.Logger, h Handlers, mw Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:            log,
		AuthMiddleware: mw.Auth,

		AuthHandler:           h.Auth,
		UserHandler:           h.User,
		GroupHandler:          h.Group,
		LibraryHandler:        h.Library,
		CollectionHandler:     h.Collection,
		ItemHandler:           h.Item,
		AttachmentHandler:     h.Attachment,
		AttachmentTypeHandler: h.AttachmentType,
		NoteHandler:           h.Note,
		TagHandler:            h.Tag,
	})
}
