package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/refera/refera-backend/internal/handlers"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/middleware"
	"github.com/refera/refera-backend/internal/types"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *middleware.AuthMiddleware

	AuthHandler           *handlers.AuthHandler
	UserHandler           *handlers.UserHandler
	GroupHandler          *handlers.GroupHandler
	LibraryHandler        *handlers.LibraryHandler
	CollectionHandler     *handlers.CollectionHandler
	ItemHandler           *handlers.ItemHandler
	AttachmentHandler     *handlers.AttachmentHandler
	AttachmentTypeHandler *handlers.AttachmentTypeHandler
	NoteHandler           *handlers.NoteHandler
	TagHandler            *handlers.TagHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("refera"))
	r.Use(middleware.CORS())
	if cfg.Log != nil {
		r.Use(middleware.RequestLogger(cfg.Log))
	}

	r.GET("/healthcheck", handlers.HealthCheck)

	api := r.Group("/api")

	// Public
	api.POST("/users/signup", cfg.AuthHandler.Signup)
	api.POST("/users/login", cfg.AuthHandler.Login)
	api.GET("/libraries/public", cfg.LibraryHandler.ListPublic)

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Session
	protected.POST("/users/logout", cfg.AuthHandler.Logout)
	protected.GET("/users/me", cfg.AuthHandler.Me)
	protected.PATCH("/users/password", cfg.AuthHandler.UpdatePassword)

	// Users
	users := protected.Group("/users")
	{
		users.GET("", cfg.AuthMiddleware.RestrictTo(types.RoleAdmin), cfg.UserHandler.List)
		users.GET("/:userID", cfg.UserHandler.Get)
		users.PATCH("/:userID", cfg.UserHandler.Update)
		users.PUT("/:userID/avatar", cfg.UserHandler.SetAvatar)
		users.DELETE("/:userID", cfg.UserHandler.Delete)
	}

	// Groups
	groups := protected.Group("/groups")
	{
		groups.POST("", cfg.GroupHandler.Create)
		groups.GET("", cfg.GroupHandler.List)
		groups.GET("/:groupID", cfg.GroupHandler.Get)
		groups.PATCH("/:groupID", cfg.GroupHandler.Update)
		groups.PUT("/:groupID/logo", cfg.GroupHandler.SetLogo)
		groups.DELETE("/:groupID", cfg.GroupHandler.Delete)
		groups.POST("/:groupID/members", cfg.GroupHandler.AddMember)
		groups.PATCH("/:groupID/members/:userID", cfg.GroupHandler.UpdateMember)
		groups.DELETE("/:groupID/members/:userID", cfg.GroupHandler.RemoveMember)
	}

	// Libraries and their collections
	libraries := protected.Group("/libraries")
	{
		libraries.POST("", cfg.LibraryHandler.Create)
		libraries.GET("", cfg.LibraryHandler.List)
		libraries.GET("/:libraryID", cfg.LibraryHandler.Get)
		libraries.PATCH("/:libraryID", cfg.LibraryHandler.Update)
		libraries.DELETE("/:libraryID", cfg.LibraryHandler.Delete)

		libraries.POST("/:libraryID/collections", cfg.CollectionHandler.Create)
		libraries.GET("/:libraryID/collections", cfg.CollectionHandler.List)
	}

	// Collections and their items/notes
	collections := protected.Group("/collections")
	{
		collections.GET("/:collectionID", cfg.CollectionHandler.Get)
		collections.PATCH("/:collectionID", cfg.CollectionHandler.Update)
		collections.DELETE("/:collectionID", cfg.CollectionHandler.Delete)

		collections.POST("/:collectionID/items", cfg.ItemHandler.Create)
		collections.GET("/:collectionID/items", cfg.ItemHandler.List)

		collections.POST("/:collectionID/notes", cfg.NoteHandler.Create(types.NoteParentCollection, "collectionID"))
		collections.GET("/:collectionID/notes", cfg.NoteHandler.List(types.NoteParentCollection, "collectionID"))
	}

	// Items and their attachments/notes/tags/relations
	items := protected.Group("/items")
	{
		items.GET("/:itemID", cfg.ItemHandler.Get)
		items.PATCH("/:itemID", cfg.ItemHandler.Update)
		items.PUT("/:itemID/collection", cfg.ItemHandler.Move)
		items.DELETE("/:itemID", cfg.ItemHandler.Delete)

		items.POST("/:itemID/related", cfg.ItemHandler.Relate)
		items.DELETE("/:itemID/related/:relatedID", cfg.ItemHandler.Unrelate)

		items.POST("/:itemID/attachments", cfg.AttachmentHandler.Upload)
		items.GET("/:itemID/attachments", cfg.AttachmentHandler.List)

		items.POST("/:itemID/notes", cfg.NoteHandler.Create(types.NoteParentItem, "itemID"))
		items.GET("/:itemID/notes", cfg.NoteHandler.List(types.NoteParentItem, "itemID"))

		items.POST("/:itemID/tags", cfg.TagHandler.Create)
		items.GET("/:itemID/tags", cfg.TagHandler.List)
	}

	// Attachments
	attachments := protected.Group("/attachments")
	{
		attachments.GET("/:attachmentID", cfg.AttachmentHandler.Get)
		attachments.GET("/:attachmentID/file", cfg.AttachmentHandler.Download)
		attachments.PATCH("/:attachmentID", cfg.AttachmentHandler.Update)
		attachments.DELETE("/:attachmentID", cfg.AttachmentHandler.Delete)
		attachments.PUT("/:attachmentID/primary", cfg.AttachmentHandler.SetPrimary)
	}

	// Notes
	notes := protected.Group("/notes")
	{
		notes.GET("/:noteID", cfg.NoteHandler.Get)
		notes.PATCH("/:noteID", cfg.NoteHandler.Update)
		notes.DELETE("/:noteID", cfg.NoteHandler.Delete)
	}

	// Tags
	tags := protected.Group("/tags")
	{
		tags.GET("", cfg.TagHandler.ListForUser)
		tags.GET("/library/:libraryID", cfg.TagHandler.ListForLibrary)
		tags.GET("/collection/:collectionID", cfg.TagHandler.ListForCollection)
		tags.PATCH("/:tagID", cfg.TagHandler.Update)
		tags.DELETE("/:tagID", cfg.TagHandler.Delete)
	}

	// Attachment types; writes are admin only
	attachmentTypes := protected.Group("/attachment-types")
	{
		attachmentTypes.GET("", cfg.AttachmentTypeHandler.List)
		attachmentTypes.GET("/:typeID", cfg.AttachmentTypeHandler.Get)
		attachmentTypes.POST("", cfg.AuthMiddleware.RestrictTo(types.RoleAdmin), cfg.AttachmentTypeHandler.Create)
		attachmentTypes.PATCH("/:typeID", cfg.AuthMiddleware.RestrictTo(types.RoleAdmin), cfg.AttachmentTypeHandler.Update)
		attachmentTypes.DELETE("/:typeID", cfg.AuthMiddleware.RestrictTo(types.RoleAdmin), cfg.AttachmentTypeHandler.Delete)
	}

	return r
}
