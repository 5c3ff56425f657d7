package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/services"
	"github.com/refera/refera-backend/internal/types"
)

var libraryColumns = query.Columns("name", "owner_id", "private", "created_at", "updated_at")

type LibraryHandler struct {
	log            *logger.Logger
	libraryService services.LibraryService
}

func NewLibraryHandler(log *logger.Logger, libraryService services.LibraryService) *LibraryHandler {
	return &LibraryHandler{log: log.With("handler", "LibraryHandler"), libraryService: libraryService}
}

func (h *LibraryHandler) Create(c *gin.Context) {
	body, err := readBody(c, bodySpec{Mandatory: []string{"name"}, Allowed: []string{"private", "group_id"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	library := &types.Library{
		Name:    bodyString(body, "name"),
		Private: true,
	}
	if private, ok := bodyBool(body, "private"); ok {
		library.Private = private
	}
	if raw := bodyString(body, "group_id"); raw != "" {
		groupID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, h.log, apierr.BadRequest("invalid group_id"))
			return
		}
		library.GroupID = &groupID
	}
	created, err := h.libraryService.Create(c.Request.Context(), reqData(c), library)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, created)
}

func (h *LibraryHandler) List(c *gin.Context) {
	lq, err := listQuery(c, libraryColumns)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	libraries, err := h.libraryService.List(c.Request.Context(), reqData(c), lq)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, libraries)
}

// ListPublic is the one list endpoint that works without a session.
func (h *LibraryHandler) ListPublic(c *gin.Context) {
	lq, err := listQuery(c, libraryColumns)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	libraries, err := h.libraryService.ListPublic(c.Request.Context(), lq)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, libraries)
}

func (h *LibraryHandler) Get(c *gin.Context) {
	id, err := pathID(c, "libraryID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	library, err := h.libraryService.Get(c.Request.Context(), reqData(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, library)
}

func (h *LibraryHandler) Update(c *gin.Context) {
	id, err := pathID(c, "libraryID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Allowed: []string{"name", "private", "group_id"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(body) == 0 {
		respondError(c, h.log, apierr.BadRequest("nothing to update"))
		return
	}
	if raw, ok := body["group_id"].(string); ok {
		groupID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, h.log, apierr.BadRequest("invalid group_id"))
			return
		}
		body["group_id"] = groupID
	}
	library, err := h.libraryService.Update(c.Request.Context(), reqData(c), id, body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, library)
}

func (h *LibraryHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "libraryID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.libraryService.Delete(c.Request.Context(), reqData(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondNoContent(c)
}
