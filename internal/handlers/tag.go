package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/services"
)

var tagColumns = query.Columns("name", "created_at", "updated_at")

type TagHandler struct {
	log        *logger.Logger
	tagService services.TagService
}

func NewTagHandler(log *logger.Logger, tagService services.TagService) *TagHandler {
	return &TagHandler{
		log:        log.With("handler", "TagHandler"),
		tagService: tagService,
	}
}

func (h *TagHandler) Create(c *gin.Context) {
	itemID, err := pathID(c, "itemID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Mandatory: []string{"name"}, Allowed: []string{"color"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	tag, err := h.tagService.Create(c.Request.Context(), reqData(c), itemID, bodyString(body, "name"), bodyString(body, "color"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, tag)
}

func (h *TagHandler) List(c *gin.Context) {
	itemID, err := pathID(c, "itemID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	lq, err := listQuery(c, tagColumns)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	tags, err := h.tagService.List(c.Request.Context(), reqData(c), itemID, lq)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, tags)
}

// ListForUser lists the tag names in use across the caller's own libraries.
func (h *TagHandler) ListForUser(c *gin.Context) {
	tags, err := h.tagService.ListForUser(c.Request.Context(), reqData(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, tags)
}

func (h *TagHandler) ListForLibrary(c *gin.Context) {
	libraryID, err := pathID(c, "libraryID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	tags, err := h.tagService.ListForLibrary(c.Request.Context(), reqData(c), libraryID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, tags)
}

func (h *TagHandler) ListForCollection(c *gin.Context) {
	collectionID, err := pathID(c, "collectionID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	tags, err := h.tagService.ListForCollection(c.Request.Context(), reqData(c), collectionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, tags)
}

func (h *TagHandler) Update(c *gin.Context) {
	id, err := pathID(c, "tagID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Allowed: []string{"name", "color"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(body) == 0 {
		respondError(c, h.log, apierr.BadRequest("nothing to update"))
		return
	}
	tag, err := h.tagService.Update(c.Request.Context(), reqData(c), id, body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, tag)
}

func (h *TagHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "tagID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.tagService.Delete(c.Request.Context(), reqData(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondNoContent(c)
}
