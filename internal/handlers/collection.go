package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/services"
	"github.com/refera/refera-backend/internal/types"
)

var collectionColumns = query.Columns("name", "type", "created_at", "updated_at")

type CollectionHandler struct {
	log               *logger.Logger
	collectionService services.CollectionService
}

func NewCollectionHandler(log *logger.Logger, collectionService services.CollectionService) *CollectionHandler {
	return &CollectionHandler{log: log.With("handler", "CollectionHandler"), collectionService: collectionService}
}

func (h *CollectionHandler) Create(c *gin.Context) {
	libraryID, err := pathID(c, "libraryID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Mandatory: []string{"name"}, Allowed: []string{"type", "search_query"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	collection := &types.Collection{
		Name: bodyString(body, "name"),
		Type: bodyString(body, "type"),
	}
	if sq, ok := body["search_query"].(map[string]any); ok {
		collection.SearchQuery = datatypes.JSONMap(sq)
	}
	created, err := h.collectionService.Create(c.Request.Context(), reqData(c), libraryID, collection)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, created)
}

func (h *CollectionHandler) List(c *gin.Context) {
	libraryID, err := pathID(c, "libraryID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	lq, err := listQuery(c, collectionColumns)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	collections, err := h.collectionService.List(c.Request.Context(), reqData(c), libraryID, lq)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, collections)
}

func (h *CollectionHandler) Get(c *gin.Context) {
	id, err := pathID(c, "collectionID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	collection, err := h.collectionService.Get(c.Request.Context(), reqData(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, collection)
}

func (h *CollectionHandler) Update(c *gin.Context) {
	id, err := pathID(c, "collectionID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Allowed: []string{"name", "search_query"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(body) == 0 {
		respondError(c, h.log, apierr.BadRequest("nothing to update"))
		return
	}
	if sq, ok := body["search_query"].(map[string]any); ok {
		body["search_query"] = datatypes.JSONMap(sq)
	}
	collection, err := h.collectionService.Update(c.Request.Context(), reqData(c), id, body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, collection)
}

func (h *CollectionHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "collectionID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.collectionService.Delete(c.Request.Context(), reqData(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondNoContent(c)
}
