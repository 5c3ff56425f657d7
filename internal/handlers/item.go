package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/services"
	"github.com/refera/refera-backend/internal/types"
)

var itemColumns = query.Columns("name", "item_type_id", "created_at", "updated_at")

type ItemHandler struct {
	log               *logger.Logger
	itemService       services.ItemService
	collectionService services.CollectionService
}

func NewItemHandler(log *logger.Logger, itemService services.ItemService, collectionService services.CollectionService) *ItemHandler {
	return &ItemHandler{
		log:               log.With("handler", "ItemHandler"),
		itemService:       itemService,
		collectionService: collectionService,
	}
}

func (h *ItemHandler) Create(c *gin.Context) {
	collectionID, err := pathID(c, "collectionID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Mandatory: []string{"name"}, Allowed: []string{"item_type_id", "metadata"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	item := &types.Item{Name: bodyString(body, "name")}
	if raw := bodyString(body, "item_type_id"); raw != "" {
		typeID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, h.log, apierr.BadRequest("invalid item_type_id"))
			return
		}
		item.ItemTypeID = &typeID
	}
	if md, ok := body["metadata"].(map[string]any); ok {
		item.Metadata = datatypes.JSONMap(md)
	}
	created, err := h.itemService.Create(c.Request.Context(), reqData(c), collectionID, item)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, created)
}

// List serves the items of a collection; for a searching collection that is
// the materialized search result.
func (h *ItemHandler) List(c *gin.Context) {
	collectionID, err := pathID(c, "collectionID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	lq, err := listQuery(c, itemColumns)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	items, err := h.collectionService.Items(c.Request.Context(), reqData(c), collectionID, lq)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, items)
}

func (h *ItemHandler) Get(c *gin.Context) {
	id, err := pathID(c, "itemID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	item, err := h.itemService.Get(c.Request.Context(), reqData(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, item)
}

func (h *ItemHandler) Update(c *gin.Context) {
	id, err := pathID(c, "itemID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Allowed: []string{"name", "metadata", "item_type_id"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(body) == 0 {
		respondError(c, h.log, apierr.BadRequest("nothing to update"))
		return
	}
	if md, ok := body["metadata"].(map[string]any); ok {
		body["metadata"] = datatypes.JSONMap(md)
	}
	item, err := h.itemService.Update(c.Request.Context(), reqData(c), id, body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, item)
}

func (h *ItemHandler) Move(c *gin.Context) {
	id, err := pathID(c, "itemID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Mandatory: []string{"collection_id"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	collectionID, err := uuid.Parse(bodyString(body, "collection_id"))
	if err != nil {
		respondError(c, h.log, apierr.BadRequest("invalid collection_id"))
		return
	}
	item, err := h.itemService.Move(c.Request.Context(), reqData(c), id, collectionID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, item)
}

func (h *ItemHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "itemID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.itemService.Delete(c.Request.Context(), reqData(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondNoContent(c)
}

func (h *ItemHandler) Relate(c *gin.Context) {
	id, err := pathID(c, "itemID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Mandatory: []string{"item_id"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	otherID, err := uuid.Parse(bodyString(body, "item_id"))
	if err != nil {
		respondError(c, h.log, apierr.BadRequest("invalid item_id"))
		return
	}
	if err := h.itemService.Relate(c.Request.Context(), reqData(c), id, otherID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, gin.H{"item_id": id, "related_id": otherID})
}

func (h *ItemHandler) Unrelate(c *gin.Context) {
	id, err := pathID(c, "itemID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	otherID, err := pathID(c, "relatedID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.itemService.Unrelate(c.Request.Context(), reqData(c), id, otherID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondNoContent(c)
}
