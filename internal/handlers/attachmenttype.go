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

var attachmentTypeColumns = query.Columns("name", "created_at", "updated_at")

type AttachmentTypeHandler struct {
	log                   *logger.Logger
	attachmentTypeService services.AttachmentTypeService
}

func NewAttachmentTypeHandler(log *logger.Logger, attachmentTypeService services.AttachmentTypeService) *AttachmentTypeHandler {
	return &AttachmentTypeHandler{
		log:                   log.With("handler", "AttachmentTypeHandler"),
		attachmentTypeService: attachmentTypeService,
	}
}

func (h *AttachmentTypeHandler) Create(c *gin.Context) {
	body, err := readBody(c, bodySpec{Mandatory: []string{"name"}, Allowed: []string{"api", "icon", "metadata_keys"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	at := &types.AttachmentType{Name: bodyString(body, "name")}
	if api := bodyString(body, "api"); api != "" {
		at.API = &api
	}
	if icon := bodyString(body, "icon"); icon != "" {
		at.Icon = icon
	}
	if keys, ok := body["metadata_keys"].([]any); ok {
		for _, k := range keys {
			s, ok := k.(string)
			if !ok {
				respondError(c, h.log, apierr.BadRequest("metadata_keys must be strings"))
				return
			}
			at.MetadataKeys = append(at.MetadataKeys, s)
		}
	}
	created, err := h.attachmentTypeService.Create(c.Request.Context(), reqData(c), at)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, created)
}

func (h *AttachmentTypeHandler) List(c *gin.Context) {
	lq, err := listQuery(c, attachmentTypeColumns)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	ats, err := h.attachmentTypeService.List(c.Request.Context(), lq)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, ats)
}

func (h *AttachmentTypeHandler) Get(c *gin.Context) {
	id, err := pathID(c, "typeID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	at, err := h.attachmentTypeService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, at)
}

func (h *AttachmentTypeHandler) Update(c *gin.Context) {
	id, err := pathID(c, "typeID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Allowed: []string{"name", "api", "icon", "metadata_keys"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(body) == 0 {
		respondError(c, h.log, apierr.BadRequest("nothing to update"))
		return
	}
	if keys, ok := body["metadata_keys"].([]any); ok {
		slice := datatypes.JSONSlice[string]{}
		for _, k := range keys {
			s, ok := k.(string)
			if !ok {
				respondError(c, h.log, apierr.BadRequest("metadata_keys must be strings"))
				return
			}
			slice = append(slice, s)
		}
		body["metadata_keys"] = slice
	}
	at, err := h.attachmentTypeService.Update(c.Request.Context(), reqData(c), id, body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, at)
}

func (h *AttachmentTypeHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "typeID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.attachmentTypeService.Delete(c.Request.Context(), reqData(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondNoContent(c)
}
