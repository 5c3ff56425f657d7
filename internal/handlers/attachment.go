package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/services"
	"github.com/refera/refera-backend/internal/types"
)

var attachmentColumns = query.Columns("name", "type_id", "created_at", "updated_at")

type AttachmentHandler struct {
	log               *logger.Logger
	attachmentService services.AttachmentService
}

func NewAttachmentHandler(log *logger.Logger, attachmentService services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{
		log:               log.With("handler", "AttachmentHandler"),
		attachmentService: attachmentService,
	}
}

// Upload accepts a multipart form with a "file" part plus optional name,
// type_id and pages fields.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	itemID, err := pathID(c, "itemID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, h.log, apierr.BadRequest("missing file upload"))
		return
	}
	defer file.Close()

	attachment := &types.Attachment{
		Name:     c.PostForm("name"),
		Filename: header.Filename,
	}
	if attachment.Name == "" {
		attachment.Name = header.Filename
	}
	if raw := c.PostForm("type_id"); raw != "" {
		typeID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, h.log, apierr.BadRequest("invalid type_id"))
			return
		}
		attachment.TypeID = &typeID
	}

	created, err := h.attachmentService.Upload(c.Request.Context(), reqData(c), itemID, attachment, file)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, created)
}

func (h *AttachmentHandler) List(c *gin.Context) {
	itemID, err := pathID(c, "itemID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	lq, err := listQuery(c, attachmentColumns)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	attachments, err := h.attachmentService.List(c.Request.Context(), reqData(c), itemID, lq)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, attachments)
}

func (h *AttachmentHandler) Get(c *gin.Context) {
	id, err := pathID(c, "attachmentID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	attachment, err := h.attachmentService.Get(c.Request.Context(), reqData(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, attachment)
}

// Download streams the stored file back to the client.
func (h *AttachmentHandler) Download(c *gin.Context) {
	id, err := pathID(c, "attachmentID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	attachment, rc, err := h.attachmentService.Download(c.Request.Context(), reqData(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	defer rc.Close()

	filename := attachment.Filename
	if filename == "" {
		filename = attachment.Name
	}
	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
	})
}

func (h *AttachmentHandler) Update(c *gin.Context) {
	id, err := pathID(c, "attachmentID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Allowed: []string{"name", "pages"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(body) == 0 {
		respondError(c, h.log, apierr.BadRequest("nothing to update"))
		return
	}
	attachment, err := h.attachmentService.Update(c.Request.Context(), reqData(c), id, body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, attachment)
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "attachmentID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.attachmentService.Delete(c.Request.Context(), reqData(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondNoContent(c)
}

// SetPrimary marks the attachment as its item's primary attachment.
func (h *AttachmentHandler) SetPrimary(c *gin.Context) {
	id, err := pathID(c, "attachmentID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	item, err := h.attachmentService.SetPrimary(c.Request.Context(), reqData(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, item)
}
