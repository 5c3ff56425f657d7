package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/services"
)

var noteColumns = query.Columns("created_at", "updated_at")

// NoteHandler serves notes nested under both items and collections; the
// parent kind is fixed per route.
type NoteHandler struct {
	log         *logger.Logger
	noteService services.NoteService
}

func NewNoteHandler(log *logger.Logger, noteService services.NoteService) *NoteHandler {
	return &NoteHandler{
		log:         log.With("handler", "NoteHandler"),
		noteService: noteService,
	}
}

func (h *NoteHandler) Create(kind, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		parentID, err := pathID(c, param)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		body, err := readBody(c, bodySpec{Mandatory: []string{"text"}})
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		note, err := h.noteService.Create(c.Request.Context(), reqData(c), kind, parentID, bodyString(body, "text"))
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		respondCreated(c, note)
	}
}

func (h *NoteHandler) List(kind, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		parentID, err := pathID(c, param)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		lq, err := listQuery(c, noteColumns)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		notes, err := h.noteService.List(c.Request.Context(), reqData(c), kind, parentID, lq)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		respondList(c, notes)
	}
}

func (h *NoteHandler) Get(c *gin.Context) {
	id, err := pathID(c, "noteID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	note, err := h.noteService.Get(c.Request.Context(), reqData(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, note)
}

func (h *NoteHandler) Update(c *gin.Context) {
	id, err := pathID(c, "noteID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Mandatory: []string{"text"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	text := bodyString(body, "text")
	if text == "" {
		respondError(c, h.log, apierr.BadRequest("text must not be empty"))
		return
	}
	note, err := h.noteService.Update(c.Request.Context(), reqData(c), id, text)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, note)
}

func (h *NoteHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "noteID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.noteService.Delete(c.Request.Context(), reqData(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondNoContent(c)
}
