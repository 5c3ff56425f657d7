package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/services"
)

var userColumns = query.Columns("name", "email", "role", "created_at", "updated_at")

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), userService: userService}
}

func (h *UserHandler) List(c *gin.Context) {
	lq, err := listQuery(c, userColumns)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	users, err := h.userService.List(c.Request.Context(), lq)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, users)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := pathID(c, "userID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	id, err := pathID(c, "userID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Allowed: []string{"name", "email", "role"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(body) == 0 {
		respondError(c, h.log, apierr.BadRequest("nothing to update"))
		return
	}
	user, err := h.userService.Update(c.Request.Context(), reqData(c), id, body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, user)
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	file, _, err := c.Request.FormFile("avatar")
	if err != nil {
		respondError(c, h.log, apierr.BadRequest("missing avatar file"))
		return
	}
	defer file.Close()
	raw, err := io.ReadAll(file)
	if err != nil {
		respondError(c, h.log, apierr.BadRequest("could not read avatar file"))
		return
	}
	user, err := h.userService.SetAvatar(c.Request.Context(), reqData(c), raw)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "userID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.userService.Delete(c.Request.Context(), reqData(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondNoContent(c)
}
