package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/services"
)

var groupColumns = query.Columns("name", "owner_id", "created_at", "updated_at")

type GroupHandler struct {
	log          *logger.Logger
	groupService services.GroupService
}

func NewGroupHandler(log *logger.Logger, groupService services.GroupService) *GroupHandler {
	return &GroupHandler{log: log.With("handler", "GroupHandler"), groupService: groupService}
}

func (h *GroupHandler) Create(c *gin.Context) {
	body, err := readBody(c, bodySpec{Mandatory: []string{"name"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	group, err := h.groupService.Create(c.Request.Context(), reqData(c), bodyString(body, "name"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, group)
}

func (h *GroupHandler) List(c *gin.Context) {
	lq, err := listQuery(c, groupColumns)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	groups, err := h.groupService.List(c.Request.Context(), reqData(c), lq)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondList(c, groups)
}

func (h *GroupHandler) Get(c *gin.Context) {
	id, err := pathID(c, "groupID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	group, err := h.groupService.Get(c.Request.Context(), reqData(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, group)
}

func (h *GroupHandler) Update(c *gin.Context) {
	id, err := pathID(c, "groupID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Allowed: []string{"name"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(body) == 0 {
		respondError(c, h.log, apierr.BadRequest("nothing to update"))
		return
	}
	group, err := h.groupService.Update(c.Request.Context(), reqData(c), id, body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, group)
}

func (h *GroupHandler) SetLogo(c *gin.Context) {
	id, err := pathID(c, "groupID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	file, _, err := c.Request.FormFile("logo")
	if err != nil {
		respondError(c, h.log, apierr.BadRequest("missing logo file"))
		return
	}
	defer file.Close()
	raw, err := io.ReadAll(file)
	if err != nil {
		respondError(c, h.log, apierr.BadRequest("could not read logo file"))
		return
	}
	group, err := h.groupService.SetLogo(c.Request.Context(), reqData(c), id, raw)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, group)
}

func (h *GroupHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "groupID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.groupService.Delete(c.Request.Context(), reqData(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondNoContent(c)
}

func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID, err := pathID(c, "groupID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Mandatory: []string{"user_id"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	userID, err := uuid.Parse(bodyString(body, "user_id"))
	if err != nil {
		respondError(c, h.log, apierr.BadRequest("invalid user_id"))
		return
	}
	member, err := h.groupService.AddMember(c.Request.Context(), reqData(c), groupID, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, member)
}

func (h *GroupHandler) UpdateMember(c *gin.Context) {
	groupID, err := pathID(c, "groupID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	userID, err := pathID(c, "userID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	body, err := readBody(c, bodySpec{Allowed: []string{"can_add", "can_edit", "can_delete"}})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	updates := map[string]any{}
	for _, key := range []string{"can_add", "can_edit", "can_delete"} {
		if v, ok := bodyBool(body, key); ok {
			updates[key] = v
		}
	}
	if len(updates) == 0 {
		respondError(c, h.log, apierr.BadRequest("nothing to update"))
		return
	}
	member, err := h.groupService.UpdateMember(c.Request.Context(), reqData(c), groupID, userID, updates)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, member)
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID, err := pathID(c, "groupID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	userID, err := pathID(c, "userID")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.groupService.RemoveMember(c.Request.Context(), reqData(c), groupID, userID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondNoContent(c)
}
