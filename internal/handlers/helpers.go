package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/query"
	"github.com/refera/refera-backend/internal/requestdata"
)

func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apierr.BadRequest("invalid %s", name)
	}
	return id, nil
}

func reqData(c *gin.Context) *requestdata.RequestData {
	return requestdata.GetRequestData(c.Request.Context())
}

func listQuery(c *gin.Context, allowed map[string]string) (*query.ListQuery, error) {
	return query.Parse(c.Request.URL.Query(), allowed)
}
