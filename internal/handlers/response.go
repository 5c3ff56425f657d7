package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
)

// Every payload goes out in the same envelope: status is "success",
// "fail" (client fault) or "error" (server fault); count is only present on
// list responses.
type envelope struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Count  *int   `json:"count,omitempty"`
	Error  any    `json:"error,omitempty"`
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, envelope{Status: "success", Data: data})
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Status: "success", Data: data})
}

func respondList[T any](c *gin.Context, items []T) {
	n := len(items)
	c.JSON(http.StatusOK, envelope{Status: "success", Data: items, Count: &n})
}

func respondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// respondError funnels every handler error through the translation table.
// Operational errors keep their status and message; anything else becomes an
// opaque 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	translated := apierr.Translate(err)

	var apiErr *apierr.Error
	if errors.As(translated, &apiErr) && apiErr.Status < 500 {
		c.JSON(apiErr.Status, envelope{
			Status: "fail",
			Error:  gin.H{"message": apiErr.Error(), "code": apiErr.Code},
		})
		return
	}

	log.Error("unhandled error", "error", err, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, envelope{
		Status: "error",
		Error:  gin.H{"message": "something went wrong", "code": "internal"},
	})
}
