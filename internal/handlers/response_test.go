package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/refera/refera-backend/internal/apierr"
	"github.com/refera/refera-backend/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	require.NoError(t, err)
	return log
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondList(c, []string{"a", "b"})

	require.Equal(t, 200, rec.Code)
	body := decodeEnvelope(t, rec)
	require.Equal(t, "success", body["status"])
	require.EqualValues(t, 2, body["count"])
}

func TestRespondErrorOperational(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondError(c, testLogger(t), apierr.New(403, "forbidden", errors.New("you may not edit this library")))

	require.Equal(t, 403, rec.Code)
	body := decodeEnvelope(t, rec)
	require.Equal(t, "fail", body["status"])
	errObj := body["error"].(map[string]any)
	require.Equal(t, "forbidden", errObj["code"])
	require.Equal(t, "you may not edit this library", errObj["message"])
}

func TestRespondErrorTranslatesNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondError(c, testLogger(t), gorm.ErrRecordNotFound)

	require.Equal(t, 404, rec.Code)
	body := decodeEnvelope(t, rec)
	require.Equal(t, "fail", body["status"])
}

func TestRespondErrorOpaqueInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondError(c, testLogger(t), errors.New("connection refused to 10.0.0.3"))

	require.Equal(t, 500, rec.Code)
	body := decodeEnvelope(t, rec)
	require.Equal(t, "error", body["status"])
	errObj := body["error"].(map[string]any)
	require.Equal(t, "something went wrong", errObj["message"])
	require.NotContains(t, errObj["message"], "10.0.0.3")
}
