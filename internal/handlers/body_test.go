package handlers

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/refera/refera-backend/internal/apierr"
)

func jsonContext(t *testing.T, payload string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", strings.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

func TestReadBodyWhitelist(t *testing.T) {
	c := jsonContext(t, `{"name":"Papers","private":true}`)
	body, err := readBody(c, bodySpec{Mandatory: []string{"name"}, Allowed: []string{"private", "group_id"}})
	if err != nil {
		t.Fatalf("readBody failed: %v", err)
	}
	if bodyString(body, "name") != "Papers" {
		t.Fatalf("unexpected name: %v", body["name"])
	}
	if v, ok := bodyBool(body, "private"); !ok || !v {
		t.Fatalf("unexpected private: %v", body["private"])
	}
}

func TestReadBodyRejectsUnknownFields(t *testing.T) {
	c := jsonContext(t, `{"name":"Papers","role":"admin"}`)
	_, err := readBody(c, bodySpec{Mandatory: []string{"name"}})
	if err == nil {
		t.Fatal("expected rejection of unknown field")
	}
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != 400 {
		t.Fatalf("expected 400, got %v", err)
	}
	if !strings.Contains(err.Error(), "role") {
		t.Fatalf("error should name the offending field: %v", err)
	}
}

func TestReadBodyMissingMandatory(t *testing.T) {
	c := jsonContext(t, `{"private":false}`)
	_, err := readBody(c, bodySpec{Mandatory: []string{"name"}, Allowed: []string{"private"}})
	if err == nil {
		t.Fatal("expected rejection for missing mandatory field")
	}
	if !strings.Contains(err.Error(), "name") {
		t.Fatalf("error should name the missing field: %v", err)
	}
}

func TestReadBodyEmptyAndInvalid(t *testing.T) {
	c := jsonContext(t, "")
	body, err := readBody(c, bodySpec{Allowed: []string{"name"}})
	if err != nil || len(body) != 0 {
		t.Fatalf("empty body should decode to empty map: %v, %v", body, err)
	}

	c = jsonContext(t, "not json")
	if _, err := readBody(c, bodySpec{}); err == nil {
		t.Fatal("expected rejection of invalid JSON")
	}
}
