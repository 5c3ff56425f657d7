package handlers

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/refera/refera-backend/internal/apierr"
)

// bodySpec whitelists what a JSON body may carry. Mandatory keys must be
// present; anything outside mandatory+allowed rejects the request instead of
// being silently dropped.
type bodySpec struct {
	Mandatory []string
	Allowed   []string
}

// readBody decodes the request body against the whitelist and returns the raw
// key/value map. Unknown keys are a client error.
func readBody(c *gin.Context, spec bodySpec) (map[string]any, error) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, apierr.BadRequest("could not read request body")
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	body := map[string]any{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, apierr.BadRequest("request body is not valid JSON")
	}

	permitted := make(map[string]bool, len(spec.Mandatory)+len(spec.Allowed))
	for _, k := range spec.Mandatory {
		permitted[k] = true
	}
	for _, k := range spec.Allowed {
		permitted[k] = true
	}

	var unknown []string
	for k := range body {
		if !permitted[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		return nil, apierr.BadRequest("unexpected fields: %s", strings.Join(unknown, ", "))
	}
	for _, k := range spec.Mandatory {
		if _, ok := body[k]; !ok {
			return nil, apierr.BadRequest("missing mandatory field %q", k)
		}
	}
	return body, nil
}

// bodyString pulls a string field out of a decoded body. Missing keys come
// back as the empty string.
func bodyString(body map[string]any, key string) string {
	if v, ok := body[key].(string); ok {
		return v
	}
	return ""
}

func bodyBool(body map[string]any, key string) (bool, bool) {
	v, ok := body[key].(bool)
	return v, ok
}
