package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type requestDataCtxKey struct{}

var requestDataKey = requestDataCtxKey{}

// RequestData is the typed per-request state threaded through the handler
// chain in place of ad hoc request properties.
type RequestData struct {
	TokenString string
	TokenIAT    int64
	UserID      uuid.UUID
	Role        string
}

func (rd *RequestData) IsAdmin() bool {
	return rd != nil && rd.Role == "admin"
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}
