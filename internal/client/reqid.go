package client

import "context"

type ctxKey string

const ctxRequestID ctxKey = "request_id"

// ContextWithRequestID кладёт X-Request-Id входящего запроса в контекст,
// чтобы исходящие запросы к бэкенду несли тот же id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestID, id)
}

// RequestIDFrom достаёт id запроса из контекста ("" если нет).
func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestID).(string); ok {
		return v
	}

	return ""
}
