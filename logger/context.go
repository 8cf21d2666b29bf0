package logger

import "context"

type contextKey string

const (
	ConversationIDKey contextKey = "conversation_id"
	RequestIDKey      contextKey = "request_id"
)

func WithConversationID(ctx context.Context, conversationID string) context.Context {
	return context.WithValue(ctx, ConversationIDKey, conversationID)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetConversationID(ctx context.Context) string {
	if id, ok := ctx.Value(ConversationIDKey).(string); ok {
		return id
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// FieldsFromContext returns the key/value pairs carried by ctx.
func FieldsFromContext(ctx context.Context) []any {
	fields := make([]any, 0, 4)
	if ctx == nil {
		return fields
	}

	if id := GetConversationID(ctx); id != "" {
		fields = append(fields, string(ConversationIDKey), id)
	}

	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, string(RequestIDKey), id)
	}

	return fields
}
