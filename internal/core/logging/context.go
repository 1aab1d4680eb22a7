package logging

import "context"

type contextKey string

const (
	operationKey  contextKey = "op"
	collectionKey contextKey = "collection"
)

// WithOperation tags the context with the name of the user-facing operation
// being performed (for example "todo.add").
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// WithCollection tags the context with the persisted collection key being
// read or written.
func WithCollection(ctx context.Context, collection string) context.Context {
	return context.WithValue(ctx, collectionKey, collection)
}

// GetOperation returns the operation name, or "" when absent.
func GetOperation(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey).(string); ok {
		return op
	}
	return ""
}

// GetCollection returns the collection key, or "" when absent.
func GetCollection(ctx context.Context) string {
	if c, ok := ctx.Value(collectionKey).(string); ok {
		return c
	}
	return ""
}
