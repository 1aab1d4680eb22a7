package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies the operation and collection tags from the event's
// context into the log event.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if op := GetOperation(ctx); op != "" {
		e.Str("op", op)
	}

	if c := GetCollection(ctx); c != "" {
		e.Str("collection", c)
	}
}
