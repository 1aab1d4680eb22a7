package docket

import (
	"context"
	"fmt"

	"github.com/colonyops/docket/internal/core/logging"
	"github.com/colonyops/docket/internal/core/todo"
)

// ConvertOptions places the todo created from an idea.
type ConvertOptions struct {
	ListID   string        // empty means the default list
	Priority todo.Priority // empty means todo.DefaultPriority
}

// ConvertIdea turns an idea into a todo in two steps: the todo is added,
// then the idea is removed.
//
// If the add fails nothing changes and the error is returned. If the add
// succeeds but the removal cannot be written, the new todo is returned
// together with a *todo.ConversionError; the idea stays in place, so both
// exist until the caller removes one. The removal is not retried.
func (r *Repository) ConvertIdea(ctx context.Context, ideaID string, opts ConvertOptions) (todo.Todo, error) {
	ctx = logging.WithOperation(ctx, orOp(ctx, "idea.convert"))

	idea, ok := r.Idea(ideaID)
	if !ok {
		return todo.Todo{}, fmt.Errorf("idea %q: %w", ideaID, todo.ErrNotFound)
	}

	t, err := r.AddTodo(ctx, todo.NewTodo{
		Title:       idea.Title,
		Description: idea.Description,
		Tags:        idea.Tags,
		ListID:      opts.ListID,
		Priority:    opts.Priority,
	})
	if err != nil {
		return todo.Todo{}, fmt.Errorf("convert idea %q: %w", ideaID, err)
	}

	if _, err := r.removeIdea(ctx, ideaID, false); err != nil {
		r.log.Error().Ctx(ctx).
			Err(err).
			Str("idea", ideaID).
			Str("todo", t.ID).
			Msg("idea converted but not removed")
		return t, &todo.ConversionError{TodoID: t.ID, IdeaID: ideaID, Err: err}
	}

	return t, nil
}
