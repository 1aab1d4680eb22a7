package docket

import (
	"context"
	"slices"

	"github.com/colonyops/docket/internal/core/kv"
	"github.com/colonyops/docket/internal/core/logging"
	"github.com/colonyops/docket/internal/core/todo"
)

// CheckLocation marks every untriggered geofenced todo containing pos as
// triggered and returns the todos that were triggered by this call. A
// triggered location is never reset. The only error is a validation error
// for a position outside the WGS84 ranges; persistence is best effort, as
// for UpdateTodo.
func (r *Repository) CheckLocation(ctx context.Context, pos todo.Coordinates) ([]todo.Todo, error) {
	ctx = logging.WithCollection(logging.WithOperation(ctx, orOp(ctx, "todo.location")), kv.KeyTodos)

	if err := pos.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	snapshot := r.todos
	r.mu.Unlock()

	now := r.now()
	var (
		next      []todo.Todo
		triggered []todo.Todo
	)
	for i, t := range snapshot {
		if t.Location == nil || t.Location.Triggered || !t.Location.Contains(pos) {
			continue
		}
		if next == nil {
			next = slices.Clone(snapshot)
		}

		t = t.Clone()
		t.Location.Triggered = true
		t.UpdatedAt = todo.Touch(t.CreatedAt, now)
		next[i] = t
		triggered = append(triggered, t.Clone())
	}

	if next == nil {
		return []todo.Todo{}, nil
	}

	r.commitTodos(ctx, next)
	r.log.Info().Ctx(ctx).Int("triggered", len(triggered)).Msg("location reminders triggered")
	return triggered, nil
}
