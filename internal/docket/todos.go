package docket

import (
	"context"
	"fmt"
	"slices"

	"github.com/colonyops/docket/internal/core/codec"
	"github.com/colonyops/docket/internal/core/kv"
	"github.com/colonyops/docket/internal/core/logging"
	"github.com/colonyops/docket/internal/core/todo"
)

// AddTodo validates in, assigns an id and timestamps, and persists the
// collection with the new todo appended. The todo becomes visible only after
// the write succeeds. When the write fails a fallback write of the reduced
// record is attempted and an error wrapping todo.ErrPersist is returned.
func (r *Repository) AddTodo(ctx context.Context, in todo.NewTodo) (todo.Todo, error) {
	ctx = logging.WithCollection(logging.WithOperation(ctx, orOp(ctx, "todo.add")), kv.KeyTodos)

	if err := in.Validate(); err != nil {
		return todo.Todo{}, err
	}

	r.mu.Lock()
	snapshot := r.todos
	listOK := in.ListID == "" || r.hasList(in.ListID)
	r.mu.Unlock()

	if !listOK {
		return todo.Todo{}, listNotFound(in.ListID)
	}

	t := in.Build(r.ids.NewID(), r.now())
	next := append(slices.Clip(snapshot), t)

	if err := writeCollection(ctx, r, kv.KeyTodos, next, codec.EncodeTodos); err != nil {
		fallback := append(slices.Clip(snapshot), codec.ReduceTodo(t))
		r.logFallback(ctx, kv.KeyTodos, t.ID, writeCollection(ctx, r, kv.KeyTodos, fallback, codec.EncodeTodos))
		return todo.Todo{}, fmt.Errorf("add todo: %w: %w", todo.ErrPersist, err)
	}

	r.mu.Lock()
	r.todos = next
	r.mu.Unlock()

	return t.Clone(), nil
}

// UpdateTodo merges patch into the todo with the given id and refreshes its
// UpdatedAt. An unknown id is a no-op. The change is kept in memory even when
// it cannot be persisted.
func (r *Repository) UpdateTodo(ctx context.Context, id string, patch todo.TodoPatch) error {
	ctx = logging.WithOperation(ctx, orOp(ctx, "todo.update"))

	if err := patch.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	listOK := patch.ListID == nil || r.hasList(*patch.ListID)
	r.mu.Unlock()

	return r.mutateTodo(ctx, id, func(t todo.Todo) (todo.Todo, error) {
		if !listOK {
			return t, listNotFound(*patch.ListID)
		}
		return patch.Apply(t, r.now()), nil
	})
}

// ToggleCompleted flips the completion state of a todo. An unknown id is a
// no-op.
func (r *Repository) ToggleCompleted(ctx context.Context, id string) error {
	ctx = logging.WithOperation(ctx, orOp(ctx, "todo.toggle"))

	return r.mutateTodo(ctx, id, func(t todo.Todo) (todo.Todo, error) {
		t = t.Clone()
		t.Completed = !t.Completed
		t.UpdatedAt = todo.Touch(t.CreatedAt, r.now())
		return t, nil
	})
}

// RemoveTodo deletes a todo. An unknown id is a no-op.
func (r *Repository) RemoveTodo(ctx context.Context, id string) error {
	ctx = logging.WithCollection(logging.WithOperation(ctx, orOp(ctx, "todo.remove")), kv.KeyTodos)

	r.mu.Lock()
	snapshot := r.todos
	r.mu.Unlock()

	idx := indexTodo(snapshot, id)
	if idx < 0 {
		return nil
	}

	next := slices.Delete(slices.Clone(snapshot), idx, idx+1)
	r.commitTodos(ctx, next)
	return nil
}

// Todo returns a copy of the todo with the given id.
func (r *Repository) Todo(id string) (todo.Todo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := indexTodo(r.todos, id)
	if idx < 0 {
		return todo.Todo{}, false
	}
	return r.todos[idx].Clone(), true
}

// Todos returns a copy of the whole collection in stored order.
func (r *Repository) Todos() []todo.Todo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return todo.CloneTodos(r.todos)
}

// mutateTodo replaces the todo with the given id by fn's result and
// persists. fn errors abort before any write.
func (r *Repository) mutateTodo(ctx context.Context, id string, fn func(todo.Todo) (todo.Todo, error)) error {
	ctx = logging.WithCollection(ctx, kv.KeyTodos)

	r.mu.Lock()
	snapshot := r.todos
	r.mu.Unlock()

	idx := indexTodo(snapshot, id)
	if idx < 0 {
		return nil
	}

	updated, err := fn(snapshot[idx])
	if err != nil {
		return err
	}

	next := slices.Clone(snapshot)
	next[idx] = updated
	r.commitTodos(ctx, next)
	return nil
}

// commitTodos persists next and installs it in memory regardless of the
// write outcome.
func (r *Repository) commitTodos(ctx context.Context, next []todo.Todo) {
	if err := writeCollection(ctx, r, kv.KeyTodos, next, codec.EncodeTodos); err != nil {
		r.logUnpersisted(ctx, kv.KeyTodos, len(next), err)
	}

	r.mu.Lock()
	r.todos = next
	r.mu.Unlock()
}

// hasList reports whether id names a known list. The default list always
// exists. Callers hold mu.
func (r *Repository) hasList(id string) bool {
	return id == todo.DefaultListID || containsList(r.lists, id)
}

func indexTodo(todos []todo.Todo, id string) int {
	return slices.IndexFunc(todos, func(t todo.Todo) bool { return t.ID == id })
}
