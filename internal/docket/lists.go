package docket

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/colonyops/docket/internal/core/codec"
	"github.com/colonyops/docket/internal/core/kv"
	"github.com/colonyops/docket/internal/core/logging"
	"github.com/colonyops/docket/internal/core/todo"
)

// AddList creates a list named name.
func (r *Repository) AddList(ctx context.Context, name string) (todo.List, error) {
	ctx = logging.WithCollection(logging.WithOperation(ctx, orOp(ctx, "list.add")), kv.KeyTodoLists)

	if err := todo.ValidateListName(name); err != nil {
		return todo.List{}, err
	}

	r.mu.Lock()
	snapshot := r.lists
	r.mu.Unlock()

	now := r.now()
	l := todo.List{
		ID:        r.ids.NewID(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	next := append(slices.Clip(snapshot), l)

	if err := writeCollection(ctx, r, kv.KeyTodoLists, next, codec.EncodeLists); err != nil {
		return todo.List{}, fmt.Errorf("add list: %w: %w", todo.ErrPersist, err)
	}

	r.mu.Lock()
	r.lists = next
	r.mu.Unlock()

	return l, nil
}

// RenameList changes a list's name. An unknown id is a no-op.
func (r *Repository) RenameList(ctx context.Context, id, name string) error {
	ctx = logging.WithCollection(logging.WithOperation(ctx, orOp(ctx, "list.rename")), kv.KeyTodoLists)

	if err := todo.ValidateListName(name); err != nil {
		return err
	}

	r.mu.Lock()
	snapshot := r.lists
	r.mu.Unlock()

	idx := indexList(snapshot, id)
	if idx < 0 {
		return nil
	}

	next := slices.Clone(snapshot)
	next[idx].Name = strings.TrimSpace(name)
	next[idx].UpdatedAt = todo.Touch(next[idx].CreatedAt, r.now())
	r.commitLists(ctx, next)
	return nil
}

// RemoveList deletes a list and moves its todos to the default list. The
// todos are written before the list collection so a failure in between
// never leaves todos pointing at a missing list. The default list cannot be
// removed; an unknown id is a no-op.
func (r *Repository) RemoveList(ctx context.Context, id string) error {
	ctx = logging.WithOperation(ctx, orOp(ctx, "list.remove"))

	if id == todo.DefaultListID {
		return todo.ErrDefaultList
	}

	r.mu.Lock()
	lists := r.lists
	todos := r.todos
	r.mu.Unlock()

	idx := indexList(lists, id)
	if idx < 0 {
		return nil
	}

	now := r.now()
	reassigned := 0
	nextTodos := slices.Clone(todos)
	for i, t := range nextTodos {
		if t.ListID != id {
			continue
		}
		t = t.Clone()
		t.ListID = todo.DefaultListID
		t.UpdatedAt = todo.Touch(t.CreatedAt, now)
		nextTodos[i] = t
		reassigned++
	}

	if reassigned > 0 {
		r.commitTodos(logging.WithCollection(ctx, kv.KeyTodos), nextTodos)
	}

	next := slices.Delete(slices.Clone(lists), idx, idx+1)
	r.commitLists(logging.WithCollection(ctx, kv.KeyTodoLists), next)

	r.mu.Lock()
	if r.view.ListID == id {
		r.view.ListID = ""
	}
	r.mu.Unlock()

	r.log.Debug().Ctx(ctx).Str("list", id).Int("reassigned", reassigned).Msg("list removed")
	return nil
}

// Lists returns a copy of the list collection in stored order.
func (r *Repository) Lists() []todo.List {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.lists)
}

// commitLists persists next and installs it in memory regardless of the
// write outcome.
func (r *Repository) commitLists(ctx context.Context, next []todo.List) {
	if err := writeCollection(ctx, r, kv.KeyTodoLists, next, codec.EncodeLists); err != nil {
		r.logUnpersisted(ctx, kv.KeyTodoLists, len(next), err)
	}

	r.mu.Lock()
	r.lists = next
	r.mu.Unlock()
}

func indexList(lists []todo.List, id string) int {
	return slices.IndexFunc(lists, func(l todo.List) bool { return l.ID == id })
}
