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

// AddIdea validates in and persists the idea collection with it appended.
// Failure handling matches AddTodo.
func (r *Repository) AddIdea(ctx context.Context, in todo.NewIdea) (todo.Idea, error) {
	ctx = logging.WithCollection(logging.WithOperation(ctx, orOp(ctx, "idea.add")), kv.KeyIdeas)

	if err := in.Validate(); err != nil {
		return todo.Idea{}, err
	}

	r.mu.Lock()
	snapshot := r.ideas
	r.mu.Unlock()

	idea := in.Build(r.ids.NewID(), r.now())
	next := append(slices.Clip(snapshot), idea)

	if err := writeCollection(ctx, r, kv.KeyIdeas, next, codec.EncodeIdeas); err != nil {
		fallback := append(slices.Clip(snapshot), codec.ReduceIdea(idea))
		r.logFallback(ctx, kv.KeyIdeas, idea.ID, writeCollection(ctx, r, kv.KeyIdeas, fallback, codec.EncodeIdeas))
		return todo.Idea{}, fmt.Errorf("add idea: %w: %w", todo.ErrPersist, err)
	}

	r.mu.Lock()
	r.ideas = next
	r.mu.Unlock()

	return idea.Clone(), nil
}

// UpdateIdea merges patch into the idea with the given id. An unknown id is
// a no-op.
func (r *Repository) UpdateIdea(ctx context.Context, id string, patch todo.IdeaPatch) error {
	ctx = logging.WithOperation(ctx, orOp(ctx, "idea.update"))

	if err := patch.Validate(); err != nil {
		return err
	}

	r.mutateIdea(ctx, id, func(i todo.Idea) todo.Idea {
		return patch.Apply(i, r.now())
	})
	return nil
}

// ToggleFavorite flips the favorite flag of an idea. An unknown id is a no-op.
func (r *Repository) ToggleFavorite(ctx context.Context, id string) error {
	ctx = logging.WithOperation(ctx, orOp(ctx, "idea.favorite"))

	r.mutateIdea(ctx, id, func(i todo.Idea) todo.Idea {
		i = i.Clone()
		i.IsFavorite = !i.IsFavorite
		i.UpdatedAt = todo.Touch(i.CreatedAt, r.now())
		return i
	})
	return nil
}

// RemoveIdea deletes an idea. An unknown id is a no-op.
func (r *Repository) RemoveIdea(ctx context.Context, id string) error {
	ctx = logging.WithOperation(ctx, orOp(ctx, "idea.remove"))

	_, _ = r.removeIdea(ctx, id, true)
	return nil
}

// Idea returns a copy of the idea with the given id.
func (r *Repository) Idea(id string) (todo.Idea, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := indexIdea(r.ideas, id)
	if idx < 0 {
		return todo.Idea{}, false
	}
	return r.ideas[idx].Clone(), true
}

// Ideas returns a copy of the idea collection in stored order.
func (r *Repository) Ideas() []todo.Idea {
	r.mu.Lock()
	defer r.mu.Unlock()
	return todo.CloneIdeas(r.ideas)
}

// removeIdea deletes the idea and reports whether it existed along with the
// write error. With commitOnFailure the removal stands in memory even when
// the write fails, and the failure is logged; otherwise a failed write
// leaves the idea in place.
func (r *Repository) removeIdea(ctx context.Context, id string, commitOnFailure bool) (bool, error) {
	ctx = logging.WithCollection(ctx, kv.KeyIdeas)

	r.mu.Lock()
	snapshot := r.ideas
	r.mu.Unlock()

	idx := indexIdea(snapshot, id)
	if idx < 0 {
		return false, nil
	}

	next := slices.Delete(slices.Clone(snapshot), idx, idx+1)
	err := writeCollection(ctx, r, kv.KeyIdeas, next, codec.EncodeIdeas)
	if err != nil {
		if !commitOnFailure {
			return true, err
		}
		r.logUnpersisted(ctx, kv.KeyIdeas, len(next), err)
	}

	r.mu.Lock()
	r.ideas = next
	r.mu.Unlock()
	return true, err
}

func (r *Repository) mutateIdea(ctx context.Context, id string, fn func(todo.Idea) todo.Idea) {
	ctx = logging.WithCollection(ctx, kv.KeyIdeas)

	r.mu.Lock()
	snapshot := r.ideas
	r.mu.Unlock()

	idx := indexIdea(snapshot, id)
	if idx < 0 {
		return
	}

	next := slices.Clone(snapshot)
	next[idx] = fn(snapshot[idx])

	if err := writeCollection(ctx, r, kv.KeyIdeas, next, codec.EncodeIdeas); err != nil {
		r.logUnpersisted(ctx, kv.KeyIdeas, len(next), err)
	}

	r.mu.Lock()
	r.ideas = next
	r.mu.Unlock()
}

func indexIdea(ideas []todo.Idea, id string) int {
	return slices.IndexFunc(ideas, func(i todo.Idea) bool { return i.ID == id })
}
