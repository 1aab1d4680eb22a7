package docket

import (
	"context"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/docket/internal/core/kv"
	"github.com/colonyops/docket/internal/core/kv/kvtest"
	"github.com/colonyops/docket/internal/core/todo"
)

func TestAddTodo(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id, defaults and timestamps", func(t *testing.T) {
		repo, store, _ := newTestRepo(t)

		got, err := repo.AddTodo(ctx, todo.NewTodo{Title: "  Buy milk  ", Tags: []string{"shop"}})
		require.NoError(t, err)

		assert.Equal(t, "id-1", got.ID)
		assert.Equal(t, "Buy milk", got.Title)
		assert.Equal(t, todo.PriorityMedium, got.Priority)
		assert.Equal(t, todo.DefaultListID, got.ListID)
		assert.False(t, got.Completed)
		assert.Equal(t, epoch, got.CreatedAt)
		assert.Equal(t, epoch, got.UpdatedAt)

		assert.Equal(t, []todo.Todo{got}, repo.Todos())
		assert.Equal(t, []todo.Todo{got}, storedTodos(t, store))
	})

	t.Run("ids are never reused", func(t *testing.T) {
		repo, _, _ := newTestRepo(t)

		a, err := repo.AddTodo(ctx, todo.NewTodo{Title: "a"})
		require.NoError(t, err)
		require.NoError(t, repo.RemoveTodo(ctx, a.ID))
		b, err := repo.AddTodo(ctx, todo.NewTodo{Title: "b"})
		require.NoError(t, err)

		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("timestamps are truncated to milliseconds", func(t *testing.T) {
		repo, _, clock := newTestRepo(t)
		clock.Advance(1234567 * time.Nanosecond)

		got, err := repo.AddTodo(ctx, todo.NewTodo{Title: "precise"})
		require.NoError(t, err)
		assert.Equal(t, epoch.Add(time.Millisecond), got.CreatedAt)
	})

	t.Run("returned todo does not alias state", func(t *testing.T) {
		repo, _, _ := newTestRepo(t)

		got, err := repo.AddTodo(ctx, todo.NewTodo{Title: "tagged", Tags: []string{"a"}})
		require.NoError(t, err)
		got.Tags[0] = "mutated"

		stored, ok := repo.Todo(got.ID)
		require.True(t, ok)
		assert.Equal(t, []string{"a"}, stored.Tags)
	})
}

func TestAddTodo_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		in        todo.NewTodo
		wantField string
		wantIs    error
	}{
		{name: "empty title", in: todo.NewTodo{Title: ""}, wantField: "title"},
		{name: "blank title", in: todo.NewTodo{Title: "   "}, wantField: "title"},
		{name: "bad priority", in: todo.NewTodo{Title: "x", Priority: "urgent"}, wantField: "priority"},
		{name: "bad radius", in: todo.NewTodo{Title: "x", Location: &todo.Location{Radius: 0}}, wantField: "location.radius"},
		{name: "unknown list", in: todo.NewTodo{Title: "x", ListID: "nope"}, wantIs: todo.ErrListNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, store, _ := newTestRepo(t)
			before := store.Writes(kv.KeyTodos)

			_, err := repo.AddTodo(ctx, tt.in)
			require.ErrorIs(t, err, todo.ErrValidation)

			if tt.wantField != "" {
				var fieldErrs criterio.FieldErrors
				require.ErrorAs(t, err, &fieldErrs)
				assert.Equal(t, tt.wantField, fieldErrs[0].Field)
			}
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}

			assert.Equal(t, before, store.Writes(kv.KeyTodos), "validation happens before any write")
			assert.Empty(t, repo.Todos())
		})
	}
}

func TestAddTodo_PersistFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("fallback stores a reduced record", func(t *testing.T) {
		repo, store, _ := newTestRepo(t)
		existing, err := repo.AddTodo(ctx, todo.NewTodo{Title: "existing"})
		require.NoError(t, err)

		store.FailSetTimes(kv.KeyTodos, 1, nil)

		_, err = repo.AddTodo(ctx, todo.NewTodo{
			Title:       "Dentist",
			Description: "bring forms",
			Notes:       "floor 3",
			Priority:    todo.PriorityHigh,
			Tags:        []string{"health"},
			Location:    &todo.Location{Name: "Clinic", Latitude: 1, Longitude: 1, Radius: 50},
		})
		require.ErrorIs(t, err, todo.ErrPersist)
		require.ErrorIs(t, err, kvtest.ErrInjected)

		assert.Equal(t, []todo.Todo{existing}, repo.Todos(), "memory is untouched")

		persisted := storedTodos(t, store)
		require.Len(t, persisted, 2)
		reduced := persisted[1]
		assert.Equal(t, "Dentist", reduced.Title)
		assert.Equal(t, todo.PriorityHigh, reduced.Priority)
		assert.Equal(t, []string{"health"}, reduced.Tags)
		assert.Empty(t, reduced.Description)
		assert.Empty(t, reduced.Notes)
		assert.Nil(t, reduced.Location)
	})

	t.Run("failed fallback leaves store unchanged", func(t *testing.T) {
		repo, store, _ := newTestRepo(t)
		existing, err := repo.AddTodo(ctx, todo.NewTodo{Title: "existing"})
		require.NoError(t, err)

		store.FailSet(kv.KeyTodos, nil)
		before := store.Writes(kv.KeyTodos)

		_, err = repo.AddTodo(ctx, todo.NewTodo{Title: "lost"})
		require.ErrorIs(t, err, todo.ErrPersist)

		assert.Equal(t, before+2, store.Writes(kv.KeyTodos), "one write and one fallback")
		assert.Equal(t, []todo.Todo{existing}, repo.Todos())

		store.ClearFailures()
		assert.Equal(t, []todo.Todo{existing}, storedTodos(t, store))
	})
}

func TestUpdateTodo(t *testing.T) {
	ctx := context.Background()

	t.Run("merges fields and refreshes updatedAt", func(t *testing.T) {
		repo, store, clock := newTestRepo(t)
		created, err := repo.AddTodo(ctx, todo.NewTodo{Title: "Draft", Description: "keep"})
		require.NoError(t, err)

		clock.Advance(time.Minute)
		due := epoch.Add(48 * time.Hour)
		require.NoError(t, repo.UpdateTodo(ctx, created.ID, todo.TodoPatch{
			Title:    ptr("Final"),
			Priority: ptr(todo.PriorityLow),
			DueDate:  &due,
		}))

		got, ok := repo.Todo(created.ID)
		require.True(t, ok)
		assert.Equal(t, "Final", got.Title)
		assert.Equal(t, "keep", got.Description)
		assert.Equal(t, todo.PriorityLow, got.Priority)
		require.NotNil(t, got.DueDate)
		assert.True(t, due.Equal(*got.DueDate))
		assert.Equal(t, epoch, got.CreatedAt)
		assert.Equal(t, epoch.Add(time.Minute), got.UpdatedAt)

		assert.Equal(t, []todo.Todo{got}, storedTodos(t, store))
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		repo, store, _ := newTestRepo(t)
		before := store.Writes(kv.KeyTodos)

		require.NoError(t, repo.UpdateTodo(ctx, "missing", todo.TodoPatch{Title: ptr("x")}))
		assert.Equal(t, before, store.Writes(kv.KeyTodos))
	})

	t.Run("invalid patch is rejected", func(t *testing.T) {
		repo, _, _ := newTestRepo(t)
		created, err := repo.AddTodo(ctx, todo.NewTodo{Title: "ok"})
		require.NoError(t, err)

		err = repo.UpdateTodo(ctx, created.ID, todo.TodoPatch{Title: ptr(" ")})
		require.ErrorIs(t, err, todo.ErrValidation)

		err = repo.UpdateTodo(ctx, created.ID, todo.TodoPatch{ListID: ptr("ghost")})
		require.ErrorIs(t, err, todo.ErrListNotFound)

		got, _ := repo.Todo(created.ID)
		assert.Equal(t, created, got)
	})

	t.Run("persist failure keeps the change in memory", func(t *testing.T) {
		repo, store, _ := newTestRepo(t)
		created, err := repo.AddTodo(ctx, todo.NewTodo{Title: "before"})
		require.NoError(t, err)

		store.FailSet(kv.KeyTodos, nil)
		require.NoError(t, repo.UpdateTodo(ctx, created.ID, todo.TodoPatch{Title: ptr("after")}))

		got, _ := repo.Todo(created.ID)
		assert.Equal(t, "after", got.Title)

		store.ClearFailures()
		assert.Equal(t, "before", storedTodos(t, store)[0].Title, "durable copy lags")
	})

	t.Run("patch cannot reset a triggered location", func(t *testing.T) {
		repo, _, _ := newTestRepo(t)
		created, err := repo.AddTodo(ctx, todo.NewTodo{
			Title:    "geo",
			Location: &todo.Location{Latitude: 10, Longitude: 10, Radius: 100},
		})
		require.NoError(t, err)

		_, err = repo.CheckLocation(ctx, todo.Coordinates{Latitude: 10, Longitude: 10})
		require.NoError(t, err)

		require.NoError(t, repo.UpdateTodo(ctx, created.ID, todo.TodoPatch{
			Location: &todo.Location{Latitude: 10, Longitude: 10, Radius: 200, Triggered: false},
		}))

		got, _ := repo.Todo(created.ID)
		require.NotNil(t, got.Location)
		assert.True(t, got.Location.Triggered)
		assert.InDelta(t, 200, got.Location.Radius, 0.001)
	})
}

func TestToggleCompleted(t *testing.T) {
	ctx := context.Background()
	repo, store, clock := newTestRepo(t)

	created, err := repo.AddTodo(ctx, todo.NewTodo{Title: "flip"})
	require.NoError(t, err)

	clock.Advance(time.Second)
	require.NoError(t, repo.ToggleCompleted(ctx, created.ID))
	got, _ := repo.Todo(created.ID)
	assert.True(t, got.Completed)
	assert.Equal(t, epoch.Add(time.Second), got.UpdatedAt)
	assert.True(t, storedTodos(t, store)[0].Completed)

	require.NoError(t, repo.ToggleCompleted(ctx, created.ID))
	got, _ = repo.Todo(created.ID)
	assert.False(t, got.Completed)

	require.NoError(t, repo.ToggleCompleted(ctx, "missing"))
}

func TestRemoveTodo(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := newTestRepo(t)

	a, err := repo.AddTodo(ctx, todo.NewTodo{Title: "a"})
	require.NoError(t, err)
	b, err := repo.AddTodo(ctx, todo.NewTodo{Title: "b"})
	require.NoError(t, err)

	require.NoError(t, repo.RemoveTodo(ctx, a.ID))
	assert.Equal(t, []todo.Todo{b}, repo.Todos())
	assert.Equal(t, []todo.Todo{b}, storedTodos(t, store))
	assert.Len(t, repo.Lists(), 1, "removing a todo has no side effects")

	before := store.Writes(kv.KeyTodos)
	require.NoError(t, repo.RemoveTodo(ctx, a.ID))
	assert.Equal(t, before, store.Writes(kv.KeyTodos))

	store.FailSet(kv.KeyTodos, nil)
	require.NoError(t, repo.RemoveTodo(ctx, b.ID))
	assert.Empty(t, repo.Todos())
}
