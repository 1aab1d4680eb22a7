package docket

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/docket/internal/core/kv"
	"github.com/colonyops/docket/internal/core/todo"
)

func TestCheckLocation(t *testing.T) {
	ctx := context.Background()
	repo, store, clock := newTestRepo(t)

	// Ferry Building, San Francisco.
	ferry := todo.Location{Name: "Ferry Building", Latitude: 37.7955, Longitude: -122.3937, Radius: 200}
	near, err := repo.AddTodo(ctx, todo.NewTodo{Title: "Pick up bread", Location: &ferry})
	require.NoError(t, err)

	far := todo.Location{Name: "Golden Gate Park", Latitude: 37.7694, Longitude: -122.4862, Radius: 200}
	_, err = repo.AddTodo(ctx, todo.NewTodo{Title: "Picnic", Location: &far})
	require.NoError(t, err)

	_, err = repo.AddTodo(ctx, todo.NewTodo{Title: "No fence"})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	pos := todo.Coordinates{Latitude: 37.7960, Longitude: -122.3940}

	triggered, err := repo.CheckLocation(ctx, pos)
	require.NoError(t, err)
	require.Len(t, triggered, 1)
	assert.Equal(t, near.ID, triggered[0].ID)
	assert.True(t, triggered[0].Location.Triggered)
	assert.Equal(t, epoch.Add(time.Minute), triggered[0].UpdatedAt)

	assert.True(t, storedTodos(t, store)[0].Location.Triggered)

	before := store.Writes(kv.KeyTodos)
	again, err := repo.CheckLocation(ctx, pos)
	require.NoError(t, err)
	assert.Empty(t, again, "a triggered reminder fires once")
	assert.Equal(t, before, store.Writes(kv.KeyTodos))
}

func TestCheckLocation_RejectsInvalidPosition(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := newTestRepo(t)

	fence := todo.Location{Name: "Origin", Latitude: 0, Longitude: 0, Radius: 50000}
	_, err := repo.AddTodo(ctx, todo.NewTodo{Title: "Anywhere", Location: &fence})
	require.NoError(t, err)
	before := store.Writes(kv.KeyTodos)

	for _, pos := range []todo.Coordinates{
		{Latitude: 91, Longitude: 0},
		{Latitude: 0, Longitude: -181},
		{Latitude: math.NaN(), Longitude: 0},
	} {
		triggered, err := repo.CheckLocation(ctx, pos)
		require.ErrorIs(t, err, todo.ErrValidation)
		assert.Nil(t, triggered)
	}

	assert.False(t, repo.Todos()[0].Location.Triggered)
	assert.Equal(t, before, store.Writes(kv.KeyTodos))
}
