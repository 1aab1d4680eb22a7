package docket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/docket/internal/core/kv"
	"github.com/colonyops/docket/internal/core/todo"
)

func TestAddIdea(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := newTestRepo(t)

	idea, err := repo.AddIdea(ctx, todo.NewIdea{Title: "Podcast", Tags: []string{"media"}})
	require.NoError(t, err)
	assert.Equal(t, "Podcast", idea.Title)
	assert.False(t, idea.IsFavorite)
	assert.Equal(t, []todo.Idea{idea}, repo.Ideas())
	assert.Equal(t, []todo.Idea{idea}, storedIdeas(t, store))

	_, err = repo.AddIdea(ctx, todo.NewIdea{})
	require.ErrorIs(t, err, todo.ErrValidation)
}

func TestAddIdea_PersistFailure(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := newTestRepo(t)

	store.FailSetTimes(kv.KeyIdeas, 1, nil)
	_, err := repo.AddIdea(ctx, todo.NewIdea{Title: "Novel", Description: "long"})
	require.ErrorIs(t, err, todo.ErrPersist)
	assert.Empty(t, repo.Ideas())

	persisted := storedIdeas(t, store)
	require.Len(t, persisted, 1)
	assert.Equal(t, "Novel", persisted[0].Title)
	assert.Empty(t, persisted[0].Description)
}

func TestUpdateIdea(t *testing.T) {
	ctx := context.Background()
	repo, store, clock := newTestRepo(t)

	idea, err := repo.AddIdea(ctx, todo.NewIdea{Title: "Draft"})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	require.NoError(t, repo.UpdateIdea(ctx, idea.ID, todo.IdeaPatch{
		Title: ptr("Polished"),
		Tags:  ptr([]string{"writing"}),
	}))

	got, ok := repo.Idea(idea.ID)
	require.True(t, ok)
	assert.Equal(t, "Polished", got.Title)
	assert.Equal(t, []string{"writing"}, got.Tags)
	assert.Equal(t, epoch.Add(time.Minute), got.UpdatedAt)
	assert.Equal(t, []todo.Idea{got}, storedIdeas(t, store))

	require.NoError(t, repo.UpdateIdea(ctx, "missing", todo.IdeaPatch{Title: ptr("x")}))
	require.ErrorIs(t, repo.UpdateIdea(ctx, idea.ID, todo.IdeaPatch{Title: ptr("")}), todo.ErrValidation)
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := newTestRepo(t)

	idea, err := repo.AddIdea(ctx, todo.NewIdea{Title: "Star me"})
	require.NoError(t, err)

	require.NoError(t, repo.ToggleFavorite(ctx, idea.ID))
	got, _ := repo.Idea(idea.ID)
	assert.True(t, got.IsFavorite)
	assert.True(t, storedIdeas(t, store)[0].IsFavorite)

	store.FailSet(kv.KeyIdeas, nil)
	require.NoError(t, repo.ToggleFavorite(ctx, idea.ID))
	got, _ = repo.Idea(idea.ID)
	assert.False(t, got.IsFavorite, "kept in memory despite the failed write")

	require.NoError(t, repo.ToggleFavorite(ctx, "missing"))
}

func TestRemoveIdea(t *testing.T) {
	ctx := context.Background()
	repo, store, _ := newTestRepo(t)

	idea, err := repo.AddIdea(ctx, todo.NewIdea{Title: "Gone"})
	require.NoError(t, err)

	require.NoError(t, repo.RemoveIdea(ctx, idea.ID))
	assert.Empty(t, repo.Ideas())
	assert.Empty(t, storedIdeas(t, store))

	require.NoError(t, repo.RemoveIdea(ctx, idea.ID))
}
