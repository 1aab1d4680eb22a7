package docket

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/docket/internal/core/config"
	"github.com/colonyops/docket/internal/core/ident"
	"github.com/colonyops/docket/internal/core/kv/kvtest"
	"github.com/colonyops/docket/internal/core/query"
	"github.com/colonyops/docket/internal/core/todo"
)

func TestNewApp(t *testing.T) {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.IDs = ident.StrategyUUIDv7
	cfg.View.Sort = string(query.SortPriority)
	cfg.IdeasView.Filter = string(query.IdeaFilterFavorites)

	app, err := NewApp(&cfg, kvtest.New(), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.NoError(t, app.Repo.Load(ctx))

	created, err := app.Repo.AddTodo(ctx, todo.NewTodo{Title: "uuid backed"})
	require.NoError(t, err)
	parsed, err := uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	assert.Equal(t, query.SortPriority, app.Repo.TodoView().Sort)
	assert.Equal(t, query.IdeaFilterFavorites, app.Repo.IdeaView().Filter)

	us, err := app.Settings.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, todo.DefaultUserSettings(), us)
}

func TestNewApp_UnknownIDStrategy(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.IDs = "sequential"

	_, err := NewApp(&cfg, kvtest.New())
	require.Error(t, err)
}
