package docket

import (
	"fmt"

	"github.com/colonyops/docket/internal/core/config"
	"github.com/colonyops/docket/internal/core/ident"
	"github.com/colonyops/docket/internal/core/kv"
)

// App is the central entry point for all docket operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Repo     *Repository
	Settings *Settings

	Config *config.Config
	KV     kv.KV
}

// NewApp constructs an App over store using the configured id strategy,
// locale and default views.
func NewApp(cfg *config.Config, store kv.KV, opts ...Option) (*App, error) {
	ids, err := ident.New(cfg.IDs)
	if err != nil {
		return nil, fmt.Errorf("id generator: %w", err)
	}

	base := []Option{
		WithIDGenerator(ids),
		WithLocale(cfg.LocaleTag()),
		WithViews(cfg.View.TodoView(), cfg.IdeasView.IdeaView()),
	}

	return &App{
		Repo:     New(store, append(base, opts...)...),
		Settings: NewSettings(store),
		Config:   cfg,
		KV:       store,
	}, nil
}
