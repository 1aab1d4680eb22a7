package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/docket/internal/core/config"
	"github.com/colonyops/docket/internal/data/stores"
	"github.com/colonyops/docket/internal/docket"
)

// Setup loads the configuration, opens the storage backend and loads the
// repository, filling flags.Config, flags.Storage and *flags.App. The
// returned closer releases the backend.
func Setup(ctx context.Context, flags *Flags) (func() error, error) {
	cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if flags.Backend != "" && flags.Backend != cfg.Storage.Backend {
		cfg.Storage.Backend = flags.Backend
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --backend: %w", err)
		}
	}
	flags.Config = cfg

	opened, err := stores.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	flags.Storage = opened

	app, err := docket.NewApp(cfg, opened.KV)
	if err != nil {
		_ = opened.Close()
		return nil, err
	}

	if err := app.Repo.Load(ctx); err != nil {
		_ = opened.Close()
		return nil, fmt.Errorf("load data: %w", err)
	}

	if flags.App == nil {
		flags.App = app
	} else {
		*flags.App = *app
	}

	return opened.Close, nil
}
