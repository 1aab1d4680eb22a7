package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/docket/internal/data/stores"
	"github.com/colonyops/docket/internal/docket/resync"
)

// WatchCmd keeps the repository in sync with the store and reports the todo
// count whenever it changes.
type WatchCmd struct {
	flags *Flags

	interval time.Duration
}

// NewWatchCmd creates a new watch command.
func NewWatchCmd(flags *Flags) *WatchCmd {
	return &WatchCmd{flags: flags}
}

// Register adds the watch command to the application.
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Reload from the store whenever it changes",
		UsageText: "docket watch [--interval <duration>]",
		Description: `Prints the number of todos, then reloads every collection from the
store and prints the count again whenever the data changes.

The file backend is watched for changes on disk. Other backends are
polled every resync_interval (or --interval). Stop with Ctrl-C.`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:        "interval",
				Usage:       "polling interval (overrides resync_interval)",
				Destination: &cmd.interval,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *WatchCmd) run(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := c.Root().Writer
	repo := cmd.flags.App.Repo

	last := len(repo.Todos())
	_, _ = fmt.Fprintf(out, "%d todo(s)\n", last)

	interval := cmd.flags.Config.ResyncInterval
	if cmd.interval > 0 {
		interval = cmd.interval
	}

	var trigger <-chan struct{}
	if fs := cmd.flags.Storage.File; fs != nil {
		watcher, err := stores.NewFileWatcher(fs.Path())
		if err != nil {
			return fmt.Errorf("watch %s: %w", fs.Path(), err)
		}
		defer func() { _ = watcher.Close() }()

		trigger = watcher.Changes()
		if cmd.interval == 0 {
			interval = 0
		}
	}

	reporter := resync.ReloaderFunc(func(ctx context.Context) (int, error) {
		n, err := repo.ReloadFromStore(ctx)
		if err == nil && n != last {
			last = n
			_, _ = fmt.Fprintf(out, "%d todo(s)\n", n)
		}
		return n, err
	})

	resync.Start(ctx, reporter, trigger, interval)
	return nil
}
