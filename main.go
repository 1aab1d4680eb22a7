package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/docket/internal/commands"
	"github.com/colonyops/docket/internal/core/config"
	"github.com/colonyops/docket/internal/docket"
	"github.com/colonyops/docket/pkg/iojson"
	"github.com/colonyops/docket/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser   func()
		storeCloser func() error
		flags       = &commands.Flags{App: &docket.App{}}
	)

	app := &cli.Command{
		Name:      "docket",
		Usage:     "Personal todos, lists and ideas",
		UsageText: "docket [global options] command [command options]",
		Description: `Docket keeps todos, todo lists and ideas in a small key-value store.

The store can be a SQLite database (default), a single JSON file, a redis
database, or process memory. Output is a table on a terminal and JSON
lines otherwise; use --format to choose.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("DOCKET_LOG_LEVEL"),
				Value:       "warn",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr)",
				Sources:     cli.EnvVars("DOCKET_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("DOCKET_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("DOCKET_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "backend",
				Usage:       fmt.Sprintf("storage backend, overrides the config file (%v)", config.Backends),
				Sources:     cli.EnvVars("DOCKET_BACKEND"),
				Destination: &flags.Backend,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (table, json); defaults to table on a terminal",
				Sources:     cli.EnvVars("DOCKET_FORMAT"),
				Destination: &flags.Format,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			switch flags.Format {
			case "", commands.FormatTable, commands.FormatJSON:
			default:
				return ctx, fmt.Errorf("invalid --format %q (must be table or json)", flags.Format)
			}

			logFile := flags.LogFile
			if logFile != "" && !filepath.IsAbs(logFile) {
				logFile = filepath.Join(flags.DataDir, logFile)
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			storeCloser, err = commands.Setup(ctx, flags)
			if err != nil {
				return ctx, err
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if storeCloser != nil {
				if err := storeCloser(); err != nil {
					log.Error().Err(err).Msg("failed to close storage")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewTodoCmd(flags).Register(app)
	app = commands.NewListCmd(flags).Register(app)
	app = commands.NewIdeaCmd(flags).Register(app)
	app = commands.NewSettingsCmd(flags).Register(app)
	app = commands.NewKVCmd(flags).Register(app)
	app = commands.NewWatchCmd(flags).Register(app)
	app = commands.NewConfigCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		if flags.Format == commands.FormatJSON {
			_ = iojson.WriteError(os.Stderr, runErr.Error(), nil)
		} else {
			fmt.Fprintln(os.Stderr, runErr.Error())
		}
		exitCode = 1
	}

	os.Exit(exitCode)
}
