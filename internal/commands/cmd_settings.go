package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/docket/internal/core/kv"
	"github.com/colonyops/docket/internal/core/logging"
	"github.com/colonyops/docket/internal/core/todo"
)

// SettingsCmd implements the docket settings command group.
type SettingsCmd struct {
	flags *Flags

	name     string
	theme    string
	viewMode string
}

// NewSettingsCmd creates a new settings command.
func NewSettingsCmd(flags *Flags) *SettingsCmd {
	return &SettingsCmd{flags: flags}
}

// Register adds the settings command to the application.
func (cmd *SettingsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "settings",
		Usage: "Show or change user settings",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Print the user settings",
				UsageText: "docket settings get",
				Action:    cmd.runGet,
			},
			{
				Name:      "set",
				Usage:     "Change user settings",
				UsageText: "docket settings set [--name <name>] [--theme light|dark|system] [--view-mode list|grid]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Destination: &cmd.name},
					&cli.StringFlag{Name: "theme", Usage: "light, dark or system", Destination: &cmd.theme},
					&cli.StringFlag{Name: "view-mode", Usage: "list or grid", Destination: &cmd.viewMode},
				},
				Action: cmd.runSet,
			},
			{
				Name:  "blob",
				Usage: "Read or write the auxiliary settings blobs",
				Description: fmt.Sprintf(`Auxiliary settings are raw JSON values stored beside the collections.

Keys: %s`, strings.Join(kv.AuxiliaryKeys, ", ")),
				Commands: []*cli.Command{
					{
						Name:      "get",
						Usage:     "Print the JSON stored under a key",
						UsageText: "docket settings blob get <key>",
						Action:    cmd.runBlobGet,
					},
					{
						Name:      "set",
						Usage:     "Store a JSON value under a key",
						UsageText: "docket settings blob set <key> <json>",
						Action:    cmd.runBlobSet,
					},
					{
						Name:      "rm",
						Usage:     "Remove the value stored under a key",
						UsageText: "docket settings blob rm <key>",
						Action:    cmd.runBlobRm,
					},
				},
			},
			{
				Name:      "reset",
				Usage:     "Forget saved user settings and go back to the defaults",
				UsageText: "docket settings reset",
				Action:    cmd.runReset,
			},
		},
	})

	return app
}

func (cmd *SettingsCmd) runGet(ctx context.Context, c *cli.Command) error {
	us, err := cmd.flags.App.Settings.User(ctx)
	if err != nil {
		return err
	}
	return writeObject(c.Root().Writer, cmd.flags.Format, us, formatSettings(us))
}

func (cmd *SettingsCmd) runSet(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "settings.set")

	settings := cmd.flags.App.Settings
	us, err := settings.User(ctx)
	if err != nil {
		return err
	}

	if c.IsSet("name") {
		us.Name = cmd.name
	}
	if c.IsSet("theme") {
		us.Theme = todo.Theme(cmd.theme)
	}
	if c.IsSet("view-mode") {
		us.ListsViewMode = todo.ViewMode(cmd.viewMode)
	}

	if err := settings.SetUser(ctx, us); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return writeObject(c.Root().Writer, cmd.flags.Format, us, formatSettings(us))
}

func (cmd *SettingsCmd) runReset(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "settings.reset")

	settings := cmd.flags.App.Settings
	if err := settings.ResetUser(ctx); err != nil {
		return err
	}

	us, err := settings.User(ctx)
	if err != nil {
		return err
	}
	return writeObject(c.Root().Writer, cmd.flags.Format, us, formatSettings(us))
}

func (cmd *SettingsCmd) runBlobGet(ctx context.Context, c *cli.Command) error {
	key, err := requireArg(c, "key")
	if err != nil {
		return err
	}

	raw, found, err := cmd.flags.App.Settings.Blob(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%s is not set", key)
	}
	return writeObject(c.Root().Writer, cmd.flags.Format, raw, string(raw))
}

func (cmd *SettingsCmd) runBlobSet(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "settings.blob.set")

	key, err := requireArg(c, "key")
	if err != nil {
		return err
	}
	if c.Args().Len() < 2 {
		return fmt.Errorf("missing required argument <json>")
	}

	return cmd.flags.App.Settings.SetBlob(ctx, key, json.RawMessage(c.Args().Get(1)))
}

func (cmd *SettingsCmd) runBlobRm(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "settings.blob.remove")

	key, err := requireArg(c, "key")
	if err != nil {
		return err
	}
	return cmd.flags.App.Settings.RemoveBlob(ctx, key)
}

func formatSettings(us todo.UserSettings) string {
	name := us.Name
	if name == "" {
		name = "-"
	}
	return fmt.Sprintf("name:       %s\ntheme:      %s\nview mode:  %s", name, us.Theme, us.ListsViewMode)
}
