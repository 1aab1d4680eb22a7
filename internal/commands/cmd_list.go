package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/docket/internal/core/codec"
	"github.com/colonyops/docket/internal/core/logging"
)

// ListCmd implements the docket list command group.
type ListCmd struct {
	flags *Flags
}

// NewListCmd creates a new list command.
func NewListCmd(flags *Flags) *ListCmd {
	return &ListCmd{flags: flags}
}

// Register adds the list command to the application.
func (cmd *ListCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "list",
		Usage: "Manage todo lists",
		Description: `List commands. The default list always exists and cannot be
removed; removing any other list moves its todos to the default list.

Examples:
  docket list add Groceries
  docket list ls
  docket list rename <id> "Weekly groceries"
  docket list rm <id>`,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Create a list",
				UsageText: "docket list add <name>",
				Action:    cmd.runAdd,
			},
			{
				Name:      "ls",
				Usage:     "Show all lists",
				UsageText: "docket list ls",
				Action:    cmd.runLs,
			},
			{
				Name:      "rename",
				Usage:     "Rename a list",
				UsageText: "docket list rename <id> <name>",
				Action:    cmd.runRename,
			},
			{
				Name:      "rm",
				Usage:     "Remove a list",
				UsageText: "docket list rm <id>",
				Action:    cmd.runRm,
			},
		},
	})

	return app
}

func (cmd *ListCmd) runAdd(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "list.add")

	l, err := cmd.flags.App.Repo.AddList(ctx, c.Args().First())
	if err != nil {
		return fmt.Errorf("add list: %w", err)
	}
	return writeObject(c.Root().Writer, cmd.flags.Format, codec.EncodeList(l), l.ID)
}

func (cmd *ListCmd) runLs(ctx context.Context, c *cli.Command) error {
	repo := cmd.flags.App.Repo

	counts := make(map[string]int)
	for _, t := range repo.Todos() {
		counts[t.ListID]++
	}
	return writeLists(c.Root().Writer, cmd.flags.Format, repo.Lists(), counts)
}

func (cmd *ListCmd) runRename(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "list.rename")

	if c.Args().Len() != 2 {
		return fmt.Errorf("usage: docket list rename <id> <name>")
	}
	return cmd.flags.App.Repo.RenameList(ctx, c.Args().Get(0), c.Args().Get(1))
}

func (cmd *ListCmd) runRm(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "list.remove")

	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}
	return cmd.flags.App.Repo.RemoveList(ctx, id)
}
