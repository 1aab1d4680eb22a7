package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/docket/internal/core/codec"
	"github.com/colonyops/docket/internal/core/logging"
	"github.com/colonyops/docket/internal/core/query"
	"github.com/colonyops/docket/internal/core/todo"
	"github.com/colonyops/docket/internal/docket"
)

// IdeaCmd implements the docket idea command group.
type IdeaCmd struct {
	flags *Flags

	title       string
	description string
	tags        []string

	lsFavorites bool
	lsSort      string
	lsDesc      bool

	convertList     string
	convertPriority string
}

// NewIdeaCmd creates a new idea command.
func NewIdeaCmd(flags *Flags) *IdeaCmd {
	return &IdeaCmd{flags: flags}
}

// Register adds the idea command to the application.
func (cmd *IdeaCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "idea",
		Usage: "Capture ideas and turn them into todos",
		Description: `Idea commands.

Examples:
  docket idea add --title "Learn to juggle" --tag hobby
  docket idea ls --favorites
  docket idea update <id> --tag hobby --tag outdoors
  docket idea convert <id> --list <list-id> --priority high`,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add an idea",
				UsageText: "docket idea add --title <title> [--description <text>] [--tag <tag>...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Destination: &cmd.title},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Destination: &cmd.description},
					&cli.StringSliceFlag{Name: "tag", Usage: "tag (repeatable)", Destination: &cmd.tags},
				},
				Action: cmd.runAdd,
			},
			{
				Name:      "ls",
				Aliases:   []string{"list"},
				Usage:     "List ideas",
				UsageText: "docket idea ls [--favorites] [--sort createdAt|title] [--desc]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "favorites", Usage: "only favorites", Destination: &cmd.lsFavorites},
					&cli.StringFlag{Name: "sort", Usage: "createdAt or title", Destination: &cmd.lsSort},
					&cli.BoolFlag{Name: "desc", Usage: "descending order", Destination: &cmd.lsDesc},
				},
				Action: cmd.runLs,
			},
			{
				Name:      "search",
				Usage:     "Search idea titles, descriptions and tags",
				UsageText: "docket idea search <query>",
				Action:    cmd.runSearch,
			},
			{
				Name:        "update",
				Usage:       "Change an idea",
				UsageText:   "docket idea update <id> [--title <title>] [--description <text>] [--tag <tag>...]",
				Description: `Only the flags given are changed. Passing --tag replaces every tag.`,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Destination: &cmd.title},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Destination: &cmd.description},
					&cli.StringSliceFlag{Name: "tag", Usage: "tag (repeatable)", Destination: &cmd.tags},
				},
				Action: cmd.runUpdate,
			},
			{
				Name:      "fav",
				Usage:     "Toggle the favorite flag",
				UsageText: "docket idea fav <id>",
				Action:    cmd.runFav,
			},
			{
				Name:      "rm",
				Usage:     "Remove an idea",
				UsageText: "docket idea rm <id>",
				Action:    cmd.runRm,
			},
			{
				Name:      "convert",
				Usage:     "Turn an idea into a todo",
				UsageText: "docket idea convert <id> [--list <id>] [--priority <priority>]",
				Description: `Adds a todo carrying the idea's title, description and tags, then
removes the idea. If the idea cannot be removed the todo is kept and
both remain; remove the idea by hand.`,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "list", Aliases: []string{"l"}, Destination: &cmd.convertList},
					&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Destination: &cmd.convertPriority},
				},
				Action: cmd.runConvert,
			},
		},
	})

	return app
}

func (cmd *IdeaCmd) runAdd(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "idea.add")

	idea, err := cmd.flags.App.Repo.AddIdea(ctx, todo.NewIdea{
		Title:       cmd.title,
		Description: cmd.description,
		Tags:        cmd.tags,
	})
	if err != nil {
		return fmt.Errorf("add idea: %w", err)
	}
	return writeObject(c.Root().Writer, cmd.flags.Format, codec.EncodeIdea(idea), idea.ID)
}

func (cmd *IdeaCmd) runLs(ctx context.Context, c *cli.Command) error {
	repo := cmd.flags.App.Repo
	v := repo.IdeaView()

	if cmd.lsFavorites {
		v.Filter = query.IdeaFilterFavorites
	}
	if cmd.lsSort != "" {
		s, err := query.ParseIdeaSort(cmd.lsSort)
		if err != nil {
			return err
		}
		v.Sort = s
	}
	if cmd.lsDesc {
		v.Direction = query.Desc
	}

	if err := repo.SetIdeaView(v); err != nil {
		return err
	}
	return writeIdeas(c.Root().Writer, cmd.flags.Format, repo.CurrentIdeas())
}

func (cmd *IdeaCmd) runSearch(ctx context.Context, c *cli.Command) error {
	return writeIdeas(c.Root().Writer, cmd.flags.Format, cmd.flags.App.Repo.SearchIdeas(c.Args().First()))
}

func (cmd *IdeaCmd) runUpdate(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "idea.update")

	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}

	var patch todo.IdeaPatch
	if c.IsSet("title") {
		patch.Title = &cmd.title
	}
	if c.IsSet("description") {
		patch.Description = &cmd.description
	}
	if c.IsSet("tag") {
		patch.Tags = &cmd.tags
	}
	if patch == (todo.IdeaPatch{}) {
		return fmt.Errorf("nothing to update")
	}

	repo := cmd.flags.App.Repo
	if err := repo.UpdateIdea(ctx, id, patch); err != nil {
		return fmt.Errorf("update idea: %w", err)
	}

	idea, ok := repo.Idea(id)
	if !ok {
		return nil
	}
	return writeObject(c.Root().Writer, cmd.flags.Format, codec.EncodeIdea(idea), idea.ID)
}

func (cmd *IdeaCmd) runFav(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "idea.favorite")

	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}
	return cmd.flags.App.Repo.ToggleFavorite(ctx, id)
}

func (cmd *IdeaCmd) runRm(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "idea.remove")

	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}
	return cmd.flags.App.Repo.RemoveIdea(ctx, id)
}

func (cmd *IdeaCmd) runConvert(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "idea.convert")

	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}

	var priority todo.Priority
	if cmd.convertPriority != "" {
		if priority, err = todo.ParsePriority(cmd.convertPriority); err != nil {
			return err
		}
	}

	created, err := cmd.flags.App.Repo.ConvertIdea(ctx, id, docket.ConvertOptions{
		ListID:   cmd.convertList,
		Priority: priority,
	})

	var convErr *todo.ConversionError
	if err != nil && !errors.As(err, &convErr) {
		return err
	}

	if werr := writeTodos(c.Root().Writer, cmd.flags.Format, []todo.Todo{created}); werr != nil {
		return werr
	}
	return err
}
