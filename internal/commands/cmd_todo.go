package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/docket/internal/core/codec"
	"github.com/colonyops/docket/internal/core/logging"
	"github.com/colonyops/docket/internal/core/query"
	"github.com/colonyops/docket/internal/core/todo"
	"github.com/colonyops/docket/internal/docket"
	"github.com/colonyops/docket/pkg/iojson"
)

// TodoCmd implements the docket todo command group.
type TodoCmd struct {
	flags *Flags

	// shared add/update flags
	title       string
	description string
	notes       string
	priority    string
	tags        []string
	due         string
	listID      string
	outdoor     bool

	// update-only flags
	clearDue bool

	// ls flags
	lsFilter string
	lsSort   string
	lsDesc   bool
	lsList   string

	// near flags
	lat float64
	lon float64

	importer *iojson.FileReader[json.RawMessage]
}

// NewTodoCmd creates a new todo command.
func NewTodoCmd(flags *Flags) *TodoCmd {
	return &TodoCmd{flags: flags, importer: &iojson.FileReader[json.RawMessage]{}}
}

func (cmd *TodoCmd) repo() *docket.Repository {
	return cmd.flags.App.Repo
}

// Register adds the todo command to the application.
func (cmd *TodoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "todo",
		Usage: "Manage todos",
		Description: `Todo commands for creating, listing and completing tasks.

Examples:
  docket todo add --title "Pay rent" --priority high --due 2026-11-01
  docket todo ls --filter active --sort priority
  docket todo done <id>
  docket todo search rent`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.lsCmd(),
			cmd.searchCmd(),
			cmd.updateCmd(),
			cmd.doneCmd(),
			cmd.rmCmd(),
			cmd.importCmd(),
			cmd.nearCmd(),
		},
	})

	return app
}

func (cmd *TodoCmd) fieldFlags(requireTitle bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "title",
			Aliases:     []string{"t"},
			Usage:       "todo title",
			Required:    requireTitle,
			Destination: &cmd.title,
		},
		&cli.StringFlag{
			Name:        "description",
			Aliases:     []string{"d"},
			Usage:       "longer description",
			Destination: &cmd.description,
		},
		&cli.StringFlag{
			Name:        "notes",
			Usage:       "free-form notes",
			Destination: &cmd.notes,
		},
		&cli.StringFlag{
			Name:        "priority",
			Aliases:     []string{"p"},
			Usage:       "priority (high, medium, low)",
			Destination: &cmd.priority,
		},
		&cli.StringSliceFlag{
			Name:        "tag",
			Usage:       "tag (repeatable)",
			Destination: &cmd.tags,
		},
		&cli.StringFlag{
			Name:        "due",
			Usage:       "due date (YYYY-MM-DD or RFC 3339)",
			Destination: &cmd.due,
		},
		&cli.StringFlag{
			Name:        "list",
			Aliases:     []string{"l"},
			Usage:       "list id (defaults to the default list)",
			Destination: &cmd.listID,
		},
		&cli.BoolFlag{
			Name:        "outdoor",
			Usage:       "mark as an outdoor task",
			Destination: &cmd.outdoor,
		},
	}
}

func (cmd *TodoCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a todo",
		UsageText: "docket todo add --title <title> [options]",
		Flags:     cmd.fieldFlags(true),
		Action:    cmd.runAdd,
	}
}

func (cmd *TodoCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Aliases:   []string{"list"},
		Usage:     "List todos",
		UsageText: "docket todo ls [--filter <filter>] [--sort <key>] [--desc] [--list <id>]",
		Description: `Lists todos through the configured view. Flags override the
configured filter and ordering for this invocation.

Todos without a due date always sort last when sorting by due date.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "filter",
				Usage:       "all, active or completed",
				Destination: &cmd.lsFilter,
			},
			&cli.StringFlag{
				Name:        "sort",
				Usage:       "dueDate, priority, title or createdAt",
				Destination: &cmd.lsSort,
			},
			&cli.BoolFlag{
				Name:        "desc",
				Usage:       "reverse the sort direction",
				Destination: &cmd.lsDesc,
			},
			&cli.StringFlag{
				Name:        "list",
				Aliases:     []string{"l"},
				Usage:       "only show todos of this list",
				Destination: &cmd.lsList,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *TodoCmd) searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search todo titles, descriptions and notes",
		UsageText: "docket todo search <query>",
		Action:    cmd.runSearch,
	}
}

func (cmd *TodoCmd) updateCmd() *cli.Command {
	flags := append(cmd.fieldFlags(false), &cli.BoolFlag{
		Name:        "clear-due",
		Usage:       "remove the due date",
		Destination: &cmd.clearDue,
	})

	return &cli.Command{
		Name:      "update",
		Usage:     "Change fields of a todo",
		UsageText: "docket todo update <id> [options]",
		Description: `Only the flags that are given are changed. Updating an unknown id
does nothing. --clear-due or an empty --due "" removes the due date.`,
		Flags:  flags,
		Action: cmd.runUpdate,
	}
}

func (cmd *TodoCmd) doneCmd() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Aliases:   []string{"toggle"},
		Usage:     "Toggle completion of a todo",
		UsageText: "docket todo done <id>",
		Action:    cmd.runDone,
	}
}

func (cmd *TodoCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Remove a todo",
		UsageText: "docket todo rm <id>",
		Action:    cmd.runRm,
	}
}

func (cmd *TodoCmd) importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import todos from a JSON array",
		UsageText: "docket todo import [-f file.json]",
		Description: `Reads a JSON array of todos in the stored format and adds each one
with a fresh id. Records that cannot be read are skipped.`,
		Flags:  []cli.Flag{cmd.importer.Flag()},
		Action: cmd.runImport,
	}
}

func (cmd *TodoCmd) nearCmd() *cli.Command {
	return &cli.Command{
		Name:      "near",
		Usage:     "Trigger location reminders for a position",
		UsageText: "docket todo near --lat <degrees> --lon <degrees>",
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "lat", Required: true, Destination: &cmd.lat},
			&cli.FloatFlag{Name: "lon", Required: true, Destination: &cmd.lon},
		},
		Action: cmd.runNear,
	}
}

func (cmd *TodoCmd) runAdd(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "todo.add")

	priority, err := todo.ParsePriority(cmd.priority)
	if err != nil {
		return err
	}

	due, err := parseDue(cmd.due)
	if err != nil {
		return err
	}

	created, err := cmd.repo().AddTodo(ctx, todo.NewTodo{
		Title:       cmd.title,
		Description: cmd.description,
		Notes:       cmd.notes,
		Priority:    priority,
		Tags:        cmd.tags,
		DueDate:     due,
		ListID:      cmd.listID,
		IsOutdoor:   cmd.outdoor,
	})
	if err != nil {
		return fmt.Errorf("add todo: %w", err)
	}

	return writeObject(c.Root().Writer, cmd.flags.Format, codec.EncodeTodo(created), created.ID)
}

func (cmd *TodoCmd) runLs(ctx context.Context, c *cli.Command) error {
	repo := cmd.repo()
	v := repo.TodoView()

	if cmd.lsFilter != "" {
		f, err := query.ParseTodoFilter(cmd.lsFilter)
		if err != nil {
			return err
		}
		v.Filter = f
	}
	if cmd.lsSort != "" {
		s, err := query.ParseTodoSort(cmd.lsSort)
		if err != nil {
			return err
		}
		v.Sort = s
	}
	if cmd.lsDesc {
		v.Direction = query.Desc
	}

	if err := repo.SetTodoView(v); err != nil {
		return err
	}
	if cmd.lsList != "" {
		if err := repo.SetActiveList(cmd.lsList); err != nil {
			return err
		}
	}

	return writeTodos(c.Root().Writer, cmd.flags.Format, repo.CurrentTodos())
}

func (cmd *TodoCmd) runSearch(ctx context.Context, c *cli.Command) error {
	return writeTodos(c.Root().Writer, cmd.flags.Format, cmd.repo().SearchTodos(c.Args().First()))
}

func (cmd *TodoCmd) runUpdate(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "todo.update")

	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}

	var patch todo.TodoPatch
	if c.IsSet("title") {
		patch.Title = &cmd.title
	}
	if c.IsSet("description") {
		patch.Description = &cmd.description
	}
	if c.IsSet("notes") {
		patch.Notes = &cmd.notes
	}
	if c.IsSet("priority") {
		p, err := todo.ParsePriority(cmd.priority)
		if err != nil {
			return err
		}
		patch.Priority = &p
	}
	if c.IsSet("tag") {
		patch.Tags = &cmd.tags
	}
	if c.IsSet("due") {
		due, err := parseDue(cmd.due)
		if err != nil {
			return err
		}
		// an explicit empty --due clears the date
		patch.DueDate = due
		patch.ClearDueDate = due == nil
	}
	if cmd.clearDue {
		if patch.DueDate != nil {
			return fmt.Errorf("--due and --clear-due cannot be combined")
		}
		patch.ClearDueDate = true
	}
	if c.IsSet("list") {
		patch.ListID = &cmd.listID
	}
	if c.IsSet("outdoor") {
		patch.IsOutdoor = &cmd.outdoor
	}

	if patch.IsEmpty() {
		return fmt.Errorf("nothing to update")
	}

	if err := cmd.repo().UpdateTodo(ctx, id, patch); err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return cmd.printTodo(c, id)
}

func (cmd *TodoCmd) runDone(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "todo.toggle")

	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}

	if err := cmd.repo().ToggleCompleted(ctx, id); err != nil {
		return fmt.Errorf("toggle todo: %w", err)
	}
	return cmd.printTodo(c, id)
}

func (cmd *TodoCmd) runRm(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "todo.remove")

	id, err := requireArg(c, "id")
	if err != nil {
		return err
	}

	return cmd.repo().RemoveTodo(ctx, id)
}

func (cmd *TodoCmd) runImport(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "todo.import")

	raw, err := cmd.importer.Read()
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	decoded, report := codec.DecodeTodos(raw, time.Now())
	if report.Corrupt {
		return fmt.Errorf("input is not a JSON array")
	}

	out := c.Root().Writer
	imported := 0
	for _, t := range decoded {
		created, err := cmd.repo().AddTodo(ctx, todo.NewTodo{
			Title:                 t.Title,
			Description:           t.Description,
			Notes:                 t.Notes,
			Priority:              t.Priority,
			Tags:                  t.Tags,
			DueDate:               t.DueDate,
			ListID:                t.ListID,
			IsOutdoor:             t.IsOutdoor,
			Location:              t.Location,
			WeatherRecommendation: t.WeatherRecommendation,
		})
		if err != nil {
			log.Warn().Err(err).Str("title", t.Title).Msg("skipping todo")
			report.Skipped++
			continue
		}
		imported++
		if jsonOutput(cmd.flags.Format, out) {
			if err := iojson.WriteLine(out, codec.EncodeTodo(created)); err != nil {
				return err
			}
		}
	}

	if !jsonOutput(cmd.flags.Format, out) {
		_, _ = fmt.Fprintf(out, "imported %d todo(s), skipped %d\n", imported, report.Skipped)
	}
	return nil
}

func (cmd *TodoCmd) runNear(ctx context.Context, c *cli.Command) error {
	ctx = logging.WithOperation(ctx, "todo.location")

	triggered, err := cmd.repo().CheckLocation(ctx, todo.Coordinates{Latitude: cmd.lat, Longitude: cmd.lon})
	if err != nil {
		return err
	}
	return writeTodos(c.Root().Writer, cmd.flags.Format, triggered)
}

func (cmd *TodoCmd) printTodo(c *cli.Command, id string) error {
	t, ok := cmd.repo().Todo(id)
	if !ok {
		return nil
	}
	return writeTodos(c.Root().Writer, cmd.flags.Format, []todo.Todo{t})
}

// parseDue accepts a calendar date, read as local midnight, or an RFC 3339
// timestamp. An empty string means no due date.
func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q (use YYYY-MM-DD or RFC 3339)", s)
	}
	return &t, nil
}

func requireArg(c *cli.Command, name string) (string, error) {
	v := c.Args().First()
	if v == "" {
		return "", fmt.Errorf("missing required argument <%s>", name)
	}
	return v, nil
}
