package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/colonyops/docket/internal/core/codec"
	"github.com/colonyops/docket/internal/core/todo"
	"github.com/colonyops/docket/pkg/iojson"
)

// Output formats accepted by --format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	borderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true)
	highStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// jsonOutput reports whether w should receive JSON lines. An explicit
// --format wins; otherwise terminals get tables and everything else JSON.
func jsonOutput(format string, w io.Writer) bool {
	switch format {
	case FormatJSON:
		return true
	case FormatTable:
		return false
	}
	f, ok := w.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}

func renderTable(headers []string, rows [][]string, style func(row, col int) lipgloss.Style) string {
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if style != nil {
				return style(row, col).Padding(0, 1)
			}
			return cellStyle
		})
	return t.Render()
}

func writeTodos(w io.Writer, format string, todos []todo.Todo) error {
	if jsonOutput(format, w) {
		for _, t := range todos {
			if err := iojson.WriteLine(w, codec.EncodeTodo(t)); err != nil {
				return err
			}
		}
		return nil
	}

	if len(todos) == 0 {
		_, err := fmt.Fprintln(w, "No todos found.")
		return err
	}

	rows := make([][]string, len(todos))
	for i, t := range todos {
		done := " "
		if t.Completed {
			done = "x"
		}
		rows[i] = []string{done, t.ID, t.Title, string(t.Priority), formatDate(t.DueDate), t.ListID, strings.Join(t.Tags, ",")}
	}

	_, err := fmt.Fprintln(w, renderTable(
		[]string{"", "ID", "Title", "Priority", "Due", "List", "Tags"},
		rows,
		func(row, col int) lipgloss.Style {
			t := todos[row]
			switch {
			case t.Completed:
				return completedStyle
			case col == 3 && t.Priority == todo.PriorityHigh:
				return highStyle
			}
			return lipgloss.NewStyle()
		},
	))
	return err
}

func writeLists(w io.Writer, format string, lists []todo.List, counts map[string]int) error {
	if jsonOutput(format, w) {
		for _, l := range lists {
			if err := iojson.WriteLine(w, codec.EncodeList(l)); err != nil {
				return err
			}
		}
		return nil
	}

	rows := make([][]string, len(lists))
	for i, l := range lists {
		rows[i] = []string{l.ID, l.Name, fmt.Sprint(counts[l.ID]), l.CreatedAt.Local().Format(time.DateOnly)}
	}

	_, err := fmt.Fprintln(w, renderTable([]string{"ID", "Name", "Todos", "Created"}, rows, nil))
	return err
}

func writeIdeas(w io.Writer, format string, ideas []todo.Idea) error {
	if jsonOutput(format, w) {
		for _, i := range ideas {
			if err := iojson.WriteLine(w, codec.EncodeIdea(i)); err != nil {
				return err
			}
		}
		return nil
	}

	if len(ideas) == 0 {
		_, err := fmt.Fprintln(w, "No ideas found.")
		return err
	}

	rows := make([][]string, len(ideas))
	for i, idea := range ideas {
		fav := " "
		if idea.IsFavorite {
			fav = "*"
		}
		rows[i] = []string{fav, idea.ID, idea.Title, strings.Join(idea.Tags, ","), idea.CreatedAt.Local().Format(time.DateOnly)}
	}

	_, err := fmt.Fprintln(w, renderTable([]string{"", "ID", "Title", "Tags", "Created"}, rows, nil))
	return err
}

// writeObject prints a single value as a JSON line, or the fallback text on
// a terminal.
func writeObject(w io.Writer, format string, obj any, text string) error {
	if jsonOutput(format, w) {
		return iojson.WriteLine(w, obj)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	local := t.Local()
	if local.Hour() == 0 && local.Minute() == 0 && local.Second() == 0 {
		return local.Format(time.DateOnly)
	}
	return local.Format("2006-01-02 15:04")
}
