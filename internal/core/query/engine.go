package query

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/colonyops/docket/internal/core/todo"
)

// Engine evaluates views. It only carries the locale used for title
// collation; collators are not safe for concurrent use so one is built per
// call.
type Engine struct {
	tag language.Tag
}

// New returns an Engine that collates titles according to tag.
func New(tag language.Tag) *Engine {
	return &Engine{tag: tag}
}

// Todos returns the todos selected by v in display order. The result is a
// new slice of deep copies.
func (e *Engine) Todos(todos []todo.Todo, v View) []todo.Todo {
	out := make([]todo.Todo, 0, len(todos))
	for _, t := range todos {
		if v.ListID != "" && t.ListID != v.ListID {
			continue
		}
		if !matchesFilter(t, v.Filter) {
			continue
		}
		out = append(out, t.Clone())
	}

	slices.SortStableFunc(out, e.todoCompare(v.Sort, v.Direction))
	return out
}

// Ideas returns the ideas selected by v in display order.
func (e *Engine) Ideas(ideas []todo.Idea, v IdeaView) []todo.Idea {
	out := make([]todo.Idea, 0, len(ideas))
	for _, i := range ideas {
		if v.Filter == IdeaFilterFavorites && !i.IsFavorite {
			continue
		}
		out = append(out, i.Clone())
	}

	slices.SortStableFunc(out, e.ideaCompare(v.Sort, v.Direction))
	return out
}

func matchesFilter(t todo.Todo, f TodoFilter) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

func (e *Engine) todoCompare(key TodoSort, dir Direction) func(a, b todo.Todo) int {
	sign := 1
	if dir == Desc {
		sign = -1
	}

	switch key {
	case SortPriority:
		return func(a, b todo.Todo) int {
			return sign * cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
		}
	case SortTitle:
		c := collate.New(e.tag)
		return func(a, b todo.Todo) int {
			return sign * c.CompareString(a.Title, b.Title)
		}
	case SortCreatedAt:
		return func(a, b todo.Todo) int {
			return sign * a.CreatedAt.Compare(b.CreatedAt)
		}
	default:
		// Todos without a due date go last in either direction.
		return func(a, b todo.Todo) int {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			}
			return sign * a.DueDate.Compare(*b.DueDate)
		}
	}
}

func (e *Engine) ideaCompare(key IdeaSort, dir Direction) func(a, b todo.Idea) int {
	sign := 1
	if dir == Desc {
		sign = -1
	}

	if key == IdeaSortTitle {
		c := collate.New(e.tag)
		return func(a, b todo.Idea) int {
			return sign * c.CompareString(a.Title, b.Title)
		}
	}
	return func(a, b todo.Idea) int {
		return sign * a.CreatedAt.Compare(b.CreatedAt)
	}
}

// SearchTodos returns, in collection order, every todo whose title,
// description or notes contains q ignoring case. An empty query matches all.
func SearchTodos(todos []todo.Todo, q string) []todo.Todo {
	m := newMatcher(q)
	out := make([]todo.Todo, 0)
	for _, t := range todos {
		if m.any(t.Title, t.Description, t.Notes) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// SearchIdeas returns, in collection order, every idea whose title,
// description or one of its tags contains q ignoring case.
func SearchIdeas(ideas []todo.Idea, q string) []todo.Idea {
	m := newMatcher(q)
	out := make([]todo.Idea, 0)
	for _, i := range ideas {
		if m.any(i.Title, i.Description) || m.any(i.Tags...) {
			out = append(out, i.Clone())
		}
	}
	return out
}

type matcher struct {
	fold   cases.Caser
	needle string
}

func newMatcher(q string) *matcher {
	fold := cases.Fold()
	return &matcher{fold: fold, needle: fold.String(strings.TrimSpace(q))}
}

func (m *matcher) any(fields ...string) bool {
	if m.needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(m.fold.String(f), m.needle) {
			return true
		}
	}
	return false
}
