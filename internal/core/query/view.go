// Package query derives filtered, sorted and searched views over the todo
// and idea collections. Every function is pure: inputs are never modified
// and nothing is cached between calls.
package query

import (
	"fmt"

	"github.com/hay-kot/criterio"
)

// TodoFilter restricts todos by completion state.
type TodoFilter string

const (
	FilterAll       TodoFilter = "all"
	FilterActive    TodoFilter = "active"
	FilterCompleted TodoFilter = "completed"
)

// TodoSort is the key todos are ordered by.
type TodoSort string

const (
	SortDueDate   TodoSort = "dueDate"
	SortPriority  TodoSort = "priority"
	SortTitle     TodoSort = "title"
	SortCreatedAt TodoSort = "createdAt"
)

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// IdeaFilter restricts ideas.
type IdeaFilter string

const (
	IdeaFilterAll       IdeaFilter = "all"
	IdeaFilterFavorites IdeaFilter = "favorites"
)

// IdeaSort is the key ideas are ordered by.
type IdeaSort string

const (
	IdeaSortCreatedAt IdeaSort = "createdAt"
	IdeaSortTitle     IdeaSort = "title"
)

// View selects which todos are shown and in what order.
type View struct {
	Filter    TodoFilter
	Sort      TodoSort
	Direction Direction
	// ListID scopes the view to one list. Empty means no scope.
	ListID string
}

// DefaultView shows every todo, soonest due first.
func DefaultView() View {
	return View{Filter: FilterAll, Sort: SortDueDate, Direction: Asc}
}

// Validate checks the enumerated fields.
func (v View) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if _, err := ParseTodoFilter(string(v.Filter)); err != nil {
		errs = errs.Append("filter", err)
	}
	if _, err := ParseTodoSort(string(v.Sort)); err != nil {
		errs = errs.Append("sort", err)
	}
	if _, err := ParseDirection(string(v.Direction)); err != nil {
		errs = errs.Append("direction", err)
	}
	return errs.ToError()
}

// IdeaView selects which ideas are shown and in what order.
type IdeaView struct {
	Filter    IdeaFilter
	Sort      IdeaSort
	Direction Direction
}

// DefaultIdeaView shows every idea, newest first.
func DefaultIdeaView() IdeaView {
	return IdeaView{Filter: IdeaFilterAll, Sort: IdeaSortCreatedAt, Direction: Desc}
}

// Validate checks the enumerated fields.
func (v IdeaView) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if _, err := ParseIdeaFilter(string(v.Filter)); err != nil {
		errs = errs.Append("filter", err)
	}
	if _, err := ParseIdeaSort(string(v.Sort)); err != nil {
		errs = errs.Append("sort", err)
	}
	if _, err := ParseDirection(string(v.Direction)); err != nil {
		errs = errs.Append("direction", err)
	}
	return errs.ToError()
}

// ParseTodoFilter validates s.
func ParseTodoFilter(s string) (TodoFilter, error) {
	switch f := TodoFilter(s); f {
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	}
	return "", fmt.Errorf("invalid filter %q (must be all, active or completed)", s)
}

// ParseTodoSort validates s.
func ParseTodoSort(s string) (TodoSort, error) {
	switch k := TodoSort(s); k {
	case SortDueDate, SortPriority, SortTitle, SortCreatedAt:
		return k, nil
	}
	return "", fmt.Errorf("invalid sort %q (must be dueDate, priority, title or createdAt)", s)
}

// ParseDirection validates s.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Asc, Desc:
		return d, nil
	}
	return "", fmt.Errorf("invalid direction %q (must be asc or desc)", s)
}

// ParseIdeaFilter validates s.
func ParseIdeaFilter(s string) (IdeaFilter, error) {
	switch f := IdeaFilter(s); f {
	case IdeaFilterAll, IdeaFilterFavorites:
		return f, nil
	}
	return "", fmt.Errorf("invalid idea filter %q (must be all or favorites)", s)
}

// ParseIdeaSort validates s.
func ParseIdeaSort(s string) (IdeaSort, error) {
	switch k := IdeaSort(s); k {
	case IdeaSortCreatedAt, IdeaSortTitle:
		return k, nil
	}
	return "", fmt.Errorf("invalid idea sort %q (must be createdAt or title)", s)
}
