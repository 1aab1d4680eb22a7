package todo

import (
	"errors"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
)

var errTitleRequired = errors.New("title is required")

// NewTodo is the caller-supplied part of a todo. The repository assigns the
// id and timestamps.
type NewTodo struct {
	Title                 string
	Description           string
	Notes                 string
	Priority              Priority // empty means DefaultPriority
	Tags                  []string
	DueDate               *time.Time
	ListID                string // empty means DefaultListID
	IsOutdoor             bool
	Location              *Location
	WeatherRecommendation *WeatherRecommendation
}

// Validate checks the fields that can be checked without repository state.
func (n NewTodo) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if strings.TrimSpace(n.Title) == "" {
		errs = errs.Append("title", errTitleRequired)
	}
	if n.Priority != "" && !n.Priority.IsValid() {
		errs = errs.Append("priority", invalidPriority(n.Priority))
	}
	if n.Location != nil {
		errs = appendLocationErrors(errs, "location", *n.Location)
	}
	return Invalid(errs.ToError())
}

// Build materializes the todo with the given id at time now.
func (n NewTodo) Build(id string, now time.Time) Todo {
	t := Todo{
		ID:                    id,
		Title:                 strings.TrimSpace(n.Title),
		Description:           n.Description,
		Notes:                 n.Notes,
		Priority:              n.Priority,
		Tags:                  cloneTags(n.Tags),
		ListID:                n.ListID,
		IsOutdoor:             n.IsOutdoor,
		CreatedAt:             now,
		UpdatedAt:             now,
		DueDate:               n.DueDate,
		Location:              n.Location,
		WeatherRecommendation: n.WeatherRecommendation,
	}
	if t.Priority == "" {
		t.Priority = DefaultPriority
	}
	if t.ListID == "" {
		t.ListID = DefaultListID
	}
	return t.Clone()
}

// TodoPatch lists the fields to change on a todo. Nil fields are left alone.
type TodoPatch struct {
	Title                 *string
	Description           *string
	Notes                 *string
	Completed             *bool
	Priority              *Priority
	Tags                  *[]string
	DueDate               *time.Time
	ClearDueDate          bool
	ListID                *string
	IsOutdoor             *bool
	Location              *Location
	ClearLocation         bool
	WeatherRecommendation *WeatherRecommendation
}

// IsEmpty reports whether the patch changes nothing.
func (p TodoPatch) IsEmpty() bool {
	return p == TodoPatch{}
}

// Validate checks the fields that are set.
func (p TodoPatch) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		errs = errs.Append("title", errTitleRequired)
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		errs = errs.Append("priority", invalidPriority(*p.Priority))
	}
	if p.ListID != nil && *p.ListID == "" {
		errs = errs.Append("listId", errors.New("list id cannot be empty"))
	}
	if p.Location != nil {
		errs = appendLocationErrors(errs, "location", *p.Location)
	}
	return Invalid(errs.ToError())
}

// Apply returns a copy of t with the patch merged in and UpdatedAt refreshed.
// A triggered location stays triggered: the flag only moves false to true.
func (p TodoPatch) Apply(t Todo, now time.Time) Todo {
	out := t.Clone()
	if p.Title != nil {
		out.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.Completed != nil {
		out.Completed = *p.Completed
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.Tags != nil {
		out.Tags = cloneTags(*p.Tags)
	}
	switch {
	case p.ClearDueDate:
		out.DueDate = nil
	case p.DueDate != nil:
		d := *p.DueDate
		out.DueDate = &d
	}
	if p.ListID != nil {
		out.ListID = *p.ListID
	}
	if p.IsOutdoor != nil {
		out.IsOutdoor = *p.IsOutdoor
	}
	switch {
	case p.ClearLocation:
		out.Location = nil
	case p.Location != nil:
		loc := *p.Location
		loc.Triggered = loc.Triggered || (t.Location != nil && t.Location.Triggered)
		out.Location = &loc
	}
	if p.WeatherRecommendation != nil {
		w := *p.WeatherRecommendation
		out.WeatherRecommendation = &w
	}
	out.UpdatedAt = Touch(out.CreatedAt, now)
	return out
}

// NewIdea is the caller-supplied part of an idea.
type NewIdea struct {
	Title       string
	Description string
	Tags        []string
	IsFavorite  bool
}

// Validate checks the idea input.
func (n NewIdea) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if strings.TrimSpace(n.Title) == "" {
		errs = errs.Append("title", errTitleRequired)
	}
	return Invalid(errs.ToError())
}

// Build materializes the idea with the given id at time now.
func (n NewIdea) Build(id string, now time.Time) Idea {
	return Idea{
		ID:          id,
		Title:       strings.TrimSpace(n.Title),
		Description: n.Description,
		Tags:        cloneTags(n.Tags),
		IsFavorite:  n.IsFavorite,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IdeaPatch lists the fields to change on an idea.
type IdeaPatch struct {
	Title       *string
	Description *string
	Tags        *[]string
	IsFavorite  *bool
}

// Validate checks the fields that are set.
func (p IdeaPatch) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		errs = errs.Append("title", errTitleRequired)
	}
	return Invalid(errs.ToError())
}

// Apply returns a copy of i with the patch merged in and UpdatedAt refreshed.
func (p IdeaPatch) Apply(i Idea, now time.Time) Idea {
	out := i.Clone()
	if p.Title != nil {
		out.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Tags != nil {
		out.Tags = cloneTags(*p.Tags)
	}
	if p.IsFavorite != nil {
		out.IsFavorite = *p.IsFavorite
	}
	out.UpdatedAt = Touch(out.CreatedAt, now)
	return out
}

// ValidateListName checks a list name for add and rename.
func ValidateListName(name string) error {
	var errs criterio.FieldErrorsBuilder
	if strings.TrimSpace(name) == "" {
		errs = errs.Append("name", errors.New("name is required"))
	}
	return Invalid(errs.ToError())
}

func invalidPriority(p Priority) error {
	_, err := ParsePriority(string(p))
	return err
}

func appendLocationErrors(errs criterio.FieldErrorsBuilder, field string, l Location) criterio.FieldErrorsBuilder {
	errs = appendCoordinateErrors(errs, field+".", l.Coordinates())
	if !(l.Radius > 0) {
		errs = errs.Append(field+".radius", errors.New("must be positive"))
	}
	return errs
}
