// Package todo defines the domain model for todos, todo lists and ideas,
// along with the input types used to create and modify them.
package todo

import (
	"fmt"
	"slices"
	"time"
)

// Priority orders todos by urgency.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultPriority is assigned when none is given or a stored value is unknown.
const DefaultPriority = PriorityMedium

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank returns the sort position of p: high=0, medium=1, low=2.
// Unknown values rank with medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// ParsePriority converts s to a Priority. An empty string yields DefaultPriority.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return DefaultPriority, nil
	}
	p := Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority %q (must be high, medium or low)", s)
	}
	return p, nil
}

// DefaultListID identifies the list that always exists and owns orphaned todos.
const (
	DefaultListID   = "default"
	DefaultListName = "My Tasks"
)

// Location is a circular geofence attached to a todo.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
	Radius    float64 // meters
	Triggered bool
}

// Coordinates returns the center of the geofence.
func (l Location) Coordinates() Coordinates {
	return Coordinates{Latitude: l.Latitude, Longitude: l.Longitude}
}

// WeatherRecommendation is the last advisory computed for an outdoor todo.
type WeatherRecommendation struct {
	Timestamp   time.Time
	Recommended bool
	Message     string
}

// Todo is a single task owned by a list.
type Todo struct {
	ID                    string
	Title                 string
	Description           string
	Notes                 string
	Completed             bool
	Priority              Priority
	Tags                  []string
	DueDate               *time.Time
	ListID                string
	IsOutdoor             bool
	Location              *Location
	WeatherRecommendation *WeatherRecommendation
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Clone returns a deep copy of t so callers can never alias repository state.
func (t Todo) Clone() Todo {
	out := t
	out.Tags = cloneTags(t.Tags)
	if t.DueDate != nil {
		d := *t.DueDate
		out.DueDate = &d
	}
	if t.Location != nil {
		l := *t.Location
		out.Location = &l
	}
	if t.WeatherRecommendation != nil {
		w := *t.WeatherRecommendation
		out.WeatherRecommendation = &w
	}
	return out
}

// List groups todos.
type List struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDefault reports whether l is the undeletable default list.
func (l List) IsDefault() bool {
	return l.ID == DefaultListID
}

// DefaultList returns the default list stamped with now.
func DefaultList(now time.Time) List {
	return List{
		ID:        DefaultListID,
		Name:      DefaultListName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Idea is a lightweight note that can later be converted into a todo.
type Idea struct {
	ID          string
	Title       string
	Description string
	Tags        []string
	IsFavorite  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy of i.
func (i Idea) Clone() Idea {
	out := i
	out.Tags = cloneTags(i.Tags)
	return out
}

// CloneTodos deep-copies a todo collection.
func CloneTodos(todos []Todo) []Todo {
	out := make([]Todo, len(todos))
	for i, t := range todos {
		out[i] = t.Clone()
	}
	return out
}

// CloneIdeas deep-copies an idea collection.
func CloneIdeas(ideas []Idea) []Idea {
	out := make([]Idea, len(ideas))
	for i, idea := range ideas {
		out[i] = idea.Clone()
	}
	return out
}

// Touch sets UpdatedAt to now, never earlier than createdAt.
func Touch(createdAt, now time.Time) time.Time {
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}

// cloneTags copies tags, mapping nil to an empty slice.
func cloneTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return slices.Clone(tags)
}
