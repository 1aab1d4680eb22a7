package codec

import (
	"time"

	"github.com/colonyops/docket/internal/core/todo"
)

// TodoSchemaVersion is the version written with every todo record.
var TodoSchemaVersion = TodoMigrations.Latest()

// TodoMigrations upgrades legacy todo records.
var TodoMigrations = Chain{
	{
		Version: 1,
		Name:    "fill_defaults",
		Apply: func(rec map[string]any, now time.Time) {
			defaultTags(rec, "tags")
			defaultString(rec, "priority", string(todo.DefaultPriority), func(s string) bool {
				return todo.Priority(s).IsValid()
			})
			defaultBool(rec, "completed")
			defaultString(rec, "listId", todo.DefaultListID, nonEmpty)
			defaultTime(rec, "createdAt", now)
			defaultTime(rec, "updatedAt", now)
		},
	},
	{
		Version: 2,
		Name:    "clamp_updated_at",
		Apply: func(rec map[string]any, _ time.Time) {
			clampUpdatedAt(rec)
			if loc, ok := rec["location"].(map[string]any); ok {
				defaultBool(loc, "triggered")
			}
		},
	},
}

// WireLocation is the persisted geofence.
type WireLocation struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
	Triggered bool    `json:"triggered"`
}

// WireWeather is the persisted weather recommendation.
type WireWeather struct {
	Timestamp   Stamp  `json:"timestamp"`
	Recommended bool   `json:"recommended"`
	Message     string `json:"message"`
}

// WireTodo is the persisted form of todo.Todo.
type WireTodo struct {
	SchemaVersion         int           `json:"schemaVersion"`
	ID                    string        `json:"id"`
	Title                 string        `json:"title"`
	Description           string        `json:"description,omitempty"`
	Notes                 string        `json:"notes,omitempty"`
	Completed             bool          `json:"completed"`
	Priority              string        `json:"priority"`
	Tags                  []string      `json:"tags"`
	DueDate               *Stamp        `json:"dueDate,omitempty"`
	ListID                string        `json:"listId"`
	IsOutdoor             bool          `json:"isOutdoor,omitempty"`
	Location              *WireLocation `json:"location,omitempty"`
	WeatherRecommendation *WireWeather  `json:"weatherRecommendation,omitempty"`
	CreatedAt             Stamp         `json:"createdAt"`
	UpdatedAt             Stamp         `json:"updatedAt"`
}

// EncodeTodo converts t to its wire form.
func EncodeTodo(t todo.Todo) WireTodo {
	w := WireTodo{
		SchemaVersion: TodoSchemaVersion,
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Notes:         t.Notes,
		Completed:     t.Completed,
		Priority:      string(t.Priority),
		Tags:          tagsOrEmpty(t.Tags),
		DueDate:       optionalStamp(t.DueDate),
		ListID:        t.ListID,
		IsOutdoor:     t.IsOutdoor,
		CreatedAt:     NewStamp(t.CreatedAt),
		UpdatedAt:     NewStamp(t.UpdatedAt),
	}
	if t.Location != nil {
		w.Location = &WireLocation{
			Name:      t.Location.Name,
			Latitude:  t.Location.Latitude,
			Longitude: t.Location.Longitude,
			Radius:    t.Location.Radius,
			Triggered: t.Location.Triggered,
		}
	}
	if t.WeatherRecommendation != nil {
		w.WeatherRecommendation = &WireWeather{
			Timestamp:   NewStamp(t.WeatherRecommendation.Timestamp),
			Recommended: t.WeatherRecommendation.Recommended,
			Message:     t.WeatherRecommendation.Message,
		}
	}
	return w
}

// DecodeTodo converts a wire record to the domain type, filling anything
// missing. It returns false for a record without an id.
func DecodeTodo(w WireTodo, now time.Time) (todo.Todo, bool) {
	if w.ID == "" {
		return todo.Todo{}, false
	}

	t := todo.Todo{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Notes:       w.Notes,
		Completed:   w.Completed,
		Priority:    todo.Priority(w.Priority),
		Tags:        tagsOrEmpty(w.Tags),
		DueDate:     optional(w.DueDate),
		ListID:      w.ListID,
		IsOutdoor:   w.IsOutdoor,
		CreatedAt:   orNow(w.CreatedAt, now),
	}
	t.UpdatedAt = todo.Touch(t.CreatedAt, orNow(w.UpdatedAt, now))

	if !t.Priority.IsValid() {
		t.Priority = todo.DefaultPriority
	}
	if t.ListID == "" {
		t.ListID = todo.DefaultListID
	}
	if w.Location != nil {
		t.Location = &todo.Location{
			Name:      w.Location.Name,
			Latitude:  w.Location.Latitude,
			Longitude: w.Location.Longitude,
			Radius:    w.Location.Radius,
			Triggered: w.Location.Triggered,
		}
	}
	if w.WeatherRecommendation != nil {
		t.WeatherRecommendation = &todo.WeatherRecommendation{
			Timestamp:   w.WeatherRecommendation.Timestamp.Time,
			Recommended: w.WeatherRecommendation.Recommended,
			Message:     w.WeatherRecommendation.Message,
		}
	}
	return t, true
}

// EncodeTodos serializes a whole todo collection.
func EncodeTodos(todos []todo.Todo) ([]byte, error) {
	return encodeCollection(todos, EncodeTodo)
}

// DecodeTodos deserializes a todo collection. It never fails; see Report.
func DecodeTodos(data []byte, now time.Time) ([]todo.Todo, Report) {
	return decodeCollection(data, now, TodoMigrations, DecodeTodo)
}

// ReduceTodo strips t down to the fields kept by a fallback write: id, title,
// completion, priority, tags, due date, list and timestamps.
func ReduceTodo(t todo.Todo) todo.Todo {
	return todo.Todo{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		Priority:  t.Priority,
		Tags:      t.Tags,
		DueDate:   t.DueDate,
		ListID:    t.ListID,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
