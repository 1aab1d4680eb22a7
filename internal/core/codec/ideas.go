package codec

import (
	"time"

	"github.com/colonyops/docket/internal/core/todo"
)

// IdeaSchemaVersion is the version written with every idea record.
var IdeaSchemaVersion = IdeaMigrations.Latest()

// IdeaMigrations upgrades legacy idea records.
var IdeaMigrations = Chain{
	{
		Version: 1,
		Name:    "fill_defaults",
		Apply: func(rec map[string]any, now time.Time) {
			defaultTags(rec, "tags")
			defaultBool(rec, "isFavorite")
			defaultTime(rec, "createdAt", now)
			defaultTime(rec, "updatedAt", now)
			clampUpdatedAt(rec)
		},
	},
}

// WireIdea is the persisted form of todo.Idea.
type WireIdea struct {
	SchemaVersion int      `json:"schemaVersion"`
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Tags          []string `json:"tags"`
	IsFavorite    bool     `json:"isFavorite"`
	CreatedAt     Stamp    `json:"createdAt"`
	UpdatedAt     Stamp    `json:"updatedAt"`
}

// EncodeIdea converts i to its wire form.
func EncodeIdea(i todo.Idea) WireIdea {
	return WireIdea{
		SchemaVersion: IdeaSchemaVersion,
		ID:            i.ID,
		Title:         i.Title,
		Description:   i.Description,
		Tags:          tagsOrEmpty(i.Tags),
		IsFavorite:    i.IsFavorite,
		CreatedAt:     NewStamp(i.CreatedAt),
		UpdatedAt:     NewStamp(i.UpdatedAt),
	}
}

// DecodeIdea converts a wire record to the domain type.
func DecodeIdea(w WireIdea, now time.Time) (todo.Idea, bool) {
	if w.ID == "" {
		return todo.Idea{}, false
	}
	i := todo.Idea{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Tags:        tagsOrEmpty(w.Tags),
		IsFavorite:  w.IsFavorite,
		CreatedAt:   orNow(w.CreatedAt, now),
	}
	i.UpdatedAt = todo.Touch(i.CreatedAt, orNow(w.UpdatedAt, now))
	return i, true
}

// EncodeIdeas serializes a whole idea collection.
func EncodeIdeas(ideas []todo.Idea) ([]byte, error) {
	return encodeCollection(ideas, EncodeIdea)
}

// DecodeIdeas deserializes an idea collection. It never fails; see Report.
func DecodeIdeas(data []byte, now time.Time) ([]todo.Idea, Report) {
	return decodeCollection(data, now, IdeaMigrations, DecodeIdea)
}

// ReduceIdea strips i down to the fields kept by a fallback write.
func ReduceIdea(i todo.Idea) todo.Idea {
	return todo.Idea{
		ID:         i.ID,
		Title:      i.Title,
		Tags:       i.Tags,
		IsFavorite: i.IsFavorite,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}
