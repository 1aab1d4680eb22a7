package codec

import (
	"time"

	"github.com/colonyops/docket/internal/core/todo"
)

// ListSchemaVersion is the version written with every list record.
var ListSchemaVersion = ListMigrations.Latest()

// ListMigrations upgrades legacy list records.
var ListMigrations = Chain{
	{
		Version: 1,
		Name:    "fill_defaults",
		Apply: func(rec map[string]any, now time.Time) {
			defaultString(rec, "name", "Untitled", nonEmpty)
			defaultTime(rec, "createdAt", now)
			defaultTime(rec, "updatedAt", now)
			clampUpdatedAt(rec)
		},
	},
}

// WireList is the persisted form of todo.List.
type WireList struct {
	SchemaVersion int    `json:"schemaVersion"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	CreatedAt     Stamp  `json:"createdAt"`
	UpdatedAt     Stamp  `json:"updatedAt"`
}

// EncodeList converts l to its wire form.
func EncodeList(l todo.List) WireList {
	return WireList{
		SchemaVersion: ListSchemaVersion,
		ID:            l.ID,
		Name:          l.Name,
		CreatedAt:     NewStamp(l.CreatedAt),
		UpdatedAt:     NewStamp(l.UpdatedAt),
	}
}

// DecodeList converts a wire record to the domain type.
func DecodeList(w WireList, now time.Time) (todo.List, bool) {
	if w.ID == "" {
		return todo.List{}, false
	}
	l := todo.List{
		ID:        w.ID,
		Name:      w.Name,
		CreatedAt: orNow(w.CreatedAt, now),
	}
	l.UpdatedAt = todo.Touch(l.CreatedAt, orNow(w.UpdatedAt, now))
	return l, true
}

// EncodeLists serializes a whole list collection.
func EncodeLists(lists []todo.List) ([]byte, error) {
	return encodeCollection(lists, EncodeList)
}

// DecodeLists deserializes a list collection. It never fails; see Report.
func DecodeLists(data []byte, now time.Time) ([]todo.List, Report) {
	return decodeCollection(data, now, ListMigrations, DecodeList)
}
