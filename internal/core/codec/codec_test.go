package codec

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/docket/internal/core/todo"
)

var (
	now     = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	created = time.Date(2025, 5, 1, 8, 30, 15, 123000000, time.UTC)
	updated = created.Add(90 * time.Minute)
)

func fullTodo() todo.Todo {
	due := time.Date(2025, 7, 4, 17, 0, 0, 0, time.UTC)
	return todo.Todo{
		ID:          "t1",
		Title:       "Mow the lawn",
		Description: "front and back",
		Notes:       "borrow the mower",
		Completed:   true,
		Priority:    todo.PriorityHigh,
		Tags:        []string{"home", "outside", "home"},
		DueDate:     &due,
		ListID:      "chores",
		IsOutdoor:   true,
		Location: &todo.Location{
			Name:      "Home",
			Latitude:  51.5007,
			Longitude: -0.1246,
			Radius:    120,
			Triggered: true,
		},
		WeatherRecommendation: &todo.WeatherRecommendation{
			Timestamp:   created.Add(time.Hour),
			Recommended: false,
			Message:     "rain expected",
		},
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

func TestTodos_RoundTrip(t *testing.T) {
	in := []todo.Todo{
		fullTodo(),
		{
			ID:        "t2",
			Title:     "Minimal",
			Priority:  todo.PriorityMedium,
			Tags:      []string{},
			ListID:    todo.DefaultListID,
			CreatedAt: created,
			UpdatedAt: created,
		},
	}

	data, err := EncodeTodos(in)
	require.NoError(t, err)

	got, report := DecodeTodos(data, now)
	assert.True(t, report.Clean())
	assert.Zero(t, report.Migrated)
	assert.Equal(t, in, got)
}

func TestTodos_RoundTripNanoseconds(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 123456789, time.UTC)
	in := []todo.Todo{{ID: "t1", Title: "x", Priority: todo.PriorityLow, Tags: []string{}, ListID: "l", CreatedAt: at, UpdatedAt: at}}

	data, err := EncodeTodos(in)
	require.NoError(t, err)

	got, _ := DecodeTodos(data, now)
	require.Len(t, got, 1)
	assert.True(t, got[0].CreatedAt.Equal(at))
}

func TestLists_RoundTrip(t *testing.T) {
	in := []todo.List{
		todo.DefaultList(created),
		{ID: "l1", Name: "Groceries", CreatedAt: created, UpdatedAt: updated},
	}

	data, err := EncodeLists(in)
	require.NoError(t, err)

	got, report := DecodeLists(data, now)
	assert.True(t, report.Clean())
	assert.Equal(t, in, got)
}

func TestIdeas_RoundTrip(t *testing.T) {
	in := []todo.Idea{
		{ID: "i1", Title: "Buy milk", Tags: []string{"shop"}, IsFavorite: true, CreatedAt: created, UpdatedAt: updated},
		{ID: "i2", Title: "Learn Go", Description: "generics", Tags: []string{}, CreatedAt: created, UpdatedAt: created},
	}

	data, err := EncodeIdeas(in)
	require.NoError(t, err)

	got, report := DecodeIdeas(data, now)
	assert.True(t, report.Clean())
	assert.Equal(t, in, got)
}

func TestEncodeTodos_WireShape(t *testing.T) {
	data, err := EncodeTodos([]todo.Todo{fullTodo()})
	require.NoError(t, err)

	var recs []map[string]any
	require.NoError(t, json.Unmarshal(data, &recs))
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.InDelta(t, float64(TodoSchemaVersion), rec["schemaVersion"], 0)
	assert.Equal(t, "chores", rec["listId"])
	assert.Equal(t, "2025-07-04T17:00:00Z", rec["dueDate"])
	assert.Equal(t, "2025-05-01T08:30:15.123Z", rec["createdAt"])
	assert.Equal(t, true, rec["isOutdoor"])
	assert.Contains(t, rec, "weatherRecommendation")
	assert.Contains(t, rec, "location")
}

func TestEncodeTodos_NilTagsWrittenAsEmpty(t *testing.T) {
	data, err := EncodeTodos([]todo.Todo{{ID: "t1", Title: "x", CreatedAt: created, UpdatedAt: created}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tags":[]`)
}

func TestEncodeTodos_Empty(t *testing.T) {
	data, err := EncodeTodos(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestDecodeTodos_LegacyRecord(t *testing.T) {
	// Written by an older client: no schemaVersion, tags, priority,
	// completed, listId or timestamps.
	data := []byte(`[{"id":"old1","title":"Legacy"}]`)

	got, report := DecodeTodos(data, now)
	require.Len(t, got, 1)
	assert.Equal(t, 1, report.Migrated)
	assert.Zero(t, report.Skipped)

	td := got[0]
	assert.Equal(t, "Legacy", td.Title)
	assert.Equal(t, []string{}, td.Tags)
	assert.Equal(t, todo.PriorityMedium, td.Priority)
	assert.False(t, td.Completed)
	assert.Equal(t, todo.DefaultListID, td.ListID)
	assert.Equal(t, now, td.CreatedAt)
	assert.Equal(t, now, td.UpdatedAt)
	assert.Nil(t, td.DueDate)
}

func TestDecodeTodos_LegacyCoercions(t *testing.T) {
	data := []byte(`[{
		"id": "old1",
		"title": "Legacy",
		"priority": "urgent",
		"tags": ["a", 3, "b", null],
		"completed": "yes",
		"listId": "",
		"createdAt": "2025-05-02T00:00:00.000Z",
		"updatedAt": "2025-05-01T00:00:00.000Z",
		"location": {"name": "Shop", "latitude": 1, "longitude": 2, "radius": 50}
	}]`)

	got, report := DecodeTodos(data, now)
	require.Len(t, got, 1)
	assert.True(t, report.Clean())

	td := got[0]
	assert.Equal(t, todo.PriorityMedium, td.Priority)
	assert.Equal(t, []string{"a", "b"}, td.Tags)
	assert.False(t, td.Completed)
	assert.Equal(t, todo.DefaultListID, td.ListID)
	assert.Equal(t, td.CreatedAt, td.UpdatedAt, "updatedAt clamped to createdAt")
	require.NotNil(t, td.Location)
	assert.False(t, td.Location.Triggered)
}

func TestDecodeTodos_EpochMillis(t *testing.T) {
	ms := created.UnixMilli()
	data, err := json.Marshal([]map[string]any{{
		"id":        "t1",
		"title":     "x",
		"createdAt": ms,
		"updatedAt": ms,
		"dueDate":   ms,
	}})
	require.NoError(t, err)

	got, _ := DecodeTodos(data, now)
	require.Len(t, got, 1)
	assert.True(t, got[0].CreatedAt.Equal(created))
	require.NotNil(t, got[0].DueDate)
	assert.True(t, got[0].DueDate.Equal(created))
}

func TestDecodeTodos_BadDatesSynthesized(t *testing.T) {
	data := []byte(`[{"schemaVersion":2,"id":"t1","title":"x","priority":"low","tags":[],"listId":"default",
		"createdAt":"yesterday","updatedAt":"not a date","dueDate":"soon"}]`)

	got, report := DecodeTodos(data, now)
	require.Len(t, got, 1)
	assert.True(t, report.Clean())
	assert.Zero(t, report.Migrated)
	assert.Equal(t, 1, report.Repaired)
	assert.True(t, report.Upgraded())
	assert.Equal(t, now, got[0].CreatedAt)
	assert.Equal(t, now, got[0].UpdatedAt)
	assert.Nil(t, got[0].DueDate)
}

func TestTodos_RoundTripZeroWeatherTimestamp(t *testing.T) {
	in := fullTodo()
	in.WeatherRecommendation.Timestamp = time.Time{}

	data, err := EncodeTodos([]todo.Todo{in})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestamp":null`)

	got, report := DecodeTodos(data, now)
	require.Len(t, got, 1)
	assert.False(t, report.Upgraded())
	require.NotNil(t, got[0].WeatherRecommendation)
	assert.True(t, got[0].WeatherRecommendation.Timestamp.IsZero())
	assert.Equal(t, in, got[0])
}

func TestReport_Upgraded(t *testing.T) {
	current, err := EncodeTodos([]todo.Todo{fullTodo()})
	require.NoError(t, err)
	_, report := DecodeTodos(current, now)
	assert.False(t, report.Upgraded(), "current records need no write-back")

	_, report = DecodeTodos([]byte(`[{"id":"old1","title":"Legacy"}]`), now)
	assert.True(t, report.Upgraded())

	_, report = DecodeTodos([]byte(`{not json`), now)
	assert.False(t, report.Upgraded(), "corrupt collections are never written back")
}

func TestDecodeTodos_Tolerance(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		wantLen     int
		wantCorrupt bool
		wantSkipped int
	}{
		{name: "invalid json", data: `[{"id":`, wantCorrupt: true},
		{name: "not an array", data: `{"id":"t1"}`, wantCorrupt: true},
		{name: "empty string", data: ``, wantCorrupt: true},
		{name: "null", data: `null`},
		{name: "empty array", data: `[]`},
		{
			name:        "non-object records dropped",
			data:        `[{"id":"t1","title":"a"}, 42, "str", null, {"id":"t2","title":"b"}]`,
			wantLen:     2,
			wantSkipped: 3,
		},
		{
			name:        "record without id dropped",
			data:        `[{"title":"orphan"}, {"id":"t2","title":"b"}]`,
			wantLen:     1,
			wantSkipped: 1,
		},
		{
			name:        "wrong field type dropped",
			data:        `[{"id":"t1","title":{"nested":true}}, {"id":"t2","title":"b"}]`,
			wantLen:     1,
			wantSkipped: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, report := DecodeTodos([]byte(tt.data), now)
			require.NotNil(t, got)
			assert.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.wantCorrupt, report.Corrupt)
			assert.Equal(t, tt.wantSkipped, report.Skipped)
		})
	}
}

func TestDecodeLists_Legacy(t *testing.T) {
	data := []byte(`[{"id":"l1"},{"id":"l2","name":"Work","createdAt":"2025-05-01T08:30:15.123Z"}]`)

	got, report := DecodeLists(data, now)
	require.Len(t, got, 2)
	assert.Equal(t, 2, report.Migrated)
	assert.Equal(t, "Untitled", got[0].Name)
	assert.Equal(t, now, got[0].CreatedAt)
	assert.Equal(t, "Work", got[1].Name)
	assert.Equal(t, created, got[1].CreatedAt)
	assert.Equal(t, now, got[1].UpdatedAt)
}

func TestDecodeIdeas_Legacy(t *testing.T) {
	data := []byte(`[{"id":"i1","title":"Idea","isFavorite":"maybe"}]`)

	got, report := DecodeIdeas(data, now)
	require.Len(t, got, 1)
	assert.Equal(t, 1, report.Migrated)
	assert.Equal(t, []string{}, got[0].Tags)
	assert.False(t, got[0].IsFavorite)
	assert.Equal(t, now, got[0].CreatedAt)
}

func TestReduceTodo(t *testing.T) {
	got := ReduceTodo(fullTodo())

	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "Mow the lawn", got.Title)
	assert.Equal(t, todo.PriorityHigh, got.Priority)
	assert.NotNil(t, got.DueDate)
	assert.Empty(t, got.Description)
	assert.Empty(t, got.Notes)
	assert.Nil(t, got.Location)
	assert.Nil(t, got.WeatherRecommendation)
}
