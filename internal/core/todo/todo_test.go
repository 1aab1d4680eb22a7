package todo

import (
	"errors"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func TestPriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		rank    int
		wantErr bool
	}{
		{in: "high", want: PriorityHigh, rank: 0},
		{in: "medium", want: PriorityMedium, rank: 1},
		{in: "low", want: PriorityLow, rank: 2},
		{in: "", want: DefaultPriority, rank: 1},
		{in: "urgent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.rank, got.Rank())
		})
	}
}

func TestNewTodo_Validate(t *testing.T) {
	tests := []struct {
		name      string
		in        NewTodo
		wantField string
	}{
		{name: "valid", in: NewTodo{Title: "Pay rent"}},
		{name: "blank title", in: NewTodo{Title: "   "}, wantField: "title"},
		{name: "bad priority", in: NewTodo{Title: "x", Priority: "urgent"}, wantField: "priority"},
		{
			name:      "bad radius",
			in:        NewTodo{Title: "x", Location: &Location{Latitude: 1, Longitude: 1}},
			wantField: "location.radius",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, ErrValidation)
			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, tt.wantField, fieldErrs[0].Field)
		})
	}
}

func TestNewTodo_BuildDefaults(t *testing.T) {
	got := NewTodo{Title: "  Pay rent  "}.Build("t1", now)

	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "Pay rent", got.Title)
	assert.Equal(t, PriorityMedium, got.Priority)
	assert.Equal(t, DefaultListID, got.ListID)
	assert.Equal(t, []string{}, got.Tags)
	assert.False(t, got.Completed)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, now, got.UpdatedAt)
}

func TestNewTodo_BuildDoesNotAliasInput(t *testing.T) {
	due := now.Add(time.Hour)
	in := NewTodo{Title: "x", Tags: []string{"a"}, DueDate: &due}

	got := in.Build("t1", now)
	in.Tags[0] = "changed"
	*in.DueDate = now

	assert.Equal(t, []string{"a"}, got.Tags)
	assert.Equal(t, now.Add(time.Hour), *got.DueDate)
}

func TestTodoPatch_Apply(t *testing.T) {
	base := NewTodo{Title: "Pay rent", Tags: []string{"home"}}.Build("t1", now)
	later := now.Add(time.Minute)

	title := "Pay rent today"
	done := true
	high := PriorityHigh
	tags := []string{"home", "money"}
	due := now.Add(24 * time.Hour)

	got := TodoPatch{
		Title:     &title,
		Completed: &done,
		Priority:  &high,
		Tags:      &tags,
		DueDate:   &due,
	}.Apply(base, later)

	assert.Equal(t, "Pay rent today", got.Title)
	assert.True(t, got.Completed)
	assert.Equal(t, PriorityHigh, got.Priority)
	assert.Equal(t, []string{"home", "money"}, got.Tags)
	assert.Equal(t, due, *got.DueDate)
	assert.Equal(t, later, got.UpdatedAt)
	assert.Equal(t, now, got.CreatedAt)

	// Base is untouched.
	assert.Equal(t, "Pay rent", base.Title)
	assert.Equal(t, []string{"home"}, base.Tags)

	cleared := TodoPatch{ClearDueDate: true}.Apply(got, later)
	assert.Nil(t, cleared.DueDate)
}

func TestTodoPatch_ApplyKeepsTriggered(t *testing.T) {
	base := NewTodo{Title: "x"}.Build("t1", now)
	base.Location = &Location{Name: "Shop", Latitude: 1, Longitude: 1, Radius: 100, Triggered: true}

	got := TodoPatch{Location: &Location{Name: "Shop", Latitude: 1, Longitude: 1, Radius: 200}}.Apply(base, now)

	require.NotNil(t, got.Location)
	assert.True(t, got.Location.Triggered)
	assert.InDelta(t, 200, got.Location.Radius, 0)
}

func TestTodoPatch_ApplyClampsUpdatedAt(t *testing.T) {
	base := NewTodo{Title: "x"}.Build("t1", now)
	done := true

	got := TodoPatch{Completed: &done}.Apply(base, now.Add(-time.Hour))

	assert.Equal(t, base.CreatedAt, got.UpdatedAt)
}

func TestTodoPatch_Validate(t *testing.T) {
	empty := ""
	bad := Priority("urgent")

	err := TodoPatch{Title: &empty, Priority: &bad}.Validate()
	require.ErrorIs(t, err, ErrValidation)

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)

	assert.NoError(t, TodoPatch{}.Validate())
	assert.True(t, TodoPatch{}.IsEmpty())
}

func TestIdea_BuildAndPatch(t *testing.T) {
	idea := NewIdea{Title: " Garden ", Tags: []string{"home"}}.Build("i1", now)
	assert.Equal(t, "Garden", idea.Title)
	assert.False(t, idea.IsFavorite)

	fav := true
	got := IdeaPatch{IsFavorite: &fav}.Apply(idea, now.Add(time.Second))
	assert.True(t, got.IsFavorite)
	assert.False(t, idea.IsFavorite)
	assert.Equal(t, now.Add(time.Second), got.UpdatedAt)

	require.ErrorIs(t, NewIdea{}.Validate(), ErrValidation)
}

func TestTodoClone_Deep(t *testing.T) {
	due := now
	orig := Todo{
		ID:                    "t1",
		Tags:                  []string{"a"},
		DueDate:               &due,
		Location:              &Location{Name: "home"},
		WeatherRecommendation: &WeatherRecommendation{Message: "sunny"},
	}

	c := orig.Clone()
	c.Tags[0] = "b"
	*c.DueDate = now.Add(time.Hour)
	c.Location.Name = "work"
	c.WeatherRecommendation.Message = "rain"

	assert.Equal(t, "a", orig.Tags[0])
	assert.Equal(t, now, *orig.DueDate)
	assert.Equal(t, "home", orig.Location.Name)
	assert.Equal(t, "sunny", orig.WeatherRecommendation.Message)
}

func TestConversionError(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&ConversionError{TodoID: "t1", IdeaID: "i1", Err: cause})

	assert.ErrorIs(t, err, ErrPartialConversion)
	assert.ErrorIs(t, err, cause)

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "t1", convErr.TodoID)
}

func TestValidateListName(t *testing.T) {
	assert.NoError(t, ValidateListName("Groceries"))
	assert.ErrorIs(t, ValidateListName(" "), ErrValidation)
}

func TestUserSettings(t *testing.T) {
	s := UserSettings{Name: "Sam"}.WithDefaults()
	assert.Equal(t, ThemeSystem, s.Theme)
	assert.Equal(t, ViewModeList, s.ListsViewMode)
	require.NoError(t, s.Validate())

	s.Theme = "neon"
	require.ErrorIs(t, s.Validate(), ErrValidation)
}
