package todo

import (
	"fmt"

	"github.com/hay-kot/criterio"
)

// Theme is the user's preferred color scheme.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ViewMode controls how lists are laid out.
type ViewMode string

const (
	ViewModeList ViewMode = "list"
	ViewModeGrid ViewMode = "grid"
)

// UserSettings is the blob stored under the userSettings key.
type UserSettings struct {
	Name          string   `json:"name"`
	Theme         Theme    `json:"theme"`
	ListsViewMode ViewMode `json:"listsViewMode"`
}

// DefaultUserSettings returns the settings used before the user saves any.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		Theme:         ThemeSystem,
		ListsViewMode: ViewModeList,
	}
}

// WithDefaults fills empty fields from DefaultUserSettings.
func (s UserSettings) WithDefaults() UserSettings {
	d := DefaultUserSettings()
	if s.Theme == "" {
		s.Theme = d.Theme
	}
	if s.ListsViewMode == "" {
		s.ListsViewMode = d.ListsViewMode
	}
	return s
}

// Validate checks the enumerated fields.
func (s UserSettings) Validate() error {
	var errs criterio.FieldErrorsBuilder
	switch s.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		errs = errs.Append("theme", fmt.Errorf("invalid theme %q (must be light, dark or system)", s.Theme))
	}
	switch s.ListsViewMode {
	case ViewModeList, ViewModeGrid:
	default:
		errs = errs.Append("listsViewMode", fmt.Errorf("invalid view mode %q (must be list or grid)", s.ListsViewMode))
	}
	return Invalid(errs.ToError())
}
