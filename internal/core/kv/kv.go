// Package kv defines the flat string key-value adapter that every
// persisted collection and settings blob is written through.
package kv

import (
	"context"
	"errors"
	"slices"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kv: key not found")

// Keys of the persisted layout. Each collection lives under its own key as a
// JSON-encoded array.
const (
	KeyTodos        = "todos"
	KeyTodoLists    = "todoLists"
	KeyIdeas        = "ideas"
	KeyUserSettings = "userSettings"

	KeyNotificationSettings     = "notificationSettings"
	KeyNotificationSounds       = "notificationSounds"
	KeyFavoriteQuotes           = "favoriteQuotes"
	KeyWeatherData              = "weatherData"
	KeyWeatherLastUpdated       = "weatherLastUpdated"
	KeyLocationReminderSettings = "locationReminderSettings"
)

// AuxiliaryKeys are the independently read/written settings blobs that share
// the adapter with the core collections.
var AuxiliaryKeys = []string{
	KeyNotificationSettings,
	KeyNotificationSounds,
	KeyFavoriteQuotes,
	KeyWeatherData,
	KeyWeatherLastUpdated,
	KeyLocationReminderSettings,
}

// IsAuxiliary reports whether key is one of AuxiliaryKeys.
func IsAuxiliary(key string) bool {
	return slices.Contains(AuxiliaryKeys, key)
}

// KV is a single logical namespace of string keys holding string values.
// Implementations must be safe for concurrent use; they make no promise
// about ordering between concurrent writes to the same key.
type KV interface {
	// Get returns the value stored under key, or an error wrapping
	// ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// ListKeys returns every key in ascending order.
	ListKeys(ctx context.Context) ([]string, error)
}
