package docket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/colonyops/docket/internal/core/kv"
	"github.com/colonyops/docket/internal/core/logging"
	"github.com/colonyops/docket/internal/core/todo"
)

// Settings reads and writes the user settings blob and the auxiliary
// settings blobs that share the adapter with the collections.
type Settings struct {
	store kv.KV
	user  *kv.Blob[todo.UserSettings]
	log   zerolog.Logger
}

// NewSettings creates a Settings service over store.
func NewSettings(store kv.KV) *Settings {
	return &Settings{
		store: store,
		user:  kv.NewBlob[todo.UserSettings](store, kv.KeyUserSettings),
		log:   logging.Component("settings"),
	}
}

// User returns the stored user settings. Absent or unreadable settings
// yield the defaults.
func (s *Settings) User(ctx context.Context) (todo.UserSettings, error) {
	ctx = logging.WithCollection(ctx, s.user.Key())

	us, err := s.user.Get(ctx)
	switch {
	case err == nil:
		return us.WithDefaults(), nil
	case errors.Is(err, kv.ErrNotFound):
		return todo.DefaultUserSettings(), nil
	case isDecodeError(err):
		s.log.Warn().Ctx(ctx).Err(err).Msg("user settings unreadable, using defaults")
		return todo.DefaultUserSettings(), nil
	default:
		return todo.UserSettings{}, fmt.Errorf("read user settings: %w", err)
	}
}

// SetUser validates and stores the user settings. Empty enumerated fields
// take their defaults.
func (s *Settings) SetUser(ctx context.Context, us todo.UserSettings) error {
	us = us.WithDefaults()
	if err := us.Validate(); err != nil {
		return err
	}
	if err := s.user.Set(ctx, us); err != nil {
		return fmt.Errorf("write user settings: %w", err)
	}
	return nil
}

// ResetUser removes the stored user settings so that User returns the
// defaults again.
func (s *Settings) ResetUser(ctx context.Context) error {
	ctx = logging.WithCollection(ctx, s.user.Key())
	if err := s.user.Remove(ctx); err != nil {
		return fmt.Errorf("reset user settings: %w", err)
	}
	s.log.Debug().Ctx(ctx).Msg("user settings reset")
	return nil
}

// Blob returns the raw JSON stored under an auxiliary key. found is false
// when the key is absent. A stored value that is not JSON is returned as a
// JSON string.
func (s *Settings) Blob(ctx context.Context, key string) (raw json.RawMessage, found bool, err error) {
	if err := checkAuxiliary(key); err != nil {
		return nil, false, err
	}

	v, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}

	if json.Valid([]byte(v)) {
		return json.RawMessage(v), true, nil
	}

	quoted, err := json.Marshal(v)
	if err != nil {
		return nil, false, err
	}
	return quoted, true, nil
}

// SetBlob stores raw JSON under an auxiliary key.
func (s *Settings) SetBlob(ctx context.Context, key string, raw json.RawMessage) error {
	if err := checkAuxiliary(key); err != nil {
		return err
	}
	if !json.Valid(raw) {
		return todo.Invalid(criterio.NewFieldErrors("value", errors.New("must be valid JSON")))
	}
	if err := s.store.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// RemoveBlob deletes an auxiliary key.
func (s *Settings) RemoveBlob(ctx context.Context, key string) error {
	if err := checkAuxiliary(key); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func checkAuxiliary(key string) error {
	if kv.IsAuxiliary(key) {
		return nil
	}
	return todo.Invalid(criterio.NewFieldErrors("key", fmt.Errorf("%q is not a settings key", key)))
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
