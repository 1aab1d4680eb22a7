package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"
	"golang.org/x/text/language"

	"github.com/colonyops/docket/internal/core/ident"
)

// Validate checks that the configuration is structurally valid. Every
// problem is reported, not just the first.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", errors.New("data directory cannot be empty"))
	}

	if !slices.Contains(Backends, c.Storage.Backend) {
		errs = errs.Append("storage.backend", oneOfError(c.Storage.Backend, Backends))
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.File == "" {
			errs = errs.Append("storage.file", errors.New("required for the file backend"))
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			errs = errs.Append("storage.redis.addr", errors.New("required for the redis backend"))
		}
		if c.Storage.Redis.DB < 0 {
			errs = errs.Append("storage.redis.db", errors.New("must not be negative"))
		}
	}

	if c.Storage.Database.MaxOpenConns < 1 {
		errs = errs.Append("storage.database.max_open_conns", errors.New("must be at least 1"))
	}
	if c.Storage.Database.BusyTimeout < 0 {
		errs = errs.Append("storage.database.busy_timeout", errors.New("must not be negative"))
	}

	if !slices.Contains(ident.Strategies, c.IDs) {
		errs = errs.Append("ids", oneOfError(c.IDs, ident.Strategies))
	}

	if _, err := language.Parse(c.Locale); err != nil {
		errs = errs.Append("locale", fmt.Errorf("invalid BCP 47 tag %q", c.Locale))
	}

	errs = appendNested(errs, "view", c.View.TodoView().Validate())
	errs = appendNested(errs, "ideas_view", c.IdeasView.IdeaView().Validate())

	if c.ResyncInterval <= 0 {
		errs = errs.Append("resync_interval", errors.New("must be positive"))
	}

	return errs.ToError()
}

// ValidateDeep runs Validate and then checks the filesystem paths the
// configuration refers to. The configPath argument specifies the config file
// location to validate (empty string skips config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		c.validateStorageFile(),
	)
}

func (c *Config) validateStorageFile() error {
	if c.Storage.Backend != BackendFile {
		return nil
	}
	return criterio.ValidateStruct(
		criterio.Run("storage.file", c.Storage.File, isFileOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// isFileOrNotExist validates that a path is a regular file or doesn't exist
// yet, and that its parent is not a regular file.
func isFileOrNotExist(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return isDirectoryOrNotExist(filepath.Dir(path))
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}

// appendNested re-roots the field errors of a nested validator under prefix.
func appendNested(errs criterio.FieldErrorsBuilder, prefix string, err error) criterio.FieldErrorsBuilder {
	if err == nil {
		return errs
	}
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return errs.Append(prefix, err)
	}
	for _, fe := range fieldErrs {
		errs = errs.Append(prefix+"."+fe.Field, fe.Err)
	}
	return errs
}

func oneOfError(got string, allowed []string) error {
	return fmt.Errorf("invalid value %q (must be one of %s)", got, strings.Join(allowed, ", "))
}
