// Package config handles configuration loading and validation for docket.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/docket/internal/core/ident"
	"github.com/colonyops/docket/internal/core/query"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Backends lists every accepted storage backend.
var Backends = []string{BackendSQLite, BackendFile, BackendRedis, BackendMemory}

// Config holds the application configuration.
type Config struct {
	Storage        Storage       `yaml:"storage"`
	IDs            string        `yaml:"ids"`
	Locale         string        `yaml:"locale"`
	View           ViewConfig    `yaml:"view"`
	IdeasView      ViewConfig    `yaml:"ideas_view"`
	ResyncInterval time.Duration `yaml:"resync_interval"`
	DataDir        string        `yaml:"-"` // set by caller, not from config file
}

// Storage selects and configures the key-value backend.
type Storage struct {
	Backend  string         `yaml:"backend"`
	File     string         `yaml:"file"` // json file path, defaults to <data-dir>/docket.json
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	DB       int    `yaml:"db"`
	Password string `yaml:"password"`
	Prefix   string `yaml:"prefix"` // namespace prepended to every key
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// ViewConfig is the initial filter and ordering of a listing.
type ViewConfig struct {
	Filter    string `yaml:"filter"`
	Sort      string `yaml:"sort"`
	Direction string `yaml:"direction"`
}

// TodoView converts v to a query view.
func (v ViewConfig) TodoView() query.View {
	return query.View{
		Filter:    query.TodoFilter(v.Filter),
		Sort:      query.TodoSort(v.Sort),
		Direction: query.Direction(v.Direction),
	}
}

// IdeaView converts v to an idea query view.
func (v ViewConfig) IdeaView() query.IdeaView {
	return query.IdeaView{
		Filter:    query.IdeaFilter(v.Filter),
		Sort:      query.IdeaSort(v.Sort),
		Direction: query.Direction(v.Direction),
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	todoView := query.DefaultView()
	ideaView := query.DefaultIdeaView()

	return Config{
		Storage: Storage{
			Backend: BackendSQLite,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "docket:",
			},
			Database: DatabaseConfig{
				MaxOpenConns: 1,
				BusyTimeout:  5000,
			},
		},
		IDs:    ident.StrategyTimeRandom,
		Locale: "en",
		View: ViewConfig{
			Filter:    string(todoView.Filter),
			Sort:      string(todoView.Sort),
			Direction: string(todoView.Direction),
		},
		IdeasView: ViewConfig{
			Filter:    string(ideaView.Filter),
			Sort:      string(ideaView.Sort),
			Direction: string(ideaView.Direction),
		},
		ResyncInterval: 30 * time.Second,
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.ValidateDeep(configPath); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Storage.File == "" && c.DataDir != "" {
		c.Storage.File = filepath.Join(c.DataDir, "docket.json")
	}
	if c.Storage.Redis.Addr == "" {
		c.Storage.Redis.Addr = defaults.Storage.Redis.Addr
	}
	if c.Storage.Database.MaxOpenConns == 0 {
		c.Storage.Database.MaxOpenConns = defaults.Storage.Database.MaxOpenConns
	}
	if c.Storage.Database.BusyTimeout == 0 {
		c.Storage.Database.BusyTimeout = defaults.Storage.Database.BusyTimeout
	}
	if c.IDs == "" {
		c.IDs = defaults.IDs
	}
	if c.Locale == "" {
		c.Locale = defaults.Locale
	}
	c.View = mergeView(c.View, defaults.View)
	c.IdeasView = mergeView(c.IdeasView, defaults.IdeasView)
	if c.ResyncInterval == 0 {
		c.ResyncInterval = defaults.ResyncInterval
	}
}

func mergeView(v, def ViewConfig) ViewConfig {
	if v.Filter == "" {
		v.Filter = def.Filter
	}
	if v.Sort == "" {
		v.Sort = def.Sort
	}
	if v.Direction == "" {
		v.Direction = def.Direction
	}
	return v
}

// LocaleTag parses the configured locale. Validate guarantees it parses.
func (c *Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}
