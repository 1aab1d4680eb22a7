package commands

import (
	"os"
	"path/filepath"

	"github.com/colonyops/docket/internal/core/config"
	"github.com/colonyops/docket/internal/data/stores"
	"github.com/colonyops/docket/internal/docket"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
	Backend    string
	Format     string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Storage is the opened adapter backend
	Storage *stores.Opened

	// App is populated in the Before hook; commands hold the pointer
	App *docket.App
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "docket", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "docket")
}
