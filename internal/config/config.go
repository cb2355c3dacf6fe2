// Package config resolves XDG paths and loads the tracker configuration.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the top-level timetracker configuration.
type Config struct {
	User  UserConfig  `toml:"user"`
	Stats StatsConfig `toml:"stats"`
}

type UserConfig struct {
	Name string `toml:"name"`
}

// StatsConfig controls the rolling windows shown by the stats command.
type StatsConfig struct {
	// LastDays is the size of the trailing-days window (today excluded).
	LastDays int `toml:"last_days"`
	// LastWeeks is the size of the trailing-ISO-weeks window.
	LastWeeks int `toml:"last_weeks"`
}

// Paths holds the resolved standard XDG-compliant paths.
type Paths struct {
	ConfigDir  string
	DataDir    string
	StateDir   string
	ConfigFile string
	DBFile     string
}

// GetPaths returns the resolved paths, respecting XDG env vars.
func GetPaths() Paths {
	home, _ := os.UserHomeDir()

	configDir := envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	dataDir := envOr("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	stateDir := envOr("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))

	ttConfig := filepath.Join(configDir, "timetracker")
	ttData := filepath.Join(dataDir, "timetracker")

	return Paths{
		ConfigDir:  ttConfig,
		DataDir:    ttData,
		StateDir:   filepath.Join(stateDir, "timetracker"),
		ConfigFile: filepath.Join(ttConfig, "config.toml"),
		DBFile:     filepath.Join(ttData, "timetracker.db"),
	}
}

// EnsureDirs creates all required directories.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.ConfigDir, p.DataDir, p.StateDir}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Load reads config from disk, returning defaults if not found.
func Load() (*Config, error) {
	paths := GetPaths()
	cfg := defaultConfig()

	data, err := os.ReadFile(paths.ConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes config to disk.
func Save(cfg *Config) error {
	paths := GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	f, err := os.Create(paths.ConfigFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func defaultConfig() *Config {
	return &Config{
		Stats: StatsConfig{
			LastDays:  5,
			LastWeeks: 6,
		},
	}
}

// applyDefaults fills zero-valued window sizes after a partial config file.
func (c *Config) applyDefaults() {
	if c.Stats.LastDays <= 0 {
		c.Stats.LastDays = 5
	}
	if c.Stats.LastWeeks <= 0 {
		c.Stats.LastWeeks = 6
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
