package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	xdgAppName = "duke"
	configFile = "config.toml"
	dataFile   = "tasks.jsonl"

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "DUKE_CONFIG"

	DefaultCalendar = "Tasks"
)

type Config struct {
	DataFile string `toml:"data_file"`
	Calendar string `toml:"calendar"`
	Sync     bool   `toml:"sync"`
	LogLevel string `toml:"log_level"`
	// OverdueWarning lists passed deadlines when the program starts.
	OverdueWarning bool `toml:"overdue_warning"`
}

// Dir is the per-user config directory, ~/.config/duke.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Default returns the config used when no file exists. The data file sits
// next to the config file.
func Default(configPath string) *Config {
	return &Config{
		DataFile:       filepath.Join(filepath.Dir(configPath), dataFile),
		Calendar:       DefaultCalendar,
		LogLevel:       "info",
		OverdueWarning: true,
	}
}

func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := Default(path)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Calendar == "" {
		cfg.Calendar = DefaultCalendar
	}
	if cfg.DataFile == "" {
		cfg.DataFile = Default(path).DataFile
	}
	return cfg, nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
