package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config defines bugtrail configuration.
type Config struct {
	DB     DBConfig     `yaml:"db" toml:"db"`
	Log    LogConfig    `yaml:"log" toml:"log"`
	Export ExportConfig `yaml:"export" toml:"export"`
}

type DBConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	// Path sends logs to a size-capped file instead of stderr.
	Path string `yaml:"path" toml:"path"`
}

type ExportConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		DB: DBConfig{
			Path: defaultDBPath(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Export: ExportConfig{
			Dir: ".",
		},
	}
}

// Load reads configuration from an optional file and environment variables.
// path wins over BUGTRAIL_CONFIG_PATH when both are set.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("BUGTRAIL_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if dbPath := os.Getenv("BUGTRAIL_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("BUGTRAIL_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("BUGTRAIL_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if dir := os.Getenv("BUGTRAIL_EXPORT_DIR"); dir != "" {
		cfg.Export.Dir = dir
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the app cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "bugtrail.db"
	}
	return filepath.Join(dir, "bugtrail", "bugtrail.db")
}
