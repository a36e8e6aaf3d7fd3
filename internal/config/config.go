package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bankfeed-dev/bankfeed/internal/store"
)

// Config represents the top-level bankfeed.yaml configuration.
type Config struct {
	Server   ServerConfig `yaml:"server"`
	Database store.Config `yaml:"database"`
	Import   ImportConfig `yaml:"import"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// ImportConfig controls statement parsing.
type ImportConfig struct {
	// Format names the statement parser: "belfius" (header-based,
	// the default) or "belfius-legacy" (positional compatibility mode
	// for old exports; never auto-selected).
	Format string `yaml:"format"`
}

// Load reads a bankfeed.yaml file from disk and applies environment
// overrides for the database credentials.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnv()
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with development defaults and environment
// overrides applied.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
		},
		Database: store.Config{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     "5432",
			User:     "bankfeed",
			Password: "bankfeed",
			Name:     "bankfeed",
		},
		Import: ImportConfig{
			Format: "belfius",
		},
	}
	cfg.applyEnv()
	return cfg
}

// applyEnv lets deployment environments override database credentials
// without touching the config file.
func (c *Config) applyEnv() {
	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
