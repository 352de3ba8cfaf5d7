package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config is the YAML service configuration. Database credentials come from
// the environment, not from this file.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Draft struct {
		DefaultTimePerPickSec int `yaml:"default_time_per_pick_sec"`
	} `yaml:"draft"`

	Database struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"database"`

	NATS struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"nats"`

	Catalog struct {
		SeedPath string `yaml:"seed_path"`
		Leagues  []struct {
			ID     uuid.UUID `yaml:"id"`
			Sports []string  `yaml:"sports"`
		} `yaml:"leagues"`
	} `yaml:"catalog"`
}

func defaultConfig() *Config {
	var cfg Config
	cfg.Server.Addr = ":8080"
	cfg.Draft.DefaultTimePerPickSec = 30
	cfg.NATS.URL = "nats://localhost:4222"
	return &cfg
}

func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	return cfg, nil
}

func (c *Config) defaultTimePerPick() time.Duration {
	if c.Draft.DefaultTimePerPickSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Draft.DefaultTimePerPickSec) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
