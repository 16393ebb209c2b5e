// Package config loads the CLI/server configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration for cmd/arbor.
type Config struct {
	Listen        string `yaml:"listen"`
	LogLevel      string `yaml:"log_level"`
	CommandPrefix string `yaml:"command_prefix"`

	Controls struct {
		GoBack string `yaml:"go_back"`
		Reload string `yaml:"reload"`
	} `yaml:"controls"`

	Redis struct {
		Addr     string   `yaml:"addr"`
		Password string   `yaml:"password"`
		DB       int      `yaml:"db"`
		Prefix   string   `yaml:"prefix"`
		TTL      Duration `yaml:"ttl"`
	} `yaml:"redis"`
}

// Duration decodes Go duration strings ("30m", "24h") from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Listen:        ":8080",
		LogLevel:      "info",
		CommandPrefix: "!",
	}
	cfg.Controls.GoBack = "_go_back"
	cfg.Controls.Reload = "_reload"
	cfg.Redis.Prefix = "arbor:session:"
	return cfg
}

// Load reads the YAML file at path (optional: "" keeps defaults) and applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("ARBOR_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("ARBOR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ARBOR_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("ARBOR_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	return cfg, nil
}
