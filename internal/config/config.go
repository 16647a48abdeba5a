// Package config loads service configuration from an optional YAML file and
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// configFileEnv names the environment variable pointing at the optional
// YAML configuration file.
const configFileEnv = "CONFIG_FILE"

// Config holds the report service configuration.
type Config struct {
	API struct {
		// BaseURL is the upstream API root.
		BaseURL string `yaml:"base_url"`
		// Token is the upstream bearer token.
		Token string `yaml:"token"`
	} `yaml:"api"`

	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	Report struct {
		// PerPage is the upstream listing page size (capped at 100).
		PerPage int `yaml:"per_page"`
		// MaxPages is the default page-count safety cap per listing walk.
		MaxPages int `yaml:"max_pages"`
	} `yaml:"report"`
}

// Load reads the YAML file named by CONFIG_FILE when set, applies
// environment variable overrides, and validates the result. The upstream
// token is the one mandatory setting: without a credential no report can be
// produced.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"

	if path := os.Getenv(configFileEnv); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: decode yaml: %w", err)
		}
	}

	applyEnv(&cfg.API.BaseURL, "API_BASE_URL")
	applyEnv(&cfg.API.Token, "API_TOKEN")
	applyEnv(&cfg.Server.Port, "PORT")
	applyEnv(&cfg.Log.Level, "LOG_LEVEL")
	applyEnvBool(&cfg.Log.Pretty, "LOG_PRETTY")
	if err := applyEnvInt(&cfg.Report.PerPage, "REPORT_PER_PAGE"); err != nil {
		return nil, err
	}
	if err := applyEnvInt(&cfg.Report.MaxPages, "REPORT_MAX_PAGES"); err != nil {
		return nil, err
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("config: api base URL is required (API_BASE_URL)")
	}
	if cfg.API.Token == "" {
		return nil, fmt.Errorf("config: api token is required (API_TOKEN)")
	}

	return cfg, nil
}

func applyEnv(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*target = v
	}
}

func applyEnvBool(target *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*target = parsed
		}
	}
}

func applyEnvInt(target *int, key string) error {
	if v, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: parse %s: %w", key, err)
		}
		*target = parsed
	}
	return nil
}
