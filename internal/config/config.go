package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	StorageBackend string `yaml:"storage_backend"` // "memory", "sqlite" or "firestore"
	SQLitePath     string `yaml:"sqlite_path"`
	GCPProjectID   string `yaml:"gcp_project"`

	// ReplyDelayMS is the simulated companion typing latency.
	ReplyDelayMS int `yaml:"reply_delay_ms"`
}

func (c *Config) ReplyDelay() time.Duration {
	return time.Duration(c.ReplyDelayMS) * time.Millisecond
}

func defaults() *Config {
	return &Config{
		Port:           "8080",
		LogLevel:       "info",
		StorageBackend: "memory",
		SQLitePath:     "felix.db",
		ReplyDelayMS:   1500,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Load builds the config: defaults, then the optional YAML file at path
// (FELIX_CONFIG_FILE or the given path; a missing file is not an error),
// then env var overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("FELIX_CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	cfg.Port = getEnv("FELIX_PORT", cfg.Port)
	cfg.LogLevel = getEnv("FELIX_LOG_LEVEL", cfg.LogLevel)
	cfg.StorageBackend = getEnv("FELIX_STORAGE_BACKEND", cfg.StorageBackend)
	cfg.SQLitePath = getEnv("FELIX_SQLITE_PATH", cfg.SQLitePath)
	cfg.GCPProjectID = getEnv("FELIX_GCP_PROJECT", cfg.GCPProjectID)
	cfg.ReplyDelayMS = getIntEnv("FELIX_REPLY_DELAY_MS", cfg.ReplyDelayMS)

	if cfg.StorageBackend == "firestore" && cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("FELIX_GCP_PROJECT must be set for the firestore backend")
	}

	return cfg, nil
}
