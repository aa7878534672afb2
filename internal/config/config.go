// Package config loads application settings from an optional YAML file and
// EDCHAT_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config is the application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Quiz    QuizConfig    `yaml:"quiz"`
}

type StoreConfig struct {
	// Backend is one of "sqlite", "redis", "memory". The LLM request log and
	// session history always live in SQLite; Backend selects where the
	// key-value state (stats, preferences, chat history) goes.
	Backend string      `yaml:"backend"`
	DBPath  string      `yaml:"db_path"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type LogConfig struct {
	// Mode is "dev" or "prod".
	Mode string `yaml:"mode"`
	// File receives log output. Empty means <data dir>/edchat.log.
	File string `yaml:"file"`
}

type MetricsConfig struct {
	// Addr serves /metrics when non-empty, e.g. "127.0.0.1:9464".
	Addr string `yaml:"addr"`
}

type QuizConfig struct {
	QuestionCount int           `yaml:"question_count"`
	MinimumValid  int           `yaml:"minimum_valid"`
	Difficulty    string        `yaml:"difficulty"`
	Timed         bool          `yaml:"timed"`
	GraceDelay    time.Duration `yaml:"grace_delay"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend: StoreSQLite,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "edchat:",
			},
		},
		Log: LogConfig{Mode: "dev"},
		Quiz: QuizConfig{
			QuestionCount: 5,
			MinimumValid:  3,
			Difficulty:    "medium",
			Timed:         true,
			GraceDelay:    2 * time.Second,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/edchat/config.yaml, falling back to
// ~/.config/edchat/config.yaml.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "edchat", "config.yaml"), nil
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error. An empty path
// uses DefaultPath.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("EDCHAT_DB"); v != "" {
		cfg.Store.DBPath = v
	}
	if v := os.Getenv("EDCHAT_STORE"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("EDCHAT_REDIS_ADDR"); v != "" {
		cfg.Store.Redis.Addr = v
	}
	if v := os.Getenv("EDCHAT_REDIS_PASSWORD"); v != "" {
		cfg.Store.Redis.Password = v
	}
	if v := os.Getenv("EDCHAT_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EDCHAT_REDIS_DB: %w", err)
		}
		cfg.Store.Redis.DB = n
	}
	if v := os.Getenv("EDCHAT_LOG_MODE"); v != "" {
		cfg.Log.Mode = v
	}
	if v := os.Getenv("EDCHAT_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("EDCHAT_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	return nil
}

// Validate checks for values the rest of the app cannot work with.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreSQLite, StoreMemory:
	case StoreRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store backend: %q", c.Store.Backend)
	}
	if c.Quiz.QuestionCount < 1 {
		return fmt.Errorf("quiz.question_count must be positive, got %d", c.Quiz.QuestionCount)
	}
	if c.Quiz.MinimumValid < 1 || c.Quiz.MinimumValid > c.Quiz.QuestionCount {
		return fmt.Errorf("quiz.minimum_valid must be between 1 and question_count, got %d", c.Quiz.MinimumValid)
	}
	if c.Quiz.GraceDelay < 0 {
		return fmt.Errorf("quiz.grace_delay must not be negative")
	}
	return nil
}
