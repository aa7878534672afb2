package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Backend != StoreSQLite {
		t.Errorf("backend = %q, want sqlite", cfg.Store.Backend)
	}
	if cfg.Quiz.QuestionCount != 5 || cfg.Quiz.MinimumValid != 3 {
		t.Errorf("quiz = %+v", cfg.Quiz)
	}
	if cfg.Quiz.GraceDelay != 2*time.Second {
		t.Errorf("grace = %v, want 2s", cfg.Quiz.GraceDelay)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
store:
  backend: redis
  redis:
    addr: cache:6379
quiz:
  question_count: 8
  minimum_valid: 4
  grace_delay: 500ms
log:
  mode: prod
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EDCHAT_REDIS_ADDR", "override:6380")
	t.Setenv("EDCHAT_METRICS_ADDR", "127.0.0.1:9464")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Backend != StoreRedis {
		t.Errorf("backend = %q", cfg.Store.Backend)
	}
	if cfg.Store.Redis.Addr != "override:6380" {
		t.Errorf("redis addr = %q, env should win", cfg.Store.Redis.Addr)
	}
	if cfg.Quiz.QuestionCount != 8 || cfg.Quiz.MinimumValid != 4 {
		t.Errorf("quiz = %+v", cfg.Quiz)
	}
	if cfg.Quiz.GraceDelay != 500*time.Millisecond {
		t.Errorf("grace = %v", cfg.Quiz.GraceDelay)
	}
	if cfg.Log.Mode != "prod" {
		t.Errorf("log mode = %q", cfg.Log.Mode)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9464" {
		t.Errorf("metrics addr = %q", cfg.Metrics.Addr)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("store: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory backend", func(c *Config) { c.Store.Backend = StoreMemory }, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "mongo" }, true},
		{"redis without addr", func(c *Config) { c.Store.Backend = StoreRedis; c.Store.Redis.Addr = "" }, true},
		{"zero questions", func(c *Config) { c.Quiz.QuestionCount = 0 }, true},
		{"minimum above count", func(c *Config) { c.Quiz.MinimumValid = 9 }, true},
		{"negative grace", func(c *Config) { c.Quiz.GraceDelay = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
