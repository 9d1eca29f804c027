package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"cache": {"backend": "memory"}}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Threshold != 0.8 {
		t.Fatalf("expected default threshold 0.8, got %v", cfg.Cache.Threshold)
	}
	if cfg.Acquisition.MaxResults != 5 {
		t.Fatalf("expected default max_results 5, got %d", cfg.Acquisition.MaxResults)
	}
	if cfg.Acquisition.SearchTimeout != 10*time.Second || cfg.Acquisition.FetchTimeout != 10*time.Second {
		t.Fatalf("unexpected timeouts: %v / %v", cfg.Acquisition.SearchTimeout, cfg.Acquisition.FetchTimeout)
	}
	if cfg.Acquisition.MaxChars != 5000 {
		t.Fatalf("expected max_chars 5000, got %d", cfg.Acquisition.MaxChars)
	}
	if cfg.Summarizer.MaxInputChars != 1024 || cfg.Summarizer.MinLength != 30 || cfg.Summarizer.MaxLength != 120 {
		t.Fatalf("unexpected summarizer bounds: %+v", cfg.Summarizer)
	}
	if cfg.Recent.Capacity != 10 {
		t.Fatalf("expected recent capacity 10, got %d", cfg.Recent.Capacity)
	}
	if cfg.Acquisition.Workers < 1 {
		t.Fatalf("expected normalized workers >= 1, got %d", cfg.Acquisition.Workers)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `{"cache": {"backend": "memory", "threshold": 0.9}}`)
	t.Setenv("SEARCHAGENT_CACHE_THRESHOLD", "0.75")
	t.Setenv("SEARCHAGENT_ACQUISITION_MAX_RESULTS", "3")
	t.Setenv("SEARCHAGENT_ACQUISITION_FETCH_TIMEOUT", "2s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Threshold != 0.75 {
		t.Fatalf("expected env threshold 0.75, got %v", cfg.Cache.Threshold)
	}
	if cfg.Acquisition.MaxResults != 3 {
		t.Fatalf("expected env max_results 3, got %d", cfg.Acquisition.MaxResults)
	}
	if cfg.Acquisition.FetchTimeout != 2*time.Second {
		t.Fatalf("expected env fetch timeout 2s, got %v", cfg.Acquisition.FetchTimeout)
	}
}

func TestLoadRejectsInvalidSections(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown cache backend", body: `{"cache": {"backend": "sqlite"}}`},
		{name: "threshold out of range", body: `{"cache": {"backend": "memory", "threshold": 1.5}}`},
		{name: "index without postgres", body: `{"cache": {"backend": "memory", "use_index": true}}`},
		{name: "postgres without host", body: `{"cache": {"backend": "postgres"}}`},
		{name: "unknown provider", body: `{"cache": {"backend": "memory"}, "embedding": {"provider": "bart"}}`},
		{name: "inverted length bounds", body: `{"cache": {"backend": "memory"}, "summarizer": {"min_length": 200, "max_length": 120}}`},
		{name: "zero max results", body: `{"cache": {"backend": "memory"}, "acquisition": {"max_results": 0}}`},
		{name: "redis recent without host", body: `{"cache": {"backend": "memory"}, "recent": {"backend": "redis"}, "storage": {"redis": {"host": ""}}}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadConfigPanicsOnMissingExplicitFile(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for missing config file")
		}
	}()
	LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
}

func TestPostgresDSN(t *testing.T) {
	t.Parallel()
	p := PostgresConfig{Host: "db", User: "u", Password: "p", DBName: "agent"}
	want := "postgres://u:p@db:5432/agent?sslmode=disable"
	if got := p.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
	p.URL = "postgres://override"
	if got := p.DSN(); got != "postgres://override" {
		t.Fatalf("expected url to win, got %q", got)
	}
}
