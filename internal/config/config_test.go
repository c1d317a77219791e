package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "./cache.db"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath != filepath.Join(dir, "cache.db") {
		t.Errorf("database_path = %s", cfg.Storage.DatabasePath)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
	if cfg.Cluster.KMin != 2 || cfg.Cluster.KMax != 15 {
		t.Errorf("k range = [%d,%d)", cfg.Cluster.KMin, cfg.Cluster.KMax)
	}
	if cfg.Cluster.Seed != 42 || cfg.Cluster.Restarts != 10 {
		t.Errorf("seed=%d restarts=%d", cfg.Cluster.Seed, cfg.Cluster.Restarts)
	}
	if cfg.Cluster.BestKPolicy != "argmax" {
		t.Errorf("best_k_policy = %q", cfg.Cluster.BestKPolicy)
	}
	if cfg.Search.TopN != 20 {
		t.Errorf("top_n = %d", cfg.Search.TopN)
	}
	if cfg.Data.Directory != dir {
		t.Errorf("data directory = %s, want %s", cfg.Data.Directory, dir)
	}
	if cfg.Data.TermPath() != filepath.Join(dir, "term_embeddings.jsonl") {
		t.Errorf("term path = %s", cfg.Data.TermPath())
	}
	if !cfg.Storage.CacheResultsOrDefault() {
		t.Error("cache_results should default to true")
	}
}

func TestLoad_invalidPolicy(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown policy", "cluster:\n  best_k_policy: median\n"},
		{"fixed without k", "cluster:\n  best_k_policy: fixed\n"},
		{"k_min too small", "cluster:\n  k_min: 1\n"},
		{"empty range", "cluster:\n  k_min: 5\n  k_max: 5\n"},
		{"unknown source", "cluster:\n  source: pictures\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_fixedPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "cluster:\n  best_k_policy: fixed\n  fixed_k: 6\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Cluster.FixedK != 6 {
		t.Errorf("fixed_k = %d", cfg.Cluster.FixedK)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvPort, "9100")
	t.Setenv(EnvDebug, "true")
	t.Setenv(EnvFixedK, "5")
	t.Setenv(EnvDataDir, "/srv/lsa")
	cfg, err := Default(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9100 || !cfg.Debug {
		t.Errorf("port=%d debug=%v", cfg.Server.Port, cfg.Debug)
	}
	if cfg.Cluster.BestKPolicy != "fixed" || cfg.Cluster.FixedK != 5 {
		t.Errorf("policy=%s fixed_k=%d", cfg.Cluster.BestKPolicy, cfg.Cluster.FixedK)
	}
	if cfg.Data.Directory != "/srv/lsa" {
		t.Errorf("data dir = %s", cfg.Data.Directory)
	}
}

func TestApplyEnv_invalidPort(t *testing.T) {
	t.Setenv(EnvPort, "eighty")
	if _, err := Default(t.TempDir()); err == nil {
		t.Error("expected error for invalid port")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("SEMSPACE_HOST=0.0.0.0\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvHost, "")
	os.Unsetenv(EnvHost)
	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), envPath); err != nil {
		t.Fatal(err)
	}
	defer os.Unsetenv(EnvHost)
	cfg, err := Default(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %s", cfg.Server.Host)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Default(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Cluster.BestKPolicy = "fixed"
	cfg.Cluster.FixedK = 6
	path := filepath.Join(dir, "saved.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Cluster.FixedK != 6 || loaded.Cluster.BestKPolicy != "fixed" {
		t.Errorf("loaded cluster config %+v", loaded.Cluster)
	}
}
