// Package config provides configuration loading and structs for the semspace engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Search  SearchConfig  `yaml:"search"`
	Cluster ClusterConfig `yaml:"cluster"`
	Storage StorageConfig `yaml:"storage"`
	Watch   WatchConfig   `yaml:"watch"`
	Export  ExportConfig  `yaml:"export"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DataConfig locates the JSONL inputs produced by the upstream decomposition.
type DataConfig struct {
	Directory    string `yaml:"directory"`
	TermFile     string `yaml:"term_file"`
	DocumentFile string `yaml:"document_file"`
	TopicFile    string `yaml:"topic_file"`
	// StrictRecords fails the whole load on the first malformed record instead of skipping it.
	StrictRecords bool `yaml:"strict_records"`
}

// TermPath returns the absolute path of the term embeddings file.
func (d *DataConfig) TermPath() string { return filepath.Join(d.Directory, d.TermFile) }

// DocumentPath returns the absolute path of the document embeddings file.
func (d *DataConfig) DocumentPath() string { return filepath.Join(d.Directory, d.DocumentFile) }

// TopicPath returns the absolute path of the topics file.
func (d *DataConfig) TopicPath() string { return filepath.Join(d.Directory, d.TopicFile) }

// SearchConfig holds similarity search settings.
type SearchConfig struct {
	TopN      int `yaml:"top_n"`
	MaxLimit  int `yaml:"max_limit"`
	CacheSize int `yaml:"cache_size"`
}

// ClusterConfig holds the diagnostics pipeline settings.
type ClusterConfig struct {
	KMin          int     `yaml:"k_min"`
	KMax          int     `yaml:"k_max"` // exclusive
	Seed          int64   `yaml:"seed"`
	Restarts      int     `yaml:"restarts"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
	Workers       int     `yaml:"workers"`
	// BestKPolicy is "argmax" (default) or "fixed"; "fixed" returns FixedK regardless of scores.
	BestKPolicy string `yaml:"best_k_policy"`
	FixedK      int    `yaml:"fixed_k"`
	// Source is the collection diagnostics run over: "terms" (default) or "documents".
	Source string `yaml:"source"`
}

// StorageConfig holds the diagnostics cache location.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	CacheResults *bool  `yaml:"cache_results"`
}

// CacheResultsOrDefault returns whether diagnostics bundles are cached; defaults to true when unset.
func (s *StorageConfig) CacheResultsOrDefault() bool {
	if s.CacheResults != nil {
		return *s.CacheResults
	}
	return true
}

// WatchConfig controls reloading when the data directory changes.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMs int  `yaml:"debounce_ms"`
	// Rediagnose submits a fresh compute task after each reload.
	Rediagnose bool `yaml:"rediagnose"`
}

// ExportConfig holds spreadsheet export settings.
type ExportConfig struct {
	Directory string `yaml:"directory"`
}

// Load reads and parses the config file at path, applies defaults and environment
// overrides, then expands paths. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := finish(&cfg, filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config built only from defaults and the environment, with relative
// paths resolved against baseDir.
func Default(baseDir string) (*Config, error) {
	var cfg Config
	if err := finish(&cfg, baseDir); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func finish(cfg *Config, configDir string) error {
	ApplyDefaults(cfg)
	if err := ApplyEnv(cfg); err != nil {
		return err
	}
	if err := Validate(cfg); err != nil {
		return err
	}
	cfg.Data.Directory = expandPath(cfg.Data.Directory, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Export.Directory = expandPath(cfg.Export.Directory, configDir)
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects settings the diagnostics pipeline cannot run with.
func Validate(cfg *Config) error {
	c := cfg.Cluster
	if c.KMin < 2 {
		return fmt.Errorf("cluster.k_min must be at least 2, got %d", c.KMin)
	}
	if c.KMax <= c.KMin {
		return fmt.Errorf("cluster.k_max (%d) must exceed cluster.k_min (%d)", c.KMax, c.KMin)
	}
	switch c.BestKPolicy {
	case "argmax":
	case "fixed":
		if c.FixedK < 1 {
			return fmt.Errorf("cluster.fixed_k must be positive when best_k_policy is fixed")
		}
	default:
		return fmt.Errorf("unknown cluster.best_k_policy %q (supported: argmax, fixed)", c.BestKPolicy)
	}
	switch c.Source {
	case "terms", "documents":
	default:
		return fmt.Errorf("unknown cluster.source %q (supported: terms, documents)", c.Source)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" or equal to "." are
// relative to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
