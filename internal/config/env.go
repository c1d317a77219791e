package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings.
const (
	EnvDataDir      = "SEMSPACE_DATA_DIR"
	EnvHost         = "SEMSPACE_HOST"
	EnvPort         = "SEMSPACE_PORT"
	EnvDebug        = "SEMSPACE_DEBUG"
	EnvDatabasePath = "SEMSPACE_DATABASE_PATH"
	EnvFixedK       = "SEMSPACE_FIXED_K"
)

// LoadDotEnv loads variables from the given .env files into the process environment.
// Missing files are ignored; variables already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg from SEMSPACE_* environment variables.
// Setting SEMSPACE_FIXED_K switches the best-k policy to "fixed".
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.Data.Directory = v
	}
	if v := os.Getenv(EnvHost); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDebug, err)
		}
		cfg.Debug = debug
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv(EnvFixedK); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvFixedK, err)
		}
		cfg.Cluster.BestKPolicy = "fixed"
		cfg.Cluster.FixedK = k
	}
	return nil
}
