// Package main is the semspace CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/semspace/internal/cli"
	"github.com/hyperjump/semspace/internal/config"
	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/internal/session"
	"github.com/hyperjump/semspace/internal/storage"
	"github.com/hyperjump/semspace/pkg/utils"
)

// Version is set at build time via ldflags
var Version = "dev"

const defaultConfigName = "semspace.yaml"

var (
	configPath string
	debugFlag  bool
	jsonOutput bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "semspace",
	Short: "Explore a precomputed embedding space",
	Long: `semspace answers similarity queries over term and document embeddings and runs
structural diagnostics (silhouette sweep, clustering, 2-D projection, topic strength).

Inputs are JSONL files in the data directory:
  term_embeddings.jsonl   {"term": ..., "embedding": [...]}
  doc_embeddings.jsonl    {"title": ..., "embedding": [...]}
  topics.jsonl            {"topic": ..., "singular_value": ...}`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ./"+defaultConfigName+" when present)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "write JSON instead of text")
	rootCmd.Version = Version
}

func outputFormat() cli.OutputFormat {
	if jsonOutput {
		return cli.OutputJSON
	}
	return cli.OutputText
}

// loadConfig loads .env, then the config file. Without --config it uses ./semspace.yaml
// when present and falls back to defaults rooted at the working directory.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, "", err
	}
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", err
		}
		fallback := filepath.Join(cwd, defaultConfigName)
		if _, statErr := os.Stat(fallback); statErr != nil {
			cfg, err := config.Default(cwd)
			return cfg, "", err
		}
		path = fallback
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// app bundles what every data command needs.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	session *session.Session
	store   *storage.SQLiteStorage
}

func (a *app) Close() {
	if a.session != nil {
		a.session.Wait()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.logger.Sync()
}

// openApp loads config, builds the logger, opens the bundle cache and loads the data
// directory. withCache opens the SQLite bundle cache when caching is enabled.
func openApp(ctx context.Context, withCache bool, tweak func(*config.Config)) (*app, error) {
	cfg, loadedFrom, err := loadConfig(configPath)
	if err != nil {
		return nil, &exitError{code: ExitConfigError, err: fmt.Errorf("loading config: %w", err)}
	}
	if tweak != nil {
		tweak(cfg)
		if err := config.Validate(cfg); err != nil {
			return nil, &exitError{code: ExitConfigError, err: err}
		}
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger.Debug("config loaded",
		zap.String("config_path", loadedFrom),
		zap.String("data_dir", cfg.Data.Directory),
		zap.Bool("debug", debugMode),
	)

	a := &app{cfg: cfg, logger: logger}
	var bundles storage.BundleStore
	if withCache && cfg.Storage.CacheResultsOrDefault() {
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			logger.Warn("diagnostics cache unavailable", zap.String("path", cfg.Storage.DatabasePath), zap.Error(err))
		} else {
			a.store = store
			bundles = store
		}
	}

	sess, err := session.New(cfg, bundles, logger)
	if err != nil {
		a.Close()
		return nil, &exitError{code: ExitConfigError, err: err}
	}
	a.session = sess
	if _, err := sess.Reload(ctx); err != nil {
		a.Close()
		return nil, &exitError{code: ExitDataError, err: fmt.Errorf("loading data: %w", err)}
	}
	return a, nil
}

// exitError carries a process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch models.Kind(err) {
	case "not_found":
		return ExitNotFound
	case "ambiguous":
		return ExitAmbiguous
	case "empty_query", "malformed_record", "dimension_mismatch", "insufficient_samples":
		return ExitDataError
	default:
		return ExitError
	}
}
