package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/semspace/internal/server"
	"github.com/hyperjump/semspace/internal/watcher"
)

var (
	serveWatch    bool
	serveDiagnose bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload when the data files change (overrides watch.enabled)")
	serveCmd.Flags().BoolVar(&serveDiagnose, "diagnose", false, "submit diagnostics once the data is loaded")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := openApp(ctx, true, nil)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg, logger, sess := a.cfg, a.logger, a.session

	if serveDiagnose {
		if _, err := sess.Submit(ctx, false); err != nil {
			logger.Warn("initial diagnostics not submitted", zap.Error(err))
		}
	}

	if serveWatch || cfg.Watch.Enabled {
		names := []string{cfg.Data.TermFile, cfg.Data.DocumentFile, cfg.Data.TopicFile}
		debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
		w := watcher.NewWatcher(cfg.Data.Directory, names, func(paths []string) {
			logger.Info("data changed, reloading", zap.Strings("paths", paths))
			if _, err := sess.Reload(ctx); err != nil {
				logger.Error("reload failed", zap.Error(err))
				return
			}
			if cfg.Watch.Rediagnose {
				if _, err := sess.Submit(ctx, false); err != nil {
					logger.Error("rediagnose failed", zap.Error(err))
				}
			}
		}, watcher.WithLogger(logger), watcher.WithDebounce(debounce))
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Stop()
		logger.Info("watching data directory", zap.String("dir", w.Dir()))
	}

	srv := server.NewServer(sess, &cfg.Server, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sigCh:
		logger.Info("shutting down")
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	return nil
}
