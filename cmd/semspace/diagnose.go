package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/semspace/internal/cli"
	"github.com/hyperjump/semspace/internal/config"
	"github.com/hyperjump/semspace/internal/export"
	"github.com/hyperjump/semspace/internal/models"
)

var (
	diagnoseXLSX   string
	diagnoseExport bool
	diagnoseBestK  int
	diagnoseSource string
	diagnoseForce  bool
)

func init() {
	rootCmd.AddCommand(diagnoseCmd)
	diagnoseCmd.Flags().StringVar(&diagnoseXLSX, "xlsx", "", "write the bundle to this .xlsx file (or directory)")
	diagnoseCmd.Flags().BoolVar(&diagnoseExport, "export", false, "write the bundle to export.directory")
	diagnoseCmd.Flags().IntVar(&diagnoseBestK, "best-k", 0, "use this k for the final clustering instead of the silhouette argmax")
	diagnoseCmd.Flags().StringVar(&diagnoseSource, "source", "", "collection to diagnose: terms or documents (default cluster.source)")
	diagnoseCmd.Flags().BoolVar(&diagnoseForce, "force", false, "recompute even when a cached bundle exists")
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Run the silhouette sweep, final clustering, projection and topic ranking",
	Long: `Run structural diagnostics over the configured collection and print the result.
Bundles are cached by data fingerprint and settings; use --force to recompute.

Examples:
  semspace diagnose
  semspace diagnose --best-k 6 --xlsx report.xlsx
  semspace diagnose --source documents --json`,
	Args: cobra.NoArgs,
	RunE: runDiagnose,
}

func diagnoseOverrides(cfg *config.Config) {
	if diagnoseBestK > 0 {
		cfg.Cluster.BestKPolicy = "fixed"
		cfg.Cluster.FixedK = diagnoseBestK
	}
	if diagnoseSource != "" {
		cfg.Cluster.Source = diagnoseSource
	}
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, true, diagnoseOverrides)
	if err != nil {
		return err
	}
	defer a.Close()

	sub, err := a.session.Submit(ctx, diagnoseForce)
	if err != nil {
		return err
	}
	a.logger.Debug("diagnostics submitted",
		zap.String("task_id", sub.TaskID),
		zap.Bool("cached", sub.Cached),
	)

	var bundle *models.DiagnosticsBundle
	if sub.Task != nil {
		bundle, err = sub.Task.Result()
	} else {
		bundle, err = a.session.Latest()
	}
	if err != nil {
		return err
	}
	// Let the session persist the bundle before the store closes.
	a.session.Wait()

	if err := cli.WriteBundle(os.Stdout, bundle, outputFormat()); err != nil {
		return err
	}

	target := diagnoseXLSX
	if target == "" && diagnoseExport {
		target = a.cfg.Export.Directory
	}
	if target == "" {
		return nil
	}
	path := exportPath(target, bundle)
	if err := export.WriteFile(path, bundle); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}

// exportPath places the generated file name inside target when target is a directory or
// has no extension.
func exportPath(target string, b *models.DiagnosticsBundle) string {
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		return filepath.Join(target, export.FileName(b))
	}
	if filepath.Ext(target) == "" {
		return filepath.Join(target, export.FileName(b))
	}
	return target
}
