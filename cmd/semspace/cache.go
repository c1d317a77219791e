package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hyperjump/semspace/internal/cli"
	"github.com/hyperjump/semspace/internal/storage"
)

var (
	cacheListLimit int
	cachePruneKeep int
)

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd, cachePruneCmd)
	cacheListCmd.Flags().IntVarP(&cacheListLimit, "limit", "l", 20, "maximum entries to list (0 for all)")
	cachePruneCmd.Flags().IntVar(&cachePruneKeep, "keep", 5, "number of newest bundles to keep")
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or prune the diagnostics bundle cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached diagnostics bundles, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.ListEntries(cmd.Context(), cacheListLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return cli.WriteJSON(os.Stdout, entries)
		}
		size, err := store.SizeBytes()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CREATED\tTASK\tBEST K\tSAMPLES\tFINGERPRINT")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.12s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.TaskID, e.BestK, e.Samples, e.Fingerprint)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n%d bundle(s), %.1f KiB on disk\n", len(entries), float64(size)/1024)
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest cached bundles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cachePruneKeep < 0 {
			return fmt.Errorf("--keep must be >= 0")
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.Prune(cmd.Context(), cachePruneKeep)
		if err != nil {
			return err
		}
		left, err := store.CountBundles(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d bundle(s), %d left\n", removed, left)
		return nil
	},
}

func openStore() (*storage.SQLiteStorage, error) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return nil, &exitError{code: ExitConfigError, err: fmt.Errorf("loading config: %w", err)}
	}
	return storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
}
