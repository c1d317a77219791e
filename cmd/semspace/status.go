package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperjump/semspace/internal/cli"
	"github.com/hyperjump/semspace/internal/session"
)

var statusServer string

func init() {
	rootCmd.AddCommand(statusCmd, versionCmd)
	statusCmd.Flags().StringVar(&statusServer, "server", "", "ask a running server instead of loading data")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what is loaded and the state of the latest diagnostics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		var st *session.Status
		if statusServer != "" {
			remote, err := statusViaHTTP(ctx, statusServer)
			if err != nil {
				return err
			}
			st = remote
		} else {
			a, err := openApp(ctx, false, nil)
			if err != nil {
				return err
			}
			defer a.Close()
			local := a.session.Status()
			st = &local
		}
		if jsonOutput {
			return cli.WriteJSON(os.Stdout, st)
		}
		writeStatus(os.Stdout, st)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Println(Version)
	},
}

func writeStatus(w io.Writer, st *session.Status) {
	fmt.Fprintf(w, "Generation:   %d\n", st.Generation)
	fmt.Fprintf(w, "Fingerprint:  %s\n", st.Fingerprint)
	fmt.Fprintf(w, "Loaded at:    %s\n", st.LoadedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Terms:        %d\n", st.Terms)
	fmt.Fprintf(w, "Documents:    %d\n", st.Documents)
	fmt.Fprintf(w, "Topics:       %d\n", st.Topics)
	fmt.Fprintf(w, "Dimensions:   %d\n", st.Dimensions)
	fmt.Fprintf(w, "Skipped:      %d\n", st.Issues)
	fmt.Fprintf(w, "Cluster over: %s (best k: %s)\n", st.ClusterSource, st.BestKPolicy)
	fmt.Fprintf(w, "Search cache: %d hits, %d misses\n", st.CacheHits, st.CacheMisses)
	switch {
	case st.TaskID != "":
		fmt.Fprintf(w, "Diagnostics:  %s (%s)\n", st.TaskState, st.TaskID)
	case st.LatestTaskID != "":
		fmt.Fprintf(w, "Diagnostics:  ready (%s)\n", st.LatestTaskID)
	case st.LastError != "":
		fmt.Fprintf(w, "Diagnostics:  failed: %s\n", st.LastError)
	default:
		fmt.Fprintln(w, "Diagnostics:  none")
	}
}
