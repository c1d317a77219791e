package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperjump/semspace/internal/cli"
	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/internal/search"
)

var (
	termsTarget   string
	termsLimit    int
	termsServer   string
	similarDocs   bool
	similarTerms  bool
	similarLimit  int
	similarServer string
)

func init() {
	rootCmd.AddCommand(termsCmd, similarCmd)

	termsCmd.Flags().StringVar(&termsTarget, "target", "documents", "collection to rank: documents or terms")
	termsCmd.Flags().IntVarP(&termsLimit, "limit", "l", 0, "maximum number of results (default search.top_n)")
	termsCmd.Flags().StringVar(&termsServer, "server", "", "query a running server instead of loading data")

	similarCmd.Flags().BoolVar(&similarDocs, "docs", false, "find documents similar to a title")
	similarCmd.Flags().BoolVar(&similarTerms, "terms", false, "find terms similar to a term")
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "l", 0, "maximum number of results (default search.top_n)")
	similarCmd.Flags().StringVar(&similarServer, "server", "", "query a running server instead of loading data")
	similarCmd.MarkFlagsMutuallyExclusive("docs", "terms")
}

var termsCmd = &cobra.Command{
	Use:   "terms <words...>",
	Short: "Rank documents (or terms) by similarity to the mean of known query terms",
	Long: `Rank a collection against the mean vector of the query words that are known terms.
Unknown words are ignored; if none is known the command fails.

Examples:
  semspace terms machine learning
  semspace terms --target terms economy`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTerms,
}

var similarCmd = &cobra.Command{
	Use:   "similar (--docs|--terms) <text>",
	Short: "List the nearest neighbours of a stored document or term",
	Long: `Find the neighbours of one stored item. Documents are looked up by exact title,
then by case-insensitive title fragment (at least 3 characters); a fragment that matches
several titles lists them instead. Terms use the first known word.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSimilar,
}

// buildQuery joins all positional args with spaces so multi-word queries work the same
// with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runTerms(cmd *cobra.Command, args []string) error {
	query := &models.SearchQuery{
		Query:  buildQuery(args),
		Target: models.SearchTarget(termsTarget),
		Limit:  termsLimit,
	}
	ctx := cmd.Context()
	var (
		resp *models.SearchResponse
		err  error
	)
	if termsServer != "" {
		resp, err = searchTermsViaHTTP(ctx, termsServer, query)
	} else {
		resp, err = withEngine(ctx, func(e *search.Engine) (*models.SearchResponse, error) {
			return e.SearchTerms(ctx, query)
		})
	}
	var unknown *models.UnknownTermsError
	if errors.As(err, &unknown) && len(unknown.Suggestions) > 0 {
		if werr := cli.WriteSuggestions(os.Stdout, unknown, outputFormat()); werr != nil {
			return werr
		}
		return err
	}
	if err != nil {
		return err
	}
	return cli.WriteSearchResults(os.Stdout, resp, outputFormat())
}

func runSimilar(cmd *cobra.Command, args []string) error {
	kind := models.TargetDocuments
	if similarTerms {
		kind = models.TargetTerms
	}
	query := &models.SimilarQuery{Kind: kind, Key: buildQuery(args), Limit: similarLimit}
	ctx := cmd.Context()
	var (
		resp *models.SearchResponse
		err  error
	)
	if similarServer != "" {
		resp, err = similarViaHTTP(ctx, similarServer, query)
	} else {
		resp, err = withEngine(ctx, func(e *search.Engine) (*models.SearchResponse, error) {
			return e.Similar(ctx, query)
		})
	}
	var amb *models.AmbiguousError
	if errors.As(err, &amb) {
		if werr := cli.WriteAmbiguous(os.Stdout, amb, outputFormat()); werr != nil {
			return werr
		}
		return err
	}
	if err != nil {
		return err
	}
	return cli.WriteSearchResults(os.Stdout, resp, outputFormat())
}

func withEngine(ctx context.Context, fn func(*search.Engine) (*models.SearchResponse, error)) (*models.SearchResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, false, nil)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	engine, err := a.session.Engine()
	if err != nil {
		return nil, err
	}
	return fn(engine)
}
