package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/vilniuscoffee/coffee-finder/internal/ingest"
	"github.com/vilniuscoffee/coffee-finder/internal/store"
)

var (
	fetchMaxResults int
	fetchKeyword    string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch coffee places from Google Places and update the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if fetchMaxResults > 0 {
			cfg.Search.MaxResults = fetchMaxResults
		}
		if fetchKeyword != "" {
			cfg.Search.Keyword = fetchKeyword
		}
		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		result, err := runFetch(ctx, st)
		if err != nil {
			return err
		}
		printRunResult(cmd.OutOrStdout(), result)
		return nil
	},
}

// runFetch performs one fetch run against st.
func runFetch(ctx context.Context, st store.Store) (*ingest.RunResult, error) {
	runner, err := newFetchRunner(st)
	if err != nil {
		return nil, err
	}
	result, err := runner.Run(ctx)
	if err != nil {
		return result, eris.Wrap(err, "fetch run")
	}
	return result, nil
}

func printRunResult(w io.Writer, r *ingest.RunResult) {
	fmt.Fprintf(w, "discovered=%d reconciled=%d persisted=%d failed=%d\n",
		r.Discovered, r.Reconciled, r.Persisted, r.Failed)
}

func init() {
	fetchCmd.Flags().IntVar(&fetchMaxResults, "max-results", 0, "maximum places to fetch (default from config)")
	fetchCmd.Flags().StringVar(&fetchKeyword, "keyword", "", "nearby search keyword (default from config)")
	rootCmd.AddCommand(fetchCmd)
}
