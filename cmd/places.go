package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/vilniuscoffee/coffee-finder/internal/store"
)

var (
	placesLimit  int
	placesOffset int
)

var placesCmd = &cobra.Command{
	Use:   "places",
	Short: "Inspect stored places",
}

var placesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List places ordered by rating",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		return listPlaces(cmd.Context(), st, cmd.OutOrStdout(), store.ListOptions{Limit: placesLimit, Offset: placesOffset})
	},
}

func listPlaces(ctx context.Context, st store.Store, w io.Writer, opts store.ListOptions) error {
	places, err := st.ListPlaces(ctx, opts)
	if err != nil {
		return eris.Wrap(err, "list places")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(places)
}

func init() {
	placesListCmd.Flags().IntVar(&placesLimit, "limit", 20, "number of places (max 100)")
	placesListCmd.Flags().IntVar(&placesOffset, "offset", 0, "number of places to skip")
	placesCmd.AddCommand(placesListCmd)
	rootCmd.AddCommand(placesCmd)
}
