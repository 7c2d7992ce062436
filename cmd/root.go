package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vilniuscoffee/coffee-finder/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "coffee-finder",
	Short: "Vilnius coffee shop directory",
	Long:  "Fetches Vilnius coffee shops from the Google Places API, merges them with stored records, migrates their photos to object storage, and serves them with optional AI summaries.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
