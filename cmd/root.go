package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadverify/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "leadverify",
	Short: "Lead contact verification engine",
	Long:  "Runs batches of sales leads through configured people-search scrapers, rate limited per source, and consolidates what each source found into one record per lead.",
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
}

// scrapersPath resolves the scraper roster location: an explicit flag wins
// over the configured default.
func scrapersPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return cfg.Scrapers.Path
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
