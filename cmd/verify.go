package main

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadverify/internal/ingest"
	"github.com/sells-group/leadverify/internal/orchestrator"
	"github.com/sells-group/leadverify/internal/scrape"
)

var (
	verifyConfigPath   string
	verifyMode         string
	verifyMaxWorkers   int
	verifyRaiseOnError bool
	verifyLimit        int
	verifyProgress     bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify INPUT OUTPUT",
	Short: "Verify a batch of leads and write the consolidated report",
	Long: `Loads leads from INPUT (.csv or .xlsx), runs every configured scraper
against every lead, and writes one consolidated record per lead to OUTPUT
(.csv, .xlsx, or .json; "-" dumps JSON to stdout).

Examples:
  # Sequential run with the default scraper roster
  leadverify verify leads.csv results.csv

  # Four workers, abort the whole batch on the first scraper error
  leadverify verify leads.xlsx results.xlsx --mode concurrent --max-workers 4 --raise-on-error

  # Smoke-test the first 10 leads with a progress bar
  leadverify verify leads.csv - --limit 10 --progress`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		input, output := args[0], args[1]

		leads, err := ingest.LoadLeads(input)
		if err != nil {
			return err
		}
		zap.L().Info("verify: leads loaded",
			zap.String("input", input),
			zap.Int("count", len(leads)),
		)

		// Apply limit.
		if verifyLimit > 0 && verifyLimit < len(leads) {
			leads = leads[:verifyLimit]
		}

		configs, err := scrape.LoadConfigs(scrapersPath(verifyConfigPath))
		if err != nil {
			return err
		}
		instances, err := scrape.Build(scrape.Default(), configs)
		if err != nil {
			return err
		}

		opts := resolveRunOptions(verifyMode, verifyMaxWorkers, verifyRaiseOnError)
		if verifyProgress {
			bar := progressbar.NewOptions(len(leads),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("verifying"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			opts.OnProgress = func(completed, _ int) { _ = bar.Set(completed) }
			defer func() { _ = bar.Finish() }()
		}

		eng, err := orchestrator.New(instances, opts)
		if err != nil {
			return err
		}

		report, err := eng.Run(ctx, leads)
		if err != nil {
			return err
		}

		if output == "-" {
			return ingest.WriteReportJSON(os.Stdout, report)
		}
		if err := ingest.WriteReport(output, report); err != nil {
			return err
		}

		zap.L().Info("verify: report written",
			zap.String("output", output),
			zap.Int("records", len(report.Records)),
			zap.Int("leads_with_errors", report.LeadsWithErrors()),
			zap.Int64("duration_ms", report.ElapsedMS),
		)
		return nil
	},
}

// resolveRunOptions merges per-invocation flags over the configured run
// defaults. Zero values mean the flag was not given.
func resolveRunOptions(mode string, maxWorkers int, raiseOnError bool) orchestrator.Options {
	if mode == "" {
		mode = cfg.Run.Mode
	}
	if maxWorkers == 0 {
		maxWorkers = cfg.Run.MaxWorkers
	}
	return orchestrator.Options{
		Mode:         orchestrator.Mode(mode),
		MaxWorkers:   maxWorkers,
		RaiseOnError: raiseOnError || cfg.Run.RaiseOnError,
	}
}

func init() {
	verifyCmd.Flags().StringVar(&verifyConfigPath, "config", "", "path to the scrapers YAML (default from config.yaml)")
	verifyCmd.Flags().StringVar(&verifyMode, "mode", "", "run mode: sequential or concurrent (default from config.yaml)")
	verifyCmd.Flags().IntVar(&verifyMaxWorkers, "max-workers", 0, "worker pool size in concurrent mode (default from config.yaml)")
	verifyCmd.Flags().BoolVar(&verifyRaiseOnError, "raise-on-error", false, "abort the whole run on the first scraper error")
	verifyCmd.Flags().IntVar(&verifyLimit, "limit", 0, "max leads to verify (0 = all)")
	verifyCmd.Flags().BoolVar(&verifyProgress, "progress", false, "render a progress bar on stderr")
	rootCmd.AddCommand(verifyCmd)
}
