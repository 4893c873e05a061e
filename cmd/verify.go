package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/slidestudy/curator-cli/internal/pipeline"
	"github.com/slidestudy/curator-cli/internal/rules"
	"github.com/slidestudy/curator-cli/internal/store"
	"github.com/slidestudy/curator-cli/internal/verify"
)

var (
	verifyInput    string
	verifyOutput   string
	verifyReport   string
	verifyFormat   string
	verifySkipFrom int
	verifySkipTo   int
	verifyNoCache  bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Fetch and judge every record's citation sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if verifyFormat != "csv" && verifyFormat != "xlsx" {
			return eris.Errorf("unsupported output format %q (want csv or xlsx)", verifyFormat)
		}

		input := verifyInput
		if input == "" {
			input = filepath.Join(cfg.Output.DataDir, "comparison_table.csv")
		}
		output := verifyOutput
		if output == "" {
			output = cfg.Output.WorksCSV
		}
		reportPath := verifyReport
		if reportPath == "" {
			reportPath = cfg.Output.ReportMD
		}

		rs, err := rules.Load(cfg.Rules)
		if err != nil {
			return err
		}
		rows, err := pipeline.ReadComparisonTable(input)
		if err != nil {
			return err
		}

		var cache store.Store
		var runID string
		if !verifyNoCache {
			cache, err = store.Open(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer cache.Close()
			if err := cache.Migrate(ctx); err != nil {
				return err
			}
			runID, err = cache.CreateRun(ctx)
			if err != nil {
				return err
			}
		}

		fetcher := verify.NewFetcher(verify.FetcherOptions{
			UserAgent:    cfg.Verify.UserAgent,
			Timeout:      time.Duration(cfg.Verify.TimeoutSecs) * time.Second,
			MaxWorkers:   cfg.Verify.MaxWorkers,
			MaxBodyBytes: int64(cfg.Verify.MaxBodyBytes),
		}, cache)

		skipFrom, skipTo := verifySkipFrom, verifySkipTo
		if skipFrom == 0 {
			skipFrom, skipTo = cfg.Verify.SkipRowFrom, cfg.Verify.SkipRowTo
		}
		runner := &verify.Runner{
			Fetcher: fetcher,
			Rules:   rs,
			Opts: verify.Options{
				TopSources:  cfg.Verify.TopSources,
				SkipRowFrom: skipFrom,
				SkipRowTo:   skipTo,
			},
		}

		reviewed, report, err := runner.Run(ctx, rows)
		if err != nil {
			return err
		}

		if verifyFormat == "xlsx" {
			if ext := filepath.Ext(output); ext == ".csv" {
				output = output[:len(output)-len(ext)] + ".xlsx"
			}
			err = verify.WriteWorksXLSX(reviewed, output)
		} else {
			err = verify.WriteWorksCSV(reviewed, output)
		}
		if err != nil {
			return err
		}

		scope := ""
		if skipFrom > 0 {
			scope = fmt.Sprintf("skipped rows %d-%d", skipFrom, skipTo)
		}
		if err := verify.WriteReport(report, scope, reportPath); err != nil {
			return err
		}

		updated, needsHuman, notFound := report.Counts()
		if runID != "" {
			if err := cache.FinishRun(ctx, runID, updated, needsHuman, notFound); err != nil {
				return err
			}
		}

		zap.L().Info("verify complete",
			zap.Int("rows", len(reviewed)),
			zap.Int("updated", updated),
			zap.Int("needs_human", needsHuman),
			zap.Int("not_found", notFound),
			zap.String("works", output),
			zap.String("report", reportPath),
		)
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyInput, "input", "", "comparison table path (default <data-dir>/comparison_table.csv)")
	verifyCmd.Flags().StringVar(&verifyOutput, "output", "", "reviewed works table path (default from config)")
	verifyCmd.Flags().StringVar(&verifyReport, "report", "", "report path (default from config)")
	verifyCmd.Flags().StringVar(&verifyFormat, "format", "csv", "works table format: csv or xlsx")
	verifyCmd.Flags().IntVar(&verifySkipFrom, "skip-from", 0, "first global row index to skip")
	verifyCmd.Flags().IntVar(&verifySkipTo, "skip-to", 0, "last global row index to skip")
	verifyCmd.Flags().BoolVar(&verifyNoCache, "no-cache", false, "bypass the fetch cache")
	rootCmd.AddCommand(verifyCmd)
}
