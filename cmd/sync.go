package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/slidestudy/curator-cli/internal/verify"
)

var (
	syncWorksPath string
	syncDataDir   string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Merge the reviewed works table back into the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		worksPath := syncWorksPath
		if worksPath == "" {
			worksPath = cfg.Output.WorksCSV
		}
		dataDir := syncDataDir
		if dataDir == "" {
			dataDir = cfg.Output.DataDir
		}

		stats, err := verify.Sync(worksPath, dataDir)
		if err != nil {
			return err
		}

		zap.L().Info("dataset synced",
			zap.Int("items", stats.Items),
			zap.Int("matched", stats.Matched),
			zap.Int("updated", stats.Updated),
		)
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncWorksPath, "works", "", "reviewed works.csv path (default from config)")
	syncCmd.Flags().StringVar(&syncDataDir, "data-dir", "", "dataset directory (default from config)")
	rootCmd.AddCommand(syncCmd)
}
