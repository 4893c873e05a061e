package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/slidestudy/curator-cli/internal/deck"
	"github.com/slidestudy/curator-cli/internal/extract"
	"github.com/slidestudy/curator-cli/internal/pipeline"
	"github.com/slidestudy/curator-cli/internal/rules"
)

var (
	buildDecksPath string
	buildDataDir   string
	buildAssetsDir string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Extract artwork records from slide decks into the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		decksPath := buildDecksPath
		if decksPath == "" {
			decksPath = cfg.Decks
		}
		dataDir := buildDataDir
		if dataDir == "" {
			dataDir = cfg.Output.DataDir
		}
		assetsDir := buildAssetsDir
		if assetsDir == "" {
			assetsDir = cfg.Output.AssetsDir
		}

		rs, err := rules.Load(cfg.Rules)
		if err != nil {
			return err
		}
		decks, err := deck.LoadDecks(decksPath)
		if err != nil {
			return err
		}

		params := extract.DefaultParams()
		if cfg.Extract.MinYear > 0 {
			params.MinYear = cfg.Extract.MinYear
		}
		if cfg.Extract.MaxYear > 0 {
			params.MaxYear = cfg.Extract.MaxYear
		}
		if cfg.Extract.TitleMaxLen > 0 {
			params.TitleMaxLen = cfg.Extract.TitleMaxLen
		}

		b := &pipeline.Builder{
			Rules:     rs,
			Params:    params,
			AssetsDir: assetsDir,
		}
		ds, err := b.Run(decks)
		if err != nil {
			return err
		}

		jsonPath, err := pipeline.WriteDataset(ds, dataDir)
		if err != nil {
			return err
		}
		csvPath, err := pipeline.WriteComparisonTable(ds, dataDir)
		if err != nil {
			return err
		}

		zap.L().Info("build complete",
			zap.Int("items", ds.Count),
			zap.Int("decks", len(ds.Stats)),
			zap.String("dataset", jsonPath),
			zap.String("comparison_table", csvPath),
		)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildDecksPath, "decks", "", "deck manifest path (default from config)")
	buildCmd.Flags().StringVar(&buildDataDir, "data-dir", "", "output data directory (default from config)")
	buildCmd.Flags().StringVar(&buildAssetsDir, "assets-dir", "", "extracted image directory (default from config)")
	rootCmd.AddCommand(buildCmd)
}
