package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/slidestudy/curator-cli/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the source fetch cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show fetch cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		stats, err := st.CacheStats(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("fetch cache",
			zap.Int("entries", stats.Entries),
			zap.Int("reachable", stats.Reachable),
			zap.Int("denied", stats.Denied),
			zap.Int("failed", stats.Failed),
		)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached fetch result",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		n, err := st.ClearCache(ctx)
		if err != nil {
			return err
		}
		zap.L().Info("fetch cache cleared", zap.Int("removed", n))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
