package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantaudit/sigscope/internal/analysis"
	"github.com/quantaudit/sigscope/internal/storage"
)

func newRejectedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rejected",
		Short: "Analyze signals that were evaluated but never emitted",
		RunE:  runRejected,
	}
}

func runRejected(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open signal store: %w", err)
	}
	defer store.Close()

	rejected, err := store.Rejected(context.Background())
	if err != nil {
		return err
	}
	log.Info().Int("rejected", len(rejected)).Msg("Rejected signals loaded")

	result := analysis.AnalyzeRejected(rejected)
	printRejected(&result)

	if result.TotalRejected > 0 {
		fmt.Println("\nTop rejected symbols:")
		for _, s := range result.TopSymbols {
			fmt.Printf("  %-12s %d\n", s.Symbol, s.Count)
		}
		fmt.Printf("\nDirection split: %d LONG (%.2f%%) / %d SHORT (%.2f%%)\n",
			result.Directions.Long, result.Directions.LongPercentage,
			result.Directions.Short, result.Directions.ShortPercentage)
		fmt.Printf("Confidence: min %.3f, median %.3f, max %.3f\n",
			result.Confidence.Min, result.Confidence.Median, result.Confidence.Max)
	}
	return nil
}
