package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantaudit/sigscope/internal/analysis"
	"github.com/quantaudit/sigscope/internal/config"
	"github.com/quantaudit/sigscope/internal/report"
	"github.com/quantaudit/sigscope/internal/storage"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the signal performance analysis",
		Long: `Loads the recorded signal snapshot, classifies every outcome, and
prints performance metrics, group breakdowns, failure patterns, and
recommendations. Use --export json to write the full artifact set.`,
		RunE: runAnalyze,
	}
	cmd.Flags().String("mode", "all", "analysis to print: all, overview, symbols, direction, confidence, time, entry")
	cmd.Flags().Int("top-n", 0, "symbol leaderboard size (overrides config)")
	cmd.Flags().String("export", "none", "artifact export: json or none")
	cmd.Flags().String("out", "", "artifact output directory (overrides config)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mode, _ := cmd.Flags().GetString("mode")
	export, _ := cmd.Flags().GetString("export")
	topN, _ := cmd.Flags().GetInt("top-n")
	if topN <= 0 {
		topN = cfg.TopN
	}
	if outDir, _ := cmd.Flags().GetString("out"); outDir != "" {
		cfg.OutputDir = outDir
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open signal store: %w", err)
	}
	defer store.Close()

	log.Info().Str("db", cfg.DBPath).Str("mode", mode).Msg("Starting analysis run")

	runner := analysis.NewRunnerWithClassifier(store, analysis.NewClassifierWithExpiry(cfg.ExpiryHours))
	result, err := runner.Run(context.Background())
	if err != nil {
		return err
	}
	if result.Metrics.TotalSignals == 0 {
		return fmt.Errorf("no signals found in %s", cfg.DBPath)
	}

	printReport(result, mode, topN)

	if export == "json" {
		writer := report.NewWriter(cfg.OutputDir)
		if err := writer.WriteAll(result); err != nil {
			return fmt.Errorf("export artifacts: %w", err)
		}
		log.Info().Str("dir", writer.OutputDir()).Msg("Artifacts written")
		fmt.Printf("\nArtifacts written to %s\n", writer.OutputDir())
		fmt.Println("  report.json  - full machine-readable report")
		fmt.Println("  report.md    - human-readable analysis")
		fmt.Println("  signals.csv  - classified signal rows")
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
	}
	return cfg, nil
}

func printReport(r *analysis.Report, mode string, topN int) {
	show := func(name string) bool { return mode == "all" || mode == name }

	if show("overview") {
		printOverview(&r.Metrics)
	}
	if show("symbols") {
		printSymbols(r.Symbols, topN)
	}
	if show("direction") {
		printDirection(&r.Direction)
	}
	if show("confidence") {
		printConfidence(&r.Confidence)
	}
	if show("time") {
		printTime(&r.Time)
	}
	if show("entry") {
		printEntry(&r.Entry)
	}
	if mode == "all" {
		printRejected(&r.Rejected)
	}
}

func printOverview(m *analysis.PerformanceMetrics) {
	fmt.Println("\n=== SIGNAL PERFORMANCE OVERVIEW ===")
	fmt.Printf("Total signals:     %d (open %d, expired %d)\n", m.TotalSignals, m.OpenCount, m.ExpiredCount)
	fmt.Printf("Win rate:          %.2f%%   SL rate: %.2f%%\n", m.WinRate, m.SLHitRate)
	fmt.Printf("TP1/TP2/TP3:       %d/%d/%d   SL1/SL1.5/SL2: %d/%d/%d\n",
		m.TP1Count, m.TP2Count, m.TP3Count, m.SL1Count, m.SL15Count, m.SL2Count)
	fmt.Printf("Avg R:             %.3f (win %.3f, loss %.3f)\n", m.AvgRMultiple, m.AvgWinR, m.AvgLossR)
	fmt.Printf("Expectancy:        %.3f R per signal\n", m.Expectancy)
	fmt.Printf("Avg hold:          %.2fh (TP %.2fh, SL %.2fh)\n", m.AvgHoldTimeHours, m.AvgTimeToTPHours, m.AvgTimeToSLHours)
	fmt.Printf("Avg MFE/MAE:       %.2f%% / %.2f%%\n", m.AvgMFEPercent, m.AvgMAEPercent)
}

func printSymbols(symbols []analysis.SymbolPerformance, topN int) {
	if len(symbols) == 0 {
		return
	}
	fmt.Println("\n=== SYMBOL PERFORMANCE ===")
	fmt.Println("Top performers:")
	for _, s := range analysis.TopPerformers(symbols, topN) {
		fmt.Printf("  %-12s %3d signals  win %6.2f%%  avgR %6.3f  SL %6.2f%%\n",
			s.Symbol, s.SignalCount, s.WinRate, s.AvgRMultiple, s.SLRate)
	}
	fmt.Println("Worst performers:")
	for _, s := range analysis.WorstPerformers(symbols, topN) {
		fmt.Printf("  %-12s %3d signals  win %6.2f%%  avgR %6.3f  SL %6.2f%%\n",
			s.Symbol, s.SignalCount, s.WinRate, s.AvgRMultiple, s.SLRate)
	}
}

func printDirection(d *analysis.DirectionReport) {
	fmt.Println("\n=== LONG vs SHORT ===")
	for _, p := range []analysis.DirectionPerformance{d.Long, d.Short} {
		fmt.Printf("  %-5s %3d signals  win %6.2f%%  avgR %6.3f  SL %6.2f%%  hold %5.2fh\n",
			p.Direction, p.SignalCount, p.WinRate, p.AvgRMultiple, p.SLRate, p.AvgHoldTimeHours)
	}
	fmt.Printf("  Bias: %s (%s)\n", d.Bias.Bias, d.Bias.Ratio)
}

func printConfidence(c *analysis.ConfidenceReport) {
	fmt.Println("\n=== CONFIDENCE ANALYSIS ===")
	fmt.Printf("Confidence/outcome correlation: %.3f\n", c.Correlation)
	for _, band := range c.Bands {
		fmt.Printf("  [%.2f-%.2f] %3d signals  win %6.2f%%  SL %6.2f%%  avgR %6.3f  FP %d\n",
			band.MinConfidence, band.MaxConfidence, band.SignalCount,
			band.WinRate, band.SLRate, band.AvgRMultiple, band.FalsePositiveCount)
	}
	opt := c.OptimalThreshold
	fmt.Printf("Optimal threshold: %.2f (win %.2f%%, expectancy %.3f)\n",
		opt.OptimalThreshold, opt.ExpectedWinRate, opt.ExpectedRMultiple)
	for _, p := range c.Patterns {
		fmt.Printf("  ! %s: %s\n", p.PatternName, p.Description)
	}
}

func printTime(t *analysis.TimeReport) {
	if len(t.Hourly) == 0 {
		return
	}
	fmt.Println("\n=== TIMING ===")
	fmt.Print("Best hours:  ")
	printBuckets(t.BestHours)
	fmt.Print("Worst hours: ")
	printBuckets(t.WorstHours)
	fmt.Printf("Avg time to TP: %.2fh, to SL: %.2fh\n", t.HoldTimes.AvgTPTime, t.HoldTimes.AvgSLTime)
}

func printBuckets(buckets []analysis.TimeBucket) {
	for i, b := range buckets {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Printf("%s (%.2f%%)", b.Label, b.WinRate)
	}
	fmt.Println()
}

func printEntry(e *analysis.EntryReport) {
	if len(e.RiskPatterns) == 0 && len(e.Recommendations) == 0 {
		return
	}
	fmt.Println("\n=== ENTRY RISK PATTERNS ===")
	for _, p := range e.RiskPatterns {
		fmt.Printf("  ! %s: %s (SL rate %.2f%%)\n", p.PatternName, p.Description, p.SLHitRate)
		fmt.Printf("    -> %s\n", p.SuggestedFilter)
	}
	if len(e.Recommendations) > 0 {
		fmt.Println("\n=== RECOMMENDATIONS ===")
		for _, r := range e.Recommendations {
			fmt.Printf("  [%s] %s\n    %s\n    Action: %s\n", r.Priority, r.Title, r.Details, r.Action)
		}
	}
}

func printRejected(r *analysis.RejectedReport) {
	fmt.Println("\n=== REJECTED SIGNALS ===")
	fmt.Printf("Total rejected: %d\n", r.TotalRejected)
	if r.TotalRejected == 0 {
		return
	}
	fmt.Printf("Avg confidence: %.3f (%d at 0.80+)\n", r.AvgConfidence, r.Confidence.HighConfidence)
	for _, reason := range r.TopReasons {
		fmt.Printf("  %-40s %4d (%.2f%%)\n", reason.Reason, reason.Count, reason.Percentage)
	}
}
