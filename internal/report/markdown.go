package report

import (
	"fmt"
	"strings"

	"github.com/quantaudit/sigscope/internal/analysis"
)

// Markdown renders the full run report as a markdown document.
func Markdown(report *analysis.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Signal Performance Report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", report.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	writeOverview(&b, &report.Metrics)
	writeSymbols(&b, report.Symbols)
	writeDirection(&b, &report.Direction)
	writeConfidence(&b, &report.Confidence)
	writeTime(&b, &report.Time)
	writeEntry(&b, &report.Entry)
	writeRejected(&b, &report.Rejected)

	return b.String()
}

func writeOverview(b *strings.Builder, m *analysis.PerformanceMetrics) {
	fmt.Fprintf(b, "## Overview\n\n")
	fmt.Fprintf(b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Total signals | %d |\n", m.TotalSignals)
	fmt.Fprintf(b, "| Open | %d |\n", m.OpenCount)
	fmt.Fprintf(b, "| Expired (no hit) | %d |\n", m.ExpiredCount)
	fmt.Fprintf(b, "| Win rate | %.2f%% |\n", m.WinRate)
	fmt.Fprintf(b, "| SL hit rate | %.2f%% |\n", m.SLHitRate)
	fmt.Fprintf(b, "| TP1 / TP2 / TP3 | %d / %d / %d |\n", m.TP1Count, m.TP2Count, m.TP3Count)
	fmt.Fprintf(b, "| SL1 / SL1.5 / SL2 | %d / %d / %d |\n", m.SL1Count, m.SL15Count, m.SL2Count)
	fmt.Fprintf(b, "| Avg R | %.3f |\n", m.AvgRMultiple)
	fmt.Fprintf(b, "| Avg win R / loss R | %.3f / %.3f |\n", m.AvgWinR, m.AvgLossR)
	fmt.Fprintf(b, "| Expectancy | %.3f |\n", m.Expectancy)
	fmt.Fprintf(b, "| Avg hold (h) | %.2f |\n", m.AvgHoldTimeHours)
	fmt.Fprintf(b, "| Avg time to TP / SL (h) | %.2f / %.2f |\n", m.AvgTimeToTPHours, m.AvgTimeToSLHours)
	fmt.Fprintf(b, "| Avg MFE / MAE (%%) | %.2f / %.2f |\n\n", m.AvgMFEPercent, m.AvgMAEPercent)
}

func writeSymbols(b *strings.Builder, symbols []analysis.SymbolPerformance) {
	if len(symbols) == 0 {
		return
	}
	fmt.Fprintf(b, "## Symbols\n\n")
	fmt.Fprintf(b, "| Symbol | Signals | Win rate | Avg R | Avg conf | SL rate | L/S |\n|---|---|---|---|---|---|---|\n")
	for _, s := range symbols {
		fmt.Fprintf(b, "| %s | %d | %.2f%% | %.3f | %.3f | %.2f%% | %d/%d |\n",
			s.Symbol, s.SignalCount, s.WinRate, s.AvgRMultiple, s.AvgConfidence, s.SLRate, s.LongCount, s.ShortCount)
	}
	fmt.Fprintf(b, "\n")
}

func writeDirection(b *strings.Builder, d *analysis.DirectionReport) {
	fmt.Fprintf(b, "## Direction\n\n")
	fmt.Fprintf(b, "| Side | Signals | Win rate | Avg R | SL rate | Avg hold (h) |\n|---|---|---|---|---|---|\n")
	for _, p := range []analysis.DirectionPerformance{d.Long, d.Short} {
		fmt.Fprintf(b, "| %s | %d | %.2f%% | %.3f | %.2f%% | %.2f |\n",
			p.Direction, p.SignalCount, p.WinRate, p.AvgRMultiple, p.SLRate, p.AvgHoldTimeHours)
	}
	fmt.Fprintf(b, "\nBias: **%s** (%s, %.1f%% long / %.1f%% short)\n\n",
		d.Bias.Bias, d.Bias.Ratio, d.Bias.LongPercentage, d.Bias.ShortPercentage)
}

func writeConfidence(b *strings.Builder, c *analysis.ConfidenceReport) {
	fmt.Fprintf(b, "## Confidence\n\n")
	fmt.Fprintf(b, "Correlation with win outcome: **%.3f**\n\n", c.Correlation)

	if len(c.Bands) > 0 {
		fmt.Fprintf(b, "| Band | Signals | Win rate | SL rate | TP rate | Avg R | False positives |\n|---|---|---|---|---|---|---|\n")
		for _, band := range c.Bands {
			fmt.Fprintf(b, "| %.2f–%.2f | %d | %.2f%% | %.2f%% | %.2f%% | %.3f | %d |\n",
				band.MinConfidence, band.MaxConfidence, band.SignalCount,
				band.WinRate, band.SLRate, band.TPRate, band.AvgRMultiple, band.FalsePositiveCount)
		}
		fmt.Fprintf(b, "\n")
	}

	opt := c.OptimalThreshold
	fmt.Fprintf(b, "Optimal confidence threshold: **%.2f** (win rate %.2f%%, expectancy %.3f)\n\n",
		opt.OptimalThreshold, opt.ExpectedWinRate, opt.ExpectedRMultiple)

	for _, p := range c.Patterns {
		writePattern(b, p.PatternName, p.Description, p.SLHitRate, p.Suggestion)
	}
}

func writeTime(b *strings.Builder, t *analysis.TimeReport) {
	if len(t.Hourly) == 0 {
		return
	}
	fmt.Fprintf(b, "## Timing\n\n")
	fmt.Fprintf(b, "Best hours: %s\n\n", bucketList(t.BestHours))
	fmt.Fprintf(b, "Worst hours: %s\n\n", bucketList(t.WorstHours))
	if len(t.Daily) > 0 {
		fmt.Fprintf(b, "| Day | Signals | Win rate |\n|---|---|---|\n")
		for _, d := range t.Daily {
			fmt.Fprintf(b, "| %s | %d | %.2f%% |\n", d.Label, d.Total, d.WinRate)
		}
		fmt.Fprintf(b, "\n")
	}
	fmt.Fprintf(b, "Avg time to TP: %.2fh, to SL: %.2fh\n\n", t.HoldTimes.AvgTPTime, t.HoldTimes.AvgSLTime)
}

func writeEntry(b *strings.Builder, e *analysis.EntryReport) {
	if len(e.RiskPatterns) == 0 && len(e.Recommendations) == 0 {
		return
	}
	fmt.Fprintf(b, "## Entry Risk\n\n")
	for _, p := range e.RiskPatterns {
		writePattern(b, p.PatternName, p.Description, p.SLHitRate, p.SuggestedFilter)
	}
	if len(e.Recommendations) > 0 {
		fmt.Fprintf(b, "### Recommendations\n\n")
		for _, r := range e.Recommendations {
			fmt.Fprintf(b, "- **[%s] %s** — %s\n  - Action: %s\n", r.Priority, r.Title, r.Details, r.Action)
		}
		fmt.Fprintf(b, "\n")
	}
}

func writeRejected(b *strings.Builder, r *analysis.RejectedReport) {
	fmt.Fprintf(b, "## Rejected Signals\n\n")
	fmt.Fprintf(b, "Total rejected: %d", r.TotalRejected)
	if r.TotalRejected == 0 {
		fmt.Fprintf(b, "\n")
		return
	}
	fmt.Fprintf(b, " (avg confidence %.3f, %d at 0.80+)\n\n", r.AvgConfidence, r.Confidence.HighConfidence)

	if len(r.TopReasons) > 0 {
		fmt.Fprintf(b, "| Reason | Count | Share |\n|---|---|---|\n")
		for _, reason := range r.TopReasons {
			fmt.Fprintf(b, "| %s | %d | %.2f%% |\n", reason.Reason, reason.Count, reason.Percentage)
		}
		fmt.Fprintf(b, "\n")
	}
	fmt.Fprintf(b, "Direction split: %d LONG (%.2f%%) / %d SHORT (%.2f%%)\n\n",
		r.Directions.Long, r.Directions.LongPercentage, r.Directions.Short, r.Directions.ShortPercentage)
}

func writePattern(b *strings.Builder, name, description string, slRate float64, action string) {
	fmt.Fprintf(b, "### %s\n\n%s (SL rate %.2f%%)\n\n> %s\n\n", name, description, slRate, action)
}

func bucketList(buckets []analysis.TimeBucket) string {
	if len(buckets) == 0 {
		return "n/a"
	}
	parts := make([]string, 0, len(buckets))
	for _, bu := range buckets {
		parts = append(parts, fmt.Sprintf("%s (%.2f%%)", bu.Label, bu.WinRate))
	}
	return strings.Join(parts, ", ")
}
