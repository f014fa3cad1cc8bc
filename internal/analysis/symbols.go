package analysis

import (
	"sort"

	"github.com/quantaudit/sigscope/internal/models"
)

// SymbolPerformance summarizes one symbol's signal history.
type SymbolPerformance struct {
	Symbol        string  `json:"symbol"`
	SignalCount   int     `json:"signal_count"`
	WinRate       float64 `json:"win_rate"`
	AvgRMultiple  float64 `json:"avg_r_multiple"`
	AvgConfidence float64 `json:"avg_confidence"`
	TP1Rate       float64 `json:"tp1_rate"`
	TP2Rate       float64 `json:"tp2_rate"`
	SLRate        float64 `json:"sl_rate"`
	LongCount     int     `json:"long_count"`
	ShortCount    int     `json:"short_count"`
}

// AnalyzeSymbols partitions classified signals by symbol and reduces each
// partition. Results are ordered best average R first; ties fall back to
// the symbol name so runs are reproducible.
func AnalyzeSymbols(signals []ClassifiedSignal) []SymbolPerformance {
	groups := make(map[string][]ClassifiedSignal)
	for i := range signals {
		groups[signals[i].Symbol] = append(groups[signals[i].Symbol], signals[i])
	}

	results := make([]SymbolPerformance, 0, len(groups))
	for symbol, group := range groups {
		results = append(results, symbolPerformance(symbol, group))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].AvgRMultiple != results[j].AvgRMultiple {
			return results[i].AvgRMultiple > results[j].AvgRMultiple
		}
		return results[i].Symbol < results[j].Symbol
	})
	return results
}

func symbolPerformance(symbol string, signals []ClassifiedSignal) SymbolPerformance {
	total := len(signals)

	var closed, wins, losses int
	var tp1Count, tp2Count int
	var longCount, shortCount int
	var rValues []float64
	confSum := 0.0

	for i := range signals {
		s := &signals[i]
		if s.Outcome.Closed() {
			closed++
			if s.Outcome.IsWin() {
				wins++
			}
			if s.Outcome.IsLoss() {
				losses++
			}
		}
		// TP1 rate counts any take-profit tier; TP2 rate counts TP2 and
		// above.
		if s.Outcome.IsWin() {
			tp1Count++
		}
		if s.Outcome == OutcomeTP2Reached || s.Outcome == OutcomeTP3Reached {
			tp2Count++
		}
		if s.RMultiple != nil {
			rValues = append(rValues, *s.RMultiple)
		}
		confSum += s.Confidence
		switch s.Direction {
		case models.DirectionLong:
			longCount++
		case models.DirectionShort:
			shortCount++
		}
	}

	avgConf := 0.0
	if total > 0 {
		avgConf = confSum / float64(total)
	}

	return SymbolPerformance{
		Symbol:        symbol,
		SignalCount:   total,
		WinRate:       round2(rate(wins, closed)),
		AvgRMultiple:  round3(mean(rValues)),
		AvgConfidence: round3(avgConf),
		TP1Rate:       round2(rate(tp1Count, total)),
		TP2Rate:       round2(rate(tp2Count, total)),
		SLRate:        round2(rate(losses, closed)),
		LongCount:     longCount,
		ShortCount:    shortCount,
	}
}

// TopPerformers returns the best n symbols by average R.
func TopPerformers(perf []SymbolPerformance, n int) []SymbolPerformance {
	if n > len(perf) {
		n = len(perf)
	}
	return perf[:n]
}

// WorstPerformers returns the worst n symbols by average R, worst first.
func WorstPerformers(perf []SymbolPerformance, n int) []SymbolPerformance {
	if n > len(perf) {
		n = len(perf)
	}
	out := make([]SymbolPerformance, 0, n)
	for i := len(perf) - 1; i >= len(perf)-n; i-- {
		out = append(out, perf[i])
	}
	return out
}

// WithMinSignals filters out symbols with too little history to be
// statistically interesting.
func WithMinSignals(perf []SymbolPerformance, min int) []SymbolPerformance {
	out := make([]SymbolPerformance, 0, len(perf))
	for _, p := range perf {
		if p.SignalCount >= min {
			out = append(out, p)
		}
	}
	return out
}
