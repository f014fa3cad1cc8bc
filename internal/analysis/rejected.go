package analysis

import (
	"sort"

	"github.com/quantaudit/sigscope/internal/models"
)

// ReasonCount is one rejection reason with its share of the total.
type ReasonCount struct {
	Reason     string  `json:"reason"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SymbolCount is a symbol frequency entry.
type SymbolCount struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
}

// RejectedDirections is the LONG/SHORT split of rejected signals.
type RejectedDirections struct {
	Long            int     `json:"long"`
	Short           int     `json:"short"`
	LongPercentage  float64 `json:"long_percentage"`
	ShortPercentage float64 `json:"short_percentage"`
}

// RejectedConfidence describes the confidence distribution of rejected
// signals.
type RejectedConfidence struct {
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	Median         float64 `json:"median"`
	HighConfidence int     `json:"high_confidence_rejected"` // at or above 0.80
}

// RejectedReport summarizes the signals the generator evaluated but never
// emitted.
type RejectedReport struct {
	TotalRejected int                `json:"total_rejected"`
	TopReasons    []ReasonCount      `json:"top_reasons"`
	TotalSymbols  int                `json:"total_symbols"`
	TopSymbols    []SymbolCount      `json:"top_symbols"`
	Directions    RejectedDirections `json:"direction_distribution"`
	AvgConfidence float64            `json:"avg_confidence"`
	Confidence    RejectedConfidence `json:"confidence_distribution"`
}

// AnalyzeRejected reduces the rejected-signal stream. An empty input
// yields a zero report, not an error.
func AnalyzeRejected(rejected []models.RejectedSignal) RejectedReport {
	report := RejectedReport{TotalRejected: len(rejected)}
	if len(rejected) == 0 {
		return report
	}

	report.TopReasons = rejectionReasons(rejected)

	symbolCounts := make(map[string]int)
	for i := range rejected {
		if rejected[i].Symbol != "" {
			symbolCounts[rejected[i].Symbol]++
		}
	}
	report.TotalSymbols = len(symbolCounts)
	report.TopSymbols = topCounts(symbolCounts, 10)

	report.Directions = rejectedDirections(rejected)

	confidences := make([]float64, 0, len(rejected))
	confSum := 0.0
	for i := range rejected {
		confidences = append(confidences, rejected[i].Confidence)
		confSum += rejected[i].Confidence
	}
	report.AvgConfidence = round3(confSum / float64(len(rejected)))
	report.Confidence = confidenceDistribution(confidences)

	return report
}

// rejectionReasons tallies the top ten reasons; percentages are of all
// rejected rows.
func rejectionReasons(rejected []models.RejectedSignal) []ReasonCount {
	counts := make(map[string]int)
	for i := range rejected {
		if rejected[i].RejectionReason != "" {
			counts[rejected[i].RejectionReason]++
		}
	}

	total := len(rejected)
	top := topCounts(counts, 10)

	out := make([]ReasonCount, 0, len(top))
	for _, entry := range top {
		out = append(out, ReasonCount{
			Reason:     entry.Symbol,
			Count:      entry.Count,
			Percentage: round2(rate(entry.Count, total)),
		})
	}
	return out
}

func rejectedDirections(rejected []models.RejectedSignal) RejectedDirections {
	d := RejectedDirections{}
	total := 0
	for i := range rejected {
		switch rejected[i].Direction {
		case models.DirectionLong:
			d.Long++
			total++
		case models.DirectionShort:
			d.Short++
			total++
		}
	}
	d.LongPercentage = round2(rate(d.Long, total))
	d.ShortPercentage = round2(rate(d.Short, total))
	return d
}

// confidenceDistribution reports min/max/median (upper median) and the
// count at or above the high-confidence cutoff.
func confidenceDistribution(confidences []float64) RejectedConfidence {
	sorted := make([]float64, len(confidences))
	copy(sorted, confidences)
	sort.Float64s(sorted)

	high := 0
	for _, c := range sorted {
		if c >= 0.80 {
			high++
		}
	}

	return RejectedConfidence{
		Min:            round3(sorted[0]),
		Max:            round3(sorted[len(sorted)-1]),
		Median:         round3(sorted[len(sorted)/2]),
		HighConfidence: high,
	}
}

// topCounts orders a frequency table by count descending (name ascending
// on ties, for reproducible output) and keeps the first n.
func topCounts(counts map[string]int, n int) []SymbolCount {
	out := make([]SymbolCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, SymbolCount{Symbol: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Symbol < out[j].Symbol
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}
