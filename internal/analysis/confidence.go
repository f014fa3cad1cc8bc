package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/quantaudit/sigscope/internal/models"
)

// ConfidenceBand is the performance slice for one confidence range. The
// highest band is closed on its upper bound; the rest are half-open.
type ConfidenceBand struct {
	MinConfidence      float64 `json:"min_confidence"`
	MaxConfidence      float64 `json:"max_confidence"`
	SignalCount        int     `json:"signal_count"`
	WinRate            float64 `json:"win_rate"`
	AvgRMultiple       float64 `json:"avg_r_multiple"`
	TPRate             float64 `json:"tp_rate"`
	SLRate             float64 `json:"sl_rate"`
	FalsePositiveCount int     `json:"false_positive_count"`
}

// FalsePositivePattern describes a statistically-supported failure mode
// among high-confidence signals that still stopped out.
type FalsePositivePattern struct {
	PatternName     string   `json:"pattern_name"`
	Description     string   `json:"description"`
	AffectedSignals int      `json:"affected_signals"`
	CommonSymbols   []string `json:"common_symbols"`
	AvgConfidence   float64  `json:"avg_confidence"`
	SLHitRate       float64  `json:"sl_hit_rate"`
	Suggestion      string   `json:"suggestion"`
}

// ThresholdResult is one row of the optimal-threshold sweep.
type ThresholdResult struct {
	Threshold   float64 `json:"threshold"`
	SignalCount int     `json:"signal_count"`
	WinRate     float64 `json:"win_rate"`
	Expectancy  float64 `json:"expectancy"`
}

// ThresholdSearch is the sweep outcome: the candidate cutoff that
// maximizes expectancy over closed signals at or above it.
type ThresholdSearch struct {
	OptimalThreshold  float64           `json:"optimal_threshold"`
	ExpectedWinRate   float64           `json:"expected_win_rate"`
	ExpectedRMultiple float64           `json:"expected_r_multiple"`
	AllThresholds     []ThresholdResult `json:"all_thresholds"`
}

// ConfidenceReport ties together band metrics, failure patterns, the
// confidence/outcome correlation and the threshold sweep.
type ConfidenceReport struct {
	Bands            []ConfidenceBand       `json:"confidence_bands"`
	Patterns         []FalsePositivePattern `json:"false_positive_patterns"`
	Correlation      float64                `json:"correlation"`
	OptimalThreshold ThresholdSearch        `json:"optimal_threshold"`
}

// falsePositiveMinConfidence: an SL hit at or above this confidence is a
// false positive in this system's terminology.
const falsePositiveMinConfidence = 0.80

var confidenceBandEdges = [][2]float64{
	{0.70, 0.75},
	{0.75, 0.80},
	{0.80, 0.85},
	{0.85, 0.90},
	{0.90, 0.95},
	{0.95, 1.00},
}

var confidenceThresholds = []float64{0.70, 0.75, 0.80, 0.85, 0.90, 0.95}

// AnalyzeConfidence evaluates how well the stated confidence score
// predicts the classified outcome.
func AnalyzeConfidence(signals []ClassifiedSignal) ConfidenceReport {
	return ConfidenceReport{
		Bands:            confidenceBands(signals),
		Patterns:         falsePositivePatterns(signals),
		Correlation:      confidenceCorrelation(signals),
		OptimalThreshold: optimalThreshold(signals),
	}
}

// confidenceBands reduces each fixed band; empty bands are omitted rather
// than reported as zero.
func confidenceBands(signals []ClassifiedSignal) []ConfidenceBand {
	var results []ConfidenceBand
	for i, edges := range confidenceBandEdges {
		lo, hi := edges[0], edges[1]
		last := i == len(confidenceBandEdges)-1

		var band []ClassifiedSignal
		for j := range signals {
			c := signals[j].Confidence
			if c < lo {
				continue
			}
			if c < hi || (last && c == hi) {
				band = append(band, signals[j])
			}
		}
		if len(band) == 0 {
			continue
		}

		var closed, wins, losses, tpCount int
		var rValues []float64
		for j := range band {
			s := &band[j]
			if s.Outcome.Closed() {
				closed++
				if s.Outcome.IsWin() {
					wins++
				}
				if s.Outcome.IsLoss() {
					losses++
				}
			}
			if s.Outcome.IsWin() {
				tpCount++
			}
			if s.RMultiple != nil {
				rValues = append(rValues, *s.RMultiple)
			}
		}

		results = append(results, ConfidenceBand{
			MinConfidence:      lo,
			MaxConfidence:      hi,
			SignalCount:        len(band),
			WinRate:            round2(rate(wins, closed)),
			AvgRMultiple:       round3(mean(rValues)),
			TPRate:             round2(rate(tpCount, len(band))),
			SLRate:             round2(rate(losses, closed)),
			FalsePositiveCount: losses,
		})
	}
	return results
}

// confidenceCorrelation is the Pearson correlation between confidence and
// a binary win indicator over closed signals. Returns 0 when fewer than
// two closed signals exist or either variable has no variance.
func confidenceCorrelation(signals []ClassifiedSignal) float64 {
	var xs, ys []float64
	for i := range signals {
		if !signals[i].Outcome.Closed() {
			continue
		}
		xs = append(xs, signals[i].Confidence)
		if signals[i].Outcome.IsWin() {
			ys = append(ys, 1.0)
		} else {
			ys = append(ys, 0.0)
		}
	}

	n := float64(len(xs))
	if n < 2 {
		return 0.0
	}

	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumX2 += xs[i] * xs[i]
		sumY2 += ys[i] * ys[i]
	}

	numerator := n*sumXY - sumX*sumY
	denominator := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if denominator == 0 {
		return 0.0
	}
	return round3(numerator / denominator)
}

// optimalThreshold sweeps the candidate cutoffs in ascending order over
// closed signals and keeps the one maximizing expectancy. Ties keep the
// lowest threshold; candidates matching nothing are skipped entirely.
func optimalThreshold(signals []ClassifiedSignal) ThresholdSearch {
	search := ThresholdSearch{
		OptimalThreshold: confidenceThresholds[0],
		ExpectedWinRate:  0.0,
	}
	bestExpectancy := math.Inf(-1)

	for _, threshold := range confidenceThresholds {
		var matched []ClassifiedSignal
		for i := range signals {
			if signals[i].Confidence >= threshold && signals[i].Outcome.Closed() {
				matched = append(matched, signals[i])
			}
		}
		if len(matched) == 0 {
			continue
		}

		wins := 0
		var rValues []float64
		for i := range matched {
			if matched[i].Outcome.IsWin() {
				wins++
			}
			if matched[i].RMultiple != nil {
				rValues = append(rValues, *matched[i].RMultiple)
			}
		}

		winRate := round2(rate(wins, len(matched)))
		expectancy := round3(mean(rValues))

		search.AllThresholds = append(search.AllThresholds, ThresholdResult{
			Threshold:   threshold,
			SignalCount: len(matched),
			WinRate:     winRate,
			Expectancy:  expectancy,
		})

		if expectancy > bestExpectancy {
			bestExpectancy = expectancy
			search.OptimalThreshold = threshold
			search.ExpectedWinRate = winRate
			search.ExpectedRMultiple = expectancy
		}
	}
	return search
}

// falsePositives returns the high-confidence signals that stopped out.
func falsePositives(signals []ClassifiedSignal, minConfidence float64) []ClassifiedSignal {
	var out []ClassifiedSignal
	for i := range signals {
		if signals[i].Confidence >= minConfidence && signals[i].Outcome.IsLoss() {
			out = append(out, signals[i])
		}
	}
	return out
}

func falsePositivePatterns(signals []ClassifiedSignal) []FalsePositivePattern {
	fps := falsePositives(signals, falsePositiveMinConfidence)
	if len(fps) == 0 {
		return nil
	}

	var patterns []FalsePositivePattern
	if p := symbolFailurePattern(signals, fps); p != nil {
		patterns = append(patterns, *p)
	}
	if p := directionFailurePattern(signals, fps); p != nil {
		patterns = append(patterns, *p)
	}
	if p := extremeConfidencePattern(fps); p != nil {
		patterns = append(patterns, *p)
	}
	return patterns
}

// symbolFailurePattern flags symbols that show up twice or more among the
// false positives. The reported SL rate covers those symbols' full
// history, not just the filtered subset.
func symbolFailurePattern(all, fps []ClassifiedSignal) *FalsePositivePattern {
	counts := make(map[string]int)
	for i := range fps {
		counts[fps[i].Symbol]++
	}

	var problem []string
	for symbol, count := range counts {
		if count >= 2 {
			problem = append(problem, symbol)
		}
	}
	if len(problem) == 0 {
		return nil
	}
	sort.Slice(problem, func(i, j int) bool {
		if counts[problem[i]] != counts[problem[j]] {
			return counts[problem[i]] > counts[problem[j]]
		}
		return problem[i] < problem[j]
	})

	problemSet := make(map[string]bool, len(problem))
	for _, s := range problem {
		problemSet[s] = true
	}

	affected := 0
	confSum := 0.0
	for i := range fps {
		if problemSet[fps[i].Symbol] {
			affected++
			confSum += fps[i].Confidence
		}
	}

	var history, historySL int
	for i := range all {
		if problemSet[all[i].Symbol] {
			history++
			if all[i].Outcome.IsLoss() {
				historySL++
			}
		}
	}
	slRate := 100.0
	if history > 0 {
		slRate = rate(historySL, history)
	}

	top := problem
	if len(top) > 5 {
		top = top[:5]
	}
	suggest := problem
	if len(suggest) > 3 {
		suggest = suggest[:3]
	}

	return &FalsePositivePattern{
		PatternName:     "Symbol-Specific Failures",
		Description:     fmt.Sprintf("%d symbols consistently fail despite high confidence", len(problem)),
		AffectedSignals: affected,
		CommonSymbols:   top,
		AvgConfidence:   round3(confSum / float64(affected)),
		SLHitRate:       round2(slRate),
		Suggestion:      fmt.Sprintf("Consider blacklisting or reducing confidence weight for: %s", strings.Join(suggest, ", ")),
	}
}

// directionFailurePattern flags one side owning more than 70% of the
// false positives; its SL rate covers that side's full history.
func directionFailurePattern(all, fps []ClassifiedSignal) *FalsePositivePattern {
	var longFPs, shortFPs []ClassifiedSignal
	for i := range fps {
		switch fps[i].Direction {
		case models.DirectionLong:
			longFPs = append(longFPs, fps[i])
		case models.DirectionShort:
			shortFPs = append(shortFPs, fps[i])
		}
	}

	total := len(fps)
	longPct := float64(len(longFPs)) / float64(total) * 100.0
	shortPct := float64(len(shortFPs)) / float64(total) * 100.0

	switch {
	case longPct > biasThresholdPct:
		return directionPattern(all, longFPs, models.DirectionLong, longPct)
	case shortPct > biasThresholdPct:
		return directionPattern(all, shortFPs, models.DirectionShort, shortPct)
	}
	return nil
}

func directionPattern(all, fps []ClassifiedSignal, direction string, pct float64) *FalsePositivePattern {
	var history, historySL int
	for i := range all {
		if all[i].Direction == direction {
			history++
			if all[i].Outcome.IsLoss() {
				historySL++
			}
		}
	}
	slRate := 100.0
	if history > 0 {
		slRate = rate(historySL, history)
	}

	confSum := 0.0
	for i := range fps {
		confSum += fps[i].Confidence
	}

	return &FalsePositivePattern{
		PatternName:     fmt.Sprintf("%s Bias in False Positives", direction),
		Description:     fmt.Sprintf("%.1f%% of false positives are %s signals", pct, direction),
		AffectedSignals: len(fps),
		CommonSymbols:   uniqueSymbols(fps, 10),
		AvgConfidence:   round3(confSum / float64(len(fps))),
		SLHitRate:       round2(slRate),
		Suggestion:      fmt.Sprintf("%s signals may need stricter filtering or a lower confidence threshold", direction),
	}
}

// extremeConfidencePattern reports 90%+ confidence stop-outs verbatim;
// the rate is 100 by construction since every member hit a stop.
func extremeConfidencePattern(fps []ClassifiedSignal) *FalsePositivePattern {
	var extreme []ClassifiedSignal
	for i := range fps {
		if fps[i].Confidence >= 0.90 {
			extreme = append(extreme, fps[i])
		}
	}
	if len(extreme) == 0 {
		return nil
	}

	confSum := 0.0
	for i := range extreme {
		confSum += extreme[i].Confidence
	}

	return &FalsePositivePattern{
		PatternName:     "Extreme Confidence Failures",
		Description:     fmt.Sprintf("%d signals with 90%%+ confidence still hit SL", len(extreme)),
		AffectedSignals: len(extreme),
		CommonSymbols:   uniqueSymbols(extreme, len(extreme)),
		AvgConfidence:   round3(confSum / float64(len(extreme))),
		SLHitRate:       100.0,
		Suggestion:      "Even extreme confidence is not reliable. Additional filters needed (volume, trend strength, etc.)",
	}
}

func uniqueSymbols(signals []ClassifiedSignal, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for i := range signals {
		if seen[signals[i].Symbol] {
			continue
		}
		seen[signals[i].Symbol] = true
		out = append(out, signals[i].Symbol)
		if len(out) == limit {
			break
		}
	}
	sort.Strings(out)
	return out
}
