package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confSignal(symbol string, confidence float64, outcome Outcome, r *float64) ClassifiedSignal {
	return ClassifiedSignal{
		SignalID:   "sig",
		Symbol:     symbol,
		Direction:  "LONG",
		Confidence: confidence,
		Outcome:    outcome,
		RMultiple:  r,
	}
}

func TestConfidenceBands_EmptyBandsOmitted(t *testing.T) {
	signals := []ClassifiedSignal{
		confSignal("BTCUSDT", 0.72, OutcomeTP1Only, fptr(1.0)),
		confSignal("ETHUSDT", 0.81, OutcomeSL1Hit, fptr(-1.0)),
	}

	bands := confidenceBands(signals)
	require.Len(t, bands, 2)
	assert.Equal(t, 0.70, bands[0].MinConfidence)
	assert.Equal(t, 0.80, bands[1].MinConfidence)
	for _, band := range bands {
		assert.NotZero(t, band.SignalCount)
	}
}

func TestConfidenceBands_TopBandIncludesUpperBound(t *testing.T) {
	signals := []ClassifiedSignal{
		confSignal("BTCUSDT", 1.0, OutcomeTP1Only, nil),
	}

	bands := confidenceBands(signals)
	require.Len(t, bands, 1)
	assert.Equal(t, 0.95, bands[0].MinConfidence)
	assert.Equal(t, 1, bands[0].SignalCount)
}

func TestConfidenceBands_Metrics(t *testing.T) {
	signals := []ClassifiedSignal{
		confSignal("BTCUSDT", 0.82, OutcomeTP1Only, fptr(1.5)),
		confSignal("ETHUSDT", 0.83, OutcomeSL2Hit, fptr(-1.0)),
		confSignal("SOLUSDT", 0.84, OutcomeOpen, nil),
	}

	bands := confidenceBands(signals)
	require.Len(t, bands, 1)
	band := bands[0]
	assert.Equal(t, 3, band.SignalCount)
	assert.Equal(t, 50.0, band.WinRate) // 1 of 2 closed
	assert.Equal(t, 50.0, band.SLRate)
	assert.Equal(t, 33.33, band.TPRate) // 1 of 3 total
	assert.Equal(t, 0.25, band.AvgRMultiple)
	assert.Equal(t, 1, band.FalsePositiveCount)
}

func TestCorrelation_ZeroVariance(t *testing.T) {
	signals := []ClassifiedSignal{
		confSignal("A", 0.8, OutcomeTP1Only, nil),
		confSignal("B", 0.8, OutcomeSL1Hit, nil),
		confSignal("C", 0.8, OutcomeTP2Reached, nil),
	}
	assert.Equal(t, 0.0, confidenceCorrelation(signals))
}

func TestCorrelation_TooFewClosed(t *testing.T) {
	signals := []ClassifiedSignal{
		confSignal("A", 0.9, OutcomeTP1Only, nil),
		confSignal("B", 0.7, OutcomeOpen, nil),
	}
	assert.Equal(t, 0.0, confidenceCorrelation(signals))
}

func TestCorrelation_PerfectPositive(t *testing.T) {
	signals := []ClassifiedSignal{
		confSignal("A", 0.9, OutcomeTP1Only, nil),
		confSignal("B", 0.9, OutcomeTP2Reached, nil),
		confSignal("C", 0.7, OutcomeSL1Hit, nil),
		confSignal("D", 0.7, OutcomeSL2Hit, nil),
	}
	assert.Equal(t, 1.0, confidenceCorrelation(signals))
}

func TestOptimalThreshold_SkipsEmptyCandidates(t *testing.T) {
	// Nothing at 0.95+, plenty below: 0.95 must never be selected.
	signals := []ClassifiedSignal{
		confSignal("A", 0.72, OutcomeSL1Hit, fptr(-1.0)),
		confSignal("B", 0.78, OutcomeTP1Only, fptr(1.0)),
		confSignal("C", 0.88, OutcomeTP2Reached, fptr(2.0)),
		confSignal("D", 0.91, OutcomeTP3Reached, fptr(3.0)),
	}

	search := optimalThreshold(signals)
	assert.Less(t, search.OptimalThreshold, 0.95)
	for _, result := range search.AllThresholds {
		assert.NotEqual(t, 0.95, result.Threshold)
		assert.NotZero(t, result.SignalCount)
	}
	// Expectancy strictly improves with the cutoff here.
	assert.Equal(t, 0.90, search.OptimalThreshold)
	assert.Equal(t, 3.0, search.ExpectedRMultiple)
	assert.Equal(t, 100.0, search.ExpectedWinRate)
}

func TestOptimalThreshold_TieKeepsLowestThreshold(t *testing.T) {
	// Same expectancy at every cutoff: ascending sweep keeps the first.
	signals := []ClassifiedSignal{
		confSignal("A", 0.96, OutcomeTP1Only, fptr(1.0)),
	}

	search := optimalThreshold(signals)
	assert.Equal(t, 0.70, search.OptimalThreshold)
}

func TestOptimalThreshold_IgnoresOpenSignals(t *testing.T) {
	signals := []ClassifiedSignal{
		confSignal("A", 0.9, OutcomeOpen, fptr(5.0)),
		confSignal("B", 0.75, OutcomeTP1Only, fptr(1.0)),
	}

	search := optimalThreshold(signals)
	for _, result := range search.AllThresholds {
		assert.Equal(t, 1, result.SignalCount)
	}
	assert.Equal(t, 1.0, search.ExpectedRMultiple)
}

func TestSymbolFailurePattern(t *testing.T) {
	signals := []ClassifiedSignal{
		confSignal("DOGEUSDT", 0.85, OutcomeSL1Hit, nil),
		confSignal("DOGEUSDT", 0.90, OutcomeSL2Hit, nil),
		confSignal("DOGEUSDT", 0.85, OutcomeTP1Only, nil),
		confSignal("BTCUSDT", 0.85, OutcomeSL1Hit, nil), // only one failure
	}

	report := AnalyzeConfidence(signals)
	require.NotEmpty(t, report.Patterns)
	pattern := report.Patterns[0]
	assert.Equal(t, "Symbol-Specific Failures", pattern.PatternName)
	assert.Equal(t, 2, pattern.AffectedSignals)
	assert.Equal(t, []string{"DOGEUSDT"}, pattern.CommonSymbols)
	// Full-history SL rate for DOGEUSDT: 2 of 3.
	assert.Equal(t, 66.67, pattern.SLHitRate)
}

func TestExtremeConfidencePattern(t *testing.T) {
	fps := []ClassifiedSignal{
		confSignal("BTCUSDT", 0.92, OutcomeSL1Hit, nil),
		confSignal("ETHUSDT", 0.85, OutcomeSL2Hit, nil),
	}

	pattern := extremeConfidencePattern(fps)
	require.NotNil(t, pattern)
	assert.Equal(t, 1, pattern.AffectedSignals)
	assert.Equal(t, 100.0, pattern.SLHitRate)
	assert.Equal(t, []string{"BTCUSDT"}, pattern.CommonSymbols)
}

func TestFalsePositivePatterns_NoneBelowThreshold(t *testing.T) {
	signals := []ClassifiedSignal{
		confSignal("BTCUSDT", 0.75, OutcomeSL1Hit, nil),
		confSignal("ETHUSDT", 0.78, OutcomeSL2Hit, nil),
	}
	assert.Empty(t, falsePositivePatterns(signals))
}

func TestDirectionFailurePattern(t *testing.T) {
	short := confSignal("BTCUSDT", 0.85, OutcomeSL1Hit, nil)
	short.Direction = "SHORT"

	fps := []ClassifiedSignal{
		confSignal("BTCUSDT", 0.85, OutcomeSL1Hit, nil),
		confSignal("ETHUSDT", 0.86, OutcomeSL1Hit, nil),
		confSignal("SOLUSDT", 0.87, OutcomeSL2Hit, nil),
		short,
	}
	all := append([]ClassifiedSignal{confSignal("BTCUSDT", 0.85, OutcomeTP1Only, nil)}, fps...)

	pattern := directionFailurePattern(all, fps)
	require.NotNil(t, pattern)
	assert.Equal(t, "LONG Bias in False Positives", pattern.PatternName)
	assert.Equal(t, 3, pattern.AffectedSignals)
	// LONG full history: 3 SL of 4.
	assert.Equal(t, 75.0, pattern.SLHitRate)
}
