package analysis

import (
	"fmt"

	"github.com/quantaudit/sigscope/internal/models"
)

// EntryPattern is an entry-timing risk pattern with enough statistical
// support to act on.
type EntryPattern struct {
	PatternName     string  `json:"pattern_name"`
	Description     string  `json:"description"`
	SignalsAffected int     `json:"signals_affected"`
	SLHitRate       float64 `json:"sl_hit_rate"`
	SuggestedFilter string  `json:"suggested_filter"`
}

// Recommendation is an actionable follow-up for the signal generator.
type Recommendation struct {
	Priority string `json:"priority"` // HIGH or MEDIUM
	Title    string `json:"title"`
	Details  string `json:"details"`
	Action   string `json:"action"`
}

// EntryReport carries the detected risk patterns and the recommendations
// derived from them.
type EntryReport struct {
	RiskPatterns    []EntryPattern   `json:"risk_patterns"`
	Recommendations []Recommendation `json:"recommendations"`
}

// entryDetector inspects the classified collection together with the raw
// records (for fields not retained in classified form). Nil means
// insufficient evidence, never an error.
type entryDetector func(classified []ClassifiedSignal, raw []models.RawSignal) *EntryPattern

// entryDetectors is the registry; detectors are independent and
// order-insensitive, the order here only fixes report layout.
var entryDetectors = []entryDetector{
	detectLargeMAE,
	detectLowVolatilityMismatch,
	detectRapidStopOuts,
	detectRetriggerFailures,
}

// AnalyzeEntry runs every risk detector over the run's records and turns
// the findings into recommendations.
func AnalyzeEntry(classified []ClassifiedSignal, raw []models.RawSignal) EntryReport {
	report := EntryReport{}
	for _, detect := range entryDetectors {
		if p := detect(classified, raw); p != nil {
			report.RiskPatterns = append(report.RiskPatterns, *p)
		}
	}
	report.Recommendations = buildRecommendations(classified, report.RiskPatterns)
	return report
}

// detectLargeMAE flags high-confidence signals whose adverse excursion
// exceeded 2% of entry before they stopped out. Reported only when those
// signals are more than 30% of the high-confidence-with-MAE population.
func detectLargeMAE(_ []ClassifiedSignal, raw []models.RawSignal) *EntryPattern {
	var population, flagged int
	for i := range raw {
		sig := &raw[i]
		if sig.Confidence < 0.80 || sig.MAEPrice == nil || sig.SignalPrice <= 0 {
			continue
		}
		population++

		var maePct float64
		if sig.Direction == models.DirectionLong {
			maePct = (*sig.MAEPrice - sig.SignalPrice) / sig.SignalPrice * 100.0
		} else {
			maePct = (sig.SignalPrice - *sig.MAEPrice) / sig.SignalPrice * 100.0
		}

		if maePct < -2.0 && sig.HitSL() {
			flagged++
		}
	}
	if population == 0 || flagged == 0 {
		return nil
	}

	slRate := rate(flagged, population)
	if slRate <= 30.0 {
		return nil
	}

	return &EntryPattern{
		PatternName:     "Large MAE Before Target",
		Description:     fmt.Sprintf("Signals with >2%% adverse movement often hit SL (%d signals)", flagged),
		SignalsAffected: flagged,
		SLHitRate:       round2(slRate),
		SuggestedFilter: "Add early exit rule: if MAE exceeds 2% within the first hour, close or reduce the position",
	}
}

// detectLowVolatilityMismatch checks whether very high confidence paired
// with low ATR (under 2% of entry, a ranging tape) predicts stop-outs.
// Needs at least five qualifying signals.
func detectLowVolatilityMismatch(_ []ClassifiedSignal, raw []models.RawSignal) *EntryPattern {
	var qualifying, stopped int
	for i := range raw {
		sig := &raw[i]
		if sig.Confidence < 0.85 || sig.ATR == nil || sig.SignalPrice <= 0 {
			continue
		}
		if *sig.ATR/sig.SignalPrice >= 0.02 {
			continue
		}
		qualifying++
		if sig.HitSL() {
			stopped++
		}
	}
	if qualifying < 5 {
		return nil
	}

	slRate := rate(stopped, qualifying)
	if slRate <= 50.0 {
		return nil
	}

	return &EntryPattern{
		PatternName:     "High Confidence + Low ATR",
		Description:     fmt.Sprintf("Low volatility (ATR <2%%) with high confidence is deceptive (%d/%d failed)", stopped, qualifying),
		SignalsAffected: stopped,
		SLHitRate:       round2(slRate),
		SuggestedFilter: "Require ATR > 2% of price or add a volatility confirmation filter",
	}
}

// detectRapidStopOuts finds high-confidence signals stopped inside the
// first hour, usually false breakouts. Needs at least three.
func detectRapidStopOuts(_ []ClassifiedSignal, raw []models.RawSignal) *EntryPattern {
	rapid := 0
	for i := range raw {
		sig := &raw[i]
		if sig.Confidence < 0.80 || sig.CreatedAt == 0 {
			continue
		}
		hitAt := sig.SLHitAt()
		if hitAt == nil {
			continue
		}
		if *hitAt-sig.CreatedAt < 3600 {
			rapid++
		}
	}
	if rapid < 3 {
		return nil
	}

	return &EntryPattern{
		PatternName:     "Rapid SL Hits (<1 hour)",
		Description:     fmt.Sprintf("%d high-confidence signals hit SL within 1 hour", rapid),
		SignalsAffected: rapid,
		SLHitRate:       100.0, // every member is a stop-out by definition
		SuggestedFilter: "Add price action confirmation: wait 15-30 minutes after the signal before entry to avoid false breakouts",
	}
}

// detectRetriggerFailures checks whether signals the system re-triggered
// two or more times tend to stop out. Needs at least three stopped
// re-triggered signals and a failure share above 40%.
func detectRetriggerFailures(_ []ClassifiedSignal, raw []models.RawSignal) *EntryPattern {
	var retriggered, stopped int
	for i := range raw {
		sig := &raw[i]
		if sig.Confidence < 0.80 || sig.RetriggerCount() < 2 {
			continue
		}
		retriggered++
		if sig.HitSL() {
			stopped++
		}
	}
	if stopped < 3 {
		return nil
	}

	slRate := rate(stopped, retriggered)
	if slRate <= 40.0 {
		return nil
	}

	return &EntryPattern{
		PatternName:     "Repeated Signal Failures",
		Description:     fmt.Sprintf("Signals with multiple re-triggers often fail (%d signals)", stopped),
		SignalsAffected: stopped,
		SLHitRate:       round2(slRate),
		SuggestedFilter: "If a signal re-triggers multiple times, skip it or reduce its confidence",
	}
}

// buildRecommendations turns patterns into prioritized follow-ups. The
// standalone "very high confidence yet stopped out" finding is always
// checked, whether or not any pattern fired.
func buildRecommendations(classified []ClassifiedSignal, patterns []EntryPattern) []Recommendation {
	var recs []Recommendation

	highConfSL := 0
	for i := range classified {
		if classified[i].Confidence >= 0.85 && classified[i].Outcome.IsLoss() {
			highConfSL++
		}
	}

	if highConfSL > 0 {
		recs = append(recs, Recommendation{
			Priority: "HIGH",
			Title:    "High Confidence is NOT Enough",
			Details:  fmt.Sprintf("%d signals with 85%%+ confidence still hit SL", highConfSL),
			Action:   "Add secondary filters: ATR threshold, volume confirmation, trend alignment",
		})
	}

	for _, p := range patterns {
		priority := "MEDIUM"
		if p.SLHitRate > 60.0 {
			priority = "HIGH"
		}
		recs = append(recs, Recommendation{
			Priority: priority,
			Title:    p.PatternName,
			Details:  p.Description,
			Action:   p.SuggestedFilter,
		})
	}

	if len(patterns) == 0 && highConfSL > 0 {
		recs = append(recs, Recommendation{
			Priority: "MEDIUM",
			Title:    "Need More Data Points",
			Details:  "Not enough signals to detect clear patterns yet",
			Action:   "Continue collecting data. Consider adding MFE/MAE tracking and market regime classification",
		})
	}

	return recs
}
