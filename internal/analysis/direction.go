package analysis

import (
	"fmt"

	"github.com/quantaudit/sigscope/internal/models"
)

// DirectionPerformance summarizes one side's (LONG or SHORT) history.
type DirectionPerformance struct {
	Direction        string  `json:"direction"`
	SignalCount      int     `json:"signal_count"`
	WinRate          float64 `json:"win_rate"`
	AvgRMultiple     float64 `json:"avg_r_multiple"`
	AvgConfidence    float64 `json:"avg_confidence"`
	TP1Rate          float64 `json:"tp1_rate"`
	TP2Rate          float64 `json:"tp2_rate"`
	SLRate           float64 `json:"sl_rate"`
	AvgHoldTimeHours float64 `json:"avg_hold_time_hours"`
}

// DirectionBias flags an emission imbalance between sides.
type DirectionBias struct {
	Bias            string  `json:"bias"` // LONG, SHORT, BALANCED or NONE
	LongPercentage  float64 `json:"long_percentage"`
	ShortPercentage float64 `json:"short_percentage"`
	Ratio           string  `json:"ratio"`
}

// DirectionReport is the LONG vs SHORT breakdown.
type DirectionReport struct {
	Long  DirectionPerformance `json:"long"`
	Short DirectionPerformance `json:"short"`
	Bias  DirectionBias        `json:"bias"`
}

// biasThresholdPct: one side owning more than this share of emissions is
// a directional bias.
const biasThresholdPct = 70.0

// AnalyzeDirections splits the collection by side and reduces each half,
// then checks for emission bias.
func AnalyzeDirections(signals []ClassifiedSignal) DirectionReport {
	var longs, shorts []ClassifiedSignal
	for i := range signals {
		switch signals[i].Direction {
		case models.DirectionLong:
			longs = append(longs, signals[i])
		case models.DirectionShort:
			shorts = append(shorts, signals[i])
		}
	}

	report := DirectionReport{
		Long:  directionPerformance(models.DirectionLong, longs),
		Short: directionPerformance(models.DirectionShort, shorts),
	}
	report.Bias = directionBias(report.Long.SignalCount, report.Short.SignalCount)
	return report
}

func directionPerformance(direction string, signals []ClassifiedSignal) DirectionPerformance {
	perf := DirectionPerformance{Direction: direction}
	if len(signals) == 0 {
		return perf
	}

	total := len(signals)
	var closed, wins, losses, tp1Count, tp2Count int
	var rValues, holds []float64
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
		if s.Outcome.IsWin() {
			tp1Count++
		}
		if s.Outcome == OutcomeTP2Reached || s.Outcome == OutcomeTP3Reached {
			tp2Count++
		}
		if s.RMultiple != nil {
			rValues = append(rValues, *s.RMultiple)
		}
		if s.HoldTimeHours != nil {
			holds = append(holds, *s.HoldTimeHours)
		}
		confSum += s.Confidence
	}

	perf.SignalCount = total
	perf.WinRate = round2(rate(wins, closed))
	perf.SLRate = round2(rate(losses, closed))
	perf.TP1Rate = round2(rate(tp1Count, total))
	perf.TP2Rate = round2(rate(tp2Count, total))
	perf.AvgRMultiple = round3(mean(rValues))
	perf.AvgConfidence = round3(confSum / float64(total))
	perf.AvgHoldTimeHours = round2(mean(holds))
	return perf
}

func directionBias(longCount, shortCount int) DirectionBias {
	total := longCount + shortCount
	if total == 0 {
		return DirectionBias{Bias: "NONE", Ratio: "0:0"}
	}

	longPct := float64(longCount) / float64(total) * 100.0
	shortPct := float64(shortCount) / float64(total) * 100.0

	bias := "BALANCED"
	if longPct > biasThresholdPct {
		bias = models.DirectionLong
	} else if shortPct > biasThresholdPct {
		bias = models.DirectionShort
	}

	return DirectionBias{
		Bias:            bias,
		LongPercentage:  round1(longPct),
		ShortPercentage: round1(shortPct),
		Ratio:           fmt.Sprintf("%d:%d", longCount, shortCount),
	}
}
