package analysis

import "math"

// Aggregate folds a classified collection into summary metrics. The
// denominators differ deliberately: win and SL rates are over closed
// signals (expired counts as closed but as neither win nor loss), TP hit
// rates are over all signals.
func Aggregate(signals []ClassifiedSignal) PerformanceMetrics {
	m := PerformanceMetrics{TotalSignals: len(signals)}

	for i := range signals {
		switch signals[i].Outcome {
		case OutcomeTP3Reached:
			m.TP3Count++
		case OutcomeTP2Reached:
			m.TP2Count++
		case OutcomeTP1Only:
			m.TP1Count++
		case OutcomeSL1Hit:
			m.SL1Count++
		case OutcomeSL15Hit:
			m.SL15Count++
		case OutcomeSL2Hit:
			m.SL2Count++
		case OutcomeOpen:
			m.OpenCount++
		case OutcomeExpiredNoHit:
			m.ExpiredCount++
		}
	}

	total := m.TotalSignals
	closed := total - m.OpenCount
	wins := m.TP1Count + m.TP2Count + m.TP3Count
	losses := m.SL1Count + m.SL15Count + m.SL2Count

	m.WinRate = round2(rate(wins, closed))
	m.SLHitRate = round2(rate(losses, closed))
	m.TP1HitRate = round2(rate(m.TP1Count, total))
	m.TP2HitRate = round2(rate(m.TP2Count, total))
	m.TP3HitRate = round2(rate(m.TP3Count, total))

	var rAll, rWin, rLoss []float64
	var holds, tpTimes, slTimes, mfes, maes []float64
	for i := range signals {
		s := &signals[i]
		if s.RMultiple != nil {
			r := *s.RMultiple
			rAll = append(rAll, r)
			if r > 0 {
				rWin = append(rWin, r)
			} else if r < 0 {
				rLoss = append(rLoss, r)
			}
		}
		if s.HoldTimeHours != nil {
			holds = append(holds, *s.HoldTimeHours)
			if s.Outcome.IsWin() {
				tpTimes = append(tpTimes, *s.HoldTimeHours)
			} else if s.Outcome.IsLoss() {
				slTimes = append(slTimes, *s.HoldTimeHours)
			}
		}
		if s.MFEPercent != nil {
			mfes = append(mfes, *s.MFEPercent)
		}
		if s.MAEPercent != nil {
			maes = append(maes, *s.MAEPercent)
		}
	}

	m.AvgRMultiple = round3(mean(rAll))
	m.AvgWinR = round3(mean(rWin))
	m.AvgLossR = round3(mean(rLoss))
	m.Expectancy = m.AvgRMultiple

	m.AvgHoldTimeHours = round2(mean(holds))
	m.AvgTimeToTPHours = round2(mean(tpTimes))
	m.AvgTimeToSLHours = round2(mean(slTimes))
	m.AvgMFEPercent = round2(mean(mfes))
	m.AvgMAEPercent = round2(mean(maes))

	return m
}

// rate is count/denominator as a percentage, 0 when the denominator is
// empty.
func rate(count, denom int) float64 {
	if denom <= 0 {
		return 0.0
	}
	return float64(count) / float64(denom) * 100.0
}

// mean is the arithmetic mean, 0 for an empty slice ("no data" at the
// aggregate level, distinct from per-signal nil).
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
