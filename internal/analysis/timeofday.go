package analysis

import (
	"sort"
	"time"
)

// TimeBucket is the win/loss tally for one hour-of-day or weekday bucket,
// closed signals only.
type TimeBucket struct {
	Label   string  `json:"label"`
	Total   int     `json:"total"`
	WinRate float64 `json:"win_rate"`
}

// HoldTimeStats describes the hold-time distribution split by result.
type HoldTimeStats struct {
	AvgTPTime float64 `json:"avg_tp_time"`
	AvgSLTime float64 `json:"avg_sl_time"`
	MinTPTime float64 `json:"min_tp_time"`
	MaxTPTime float64 `json:"max_tp_time"`
	MinSLTime float64 `json:"min_sl_time"`
	MaxSLTime float64 `json:"max_sl_time"`
}

// TimeReport is the time-of-day / day-of-week breakdown.
type TimeReport struct {
	Hourly     []TimeBucket  `json:"hourly"`
	BestHours  []TimeBucket  `json:"best_hours"`
	WorstHours []TimeBucket  `json:"worst_hours"`
	Daily      []TimeBucket  `json:"daily"`
	HoldTimes  HoldTimeStats `json:"hold_times"`
}

// AnalyzeTime buckets closed signals by local hour and weekday of their
// creation time and reports the extremes: up to three best and three
// worst hours by win rate.
func AnalyzeTime(signals []ClassifiedSignal) TimeReport {
	type tally struct {
		total int
		wins  int
	}
	hourly := make(map[int]*tally)
	daily := make(map[time.Weekday]*tally)

	for i := range signals {
		s := &signals[i]
		if !s.Outcome.Closed() {
			continue
		}
		created := time.Unix(s.CreatedAt, 0)

		h := hourly[created.Hour()]
		if h == nil {
			h = &tally{}
			hourly[created.Hour()] = h
		}
		h.total++

		d := daily[created.Weekday()]
		if d == nil {
			d = &tally{}
			daily[created.Weekday()] = d
		}
		d.total++

		if s.Outcome.IsWin() {
			h.wins++
			d.wins++
		}
	}

	report := TimeReport{}

	hours := make([]int, 0, len(hourly))
	for h := range hourly {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	for _, h := range hours {
		t := hourly[h]
		report.Hourly = append(report.Hourly, TimeBucket{
			Label:   hourLabel(h),
			Total:   t.total,
			WinRate: round2(rate(t.wins, t.total)),
		})
	}

	// Best/worst by win rate; hour label breaks ties so output is stable.
	ranked := make([]TimeBucket, len(report.Hourly))
	copy(ranked, report.Hourly)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].WinRate > ranked[j].WinRate
	})
	report.BestHours = firstN(ranked, 3)
	report.WorstHours = lastNReversed(ranked, 3)

	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		t, ok := daily[wd]
		if !ok {
			continue
		}
		report.Daily = append(report.Daily, TimeBucket{
			Label:   wd.String(),
			Total:   t.total,
			WinRate: round2(rate(t.wins, t.total)),
		})
	}

	report.HoldTimes = holdTimeStats(signals)
	return report
}

func hourLabel(h int) string {
	return time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("15:00")
}

func firstN(buckets []TimeBucket, n int) []TimeBucket {
	if n > len(buckets) {
		n = len(buckets)
	}
	out := make([]TimeBucket, n)
	copy(out, buckets[:n])
	return out
}

func lastNReversed(buckets []TimeBucket, n int) []TimeBucket {
	if n > len(buckets) {
		n = len(buckets)
	}
	out := make([]TimeBucket, 0, n)
	for i := len(buckets) - 1; i >= len(buckets)-n; i-- {
		out = append(out, buckets[i])
	}
	return out
}

func holdTimeStats(signals []ClassifiedSignal) HoldTimeStats {
	var tpTimes, slTimes []float64
	for i := range signals {
		s := &signals[i]
		if s.HoldTimeHours == nil {
			continue
		}
		if s.Outcome.IsWin() {
			tpTimes = append(tpTimes, *s.HoldTimeHours)
		} else if s.Outcome.IsLoss() {
			slTimes = append(slTimes, *s.HoldTimeHours)
		}
	}

	return HoldTimeStats{
		AvgTPTime: round2(mean(tpTimes)),
		AvgSLTime: round2(mean(slTimes)),
		MinTPTime: round2(minOrZero(tpTimes)),
		MaxTPTime: round2(maxOrZero(tpTimes)),
		MinSLTime: round2(minOrZero(slTimes)),
		MaxSLTime: round2(maxOrZero(slTimes)),
	}
}

func minOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

func maxOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
