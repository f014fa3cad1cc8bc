package analysis

// Outcome is the canonical classification of a signal's lifecycle. Every
// signal maps to exactly one value; Classify resolves conflicting raw hit
// flags with a strict priority order (stops before targets, staleness
// last).
type Outcome string

const (
	OutcomeTP3Reached   Outcome = "TP3_REACHED"
	OutcomeTP2Reached   Outcome = "TP2_REACHED"
	OutcomeTP1Only      Outcome = "TP1_ONLY"
	OutcomeSL2Hit       Outcome = "SL2_HIT"
	OutcomeSL15Hit      Outcome = "SL1_5_HIT"
	OutcomeSL1Hit       Outcome = "SL1_HIT"
	OutcomeOpen         Outcome = "OPEN"
	OutcomeExpiredNoHit Outcome = "EXPIRED_NO_HIT"
)

// IsWin reports whether the outcome reached any take-profit tier.
func (o Outcome) IsWin() bool {
	return o == OutcomeTP1Only || o == OutcomeTP2Reached || o == OutcomeTP3Reached
}

// IsLoss reports whether the outcome hit any stop-loss tier.
func (o Outcome) IsLoss() bool {
	return o == OutcomeSL1Hit || o == OutcomeSL15Hit || o == OutcomeSL2Hit
}

// Closed reports whether the signal is no longer live. Expired signals
// count as closed but as neither win nor loss.
func (o Outcome) Closed() bool {
	return o != OutcomeOpen
}

// ClassifiedSignal is the immutable per-signal result of classification:
// the outcome plus risk-normalized scalars. Nil means the metric could
// not be computed from the recorded fields; it is never coerced to zero.
type ClassifiedSignal struct {
	SignalID      string   `json:"signal_id"`
	Symbol        string   `json:"symbol"`
	Direction     string   `json:"direction"`
	Confidence    float64  `json:"confidence"`
	Outcome       Outcome  `json:"outcome"`
	RMultiple     *float64 `json:"r_multiple,omitempty"`
	HoldTimeHours *float64 `json:"hold_time_hours,omitempty"`
	CreatedAt     int64    `json:"created_at"`
	MFEPercent    *float64 `json:"mfe_percent,omitempty"`
	MAEPercent    *float64 `json:"mae_percent,omitempty"`
}

// PerformanceMetrics summarizes a classified collection. Rates are
// percentages against the denominators documented on each field; averages
// are over contributing (non-nil) values only, 0.0 when nothing
// contributed.
type PerformanceMetrics struct {
	TotalSignals int `json:"total_signals"`

	TP3Count     int `json:"tp3_count"`
	TP2Count     int `json:"tp2_count"`
	TP1Count     int `json:"tp1_count"`
	SL1Count     int `json:"sl1_count"`
	SL15Count    int `json:"sl1_5_count"`
	SL2Count     int `json:"sl2_count"`
	OpenCount    int `json:"open_count"`
	ExpiredCount int `json:"expired_count"`

	// WinRate and SLHitRate are over closed signals; TP hit rates are
	// over all signals.
	WinRate    float64 `json:"win_rate"`
	TP1HitRate float64 `json:"tp1_hit_rate"`
	TP2HitRate float64 `json:"tp2_hit_rate"`
	TP3HitRate float64 `json:"tp3_hit_rate"`
	SLHitRate  float64 `json:"sl_hit_rate"`

	AvgRMultiple float64 `json:"avg_r_multiple"`
	AvgWinR      float64 `json:"avg_win_r"`
	AvgLossR     float64 `json:"avg_loss_r"`
	Expectancy   float64 `json:"expectancy"`

	AvgHoldTimeHours float64 `json:"avg_hold_time_hours"`
	AvgTimeToTPHours float64 `json:"avg_time_to_tp_hours"`
	AvgTimeToSLHours float64 `json:"avg_time_to_sl_hours"`

	AvgMFEPercent float64 `json:"avg_mfe_percent"`
	AvgMAEPercent float64 `json:"avg_mae_percent"`
}
