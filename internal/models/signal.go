package models

// Direction values as stored by the upstream bot.
const (
	DirectionLong  = "LONG"
	DirectionShort = "SHORT"
)

// RawSignal is one emitted-signal row from the snapshot store, exactly as
// recorded: entry context, three take-profit and three stop-loss tiers
// with their hit flags and timestamps, excursion extremes, and the JSON
// sub-documents captured at signal time. Numeric fields that the store
// allows to be NULL are pointers; zero is a recorded value, not absence.
type RawSignal struct {
	SignalID    string   `db:"signal_id" json:"signal_id"`
	Symbol      string   `db:"symbol" json:"symbol"`
	Direction   string   `db:"direction" json:"direction"`
	Confidence  float64  `db:"confidence" json:"confidence"`
	SignalPrice float64  `db:"signal_price" json:"signal_price"`
	ATR         *float64 `db:"atr" json:"atr,omitempty"`
	Timeframe   string   `db:"timeframe" json:"timeframe"`
	CreatedAt   int64    `db:"created_at" json:"created_at"`

	TP1Price *float64 `db:"tp1_price" json:"tp1_price,omitempty"`
	TP2Price *float64 `db:"tp2_price" json:"tp2_price,omitempty"`
	TP3Price *float64 `db:"tp3_price" json:"tp3_price,omitempty"`
	TP1Hit   FlexBool `db:"tp1_hit" json:"tp1_hit"`
	TP2Hit   FlexBool `db:"tp2_hit" json:"tp2_hit"`
	TP3Hit   FlexBool `db:"tp3_hit" json:"tp3_hit"`
	TP1HitAt *int64   `db:"tp1_hit_at" json:"tp1_hit_at,omitempty"`
	TP2HitAt *int64   `db:"tp2_hit_at" json:"tp2_hit_at,omitempty"`
	TP3HitAt *int64   `db:"tp3_hit_at" json:"tp3_hit_at,omitempty"`

	SL1Price  *float64 `db:"sl1_price" json:"sl1_price,omitempty"`
	SL15Price *float64 `db:"sl1_5_price" json:"sl1_5_price,omitempty"`
	SL2Price  *float64 `db:"sl2_price" json:"sl2_price,omitempty"`
	SL1Hit    FlexBool `db:"sl1_hit" json:"sl1_hit"`
	SL15Hit   FlexBool `db:"sl1_5_hit" json:"sl1_5_hit"`
	SL2Hit    FlexBool `db:"sl2_hit" json:"sl2_hit"`
	SL1HitAt  *int64   `db:"sl1_hit_at" json:"sl1_hit_at,omitempty"`
	SL15HitAt *int64   `db:"sl1_5_hit_at" json:"sl1_5_hit_at,omitempty"`
	SL2HitAt  *int64   `db:"sl2_hit_at" json:"sl2_hit_at,omitempty"`

	MFEPrice   *float64 `db:"mfe_price" json:"mfe_price,omitempty"`
	MFEAt      *int64   `db:"mfe_at" json:"mfe_at,omitempty"`
	MAEPrice   *float64 `db:"mae_price" json:"mae_price,omitempty"`
	MAEAt      *int64   `db:"mae_at" json:"mae_at,omitempty"`
	FinalPrice *float64 `db:"final_price" json:"final_price,omitempty"`

	MarketContext  JSONText `db:"market_context" json:"market_context,omitempty"`
	SignalLog      JSONText `db:"signal_log" json:"signal_log,omitempty"`
	ScoreBreakdown JSONText `db:"signal_score_breakdown" json:"signal_score_breakdown,omitempty"`
}

// HitSL reports whether any stop-loss tier was hit.
func (s *RawSignal) HitSL() bool {
	return s.SL1Hit.Bool() || s.SL15Hit.Bool() || s.SL2Hit.Bool()
}

// SLHitAt returns the earliest recorded stop timestamp among the tiers
// whose hit flag is set, nil when no stop timestamp was recorded.
func (s *RawSignal) SLHitAt() *int64 {
	var earliest *int64
	consider := func(hit FlexBool, at *int64) {
		if !hit.Bool() || at == nil {
			return
		}
		if earliest == nil || *at < *earliest {
			earliest = at
		}
	}
	consider(s.SL1Hit, s.SL1HitAt)
	consider(s.SL15Hit, s.SL15HitAt)
	consider(s.SL2Hit, s.SL2HitAt)
	return earliest
}

// RetriggerCount returns the number of re-trigger events in the signal
// log, 0 when the log is absent or malformed.
func (s *RawSignal) RetriggerCount() int {
	return len(s.SignalLog.List())
}

// RejectedSignal is one evaluated-but-not-emitted row. It has no
// relationship to RawSignal beyond sharing the symbol/direction
// vocabulary.
type RejectedSignal struct {
	ID              int64    `db:"id" json:"id"`
	SignalID        *string  `db:"signal_id" json:"signal_id,omitempty"`
	Symbol          string   `db:"symbol" json:"symbol"`
	Direction       string   `db:"direction" json:"direction"`
	Confidence      float64  `db:"confidence" json:"confidence"`
	SignalPrice     float64  `db:"signal_price" json:"signal_price"`
	CreatedAt       int64    `db:"created_at" json:"created_at"`
	RejectionReason string   `db:"rejection_reason" json:"rejection_reason"`
	ScoreBreakdown  JSONText `db:"score_breakdown" json:"score_breakdown,omitempty"`
	MarketContext   JSONText `db:"market_context" json:"market_context,omitempty"`
}
