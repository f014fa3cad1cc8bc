package analysis

import (
	"time"

	"github.com/quantaudit/sigscope/internal/models"
)

// DefaultExpiryHours is how long a signal may sit without any hit before
// it is classified as expired rather than open.
const DefaultExpiryHours = 72.0

// Classifier maps raw signal records to classified outcomes and scalar
// metrics. It is stateless apart from its configuration and safe for
// concurrent use.
type Classifier struct {
	expiryHours float64
}

// NewClassifier creates a classifier with the default expiry window.
func NewClassifier() *Classifier {
	return &Classifier{expiryHours: DefaultExpiryHours}
}

// NewClassifierWithExpiry creates a classifier with a custom expiry
// window in hours. Non-positive values fall back to the default.
func NewClassifierWithExpiry(hours float64) *Classifier {
	if hours <= 0 {
		hours = DefaultExpiryHours
	}
	return &Classifier{expiryHours: hours}
}

// Classify resolves one raw record to its canonical outcome and derived
// metrics as of now.
func (c *Classifier) Classify(sig *models.RawSignal, now time.Time) ClassifiedSignal {
	outcome := c.determineOutcome(sig, now)

	return ClassifiedSignal{
		SignalID:      sig.SignalID,
		Symbol:        sig.Symbol,
		Direction:     sig.Direction,
		Confidence:    sig.Confidence,
		Outcome:       outcome,
		RMultiple:     rMultiple(sig, outcome),
		HoldTimeHours: holdTimeHours(sig, outcome),
		CreatedAt:     sig.CreatedAt,
		MFEPercent:    excursionPercent(sig, sig.MFEPrice),
		MAEPercent:    excursionPercent(sig, sig.MAEPrice),
	}
}

// ClassifyAll classifies a whole snapshot against a single reference time
// so the expiry cutoff is identical across the run.
func (c *Classifier) ClassifyAll(signals []models.RawSignal, now time.Time) []ClassifiedSignal {
	out := make([]ClassifiedSignal, 0, len(signals))
	for i := range signals {
		out = append(out, c.Classify(&signals[i], now))
	}
	return out
}

// determineOutcome applies the priority order: worst news first (deepest
// stop outward), then best news (highest target down), then staleness.
// Stops win over targets when the upstream tracker set both flags; a
// stopped-out position cannot also be a win.
func (c *Classifier) determineOutcome(sig *models.RawSignal, now time.Time) Outcome {
	switch {
	case sig.SL2Hit.Bool():
		return OutcomeSL2Hit
	case sig.SL15Hit.Bool():
		return OutcomeSL15Hit
	case sig.SL1Hit.Bool():
		return OutcomeSL1Hit
	case sig.TP3Hit.Bool():
		return OutcomeTP3Reached
	case sig.TP2Hit.Bool():
		return OutcomeTP2Reached
	case sig.TP1Hit.Bool():
		return OutcomeTP1Only
	}

	ageHours := now.Sub(time.Unix(sig.CreatedAt, 0)).Hours()
	if ageHours > c.expiryHours {
		return OutcomeExpiredNoHit
	}
	return OutcomeOpen
}

// rMultiple computes profit/loss as a multiple of initial risk, where
// risk is the distance from entry to SL2 (the worst-case stop). Nil when
// any required price is missing or the recorded risk is non-positive.
func rMultiple(sig *models.RawSignal, outcome Outcome) *float64 {
	entry := sig.SignalPrice
	if entry <= 0 || sig.SL2Price == nil {
		return nil
	}

	var risk float64
	if sig.Direction == models.DirectionLong {
		risk = entry - *sig.SL2Price
	} else {
		risk = *sig.SL2Price - entry
	}
	if risk <= 0 {
		return nil
	}

	exit := exitPrice(sig, outcome)
	if exit == nil {
		return nil
	}

	var pnl float64
	if sig.Direction == models.DirectionLong {
		pnl = *exit - entry
	} else {
		pnl = entry - *exit
	}

	r := round2(pnl / risk)
	return &r
}

// exitPrice selects the exit by outcome; signals that never hit a level
// exit at the recorded final price, when one exists.
func exitPrice(sig *models.RawSignal, outcome Outcome) *float64 {
	switch outcome {
	case OutcomeTP3Reached:
		return sig.TP3Price
	case OutcomeTP2Reached:
		return sig.TP2Price
	case OutcomeTP1Only:
		return sig.TP1Price
	case OutcomeSL1Hit:
		return sig.SL1Price
	case OutcomeSL15Hit:
		return sig.SL15Price
	case OutcomeSL2Hit:
		return sig.SL2Price
	}
	return sig.FinalPrice
}

// holdTimeHours is the time from creation to the hit timestamp matching
// the outcome. TP2 and TP3 share the TP2 timestamp preferentially since
// the tracker records TP2 first on the way to TP3.
func holdTimeHours(sig *models.RawSignal, outcome Outcome) *float64 {
	var exitAt *int64
	switch outcome {
	case OutcomeTP3Reached, OutcomeTP2Reached:
		exitAt = sig.TP2HitAt
		if exitAt == nil {
			exitAt = sig.TP3HitAt
		}
	case OutcomeTP1Only:
		exitAt = sig.TP1HitAt
	case OutcomeSL2Hit:
		exitAt = sig.SL2HitAt
	case OutcomeSL15Hit:
		exitAt = sig.SL15HitAt
	case OutcomeSL1Hit:
		exitAt = sig.SL1HitAt
	}
	if exitAt == nil {
		return nil
	}

	hold := round2(float64(*exitAt-sig.CreatedAt) / 3600.0)
	return &hold
}

// excursionPercent converts an excursion extreme into a direction-adjusted
// signed percentage of entry. A recorded price of exactly zero is a value,
// not absence; only a missing price yields nil.
func excursionPercent(sig *models.RawSignal, price *float64) *float64 {
	entry := sig.SignalPrice
	if entry <= 0 || price == nil {
		return nil
	}

	var pct float64
	if sig.Direction == models.DirectionLong {
		pct = (*price - entry) / entry * 100.0
	} else {
		pct = (entry - *price) / entry * 100.0
	}

	pct = round2(pct)
	return &pct
}
