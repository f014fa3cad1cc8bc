package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantaudit/sigscope/internal/models"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int64) *int64     { return &v }

func baseSignal() *models.RawSignal {
	return &models.RawSignal{
		SignalID:    "sig-1",
		Symbol:      "BTCUSDT",
		Direction:   models.DirectionLong,
		Confidence:  0.85,
		SignalPrice: 100.0,
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Unix(),
		SL2Price:    fptr(90.0),
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	c := NewClassifier()

	tests := []struct {
		name    string
		mutate  func(*models.RawSignal)
		outcome Outcome
	}{
		{"sl2 beats everything", func(s *models.RawSignal) {
			s.SL2Hit, s.SL15Hit, s.SL1Hit = true, true, true
			s.TP3Hit, s.TP2Hit, s.TP1Hit = true, true, true
		}, OutcomeSL2Hit},
		{"sl1_5 beats sl1 and all TPs", func(s *models.RawSignal) {
			s.SL15Hit, s.SL1Hit = true, true
			s.TP3Hit = true
		}, OutcomeSL15Hit},
		{"sl1 beats TPs", func(s *models.RawSignal) {
			s.SL1Hit, s.TP1Hit = true, true
		}, OutcomeSL1Hit},
		{"tp3 beats tp2 and tp1", func(s *models.RawSignal) {
			s.TP3Hit, s.TP2Hit, s.TP1Hit = true, true, true
		}, OutcomeTP3Reached},
		{"tp2 beats tp1", func(s *models.RawSignal) {
			s.TP2Hit, s.TP1Hit = true, true
		}, OutcomeTP2Reached},
		{"tp1 only", func(s *models.RawSignal) {
			s.TP1Hit = true
		}, OutcomeTP1Only},
		{"no hits within window is open", func(s *models.RawSignal) {}, OutcomeOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := baseSignal()
			tt.mutate(sig)
			got := c.Classify(sig, now)
			assert.Equal(t, tt.outcome, got.Outcome)
		})
	}
}

func TestClassify_SLPrecedenceOverTP(t *testing.T) {
	// Upstream data races can set both flags; a stopped-out position
	// cannot also be a win.
	sig := baseSignal()
	sig.SL2Hit = true
	sig.TP3Hit = true

	got := NewClassifier().Classify(sig, time.Now())
	assert.Equal(t, OutcomeSL2Hit, got.Outcome)
}

func TestClassify_ExpiryWindow(t *testing.T) {
	c := NewClassifier()
	sig := baseSignal()
	created := time.Unix(sig.CreatedAt, 0)

	within := c.Classify(sig, created.Add(71*time.Hour))
	assert.Equal(t, OutcomeOpen, within.Outcome)

	after := c.Classify(sig, created.Add(73*time.Hour))
	assert.Equal(t, OutcomeExpiredNoHit, after.Outcome)
}

func TestClassify_RMultipleLongWin(t *testing.T) {
	sig := baseSignal() // entry 100, sl2 90 -> risk 10
	sig.TP1Hit = true
	sig.TP1Price = fptr(110.0)

	got := NewClassifier().Classify(sig, time.Now())
	require.NotNil(t, got.RMultiple)
	assert.Equal(t, 1.00, *got.RMultiple)
}

func TestClassify_RMultipleShortLoss(t *testing.T) {
	sig := baseSignal()
	sig.Direction = models.DirectionShort
	sig.SL2Price = fptr(110.0) // risk 10
	sig.SL1Hit = true
	sig.SL1Price = fptr(105.0) // pnl 100-105 = -5

	got := NewClassifier().Classify(sig, time.Now())
	require.NotNil(t, got.RMultiple)
	assert.Equal(t, -0.50, *got.RMultiple)
}

func TestClassify_RMultipleNilOnMissingInputs(t *testing.T) {
	c := NewClassifier()

	noSL2 := baseSignal()
	noSL2.SL2Price = nil
	noSL2.TP1Hit = true
	noSL2.TP1Price = fptr(110.0)
	assert.Nil(t, c.Classify(noSL2, time.Now()).RMultiple)

	// SL2 on the wrong side of entry means non-positive risk.
	badRisk := baseSignal()
	badRisk.SL2Price = fptr(120.0)
	badRisk.TP1Hit = true
	badRisk.TP1Price = fptr(110.0)
	assert.Nil(t, c.Classify(badRisk, time.Now()).RMultiple)

	// No exit price for the winning outcome.
	noExit := baseSignal()
	noExit.TP1Hit = true
	assert.Nil(t, c.Classify(noExit, time.Now()).RMultiple)
}

func TestClassify_OpenUsesFinalPriceWhenPresent(t *testing.T) {
	sig := baseSignal()
	sig.FinalPrice = fptr(95.0) // -0.5R on risk 10

	got := NewClassifier().Classify(sig, time.Now())
	require.NotNil(t, got.RMultiple)
	assert.Equal(t, -0.50, *got.RMultiple)
}

func TestClassify_HoldTime(t *testing.T) {
	c := NewClassifier()

	// TP3 prefers the TP2 timestamp, falling back to TP3's.
	sig := baseSignal()
	sig.TP3Hit = true
	sig.TP3Price = fptr(130.0)
	sig.TP2HitAt = iptr(sig.CreatedAt + 7200)
	sig.TP3HitAt = iptr(sig.CreatedAt + 14400)
	got := c.Classify(sig, time.Now())
	require.NotNil(t, got.HoldTimeHours)
	assert.Equal(t, 2.0, *got.HoldTimeHours)

	sig.TP2HitAt = nil
	got = c.Classify(sig, time.Now())
	require.NotNil(t, got.HoldTimeHours)
	assert.Equal(t, 4.0, *got.HoldTimeHours)

	sig.TP3HitAt = nil
	got = c.Classify(sig, time.Now())
	assert.Nil(t, got.HoldTimeHours)
}

func TestClassify_ExcursionPercent(t *testing.T) {
	c := NewClassifier()

	long := baseSignal()
	long.MFEPrice = fptr(105.0)
	long.MAEPrice = fptr(97.0)
	got := c.Classify(long, time.Now())
	require.NotNil(t, got.MFEPercent)
	require.NotNil(t, got.MAEPercent)
	assert.Equal(t, 5.0, *got.MFEPercent)
	assert.Equal(t, -3.0, *got.MAEPercent)

	short := baseSignal()
	short.Direction = models.DirectionShort
	short.SL2Price = fptr(110.0)
	short.MFEPrice = fptr(95.0)
	got = c.Classify(short, time.Now())
	require.NotNil(t, got.MFEPercent)
	assert.Equal(t, 5.0, *got.MFEPercent)

	missing := baseSignal()
	got = c.Classify(missing, time.Now())
	assert.Nil(t, got.MFEPercent)
	assert.Nil(t, got.MAEPercent)
}

func TestClassify_ZeroExcursionIsAValue(t *testing.T) {
	// A recorded extreme equal to entry is 0.0%, not absent.
	sig := baseSignal()
	sig.MFEPrice = fptr(100.0)

	got := NewClassifier().Classify(sig, time.Now())
	require.NotNil(t, got.MFEPercent)
	assert.Equal(t, 0.0, *got.MFEPercent)
}

func TestClassifyAll_SharedReferenceTime(t *testing.T) {
	c := NewClassifier()
	old := baseSignal()
	old.SignalID = "old"
	old.CreatedAt = time.Now().Add(-100 * time.Hour).Unix()
	fresh := baseSignal()
	fresh.SignalID = "fresh"
	fresh.CreatedAt = time.Now().Add(-1 * time.Hour).Unix()

	got := c.ClassifyAll([]models.RawSignal{*old, *fresh}, time.Now())
	require.Len(t, got, 2)
	assert.Equal(t, OutcomeExpiredNoHit, got[0].Outcome)
	assert.Equal(t, OutcomeOpen, got[1].Outcome)
}
