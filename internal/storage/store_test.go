package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantaudit/sigscope/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "signals.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

func fptr(v float64) *float64 { return &v }
func iptr(v int64) *int64     { return &v }

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestSignals_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	newer := models.RawSignal{
		SignalID: "s2", Symbol: "ETHUSDT", Direction: models.DirectionShort,
		Confidence: 0.72, SignalPrice: 2500.0, CreatedAt: 2000,
		SL1Hit: true, SL1Price: fptr(2550.0), SL1HitAt: iptr(2600),
	}
	older := models.RawSignal{
		SignalID: "s1", Symbol: "BTCUSDT", Direction: models.DirectionLong,
		Confidence: 0.85, SignalPrice: 50000.0, ATR: fptr(800.0),
		Timeframe: "4h", CreatedAt: 1000,
		TP1Hit: true, TP1Price: fptr(51000.0), TP1HitAt: iptr(1500),
		SL2Price:   fptr(48000.0),
		MFEPrice:   fptr(51500.0),
		MAEPrice:   fptr(49700.0),
		FinalPrice: fptr(51000.0),
		SignalLog:  models.JSONText(`[{"event":"retrigger"}]`),
	}
	require.NoError(t, store.InsertSignal(ctx, &newer))
	require.NoError(t, store.InsertSignal(ctx, &older))

	signals, err := store.Signals(ctx)
	require.NoError(t, err)
	require.Len(t, signals, 2)

	// Oldest first regardless of insertion order.
	assert.Equal(t, "s1", signals[0].SignalID)
	assert.Equal(t, "s2", signals[1].SignalID)

	got := signals[0]
	assert.Equal(t, "BTCUSDT", got.Symbol)
	assert.True(t, got.TP1Hit.Bool())
	assert.False(t, got.SL1Hit.Bool())
	require.NotNil(t, got.ATR)
	assert.Equal(t, 800.0, *got.ATR)
	require.NotNil(t, got.TP1HitAt)
	assert.Equal(t, int64(1500), *got.TP1HitAt)
	assert.Nil(t, got.TP2Price)
	assert.Equal(t, 1, got.RetriggerCount())
}

func TestSignals_NormalizesStringBooleans(t *testing.T) {
	// Legacy snapshots store hit flags as text. Insert through raw SQL so
	// the text reaches the scanner untouched.
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx, `
		INSERT INTO signals (signal_id, symbol, direction, confidence,
		                     signal_price, created_at, tp1_hit, sl1_hit, sl2_hit)
		VALUES ('legacy', 'BTCUSDT', 'LONG', 0.8, 100.0, 1000, 'true', '1', '0')`)
	require.NoError(t, err)

	signals, err := store.Signals(ctx)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.True(t, signals[0].TP1Hit.Bool())
	assert.True(t, signals[0].SL1Hit.Bool())
	assert.False(t, signals[0].SL2Hit.Bool())
}

func TestSignals_NullHitFlagsReadAsFalse(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx, `
		INSERT INTO signals (signal_id, symbol, direction, confidence,
		                     signal_price, created_at, tp1_hit, timeframe)
		VALUES ('bare', 'BTCUSDT', 'LONG', 0.8, 100.0, 1000, NULL, NULL)`)
	require.NoError(t, err)

	signals, err := store.Signals(ctx)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.False(t, signals[0].TP1Hit.Bool())
	assert.Equal(t, "", signals[0].Timeframe)
}

func TestRejected_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	older := models.RejectedSignal{
		Symbol: "BTCUSDT", Direction: models.DirectionLong,
		Confidence: 0.60, SignalPrice: 50000.0, CreatedAt: 1000,
		RejectionReason: "low_volume",
	}
	newer := models.RejectedSignal{
		Symbol: "ETHUSDT", Direction: models.DirectionShort,
		Confidence: 0.82, SignalPrice: 2500.0, CreatedAt: 2000,
		RejectionReason: "spread_too_wide",
	}
	require.NoError(t, store.InsertRejected(ctx, &older))
	require.NoError(t, store.InsertRejected(ctx, &newer))

	rejected, err := store.Rejected(ctx)
	require.NoError(t, err)
	require.Len(t, rejected, 2)

	// Newest first.
	assert.Equal(t, "ETHUSDT", rejected[0].Symbol)
	assert.Equal(t, "spread_too_wide", rejected[0].RejectionReason)
	assert.Equal(t, "low_volume", rejected[1].RejectionReason)
}

func TestTableCounts(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sig := models.RawSignal{
		SignalID: "s1", Symbol: "BTCUSDT", Direction: models.DirectionLong,
		Confidence: 0.8, SignalPrice: 100.0, CreatedAt: 1000,
	}
	require.NoError(t, store.InsertSignal(ctx, &sig))

	counts, err := store.TableCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["signals"])
	assert.Equal(t, 0, counts["rejected_signals"])
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.EnsureSchema(context.Background()))
}
