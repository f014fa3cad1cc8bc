// Package storage reads the signal bot's SQLite snapshot: the emitted
// signals with their TP/SL tracking state, and the rejected-signal log.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/quantaudit/sigscope/internal/models"
)

// DefaultQueryTimeout bounds every snapshot query.
const DefaultQueryTimeout = 30 * time.Second

// Store wraps the snapshot database. It satisfies analysis.SignalSource.
type Store struct {
	db      *sqlx.DB
	timeout time.Duration
}

// Open connects to the SQLite snapshot at path. The path may be
// ":memory:" for tests. The connection is verified immediately so a
// missing or unreadable snapshot fails the run up front.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: empty database path")
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	// Single connection: the run is a single sequential pass, and the
	// in-memory test database lives per-connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping snapshot %s: %w", path, err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	return &Store{db: db, timeout: DefaultQueryTimeout}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Signals loads every emitted-signal row, oldest first.
func (s *Store) Signals(ctx context.Context) ([]models.RawSignal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var signals []models.RawSignal
	err := s.db.SelectContext(ctx, &signals, `
		SELECT signal_id, symbol, direction, confidence, signal_price, atr,
		       COALESCE(timeframe, '') AS timeframe, created_at,
		       tp1_price, tp2_price, tp3_price,
		       COALESCE(tp1_hit, 0) AS tp1_hit,
		       COALESCE(tp2_hit, 0) AS tp2_hit,
		       COALESCE(tp3_hit, 0) AS tp3_hit,
		       tp1_hit_at, tp2_hit_at, tp3_hit_at,
		       sl1_price, sl1_5_price, sl2_price,
		       COALESCE(sl1_hit, 0) AS sl1_hit,
		       COALESCE(sl1_5_hit, 0) AS sl1_5_hit,
		       COALESCE(sl2_hit, 0) AS sl2_hit,
		       sl1_hit_at, sl1_5_hit_at, sl2_hit_at,
		       mfe_price, mfe_at, mae_price, mae_at, final_price,
		       market_context, signal_log, signal_score_breakdown
		FROM signals
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("select signals: %w", err)
	}
	return signals, nil
}

// Rejected loads every rejected-signal row, newest first.
func (s *Store) Rejected(ctx context.Context) ([]models.RejectedSignal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rejected []models.RejectedSignal
	err := s.db.SelectContext(ctx, &rejected, `
		SELECT id, signal_id, symbol, direction, confidence, signal_price,
		       created_at,
		       COALESCE(rejection_reason, '') AS rejection_reason,
		       score_breakdown, market_context
		FROM rejected_signals
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select rejected signals: %w", err)
	}
	return rejected, nil
}

// TableCounts returns the row count per snapshot table, for the dump
// command.
func (s *Store) TableCounts(ctx context.Context) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	counts := make(map[string]int)
	for _, table := range []string{"signals", "rejected_signals"} {
		var n int
		if err := s.db.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// EnsureSchema creates the snapshot tables when absent. The analyzer only
// reads production snapshots; this exists for fixtures and local tooling.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			signal_id              TEXT PRIMARY KEY,
			symbol                 TEXT NOT NULL,
			direction              TEXT NOT NULL,
			confidence             REAL NOT NULL,
			signal_price           REAL NOT NULL,
			atr                    REAL,
			timeframe              TEXT,
			created_at             INTEGER NOT NULL,
			tp1_price              REAL,
			tp2_price              REAL,
			tp3_price              REAL,
			tp1_hit                INTEGER DEFAULT 0,
			tp2_hit                INTEGER DEFAULT 0,
			tp3_hit                INTEGER DEFAULT 0,
			tp1_hit_at             INTEGER,
			tp2_hit_at             INTEGER,
			tp3_hit_at             INTEGER,
			sl1_price              REAL,
			sl1_5_price            REAL,
			sl2_price              REAL,
			sl1_hit                INTEGER DEFAULT 0,
			sl1_5_hit              INTEGER DEFAULT 0,
			sl2_hit                INTEGER DEFAULT 0,
			sl1_hit_at             INTEGER,
			sl1_5_hit_at           INTEGER,
			sl2_hit_at             INTEGER,
			mfe_price              REAL,
			mfe_at                 INTEGER,
			mae_price              REAL,
			mae_at                 INTEGER,
			final_price            REAL,
			market_context         TEXT,
			signal_log             TEXT,
			signal_score_breakdown TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS rejected_signals (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			signal_id        TEXT,
			symbol           TEXT NOT NULL,
			direction        TEXT NOT NULL,
			confidence       REAL NOT NULL,
			signal_price     REAL NOT NULL,
			created_at       INTEGER NOT NULL,
			rejection_reason TEXT NOT NULL,
			score_breakdown  TEXT,
			market_context   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_created_at ON signals(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_rejected_symbol ON rejected_signals(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_rejected_created_at ON rejected_signals(created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// InsertSignal writes one signal row. Fixture/tooling helper.
func (s *Store) InsertSignal(ctx context.Context, sig *models.RawSignal) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO signals (
			signal_id, symbol, direction, confidence, signal_price, atr,
			timeframe, created_at,
			tp1_price, tp2_price, tp3_price, tp1_hit, tp2_hit, tp3_hit,
			tp1_hit_at, tp2_hit_at, tp3_hit_at,
			sl1_price, sl1_5_price, sl2_price, sl1_hit, sl1_5_hit, sl2_hit,
			sl1_hit_at, sl1_5_hit_at, sl2_hit_at,
			mfe_price, mfe_at, mae_price, mae_at, final_price,
			market_context, signal_log, signal_score_breakdown
		) VALUES (
			:signal_id, :symbol, :direction, :confidence, :signal_price, :atr,
			:timeframe, :created_at,
			:tp1_price, :tp2_price, :tp3_price, :tp1_hit, :tp2_hit, :tp3_hit,
			:tp1_hit_at, :tp2_hit_at, :tp3_hit_at,
			:sl1_price, :sl1_5_price, :sl2_price, :sl1_hit, :sl1_5_hit, :sl2_hit,
			:sl1_hit_at, :sl1_5_hit_at, :sl2_hit_at,
			:mfe_price, :mfe_at, :mae_price, :mae_at, :final_price,
			:market_context, :signal_log, :signal_score_breakdown
		)`, sig)
	if err != nil {
		return fmt.Errorf("insert signal %s: %w", sig.SignalID, err)
	}
	return nil
}

// InsertRejected writes one rejected-signal row. Fixture/tooling helper.
func (s *Store) InsertRejected(ctx context.Context, rej *models.RejectedSignal) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO rejected_signals (
			signal_id, symbol, direction, confidence, signal_price,
			created_at, rejection_reason, score_breakdown, market_context
		) VALUES (
			:signal_id, :symbol, :direction, :confidence, :signal_price,
			:created_at, :rejection_reason, :score_breakdown, :market_context
		)`, rej)
	if err != nil {
		return fmt.Errorf("insert rejected signal: %w", err)
	}
	return nil
}
