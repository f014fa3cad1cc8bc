package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quantaudit/sigscope/internal/models"
)

// SignalSource supplies the bounded snapshot a run analyzes. A failure
// here is fatal for the run; everything downstream is pure computation.
type SignalSource interface {
	Signals(ctx context.Context) ([]models.RawSignal, error)
	Rejected(ctx context.Context) ([]models.RejectedSignal, error)
}

// Report is the complete result of one analysis run: plain data for the
// report renderer, no formatting or I/O.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	Metrics    PerformanceMetrics  `json:"metrics"`
	Symbols    []SymbolPerformance `json:"symbols"`
	Direction  DirectionReport     `json:"direction"`
	Time       TimeReport          `json:"time"`
	Confidence ConfidenceReport    `json:"confidence"`
	Entry      EntryReport         `json:"entry"`
	Rejected   RejectedReport      `json:"rejected"`

	Classified []ClassifiedSignal `json:"classified"`
}

// Runner loads a snapshot and runs the full analysis fan-out over it.
type Runner struct {
	source     SignalSource
	classifier *Classifier
}

// NewRunner creates a runner over the given source with the default
// classifier.
func NewRunner(source SignalSource) *Runner {
	return &Runner{source: source, classifier: NewClassifier()}
}

// NewRunnerWithClassifier creates a runner with a custom classifier.
func NewRunnerWithClassifier(source SignalSource, classifier *Classifier) *Runner {
	return &Runner{source: source, classifier: classifier}
}

// Run loads, classifies, and aggregates one snapshot. The classified
// collection is read-only after classification; every analyzer is a pure
// fold over it.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	now := time.Now()

	signals, err := r.source.Signals(ctx)
	if err != nil {
		return nil, fmt.Errorf("load signals: %w", err)
	}
	rejected, err := r.source.Rejected(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rejected signals: %w", err)
	}

	log.Info().
		Int("signals", len(signals)).
		Int("rejected", len(rejected)).
		Msg("Snapshot loaded")

	classified := r.classifier.ClassifyAll(signals, now)

	report := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: now.UTC(),
		Metrics:     Aggregate(classified),
		Symbols:     AnalyzeSymbols(classified),
		Direction:   AnalyzeDirections(classified),
		Time:        AnalyzeTime(classified),
		Confidence:  AnalyzeConfidence(classified),
		Entry:       AnalyzeEntry(classified, signals),
		Rejected:    AnalyzeRejected(rejected),
		Classified:  classified,
	}

	log.Info().
		Str("run_id", report.RunID).
		Float64("win_rate", report.Metrics.WinRate).
		Float64("expectancy", report.Metrics.Expectancy).
		Int("patterns", len(report.Entry.RiskPatterns)).
		Int("recommendations", len(report.Entry.Recommendations)).
		Msg("Analysis run complete")

	return report, nil
}
