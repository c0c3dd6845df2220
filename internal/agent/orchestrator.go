package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/seenimoa/newsheat/internal/analysis/sentiment"
	"github.com/seenimoa/newsheat/internal/datasource"
	"github.com/seenimoa/newsheat/pkg/models"
)

// Warnings attached to a report.
const (
	WarnNoNews       = "no news available"
	WarnModelFailure = "model scoring failed, using keyword average"
)

// Orchestrator wires the scanner, the keyword aggregate and the optional
// model scorer into one report.
type Orchestrator struct {
	scanner     *datasource.Scanner
	scorer      Scorer
	mergedLimit int
	logger      *slog.Logger
}

// OrchestratorConfig holds configuration for creating an Orchestrator.
type OrchestratorConfig struct {
	Scanner *datasource.Scanner
	// Scorer is optional; nil keeps the keyword strategy.
	Scorer      Scorer
	MergedLimit int
	Logger      *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Orchestrator{
		scanner:     cfg.Scanner,
		scorer:      cfg.Scorer,
		mergedLimit: cfg.MergedLimit,
		logger:      cfg.Logger,
	}
}

// Scanner returns the underlying scanner.
func (o *Orchestrator) Scanner() *datasource.Scanner { return o.scanner }

// WithObserver returns a copy of o whose scans report each finished
// source to fn.
func (o *Orchestrator) WithObserver(fn func(models.SourceResult)) *Orchestrator {
	c := *o
	c.scanner = o.scanner.WithObserver(fn)
	return &c
}

// ModelEnabled reports whether a model scorer is configured.
func (o *Orchestrator) ModelEnabled() bool { return o.scorer != nil }

// ModelName returns the model the scorer settled on. It is empty for
// keyword-only runs and before the first model scan.
func (o *Orchestrator) ModelName() string {
	if m, ok := o.scorer.(interface{ Model() string }); ok {
		return m.Model()
	}
	return ""
}

// Analyze resolves raw and runs the pipeline. Resolution failure stops
// here and no scan is started.
func (o *Orchestrator) Analyze(ctx context.Context, r IdentityResolver, raw string) (*models.HeatReport, error) {
	id, err := r.Resolve(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	return o.Run(ctx, id), nil
}

// Run scans id, aggregates and scores. It never fails: source errors
// degrade to empty results and model errors fall back to the keyword
// average with a warning.
func (o *Orchestrator) Run(ctx context.Context, id models.TickerIdentity) *models.HeatReport {
	scan := o.scanner.Scan(ctx, id.Code)
	agg := sentiment.Aggregate(scan, o.mergedLimit)

	report := &models.HeatReport{
		Identity: id,
		Scan:     *scan,
	}

	switch {
	case scan.RecordCount() == 0:
		report.Warnings = append(report.Warnings, WarnNoNews)
		o.logger.Warn("scan found no news", "code", id.Code, "sources", len(scan.Sources))
	case o.scorer != nil:
		verdict, err := o.scorer.Score(ctx, id, scan.AllRecords())
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", WarnModelFailure, err))
			o.logger.Warn("model scoring failed", "code", id.Code, "error", err)
			break
		}
		agg = sentiment.ApplyModel(agg, *verdict)
		report.Model = verdict
	}

	report.Aggregate = agg
	report.Level = sentiment.LevelFor(agg.Strategy, agg.OverallScore)
	report.GeneratedAt = time.Now()

	o.logger.Info("scan complete",
		"code", id.Code,
		"score", agg.OverallScore,
		"strategy", agg.Strategy,
		"valid_sources", agg.ValidSources,
		"news", agg.TotalNews,
		"elapsed", scan.Elapsed.Round(time.Millisecond),
	)
	return report
}
