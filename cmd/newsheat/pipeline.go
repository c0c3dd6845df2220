package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/seenimoa/newsheat/internal/agent"
	"github.com/seenimoa/newsheat/internal/analysis/sentiment"
	"github.com/seenimoa/newsheat/internal/browser"
	"github.com/seenimoa/newsheat/internal/config"
	"github.com/seenimoa/newsheat/internal/datasource"
	"github.com/seenimoa/newsheat/internal/llm"
	"github.com/seenimoa/newsheat/internal/resolver"
	"github.com/seenimoa/newsheat/pkg/models"
)

// pipeline is everything a scan needs, built once per process.
type pipeline struct {
	adapters     []datasource.Adapter
	orchestrator *agent.Orchestrator
	resolver     *resolver.Resolver
}

func buildPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline, error) {
	b := browser.NewHTTPBrowser()
	adapters := datasource.DefaultAdapters(datasource.OptionsFromConfig(cfg.Sources, b))

	scorer, err := newScorer(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	orchCfg := agent.OrchestratorConfig{
		Scanner:     datasource.NewScanner(adapters, logger),
		MergedLimit: cfg.Scan.MergedNewsLimit,
		Logger:      logger,
	}
	if scorer != nil {
		orchCfg.Scorer = scorer
	}

	return &pipeline{
		adapters:     adapters,
		orchestrator: agent.NewOrchestrator(orchCfg),
		resolver:     buildResolver(ctx, cfg, b, logger),
	}, nil
}

// newScorer returns nil when no model backend is configured.
func newScorer(cfg config.LLMConfig, logger *slog.Logger) (*agent.ModelScorer, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if cfg.Primary != "" && cfg.Primary != llm.ProviderGemini {
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Primary)
	}
	provider, err := llm.NewGeminiProvider(cfg.GeminiKey,
		llm.WithGeminiBaseURL(cfg.GeminiURL),
		llm.WithGeminiTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini setup failed: %w", err)
	}
	return agent.NewModelScorer(agent.ModelScorerConfig{
		Provider:        provider,
		PreferredModels: cfg.PreferredModels,
		Temperature:     cfg.Temperature,
		MaxTokens:       cfg.MaxTokens,
		Timeout:         cfg.Timeout,
		Logger:          logger,
	}), nil
}

// buildResolver bootstraps the directory from market data when enabled.
// A nil browser gets a fresh HTTP engine.
func buildResolver(ctx context.Context, cfg *config.Config, b browser.Browser, logger *slog.Logger) *resolver.Resolver {
	if b == nil {
		b = browser.NewHTTPBrowser()
	}
	dir := resolver.BuildDirectory(ctx, cfg.Resolver, logger)
	return resolver.New(dir, cfg.Resolver,
		resolver.WithBrowser(b),
		resolver.WithUserAgents(cfg.Sources.UserAgents),
		resolver.WithLogger(logger),
	)
}

// writeReport renders a heat report as plain text, showing at most
// signalLimit signals.
func writeReport(w io.Writer, r *models.HeatReport, signalLimit int) error {
	agg := r.Aggregate
	fmt.Fprintf(w, "%s (%s)  heat %.1f  %s\n", r.Identity.DisplayName, r.Identity.Code, agg.OverallScore, r.Level.Label)
	fmt.Fprintf(w, "strategy: %s  sources: %d/%d  news: %d  elapsed: %s\n",
		agg.Strategy, agg.ValidSources, len(r.Scan.Sources), agg.TotalNews, r.Scan.Elapsed.Round(100*time.Millisecond))
	if r.Model != nil && r.Model.ModelUsed != "" {
		fmt.Fprintf(w, "model: %s\n", r.Model.ModelUsed)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, src := range r.Scan.Sources {
		score := "-"
		if s, ok := agg.PerSourceScores[src.Source]; ok && !src.Empty() {
			score = fmt.Sprintf("%d", s)
		}
		note := fmt.Sprintf("%d news", len(src.Records))
		if src.Failed {
			note = "failed"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", src.Source, score, note)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if signals := sentiment.LimitSignals(agg.Signals, signalLimit); len(signals) > 0 {
		fmt.Fprintf(w, "\nsignals: %s\n", strings.Join(signals, ", "))
	}
	if r.Model != nil && r.Model.Narrative != "" {
		fmt.Fprintf(w, "\n%s\n", r.Model.Narrative)
	}
	if len(agg.MergedNews) > 0 {
		fmt.Fprintln(w, "\nnews:")
		for _, n := range agg.MergedNews {
			fmt.Fprintf(w, "  [%s] %s\n", n.Source, n.Title)
		}
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "\n⚠️  %s\n", warn)
	}
	return nil
}

// writeSources renders the source registry as a table.
func writeSources(w io.Writer, infos []datasource.SourceInfo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tDOMAIN\tCOLOR")
	for _, s := range infos {
		domain := s.Domain
		if domain == "" {
			domain = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name, s.Kind, domain, s.Color)
	}
	return tw.Flush()
}
