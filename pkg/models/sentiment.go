package models

import "time"

// Strategy names the scorer that produced an overall score.
type Strategy string

const (
	StrategyKeyword Strategy = "keyword"
	StrategyModel   Strategy = "model"
)

// ScoreReport is a scorer's verdict for one set of news records.
type ScoreReport struct {
	Score     int      `json:"score"` // 0–100
	Signals   []string `json:"signals"`
	Narrative string   `json:"narrative,omitempty"`
	ModelUsed string   `json:"model_used,omitempty"`
}

// AggregateResult combines every source's score into one heat metric.
type AggregateResult struct {
	OverallScore    float64        `json:"overall_score"`
	PerSourceScores map[string]int `json:"per_source_scores"`
	ValidSources    int            `json:"valid_sources"`
	MergedNews      []NewsRecord   `json:"merged_news"`
	TotalNews       int            `json:"total_news"`
	Signals         []string       `json:"signals"`
	Strategy        Strategy       `json:"strategy"`
}

// HeatLevel is the display tier derived from an overall score.
type HeatLevel struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// HeatReport is everything the presentation layer needs for one scan.
type HeatReport struct {
	Identity    TickerIdentity  `json:"identity"`
	Scan        ScanResult      `json:"scan"`
	Aggregate   AggregateResult `json:"aggregate"`
	Model       *ScoreReport    `json:"model,omitempty"`
	Level       HeatLevel       `json:"level"`
	Warnings    []string        `json:"warnings,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}
