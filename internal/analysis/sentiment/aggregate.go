package sentiment

import (
	"math"

	"github.com/seenimoa/newsheat/pkg/models"
)

// DefaultMergedLimit caps the merged feed when no limit is given.
const DefaultMergedLimit = 30

// Aggregate scores every source independently and averages the scores of
// sources that returned at least one record. Sources with no records are
// reported with score 0 but never dilute the average. The overall score is
// rounded to one decimal; with no contributing source it is 0.
func Aggregate(scan *models.ScanResult, mergedLimit int) models.AggregateResult {
	if mergedLimit <= 0 {
		mergedLimit = DefaultMergedLimit
	}

	res := models.AggregateResult{
		PerSourceScores: make(map[string]int, len(scan.Sources)),
		Strategy:        models.StrategyKeyword,
	}

	var total int
	var signals []string
	for _, src := range scan.Sources {
		report := ScoreRecords(src.Records)
		res.PerSourceScores[src.Source] = report.Score
		signals = append(signals, report.Signals...)
		res.TotalNews += len(src.Records)
		if len(src.Records) > 0 {
			total += report.Score
			res.ValidSources++
		}
	}

	if res.ValidSources > 0 {
		res.OverallScore = Round1(float64(total) / float64(res.ValidSources))
	}
	res.Signals = Dedup(signals)
	res.MergedNews = MergeNews(scan, mergedLimit)
	return res
}

// ApplyModel replaces the overall score with a model verdict. Per-source
// scores and the merged feed stay as the keyword pass left them; model
// signals are appended after keyword signals.
func ApplyModel(agg models.AggregateResult, report models.ScoreReport) models.AggregateResult {
	agg.OverallScore = float64(clamp(report.Score, 0, 100))
	agg.Strategy = models.StrategyModel
	agg.Signals = Dedup(append(append([]string(nil), agg.Signals...), report.Signals...))
	return agg
}

// MergeNews concatenates records in source order, truncated to limit.
func MergeNews(scan *models.ScanResult, limit int) []models.NewsRecord {
	all := scan.AllRecords()
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// LimitSignals returns the first n signals; n <= 0 keeps them all.
func LimitSignals(signals []string, n int) []string {
	if n <= 0 || len(signals) <= n {
		return signals
	}
	return signals[:n]
}

// Round1 rounds to one decimal place; exact ties go to the even digit.
func Round1(x float64) float64 {
	return math.RoundToEven(x*10) / 10
}
