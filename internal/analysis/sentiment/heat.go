package sentiment

import "github.com/seenimoa/newsheat/pkg/models"

// Keyword heat tiers.
var (
	HeatBoiling = models.HeatLevel{Name: "boiling", Label: "沸騰", Color: "#ff4757"}
	HeatWarming = models.HeatLevel{Name: "warming", Label: "加溫", Color: "#ffa502"}
	HeatFrozen  = models.HeatLevel{Name: "frozen", Label: "冰凍", Color: "#5352ed"}
	HeatMild    = models.HeatLevel{Name: "mild", Label: "溫和", Color: "#747d8c"}
)

// Model outlook tiers.
var (
	OutlookEuphoric = models.HeatLevel{Name: "euphoric", Label: "極度樂觀", Color: "#ff4757"}
	OutlookBullish  = models.HeatLevel{Name: "bullish", Label: "偏多", Color: "#ffa502"}
	OutlookBearish  = models.HeatLevel{Name: "bearish", Label: "偏空", Color: "#5352ed"}
	OutlookNeutral  = models.HeatLevel{Name: "neutral", Label: "中立", Color: "#747d8c"}
)

// KeywordHeat maps a keyword aggregate to its tier.
func KeywordHeat(score float64) models.HeatLevel {
	switch {
	case score >= 75:
		return HeatBoiling
	case score >= 60:
		return HeatWarming
	case score <= 35:
		return HeatFrozen
	default:
		return HeatMild
	}
}

// ModelHeat maps a model score to its tier.
func ModelHeat(score float64) models.HeatLevel {
	switch {
	case score >= 75:
		return OutlookEuphoric
	case score >= 60:
		return OutlookBullish
	case score <= 40:
		return OutlookBearish
	default:
		return OutlookNeutral
	}
}

// LevelFor picks the tier table matching the strategy that produced score.
func LevelFor(strategy models.Strategy, score float64) models.HeatLevel {
	if strategy == models.StrategyModel {
		return ModelHeat(score)
	}
	return KeywordHeat(score)
}
