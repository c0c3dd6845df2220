// Package sentiment scores news records with a fixed finance vocabulary,
// combines per-source scores into one heat metric and maps that metric to
// a display tier. Everything here is pure and deterministic.
package sentiment

import (
	"strings"
	"unicode/utf8"

	"github.com/seenimoa/newsheat/pkg/models"
)

// ------------------------------------------------------------------
// Keyword scorer (offline, no model needed).
// When a model backend is configured the agent layer prefers it and
// falls back to this scorer on any failure.
// ------------------------------------------------------------------

const (
	// Baseline is the score of a source before any record is read.
	Baseline = 50
	// KeywordWeight is added or subtracted per keyword present.
	KeywordWeight = 12
	// NeutralBonus is added for a record that mentions no keyword.
	NeutralBonus = 2
	// neutralMinLen is the rune length a keyword-free text must exceed
	// to earn NeutralBonus.
	neutralMinLen = 5
)

// PositiveKeywords raise the score. Order decides signal order.
var PositiveKeywords = []string{
	"上漲", "飆", "創高", "買超", "強勢", "超預期", "取得", "超越", "利多", "成長",
	"收益", "噴", "漲停", "旺", "攻頂", "受惠", "看好", "翻紅", "驚艷", "AI",
	"擴產", "先進", "動能", "發威", "領先", "搶單", "季增", "年增", "樂觀", "回溫",
	"布局", "利潤", "大漲",
}

// NegativeKeywords lower the score.
// 重挫 appears twice and so weighs double.
var NegativeKeywords = []string{
	"下跌", "賣", "砍", "觀望", "保守", "不如", "重挫", "外資賣", "縮減", "崩",
	"跌停", "疲軟", "利空", "修正", "調節", "延後", "衰退", "翻黑", "示警", "重殺",
	"不如預期", "裁員", "虧損", "大跌", "重挫",
}

// ScoreRecords scores one source's records. Each keyword counts once per
// record no matter how often it appears; overlapping keywords ("不如" and
// "不如預期") each count. The result is clamped to [0,100] after all
// records are read. No records scores 0.
func ScoreRecords(records []models.NewsRecord) models.ScoreReport {
	if len(records) == 0 {
		return models.ScoreReport{Score: 0}
	}

	score := Baseline
	var signals []string
	for _, r := range records {
		text := r.Text()
		hit := false
		for _, w := range PositiveKeywords {
			if strings.Contains(text, w) {
				score += KeywordWeight
				signals = append(signals, w)
				hit = true
			}
		}
		for _, w := range NegativeKeywords {
			if strings.Contains(text, w) {
				score -= KeywordWeight
				signals = append(signals, w)
				hit = true
			}
		}
		if !hit && utf8.RuneCountInString(text) > neutralMinLen {
			score += NeutralBonus
		}
	}

	return models.ScoreReport{
		Score:   clamp(score, 0, 100),
		Signals: Dedup(signals),
	}
}

// Dedup returns the unique entries of items in first-seen order.
func Dedup(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
