// Package prompts holds the system prompt and report template used when a
// generative model scores a scan.
package prompts

import (
	"fmt"
	"strings"

	"github.com/seenimoa/newsheat/pkg/models"
)

// AgentSentiment is the canonical name of the model scorer.
const AgentSentiment = "sentiment_analyst"

// SentimentSystemPrompt frames the model as a Taiwan equity news analyst.
const SentimentSystemPrompt = `你是一位專精台灣股市的新聞情緒分析師。
你只根據使用者提供的新聞標題與摘要判斷市場對個股的情緒熱度，不可引用未提供的資料，也不可捏造數字。
分數定義：0 為極度悲觀，50 為中立，100 為極度樂觀。`

// ReportTemplate is the structure the model must follow. The last two
// lines are parsed by the scorer.
const ReportTemplate = `請以繁體中文依下列格式撰寫報告：

## 市場情緒總結
（兩到三句話總結整體氣氛）

## 利多因素
- （逐點列出）

## 利空因素
- （逐點列出）

## 短線觀察
（一段話）

報告最後必須另起兩行，格式完全如下：
SIGNALS: 關鍵字1、關鍵字2、關鍵字3
SCORE: <0 到 100 的整數>`

// ScanPrompt embeds every record of a scan, grouped by nothing but
// numbered in source order, followed by the report template.
func ScanPrompt(id models.TickerIdentity, records []models.NewsRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "標的：%s（%s）\n", id.DisplayName, id.Code)
	fmt.Fprintf(&b, "以下是 %d 則最新新聞：\n\n", len(records))
	for i, r := range records {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, r.Source, r.Title)
		if r.Snippet != "" && r.Snippet != r.Title {
			fmt.Fprintf(&b, "   摘要：%s\n", r.Snippet)
		}
	}
	b.WriteString("\n")
	b.WriteString(ReportTemplate)
	return b.String()
}
