package prompts

import (
	"strings"
	"testing"

	"github.com/seenimoa/newsheat/pkg/models"
)

func TestScanPrompt(t *testing.T) {
	id := models.TickerIdentity{Code: "2330", DisplayName: "台積電"}
	records := []models.NewsRecord{
		models.NewNewsRecord("台積電法說會優於預期", "", "鉅亨網"),
		models.NewNewsRecord("外資連三買", "外資連續三日買超台積電", "經濟日報"),
	}
	p := ScanPrompt(id, records)

	for _, want := range []string{
		"台積電（2330）",
		"2 則最新新聞",
		"1. [鉅亨網] 台積電法說會優於預期",
		"2. [經濟日報] 外資連三買",
		"摘要：外資連續三日買超台積電",
		"SCORE:",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Count(p, "摘要：") != 1 {
		t.Error("snippet equal to title should not be repeated")
	}
}

func TestTemplateEndsWithScore(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(ReportTemplate), "\n")
	if !strings.HasPrefix(lines[len(lines)-1], "SCORE:") {
		t.Errorf("template must end with the SCORE line, got %q", lines[len(lines)-1])
	}
	if AgentSentiment == "" || strings.Contains(AgentSentiment, " ") {
		t.Errorf("bad agent name %q", AgentSentiment)
	}
}
