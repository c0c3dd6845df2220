package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/newsheat/internal/analysis/sentiment"
	"github.com/seenimoa/newsheat/internal/config"
	"github.com/seenimoa/newsheat/internal/datasource"
	"github.com/seenimoa/newsheat/pkg/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewScorer(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		want    bool
		wantErr bool
	}{
		{"no key", config.LLMConfig{Primary: "gemini"}, false, false},
		{"disabled", config.LLMConfig{Primary: "none", GeminiKey: "k"}, false, false},
		{"gemini", config.LLMConfig{Primary: "gemini", GeminiKey: "k"}, true, false},
		{"unknown provider", config.LLMConfig{Primary: "other", GeminiKey: "k"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := newScorer(tt.cfg, quietLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if (s != nil) != tt.want {
				t.Errorf("scorer: got %v, want present=%v", s, tt.want)
			}
		})
	}
}

func TestWriteReport(t *testing.T) {
	report := &models.HeatReport{
		Identity: models.TickerIdentity{Code: "2330", DisplayName: "台積電"},
		Scan: models.ScanResult{Sources: []models.SourceResult{
			{Source: "鉅亨網", Records: []models.NewsRecord{models.NewNewsRecord("台積電營收成長", "", "鉅亨網")}},
			{Source: "Yahoo", Failed: true},
		}},
		Aggregate: models.AggregateResult{
			OverallScore:    62,
			PerSourceScores: map[string]int{"鉅亨網": 62, "Yahoo": 0},
			ValidSources:    1,
			TotalNews:       1,
			MergedNews:      []models.NewsRecord{models.NewNewsRecord("台積電營收成長", "", "鉅亨網")},
			Signals:         []string{"成長"},
			Strategy:        models.StrategyKeyword,
		},
		Level:    sentiment.HeatWarming,
		Warnings: []string{"test warning"},
	}

	var buf bytes.Buffer
	if err := writeReport(&buf, report, 15); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"台積電 (2330)  heat 62.0  加溫",
		"sources: 1/2",
		"failed",
		"signals: 成長",
		"[鉅亨網] 台積電營收成長",
		"test warning",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReport_SignalLimit(t *testing.T) {
	signals := make([]string, 20)
	for i := range signals {
		signals[i] = fmt.Sprintf("sig%02d", i)
	}
	report := &models.HeatReport{
		Identity:  models.TickerIdentity{Code: "2330", DisplayName: "台積電"},
		Aggregate: models.AggregateResult{Signals: signals, Strategy: models.StrategyKeyword},
		Level:     sentiment.HeatMild,
	}

	var buf bytes.Buffer
	if err := writeReport(&buf, report, 15); err != nil {
		t.Fatal(err)
	}
	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(l, "signals: ") {
			line = strings.TrimPrefix(l, "signals: ")
		}
	}
	if got := len(strings.Split(line, ", ")); got != 15 {
		t.Errorf("signals shown: got %d, want 15 (%q)", got, line)
	}
	if strings.Contains(line, "sig15") {
		t.Errorf("signal beyond the limit rendered: %q", line)
	}
}

func TestWriteSources(t *testing.T) {
	var buf bytes.Buffer
	infos := datasource.Describe(datasource.DefaultAdapters(datasource.Options{}))
	if err := writeSources(&buf, infos); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 12 {
		t.Fatalf("lines: got %d, want header + 11", len(lines))
	}
	if !strings.Contains(lines[3], "money.udn.com") {
		t.Errorf("udn row: got %q", lines[3])
	}
}

func TestProgressLine(t *testing.T) {
	tests := []struct {
		res  models.SourceResult
		want string
	}{
		{models.SourceResult{Source: "A", Failed: true, Elapsed: time.Second}, "✗ A  failed (1s)"},
		{models.SourceResult{Source: "B"}, "· B  no news"},
		{models.SourceResult{Source: "C", Records: make([]models.NewsRecord, 3)}, "✓ C  3"},
	}
	for _, tt := range tests {
		if got := progressLine(tt.res); !strings.Contains(got, tt.want) {
			t.Errorf("progressLine(%s): got %q, want contains %q", tt.res.Source, got, tt.want)
		}
	}
}
