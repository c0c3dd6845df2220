package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/seenimoa/newsheat/internal/agent/prompts"
	"github.com/seenimoa/newsheat/internal/llm"
	"github.com/seenimoa/newsheat/pkg/models"
)

// ErrNoScore is returned when the model reply carries no SCORE line.
var ErrNoScore = errors.New("model reply has no score")

var (
	scoreRe   = regexp.MustCompile(`SCORE\s*[:：]\s*(\d{1,3})`)
	signalsRe = regexp.MustCompile(`SIGNALS\s*[:：]\s*(.+)`)
)

// ModelScorer asks a generative model for an overall score. The model is
// chosen once from what the credential can see and then reused.
type ModelScorer struct {
	provider  llm.LLMProvider
	preferred []string
	opts      llm.ChatOptions
	timeout   time.Duration
	logger    *slog.Logger

	mu    sync.Mutex
	model string
}

// ModelScorerConfig configures a ModelScorer.
type ModelScorerConfig struct {
	Provider        llm.LLMProvider
	PreferredModels []string
	Temperature     float64
	MaxTokens       int
	Timeout         time.Duration
	Logger          *slog.Logger
}

// NewModelScorer creates a scorer backed by cfg.Provider.
func NewModelScorer(cfg ModelScorerConfig) *ModelScorer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &ModelScorer{
		provider:  cfg.Provider,
		preferred: cfg.PreferredModels,
		opts:      llm.ChatOptions{Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens},
		timeout:   cfg.Timeout,
		logger:    cfg.Logger,
	}
}

// Score sends every record to the model and parses its verdict.
func (s *ModelScorer) Score(ctx context.Context, id models.TickerIdentity, records []models.NewsRecord) (*models.ScoreReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	model, err := s.pickModel(ctx)
	if err != nil {
		return nil, err
	}

	opts := s.opts
	opts.Model = model
	messages := []llm.Message{
		llm.SystemMessage(prompts.SentimentSystemPrompt),
		llm.UserMessage(prompts.ScanPrompt(id, records)),
	}

	resp, err := s.provider.Chat(ctx, messages, &opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", prompts.AgentSentiment, err)
	}

	score, ok := ParseScore(resp.Content)
	if !ok {
		return nil, ErrNoScore
	}
	s.logger.Debug("model scored scan", "code", id.Code, "model", model, "score", score, "tokens", resp.Usage.TotalTokens)

	return &models.ScoreReport{
		Score:     score,
		Signals:   ParseSignals(resp.Content),
		Narrative: narrative(resp.Content),
		ModelUsed: model,
	}, nil
}

// Model returns the chosen model, or "" before the first successful pick.
func (s *ModelScorer) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *ModelScorer) pickModel(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model != "" {
		return s.model, nil
	}
	available, err := s.provider.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("list models: %w", err)
	}
	model, err := llm.PickModel(available, s.preferred)
	if err != nil {
		return "", err
	}
	s.model = model
	s.logger.Info("model selected", "model", model)
	return model, nil
}

// ParseScore finds "SCORE: n" (half- or full-width colon) and clamps n to
// 0–100. The last occurrence wins.
func ParseScore(text string) (int, bool) {
	all := scoreRe.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(all[len(all)-1][1])
	if err != nil {
		return 0, false
	}
	return min(max(n, 0), 100), true
}

// ParseSignals reads the "SIGNALS:" line, split on common list separators.
func ParseSignals(text string) []string {
	m := signalsRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	fields := strings.FieldsFunc(m[1], func(r rune) bool {
		return r == '、' || r == ',' || r == '，' || r == ';' || r == '；'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// narrative drops the machine-read trailer lines from the report.
func narrative(text string) string {
	var keep []string
	for _, line := range strings.Split(text, "\n") {
		t := strings.TrimSpace(line)
		if scoreRe.MatchString(t) && strings.HasPrefix(t, "SCORE") {
			continue
		}
		if strings.HasPrefix(t, "SIGNALS") && signalsRe.MatchString(t) {
			continue
		}
		keep = append(keep, line)
	}
	return strings.TrimSpace(strings.Join(keep, "\n"))
}
