package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/newsheat/internal/browser"
	"github.com/seenimoa/newsheat/pkg/models"
)

// ScrapeTarget describes a source read directly from its own pages.
type ScrapeTarget struct {
	Name      string
	URL       string // fmt template taking the code
	Timeout   time.Duration
	WaitUntil browser.WaitUntil
	// Selectors are tried in order; the first that yields any text wins.
	Selectors []string
	MinLen    int
	Exclude   []string
}

// ScrapeAdapter loads a source page and reads headline texts off the DOM.
type ScrapeAdapter struct {
	target     ScrapeTarget
	browser    browser.Browser
	agents     []string
	settle     time.Duration
	maxRecords int
}

// NewScrapeAdapter creates a direct-scrape adapter.
func NewScrapeAdapter(target ScrapeTarget, opts Options) *ScrapeAdapter {
	opts = opts.withDefaults()
	return &ScrapeAdapter{
		target:     target,
		browser:    opts.Browser,
		agents:     opts.UserAgents,
		settle:     opts.SettleDelay,
		maxRecords: opts.MaxRecords,
	}
}

// CnyesTarget is the 鉅亨網 news search page.
func CnyesTarget(opts Options) ScrapeTarget {
	opts = opts.withDefaults()
	return ScrapeTarget{
		Name:      "鉅亨網",
		URL:       opts.CnyesURL,
		Timeout:   opts.CnyesTimeout,
		WaitUntil: browser.WaitCommit,
		Selectors: []string{"h3, h2"},
		MinLen:    6,
		Exclude:   []string{"股價"},
	}
}

// YahooTarget is the Yahoo股市 per-symbol news stream.
func YahooTarget(opts Options) ScrapeTarget {
	opts = opts.withDefaults()
	return ScrapeTarget{
		Name:      "Yahoo",
		URL:       opts.YahooURL,
		Timeout:   opts.YahooTimeout,
		WaitUntil: browser.WaitDOMContentLoaded,
		Selectors: []string{"#YDC-Stream li h3", "#YDC-Stream li a"},
		MinLen:    5,
		Exclude:   []string{"廣告"},
	}
}

// Name returns the source display name.
func (a *ScrapeAdapter) Name() string { return a.target.Name }

// Fetch loads the page, waits for it to settle and collects headlines.
func (a *ScrapeAdapter) Fetch(ctx context.Context, code string) ([]models.NewsRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, a.target.Timeout)
	defer cancel()

	var titles []string
	err := withSession(a.browser, a.agents, func(s browser.Session) error {
		resp, err := s.Navigate(ctx, fmt.Sprintf(a.target.URL, code), browser.NavigateOptions{
			Timeout:   a.target.Timeout,
			WaitUntil: a.target.WaitUntil,
		})
		if err != nil {
			return err
		}
		if !resp.OK() {
			return httpErrorFrom(resp)
		}
		if err := s.Wait(ctx, a.settle); err != nil {
			return err
		}
		for _, sel := range a.target.Selectors {
			if texts := nonEmpty(s.QueryTexts(sel)); len(texts) > 0 {
				titles = texts
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.target.Name, err)
	}

	kept := filterTitles(titles, a.target.MinLen, a.target.Exclude, a.maxRecords)
	out := make([]models.NewsRecord, 0, len(kept))
	for _, t := range kept {
		out = append(out, models.NewNewsRecord(t, "", a.target.Name))
	}
	return out, nil
}

func nonEmpty(texts []string) []string {
	var out []string
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			out = append(out, t)
		}
	}
	return out
}
