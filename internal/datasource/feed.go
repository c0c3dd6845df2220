package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/newsheat/internal/browser"
	"github.com/seenimoa/newsheat/internal/infra"
	"github.com/seenimoa/newsheat/pkg/models"
)

// FeedSite is one outlet reached through the news search feed, restricted
// to the outlet's domain.
type FeedSite struct {
	Name   string
	Domain string
}

// DefaultFeedSites lists the syndicated outlets in registration order.
var DefaultFeedSites = []FeedSite{
	{Name: "經濟日報", Domain: "money.udn.com"},
	{Name: "自由財經", Domain: "ec.ltn.com.tw"},
	{Name: "工商時報", Domain: "ctee.com.tw"},
	{Name: "中時新聞", Domain: "chinatimes.com"},
	{Name: "ETtoday", Domain: "ettoday.net"},
	{Name: "TVBS新聞", Domain: "news.tvbs.com.tw"},
	{Name: "今周刊", Domain: "businesstoday.com.tw"},
	{Name: "財訊", Domain: "wealth.com.tw"},
	{Name: "風傳媒", Domain: "storm.mg"},
}

// feedMinTitle is the rune length a feed title must exceed to be kept.
const feedMinTitle = 6

// FeedAdapter reads a site-restricted news search feed.
type FeedAdapter struct {
	site       FeedSite
	browser    browser.Browser
	agents     []string
	limiter    *infra.RateLimiter
	baseURL    string
	params     string
	timeout    time.Duration
	maxRecords int
}

// NewFeedAdapter creates an adapter for one outlet. The limiter may be nil.
func NewFeedAdapter(site FeedSite, opts Options, limiter *infra.RateLimiter) *FeedAdapter {
	opts = opts.withDefaults()
	return &FeedAdapter{
		site:       site,
		browser:    opts.Browser,
		agents:     opts.UserAgents,
		limiter:    limiter,
		baseURL:    opts.FeedURL,
		params:     opts.FeedParams,
		timeout:    opts.FeedTimeout,
		maxRecords: opts.MaxRecords,
	}
}

// Name returns the outlet's display name.
func (f *FeedAdapter) Name() string { return f.site.Name }

// Domain returns the domain the feed search is restricted to.
func (f *FeedAdapter) Domain() string { return f.site.Domain }

// FeedURL builds the search feed URL for a code.
func (f *FeedAdapter) FeedURL(code string) string {
	q := url.QueryEscape(code + " site:" + f.site.Domain)
	u := f.baseURL + "?q=" + q
	if f.params != "" {
		u += "&" + f.params
	}
	return u
}

// Fetch loads the feed and converts its items to records.
func (f *FeedAdapter) Fetch(ctx context.Context, code string) ([]models.NewsRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limit wait: %w", f.site.Name, err)
		}
	}

	var body string
	err := withSession(f.browser, f.agents, func(s browser.Session) error {
		resp, err := s.Navigate(ctx, f.FeedURL(code), browser.NavigateOptions{
			Timeout:   f.timeout,
			WaitUntil: browser.WaitCommit,
		})
		if err != nil {
			return err
		}
		if !resp.OK() {
			return httpErrorFrom(resp)
		}
		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.site.Name, err)
	}

	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("%s: parse feed: %w", f.site.Name, err)
	}
	return f.records(feed.Items), nil
}

// records applies the title rules to feed items in feed order.
func (f *FeedAdapter) records(items []*gofeed.Item) []models.NewsRecord {
	var out []models.NewsRecord
	for _, item := range items {
		if item == nil {
			continue
		}
		title := strings.TrimSpace(headline(item.Title))
		if len([]rune(title)) <= feedMinTitle {
			continue
		}

		snippet := cleanHTML(item.Description)
		if snippet == "" || strings.HasPrefix(snippet, title) {
			snippet = title
		}
		rec := models.NewNewsRecord(title, snippet, f.site.Name)
		rec.URL = item.Link
		out = append(out, rec)

		if len(out) == f.maxRecords {
			break
		}
	}
	return out
}

// headline drops the " - Publisher" suffix the feed appends to titles.
func headline(title string) string {
	if i := strings.Index(title, " - "); i >= 0 {
		return title[:i]
	}
	return title
}
