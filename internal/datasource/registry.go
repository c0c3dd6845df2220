package datasource

import (
	"time"

	"github.com/seenimoa/newsheat/internal/browser"
	"github.com/seenimoa/newsheat/internal/config"
	"github.com/seenimoa/newsheat/internal/infra"
)

// Options carries what every adapter needs. Zero fields take the defaults
// from config.Default().
type Options struct {
	Browser    browser.Browser
	UserAgents []string

	FeedURL          string
	FeedParams       string
	FeedTimeout      time.Duration
	FeedRateBurst    int
	FeedRateInterval time.Duration

	CnyesURL     string
	CnyesTimeout time.Duration
	YahooURL     string
	YahooTimeout time.Duration

	SettleDelay time.Duration
	MaxRecords  int
}

// OptionsFromConfig maps the sources config section onto adapter options.
func OptionsFromConfig(cfg config.SourcesConfig, b browser.Browser) Options {
	return Options{
		Browser:          b,
		UserAgents:       cfg.UserAgents,
		FeedURL:          cfg.FeedURL,
		FeedParams:       cfg.FeedParams,
		FeedTimeout:      cfg.FeedTimeout,
		FeedRateBurst:    cfg.FeedRateBurst,
		FeedRateInterval: cfg.FeedRateInterval,
		CnyesURL:         cfg.CnyesURL,
		CnyesTimeout:     cfg.CnyesTimeout,
		YahooURL:         cfg.YahooURL,
		YahooTimeout:     cfg.YahooTimeout,
		SettleDelay:      cfg.SettleDelay,
		MaxRecords:       cfg.MaxRecords,
	}
}

func (o Options) withDefaults() Options {
	d := config.Default().Sources
	if o.Browser == nil {
		o.Browser = browser.NewHTTPBrowser()
	}
	if len(o.UserAgents) == 0 {
		o.UserAgents = d.UserAgents
	}
	if o.FeedURL == "" {
		o.FeedURL = d.FeedURL
		if o.FeedParams == "" {
			o.FeedParams = d.FeedParams
		}
	}
	if o.FeedTimeout <= 0 {
		o.FeedTimeout = d.FeedTimeout
	}
	if o.FeedRateBurst <= 0 {
		o.FeedRateBurst = d.FeedRateBurst
	}
	if o.FeedRateInterval <= 0 {
		o.FeedRateInterval = d.FeedRateInterval
	}
	if o.CnyesURL == "" {
		o.CnyesURL = d.CnyesURL
	}
	if o.CnyesTimeout <= 0 {
		o.CnyesTimeout = d.CnyesTimeout
	}
	if o.YahooURL == "" {
		o.YahooURL = d.YahooURL
	}
	if o.YahooTimeout <= 0 {
		o.YahooTimeout = d.YahooTimeout
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	if o.MaxRecords <= 0 {
		o.MaxRecords = d.MaxRecords
	}
	return o
}

// DefaultAdapters builds all eleven sources in registration order: the two
// direct scrapes followed by the syndicated outlets. The feed adapters
// share one limiter towards the feed host.
func DefaultAdapters(opts Options) []Adapter {
	opts = opts.withDefaults()
	limiter := infra.NewRateLimiter(opts.FeedRateBurst, opts.FeedRateInterval)

	adapters := []Adapter{
		NewScrapeAdapter(CnyesTarget(opts), opts),
		NewScrapeAdapter(YahooTarget(opts), opts),
	}
	for _, site := range DefaultFeedSites {
		adapters = append(adapters, NewFeedAdapter(site, opts, limiter))
	}
	return adapters
}

// SourceNames returns the display names of adapters in order.
func SourceNames(adapters []Adapter) []string {
	names := make([]string, len(adapters))
	for i, a := range adapters {
		names[i] = a.Name()
	}
	return names
}

// DefaultSourceColor is used for sources without an assigned colour.
const DefaultSourceColor = "#999"

var sourceColors = map[string]string{
	"鉅亨網":    "#0984e3",
	"Yahoo":  "#6c5ce7",
	"經濟日報":   "#e17055",
	"自由財經":   "#d63031",
	"工商時報":   "#00b894",
	"中時新聞":   "#e84393",
	"ETtoday": "#fdcb6e",
	"TVBS新聞": "#2d3436",
	"今周刊":    "#00cec9",
	"財訊":     "#fab1a0",
	"風傳媒":    "#636e72",
}

// SourceColor returns the display colour for a source name.
func SourceColor(name string) string {
	if c, ok := sourceColors[name]; ok {
		return c
	}
	return DefaultSourceColor
}

// SourceInfo describes one registered source for listings.
type SourceInfo struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Domain string `json:"domain,omitempty"`
	Color  string `json:"color"`
}

// Describe lists adapters in registration order.
func Describe(adapters []Adapter) []SourceInfo {
	out := make([]SourceInfo, len(adapters))
	for i, a := range adapters {
		info := SourceInfo{Name: a.Name(), Kind: "scrape", Color: SourceColor(a.Name())}
		if f, ok := a.(*FeedAdapter); ok {
			info.Kind = "feed"
			info.Domain = f.Domain()
		}
		out[i] = info
	}
	return out
}
