// Package resolver turns free-form user input into a listed code and
// display name, using an in-memory directory first and a couple of web
// lookups as fallback.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/newsheat/internal/browser"
	"github.com/seenimoa/newsheat/internal/config"
	"github.com/seenimoa/newsheat/pkg/models"
	"github.com/seenimoa/newsheat/pkg/utils"
)

// ErrTickerNotFound is returned when no step could resolve the input.
var ErrTickerNotFound = errors.New("target not found")

// Resolver resolves user input against a Directory with network fallback.
// It is safe for concurrent use.
type Resolver struct {
	dir            *Directory
	browser        browser.Browser
	agents         []string
	titleURLs      []string
	searchURL      string
	searchSelector string
	timeout        time.Duration
	logger         *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBrowser sets the engine used by the network fallbacks.
func WithBrowser(b browser.Browser) Option {
	return func(r *Resolver) { r.browser = b }
}

// WithUserAgents sets the identity pool for fallback sessions.
func WithUserAgents(agents []string) Option {
	return func(r *Resolver) { r.agents = agents }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New creates a resolver over dir configured from cfg.
func New(dir *Directory, cfg config.ResolverConfig, opts ...Option) *Resolver {
	if dir == nil {
		dir = DefaultDirectory()
	}
	r := &Resolver{
		dir:            dir,
		titleURLs:      cfg.TitleURLs,
		searchURL:      cfg.SearchURL,
		searchSelector: cfg.SearchSelector,
		timeout:        cfg.Timeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.browser == nil {
		r.browser = browser.NewHTTPBrowser()
	}
	if len(r.agents) == 0 {
		r.agents = config.DefaultUserAgents
	}
	if r.timeout <= 0 {
		r.timeout = 10 * time.Second
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Directory returns the directory the resolver reads.
func (r *Resolver) Directory() *Directory { return r.dir }

// Resolve maps raw input to an identity. Steps run in order and the first
// hit wins: exact name or code, substring of a name, page-title lookup for
// numeric input, then site search.
func (r *Resolver) Resolve(ctx context.Context, raw string) (models.TickerIdentity, error) {
	norm := utils.NormalizeInput(raw)
	if norm == "" {
		return models.TickerIdentity{}, fmt.Errorf("empty input: %w", ErrTickerNotFound)
	}

	if id, ok := r.dir.Exact(norm); ok {
		return id, nil
	}
	if id, ok := r.dir.Substring(norm); ok {
		return id, nil
	}

	if utils.IsStockCode(norm) {
		id, err := r.titleLookup(ctx, norm)
		if err == nil {
			return id, nil
		}
		r.logger.Debug("title lookup failed", "code", norm, "error", err)
	}

	id, err := r.search(ctx, strings.TrimSpace(raw))
	if err != nil {
		r.logger.Debug("search fallback failed", "input", raw, "error", err)
		return models.TickerIdentity{}, fmt.Errorf("resolve %q: %w", raw, ErrTickerNotFound)
	}
	return id, nil
}

// titleLookup loads each quote page in turn and takes the name from the page
// title, which reads like "台積電(2330) ...".
func (r *Resolver) titleLookup(ctx context.Context, code string) (models.TickerIdentity, error) {
	var lastErr error = ErrTickerNotFound
	for _, tmpl := range r.titleURLs {
		var title string
		err := r.withSession(func(s browser.Session) error {
			resp, err := s.Navigate(ctx, fmt.Sprintf(tmpl, code), browser.NavigateOptions{
				Timeout:   r.timeout,
				WaitUntil: browser.WaitDOMContentLoaded,
			})
			if err != nil {
				return err
			}
			if !resp.OK() {
				return fmt.Errorf("HTTP %d", resp.Status)
			}
			title = s.Title()
			return nil
		})
		if err != nil {
			lastErr = err
			continue
		}
		if name := nameFromTitle(title, code); name != "" {
			return models.TickerIdentity{Code: code, DisplayName: name, Via: models.ResolveTitle}, nil
		}
	}
	return models.TickerIdentity{}, lastErr
}

// nameFromTitle returns the text before the first "(" when the title
// mentions code, or "".
func nameFromTitle(title, code string) string {
	title = strings.TrimSpace(title)
	if title == "" || !strings.Contains(title, code) {
		return ""
	}
	name, _, _ := strings.Cut(title, "(")
	return strings.TrimSpace(name)
}

// search performs one site search and reads the first result link.
func (r *Resolver) search(ctx context.Context, raw string) (models.TickerIdentity, error) {
	if r.searchURL == "" || r.searchSelector == "" {
		return models.TickerIdentity{}, ErrTickerNotFound
	}

	var href, text string
	err := r.withSession(func(s browser.Session) error {
		resp, err := s.Navigate(ctx, fmt.Sprintf(r.searchURL, url.QueryEscape(raw)), browser.NavigateOptions{
			Timeout:   r.timeout,
			WaitUntil: browser.WaitDOMContentLoaded,
		})
		if err != nil {
			return err
		}
		if !resp.OK() {
			return fmt.Errorf("HTTP %d", resp.Status)
		}
		hrefs := s.QueryAttrs(r.searchSelector, "href")
		texts := s.QueryTexts(r.searchSelector)
		if len(hrefs) == 0 {
			return ErrTickerNotFound
		}
		href = hrefs[0]
		if len(texts) > 0 {
			text = texts[0]
		}
		return nil
	})
	if err != nil {
		return models.TickerIdentity{}, err
	}

	code := utils.ExtractCode(href)
	if code == "" {
		code = utils.ExtractCode(text)
	}
	if code == "" {
		return models.TickerIdentity{}, ErrTickerNotFound
	}

	name := searchResultName(text, code)
	if name == "" {
		name = raw
	}
	return models.TickerIdentity{Code: code, DisplayName: name, Via: models.ResolveSearch}, nil
}

// searchResultName strips the code and exchange suffix from a result label
// such as "台積電 2330.TW".
func searchResultName(text, code string) string {
	s := strings.ReplaceAll(text, code+".TWO", "")
	s = strings.ReplaceAll(s, code+".TW", "")
	s = strings.ReplaceAll(s, code, "")
	s = strings.Trim(s, " ()（）\t\n")
	return strings.Join(strings.Fields(s), " ")
}

func (r *Resolver) withSession(fn func(browser.Session) error) error {
	s, err := r.browser.Launch(browser.RandomUserAgent(r.agents))
	if err != nil {
		return fmt.Errorf("launch session: %w", err)
	}
	defer s.Close()
	return fn(s)
}
