package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxBodyBytes caps how much of a page is read into memory.
const maxBodyBytes = 4 << 20

// HTTPBrowser is the default engine: a plain HTTP client per session with
// its own cookie jar, and goquery for DOM queries. It does not execute
// scripts, so sources that render client-side yield fewer nodes.
type HTTPBrowser struct {
	// Transport is shared across sessions; nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// NewHTTPBrowser creates the default engine.
func NewHTTPBrowser() *HTTPBrowser {
	return &HTTPBrowser{}
}

// Launch opens a new isolated session with the given identity.
func (b *HTTPBrowser) Launch(userAgent string) (Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &httpSession{
		client:    &http.Client{Jar: jar, Transport: b.Transport},
		userAgent: userAgent,
	}, nil
}

type httpSession struct {
	client    *http.Client
	userAgent string

	mu     sync.Mutex
	closed bool
	body   string
	doc    *goquery.Document
}

func (s *httpSession) Navigate(ctx context.Context, url string, opts NavigateOptions) (*Response, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrSessionClosed
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	page := &Response{URL: resp.Request.URL.String(), Status: resp.StatusCode, Body: string(raw)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = page.Body
	s.doc = nil
	if opts.WaitUntil == WaitDOMContentLoaded {
		s.parseLocked()
	}
	return page, nil
}

// parseLocked builds the DOM for the current body on first use.
func (s *httpSession) parseLocked() *goquery.Document {
	if s.doc == nil && s.body != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.body))
		if err != nil {
			return nil
		}
		s.doc = doc
	}
	return s.doc
}

func (s *httpSession) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.parseLocked()
	if doc == nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func (s *httpSession) QueryTexts(selector string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.parseLocked()
	if doc == nil {
		return nil
	}
	var out []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, strings.TrimSpace(sel.Text()))
	})
	return out
}

func (s *httpSession) QueryAttrs(selector, attr string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.parseLocked()
	if doc == nil {
		return nil
	}
	var out []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		v, _ := sel.Attr(attr)
		out = append(out, v)
	})
	return out
}

// Wait lets the page settle. The HTTP engine has nothing to settle, but the
// delay is honoured so request pacing matches a real browser.
func (s *httpSession) Wait(ctx context.Context, d time.Duration) error {
	return Sleep(ctx, d)
}

func (s *httpSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.body = ""
	s.doc = nil
	s.client.CloseIdleConnections()
	return nil
}
