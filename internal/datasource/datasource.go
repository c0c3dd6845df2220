// Package datasource gathers news mentions of a listed equity from a fixed
// set of public sources. Each source is an Adapter; the Scanner fans out
// over all of them and collects one SourceResult per adapter.
package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/newsheat/internal/browser"
	"github.com/seenimoa/newsheat/pkg/models"
)

// Adapter fetches recent records for one news source.
type Adapter interface {
	// Name returns the display name of the source, e.g. "鉅亨網".
	Name() string

	// Fetch returns at most a handful of records mentioning code, in the
	// order the source presented them. Any failure is reported as an error;
	// the Scanner turns it into an empty result.
	Fetch(ctx context.Context, code string) ([]models.NewsRecord, error)
}

// --- Errors ---

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// httpErrorFrom turns a non-2xx browser response into an *ErrHTTP.
func httpErrorFrom(resp *browser.Response) error {
	body := resp.Body
	if len(body) > 256 {
		body = body[:256]
	}
	return &ErrHTTP{
		StatusCode: resp.Status,
		Status:     http.StatusText(resp.Status),
		Body:       body,
	}
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for plain API requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// HTTPClient is a pre-configured HTTP client with reasonable timeouts.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// doGet performs a GET request with the given URL and headers, returning the response body.
// The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, text/html, */*")
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, resp.StatusCode, nil
}

// withSession launches an isolated session, runs fn and always closes it.
func withSession(b browser.Browser, agents []string, fn func(browser.Session) error) error {
	s, err := b.Launch(browser.RandomUserAgent(agents))
	if err != nil {
		return fmt.Errorf("launch session: %w", err)
	}
	defer s.Close()
	return fn(s)
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// filterTitles keeps texts longer than minLen runes that contain none of the
// excluded words, up to limit entries, preserving order.
func filterTitles(texts []string, minLen int, exclude []string, limit int) []string {
	var out []string
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if len([]rune(t)) <= minLen || containsAny(t, exclude) {
			continue
		}
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
