// Package browser is the narrow page-automation capability the source
// adapters and the ticker resolver depend on. A Browser launches isolated
// sessions; each session owns its cookie jar and client identity and must
// be closed by the caller.
package browser

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// WaitUntil selects the page lifecycle point at which Navigate returns.
type WaitUntil string

const (
	// WaitCommit returns as soon as the response has been received.
	WaitCommit WaitUntil = "commit"
	// WaitDOMContentLoaded returns once the document has been parsed.
	WaitDOMContentLoaded WaitUntil = "domcontentloaded"
)

// NavigateOptions controls a single page load.
type NavigateOptions struct {
	Timeout   time.Duration
	WaitUntil WaitUntil
}

// Response is the outcome of a page load.
type Response struct {
	URL    string
	Status int
	Body   string
}

// OK reports whether the page loaded with a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Browser launches isolated sessions.
type Browser interface {
	Launch(userAgent string) (Session, error)
}

// Session is one isolated browsing context. Queries run against the page
// most recently loaded by Navigate; before any load they return nothing.
type Session interface {
	Navigate(ctx context.Context, url string, opts NavigateOptions) (*Response, error)
	Title() string
	QueryTexts(selector string) []string
	QueryAttrs(selector, attr string) []string
	Wait(ctx context.Context, d time.Duration) error
	Close() error
}

var (
	// ErrSessionClosed is returned when a closed session is used.
	ErrSessionClosed = errors.New("browser session closed")
)

// RandomUserAgent picks one identity from the pool. An empty pool yields "".
func RandomUserAgent(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[rand.IntN(len(pool))]
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
