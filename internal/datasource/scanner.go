package datasource

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newsheat/pkg/models"
)

// Scanner runs every adapter concurrently for one code and joins the results.
type Scanner struct {
	adapters []Adapter
	logger   *slog.Logger

	// OnSourceDone, if set, is called as each adapter finishes. Calls may
	// arrive concurrently and in any order.
	OnSourceDone func(models.SourceResult)
}

// NewScanner creates a scanner over adapters in registration order.
func NewScanner(adapters []Adapter, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{adapters: adapters, logger: logger}
}

// Adapters returns the registered adapters.
func (s *Scanner) Adapters() []Adapter { return s.adapters }

// WithObserver returns a copy of s that reports each finished source to fn.
// The receiver is left untouched so concurrent scans can observe separately.
func (s *Scanner) WithObserver(fn func(models.SourceResult)) *Scanner {
	c := *s
	c.OnSourceDone = fn
	return &c
}

// Scan fetches code from every source and returns once all have finished.
// A failing adapter yields an empty result; it never affects the others.
// Cancelling ctx does not stop a scan in flight: each adapter is bounded
// only by its own timeout.
func (s *Scanner) Scan(ctx context.Context, code string) *models.ScanResult {
	ctx = context.WithoutCancel(ctx)
	started := time.Now()

	results := make([]models.SourceResult, len(s.adapters))
	var notify sync.Mutex

	var g errgroup.Group
	for i, a := range s.adapters {
		g.Go(func() error {
			res := s.run(ctx, a, code)
			results[i] = res
			if s.OnSourceDone != nil {
				notify.Lock()
				s.OnSourceDone(res)
				notify.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() // adapters never return errors to the group

	return &models.ScanResult{
		Code:      code,
		Sources:   results,
		StartedAt: started,
		Elapsed:   time.Since(started),
	}
}

// run invokes one adapter and collapses any failure to an empty result.
func (s *Scanner) run(ctx context.Context, a Adapter, code string) (res models.SourceResult) {
	start := time.Now()
	res.Source = a.Name()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("source adapter panicked", "source", a.Name(), "code", code, "panic", r)
			res.Records = nil
			res.Failed = true
		}
		res.Elapsed = time.Since(start)
	}()

	records, err := a.Fetch(ctx, code)
	if err != nil {
		s.logger.Warn("source fetch failed", "source", a.Name(), "code", code, "error", err)
		res.Failed = true
		return res
	}
	res.Records = records
	s.logger.Debug("source fetched", "source", a.Name(), "code", code, "records", len(records))
	return res
}
