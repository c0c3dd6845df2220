package datasource

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/seenimoa/newsheat/pkg/models"
)

type fakeAdapter struct {
	name    string
	records []models.NewsRecord
	err     error
	delay   time.Duration
	timeout time.Duration
	panics  bool
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(ctx context.Context, code string) ([]models.NewsRecord, error) {
	if f.panics {
		panic("boom")
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return f.records, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rec(title, source string) models.NewsRecord {
	return models.NewNewsRecord(title, "", source)
}

func TestScanner_ResultsInRegistrationOrder(t *testing.T) {
	adapters := []Adapter{
		&fakeAdapter{name: "A", delay: 30 * time.Millisecond, records: []models.NewsRecord{rec("a1", "A")}},
		&fakeAdapter{name: "B", err: errors.New("down")},
		&fakeAdapter{name: "C", delay: 5 * time.Millisecond, records: []models.NewsRecord{rec("c1", "C"), rec("c2", "C")}},
	}
	res := NewScanner(adapters, quietLogger()).Scan(context.Background(), "2330")

	if res.Code != "2330" {
		t.Errorf("code: got %q", res.Code)
	}
	if len(res.Sources) != 3 {
		t.Fatalf("sources: got %d, want 3", len(res.Sources))
	}
	for i, name := range []string{"A", "B", "C"} {
		if res.Sources[i].Source != name {
			t.Errorf("[%d]: got %q, want %q", i, res.Sources[i].Source, name)
		}
	}
	if b, ok := res.Get("B"); !ok || !b.Failed || len(b.Records) != 0 {
		t.Errorf("failed adapter should give an empty failed result, got %+v", b)
	}
	if c, ok := res.Get("C"); !ok || len(c.Records) != 2 {
		t.Errorf("C: got %+v", c)
	}
	if res.RecordCount() != 3 {
		t.Errorf("RecordCount: got %d, want 3", res.RecordCount())
	}
}

func TestScanner_TimeoutDoesNotBlockOthers(t *testing.T) {
	adapters := []Adapter{
		&fakeAdapter{name: "slow", delay: time.Hour, timeout: 100 * time.Millisecond},
		&fakeAdapter{name: "fast", records: []models.NewsRecord{rec("f1", "fast")}},
	}
	start := time.Now()
	res := NewScanner(adapters, quietLogger()).Scan(context.Background(), "2330")

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("scan should finish near the slow adapter's timeout, took %v", elapsed)
	}
	if slow, _ := res.Get("slow"); !slow.Failed {
		t.Error("timed-out adapter should be marked failed")
	}
	if fast, _ := res.Get("fast"); len(fast.Records) != 1 {
		t.Error("fast adapter results should be kept")
	}
}

func TestScanner_IgnoresCallerCancellation(t *testing.T) {
	adapters := []Adapter{
		&fakeAdapter{name: "A", delay: 50 * time.Millisecond, records: []models.NewsRecord{rec("a1", "A")}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewScanner(adapters, quietLogger()).Scan(ctx, "2330")
	if got, _ := res.Get("A"); got.Failed || len(got.Records) != 1 {
		t.Errorf("scan should run to completion after cancel, got %+v", got)
	}
}

func TestScanner_RecoversPanics(t *testing.T) {
	adapters := []Adapter{
		&fakeAdapter{name: "bad", panics: true},
		&fakeAdapter{name: "good", records: []models.NewsRecord{rec("g1", "good")}},
	}
	res := NewScanner(adapters, quietLogger()).Scan(context.Background(), "2330")
	if bad, _ := res.Get("bad"); !bad.Failed {
		t.Error("panicking adapter should be marked failed")
	}
	if good, _ := res.Get("good"); len(good.Records) != 1 {
		t.Error("other adapters should be unaffected")
	}
}

func TestScanner_OnSourceDone(t *testing.T) {
	adapters := []Adapter{
		&fakeAdapter{name: "A"},
		&fakeAdapter{name: "B"},
		&fakeAdapter{name: "C", err: errors.New("x")},
	}
	s := NewScanner(adapters, quietLogger())

	var mu sync.Mutex
	seen := map[string]bool{}
	s.OnSourceDone = func(r models.SourceResult) {
		mu.Lock()
		seen[r.Source] = true
		mu.Unlock()
	}
	s.Scan(context.Background(), "2330")

	if len(seen) != 3 {
		t.Errorf("OnSourceDone calls: got %d, want 3", len(seen))
	}
}
