package browser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testPage = `<html><head><title>台積電(2330) 個股新聞</title></head><body>
<div id="YDC-Stream"><ul>
<li><a href="/news/1"><h3>台積電法說會優於預期</h3></a></li>
<li><a href="/news/2"><h3>外資連三日買超台積電</h3></a></li>
</ul></div></body></html>`

func TestHTTPSession_NavigateAndQuery(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	s, err := NewHTTPBrowser().Launch("test-agent/1.0")
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	defer s.Close()

	resp, err := s.Navigate(context.Background(), srv.URL, NavigateOptions{Timeout: 5 * time.Second, WaitUntil: WaitDOMContentLoaded})
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if !resp.OK() {
		t.Errorf("status: got %d, want 200", resp.Status)
	}
	if gotUA != "test-agent/1.0" {
		t.Errorf("User-Agent: got %q", gotUA)
	}
	if got := s.Title(); got != "台積電(2330) 個股新聞" {
		t.Errorf("Title: got %q", got)
	}

	texts := s.QueryTexts("#YDC-Stream li h3")
	if len(texts) != 2 || texts[0] != "台積電法說會優於預期" {
		t.Errorf("QueryTexts: got %v", texts)
	}
	hrefs := s.QueryAttrs("#YDC-Stream li a", "href")
	if len(hrefs) != 2 || hrefs[1] != "/news/2" {
		t.Errorf("QueryAttrs: got %v", hrefs)
	}
}

func TestHTTPSession_CookiesAreIsolated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("sid"); err == nil {
			w.Write([]byte("<title>returning</title>"))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "1", Path: "/"})
		w.Write([]byte("<title>first</title>"))
	}))
	defer srv.Close()

	b := NewHTTPBrowser()
	ctx := context.Background()

	s1, _ := b.Launch("a")
	defer s1.Close()
	s1.Navigate(ctx, srv.URL, NavigateOptions{WaitUntil: WaitCommit})
	s1.Navigate(ctx, srv.URL, NavigateOptions{WaitUntil: WaitCommit})
	if got := s1.Title(); got != "returning" {
		t.Errorf("same session should keep cookies, got title %q", got)
	}

	s2, _ := b.Launch("b")
	defer s2.Close()
	s2.Navigate(ctx, srv.URL, NavigateOptions{WaitUntil: WaitCommit})
	if got := s2.Title(); got != "first" {
		t.Errorf("new session should start without cookies, got title %q", got)
	}
}

func TestHTTPSession_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	s, _ := NewHTTPBrowser().Launch("")
	defer s.Close()

	start := time.Now()
	_, err := s.Navigate(context.Background(), srv.URL, NavigateOptions{Timeout: 50 * time.Millisecond})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("Navigate should give up after its timeout, took %v", time.Since(start))
	}
}

func TestHTTPSession_Closed(t *testing.T) {
	s, _ := NewHTTPBrowser().Launch("")
	s.Close()
	if _, err := s.Navigate(context.Background(), "http://127.0.0.1", NavigateOptions{}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("got %v, want ErrSessionClosed", err)
	}
	if got := s.QueryTexts("h3"); got != nil {
		t.Errorf("closed session should have no page, got %v", got)
	}
}

func TestRandomUserAgent(t *testing.T) {
	pool := []string{"a", "b"}
	for i := 0; i < 20; i++ {
		ua := RandomUserAgent(pool)
		if ua != "a" && ua != "b" {
			t.Fatalf("unexpected agent %q", ua)
		}
	}
	if RandomUserAgent(nil) != "" {
		t.Error("empty pool should give empty agent")
	}
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); err == nil {
		t.Error("expected context error")
	}
}
