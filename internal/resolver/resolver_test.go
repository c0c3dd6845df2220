package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/newsheat/internal/config"
	"github.com/seenimoa/newsheat/pkg/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// offlineResolver has no network fallbacks configured.
func offlineResolver() *Resolver {
	return New(DefaultDirectory(), config.ResolverConfig{}, WithLogger(quietLogger()))
}

func TestResolve_Directory(t *testing.T) {
	r := offlineResolver()
	tests := []struct {
		input string
		code  string
		name  string
		via   models.ResolveVia
	}{
		{"2330", "2330", "台積電", models.ResolveExact},
		{"台積電", "2330", "台積電", models.ResolveExact},
		{"  ２３３０ ", "2330", "台積電", models.ResolveExact},
		{"2330.tw", "2330", "台積電", models.ResolveExact},
		{"積電", "2330", "台積電", models.ResolveSubstring},
		{"世芯-ky", "3661", "世芯-KY", models.ResolveExact},
		{"0050", "0050", "元大台灣50", models.ResolveExact},
		{"長榮", "2603", "長榮", models.ResolveExact},
		{"榮航", "2618", "長榮航", models.ResolveSubstring},
	}
	for _, tt := range tests {
		id, err := r.Resolve(context.Background(), tt.input)
		if err != nil {
			t.Errorf("Resolve(%q): %v", tt.input, err)
			continue
		}
		if id.Code != tt.code || id.DisplayName != tt.name || id.Via != tt.via {
			t.Errorf("Resolve(%q): got %+v, want {%s %s %s}", tt.input, id, tt.code, tt.name, tt.via)
		}
	}
}

func TestResolve_ExactBeatsSubstring(t *testing.T) {
	// "長榮" is also a substring of "長榮航"; the exact name must win even
	// when the longer name was registered first.
	dir := NewDirectory([]Entry{{"長榮航", "2618"}, {"長榮", "2603"}})
	r := New(dir, config.ResolverConfig{}, WithLogger(quietLogger()))

	id, err := r.Resolve(context.Background(), "長榮")
	if err != nil {
		t.Fatal(err)
	}
	if id.Code != "2603" {
		t.Errorf("got %s, want 2603", id.Code)
	}
}

func TestResolve_SingleCharCollision(t *testing.T) {
	r := offlineResolver()
	id, err := r.Resolve(context.Background(), "台")
	if err != nil {
		t.Fatal(err)
	}
	if id.Code != "2330" {
		t.Errorf("first registered name containing 台 should win, got %+v", id)
	}
}

func TestResolve_NotFound(t *testing.T) {
	r := offlineResolver()
	for _, in := range []string{"", "   ", "不存在的公司"} {
		_, err := r.Resolve(context.Background(), in)
		if !errors.Is(err, ErrTickerNotFound) {
			t.Errorf("Resolve(%q): got %v, want ErrTickerNotFound", in, err)
		}
	}
}

func TestResolve_TitleLookup(t *testing.T) {
	var hits []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		switch r.URL.Path {
		case "/histock/6669":
			w.WriteHeader(http.StatusForbidden)
		case "/goodinfo/6669":
			w.Write([]byte(`<html><head><title>緯穎 (6669) 個股資訊</title></head></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := New(DefaultDirectory(), config.ResolverConfig{
		TitleURLs: []string{srv.URL + "/histock/%s", srv.URL + "/goodinfo/%s"},
		Timeout:   2 * time.Second,
	}, WithLogger(quietLogger()))

	id, err := r.Resolve(context.Background(), "6669")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.DisplayName != "緯穎" || id.Code != "6669" || id.Via != models.ResolveTitle {
		t.Errorf("got %+v", id)
	}
	if len(hits) != 2 {
		t.Errorf("expected both title pages to be tried, got %v", hits)
	}
}

func TestResolve_SearchFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("p") != "緯穎" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<ul>
<li><a class="result" href="/quote/6669.TW">緯穎 6669.TW</a></li>
<li><a class="result" href="/quote/3231.TW">緯創 3231.TW</a></li>
</ul>`))
	}))
	defer srv.Close()

	r := New(DefaultDirectory(), config.ResolverConfig{
		SearchURL:      srv.URL + "/search?p=%s",
		SearchSelector: "a.result",
		Timeout:        2 * time.Second,
	}, WithLogger(quietLogger()))

	id, err := r.Resolve(context.Background(), "緯穎")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.Code != "6669" || id.DisplayName != "緯穎" || id.Via != models.ResolveSearch {
		t.Errorf("got %+v", id)
	}
}

func TestResolve_SearchWithoutCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a class="result" href="/help">說明</a>`))
	}))
	defer srv.Close()

	r := New(DefaultDirectory(), config.ResolverConfig{
		SearchURL:      srv.URL + "/?p=%s",
		SearchSelector: "a.result",
	}, WithLogger(quietLogger()))

	if _, err := r.Resolve(context.Background(), "某某公司"); !errors.Is(err, ErrTickerNotFound) {
		t.Errorf("got %v, want ErrTickerNotFound", err)
	}
}

func TestNameFromTitle(t *testing.T) {
	tests := []struct {
		title, code, want string
	}{
		{"台積電(2330) 個股概覽 - HiStock", "2330", "台積電"},
		{" 鴻海 (2317)", "2317", "鴻海"},
		{"HiStock 嗨投資", "2330", ""},
		{"", "2330", ""},
	}
	for _, tt := range tests {
		if got := nameFromTitle(tt.title, tt.code); got != tt.want {
			t.Errorf("nameFromTitle(%q): got %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSearchResultName(t *testing.T) {
	if got := searchResultName("台積電 2330.TW", "2330"); got != "台積電" {
		t.Errorf("got %q", got)
	}
	if got := searchResultName("2330", "2330"); got != "" {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(searchResultName("富邦 台灣 50 (006208)", "006208"), "富邦") {
		t.Error("name should survive code removal")
	}
}
