package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFilterTitles(t *testing.T) {
	texts := []string{
		"短標",
		"台積電股價今日收高",
		"台積電法說會釋出利多消息",
		"  ",
		"外資連續買超台積電",
		"聯發科擴產計畫曝光",
	}
	got := filterTitles(texts, 6, []string{"股價"}, 2)
	want := []string{"台積電法說會釋出利多消息", "外資連續買超台積電"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFilterTitles_RuneLength(t *testing.T) {
	// Six CJK characters are 18 bytes but only 6 runes: not longer than 6.
	if got := filterTitles([]string{"台積電漲停板"}, 6, nil, 5); len(got) != 0 {
		t.Errorf("six-rune title should be dropped, got %v", got)
	}
	if got := filterTitles([]string{"台積電漲停板了"}, 6, nil, 5); len(got) != 1 {
		t.Errorf("seven-rune title should be kept, got %v", got)
	}
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain", "plain"},
		{`<a href="x">台積電</a>&nbsp;&nbsp;<font color="#6f6f6f">經濟日報</font>`, "台積電 經濟日報"},
	}
	for _, tt := range tests {
		if got := cleanHTML(tt.in); got != tt.want {
			t.Errorf("cleanHTML(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDoGet_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, status, err := doGet(context.Background(), srv.URL, nil)
	if status != http.StatusServiceUnavailable {
		t.Errorf("status: got %d", status)
	}
	var httpErr *ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *ErrHTTP, got %v", err)
	}
	if !strings.Contains(httpErr.Error(), "503") {
		t.Errorf("error text: %q", httpErr.Error())
	}
}

func TestDefaultAdapters_Order(t *testing.T) {
	names := SourceNames(DefaultAdapters(Options{}))
	want := []string{
		"鉅亨網", "Yahoo", "經濟日報", "自由財經", "工商時報",
		"中時新聞", "ETtoday", "TVBS新聞", "今周刊", "財訊", "風傳媒",
	}
	if len(names) != len(want) {
		t.Fatalf("got %d adapters, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("[%d]: got %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDescribe(t *testing.T) {
	infos := Describe(DefaultAdapters(Options{}))
	if len(infos) != 11 {
		t.Fatalf("got %d sources, want 11", len(infos))
	}
	if infos[0].Kind != "scrape" || infos[0].Color != "#0984e3" {
		t.Errorf("cnyes: got %+v", infos[0])
	}
	if infos[2].Kind != "feed" || infos[2].Domain != "money.udn.com" {
		t.Errorf("udn: got %+v", infos[2])
	}
	for _, info := range infos {
		if info.Color == DefaultSourceColor {
			t.Errorf("%s: missing colour", info.Name)
		}
	}
	if got := SourceColor("unknown"); got != DefaultSourceColor {
		t.Errorf("SourceColor: got %q, want %q", got, DefaultSourceColor)
	}
}
