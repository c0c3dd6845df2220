package utils

import (
	"testing"
	"time"
)

func TestNowTPE(t *testing.T) {
	now := NowTPE()
	if now.Location().String() != "Asia/Taipei" && now.Location().String() != "CST" {
		t.Errorf("NowTPE() location = %s, want Asia/Taipei or CST", now.Location().String())
	}
}

func TestMarketOpenClose(t *testing.T) {
	date := time.Date(2026, 3, 18, 12, 0, 0, 0, TPE)

	open := MarketOpenTime(date)
	if open.Hour() != 9 || open.Minute() != 0 {
		t.Errorf("MarketOpenTime = %v, want 09:00", open)
	}

	close := MarketCloseTime(date)
	if close.Hour() != 13 || close.Minute() != 30 {
		t.Errorf("MarketCloseTime = %v, want 13:30", close)
	}
}

func TestIsMarketOpenAt(t *testing.T) {
	// Wednesday 10:00: open
	if !IsMarketOpenAt(time.Date(2026, 3, 18, 10, 0, 0, 0, TPE)) {
		t.Error("Expected market to be open on Wednesday 10:00")
	}
	// Wednesday 14:00: after close
	if IsMarketOpenAt(time.Date(2026, 3, 18, 14, 0, 0, 0, TPE)) {
		t.Error("Expected market to be closed on Wednesday 14:00")
	}
	// Saturday: closed
	if IsMarketOpenAt(time.Date(2026, 3, 21, 10, 0, 0, 0, TPE)) {
		t.Error("Expected market to be closed on Saturday")
	}
	// Labour Day: closed
	if IsMarketOpenAt(time.Date(2026, 5, 1, 10, 0, 0, 0, TPE)) {
		t.Error("Expected market to be closed on 2026-05-01")
	}
}

func TestMarketStatusAt(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"weekend", time.Date(2026, 3, 22, 10, 0, 0, 0, TPE), "CLOSED (Weekend)"},
		{"holiday", time.Date(2026, 1, 1, 10, 0, 0, 0, TPE), "CLOSED (元旦)"},
		{"pre-market", time.Date(2026, 3, 18, 7, 0, 0, 0, TPE), "PRE-MARKET"},
		{"pre-open", time.Date(2026, 3, 18, 8, 45, 0, 0, TPE), "PRE-OPEN SESSION"},
		{"open", time.Date(2026, 3, 18, 13, 30, 0, 0, TPE), "OPEN"},
		{"closed", time.Date(2026, 3, 18, 13, 31, 0, 0, TPE), "CLOSED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarketStatusAt(tt.at); got != tt.want {
				t.Errorf("MarketStatusAt(%v) = %q, want %q", tt.at, got, tt.want)
			}
		})
	}
}
