package utils

import (
	"time"
)

// TPE is the Asia/Taipei location (UTC+8) used by TWSE.
var TPE *time.Location

func init() {
	var err error
	TPE, err = time.LoadLocation("Asia/Taipei")
	if err != nil {
		// Fallback: create fixed zone if tz database is not available
		TPE = time.FixedZone("CST", 8*60*60)
	}
}

// NowTPE returns the current time in Taipei.
func NowTPE() time.Time {
	return time.Now().In(TPE)
}

// MarketOpenTime returns the TWSE regular session open (9:00) for a given date.
func MarketOpenTime(date time.Time) time.Time {
	d := date.In(TPE)
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, TPE)
}

// MarketCloseTime returns the TWSE regular session close (13:30) for a given date.
func MarketCloseTime(date time.Time) time.Time {
	d := date.In(TPE)
	return time.Date(d.Year(), d.Month(), d.Day(), 13, 30, 0, 0, TPE)
}

// PreOpenStart returns the start of the pre-open order period (8:30).
func PreOpenStart(date time.Time) time.Time {
	d := date.In(TPE)
	return time.Date(d.Year(), d.Month(), d.Day(), 8, 30, 0, 0, TPE)
}

// IsMarketOpenAt checks if TWSE would be in its regular session at t.
func IsMarketOpenAt(t time.Time) bool {
	t = t.In(TPE)
	if !IsTradingDay(t) {
		return false
	}
	return !t.Before(MarketOpenTime(t)) && !t.After(MarketCloseTime(t))
}

// IsTradingDay checks if the given date is a trading day (not weekend, not holiday).
func IsTradingDay(t time.Time) bool {
	t = t.In(TPE)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !IsTradingHoliday(t)
}

// IsTradingHoliday checks if the given date is a TWSE market holiday.
// This list should be updated annually.
func IsTradingHoliday(t time.Time) bool {
	_, ok := twseHolidays2026[t.In(TPE).Format("2006-01-02")]
	return ok
}

// TWSE market holidays for 2026 (update annually from the TWSE calendar).
var twseHolidays2026 = map[string]string{
	"2026-01-01": "元旦",
	"2026-02-16": "農曆除夕",
	"2026-02-17": "春節",
	"2026-02-18": "春節",
	"2026-02-19": "春節",
	"2026-02-20": "春節",
	"2026-02-27": "和平紀念日補假",
	"2026-04-03": "兒童節補假",
	"2026-04-06": "清明節補假",
	"2026-05-01": "勞動節",
	"2026-06-19": "端午節",
	"2026-09-25": "中秋節",
	"2026-10-09": "國慶日補假",
}

// FormatDateTimeTPE formats a time.Time to "2006-01-02 15:04:05 CST" in Taipei.
func FormatDateTimeTPE(t time.Time) string {
	return t.In(TPE).Format("2006-01-02 15:04:05") + " CST"
}

// MarketStatus returns the current market status string.
func MarketStatus() string {
	return MarketStatusAt(NowTPE())
}

// MarketStatusAt returns the market status at the given instant.
func MarketStatusAt(now time.Time) string {
	now = now.In(TPE)

	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return "CLOSED (Weekend)"
	}
	if holiday, ok := twseHolidays2026[now.Format("2006-01-02")]; ok {
		return "CLOSED (" + holiday + ")"
	}

	switch {
	case now.Before(PreOpenStart(now)):
		return "PRE-MARKET"
	case now.Before(MarketOpenTime(now)):
		return "PRE-OPEN SESSION"
	case !now.After(MarketCloseTime(now)):
		return "OPEN"
	default:
		return "CLOSED"
	}
}
