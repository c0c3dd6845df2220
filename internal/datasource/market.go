package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/seenimoa/newsheat/pkg/models"
)

// DefaultMarketDataURL is the exchange's daily trading summary for all
// listed securities.
const DefaultMarketDataURL = "https://openapi.twse.com.tw/v1/exchangeReport/STOCK_DAY_ALL"

// twseDayRow is one row of the daily summary. Numeric fields arrive as
// strings, sometimes with thousands separators.
type twseDayRow struct {
	Code        string `json:"Code"`
	Name        string `json:"Name"`
	TradeVolume string `json:"TradeVolume"`
}

// FetchMarketListings downloads the daily summary and returns listings
// ranked by trade volume, highest first. top <= 0 keeps every listing.
func FetchMarketListings(ctx context.Context, url string, top int) ([]models.MarketListing, error) {
	if url == "" {
		url = DefaultMarketDataURL
	}
	body, _, err := doGet(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, fmt.Errorf("market data: %w", err)
	}
	defer body.Close()

	var rows []twseDayRow
	if err := json.NewDecoder(body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("market data: decode: %w", err)
	}
	return rankListings(rows, top), nil
}

func rankListings(rows []twseDayRow, top int) []models.MarketListing {
	out := make([]models.MarketListing, 0, len(rows))
	for _, r := range rows {
		code := strings.TrimSpace(r.Code)
		name := strings.TrimSpace(r.Name)
		if code == "" || name == "" {
			continue
		}
		vol, _ := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(r.TradeVolume), ",", ""), 10, 64)
		out = append(out, models.MarketListing{Code: code, Name: name, Volume: vol})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Volume > out[j].Volume })
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}
