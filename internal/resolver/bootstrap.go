package resolver

import (
	"context"
	"log/slog"

	"github.com/seenimoa/newsheat/internal/config"
	"github.com/seenimoa/newsheat/internal/datasource"
)

// BuildDirectory returns the built-in directory, extended with the
// exchange's daily listings when bootstrapping is enabled. A failed
// download is logged and the baseline is returned.
func BuildDirectory(ctx context.Context, cfg config.ResolverConfig, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	dir := DefaultDirectory()
	if !cfg.Bootstrap {
		return dir
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	listings, err := datasource.FetchMarketListings(ctx, cfg.MarketDataURL, cfg.MarketDataTop)
	if err != nil {
		logger.Warn("market data bootstrap failed, using built-in directory", "error", err)
		return dir
	}
	ext := dir.Extend(listings)
	logger.Info("ticker directory loaded", "builtin", dir.Len(), "total", ext.Len())
	return ext
}
