// Package agent runs the end-to-end heat pipeline: resolve the input,
// scan every source, aggregate keyword scores and, when a model backend is
// configured, let the model score the scan with the keyword result as
// fallback.
package agent

import (
	"context"

	"github.com/seenimoa/newsheat/pkg/models"
)

// IdentityResolver maps raw user input to a ticker identity. Both
// *resolver.Resolver and *resolver.Session satisfy it.
type IdentityResolver interface {
	Resolve(ctx context.Context, raw string) (models.TickerIdentity, error)
}

// Scorer is an alternative strategy for the overall score.
type Scorer interface {
	Score(ctx context.Context, id models.TickerIdentity, records []models.NewsRecord) (*models.ScoreReport, error)
}
