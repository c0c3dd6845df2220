package resolver

import (
	"context"
	"sync"

	"github.com/seenimoa/newsheat/pkg/models"
)

// Session remembers the last resolved identity for one client. Asking
// again with the same raw input returns the cached identity; any other
// input discards it and resolves afresh.
type Session struct {
	resolver *Resolver

	mu       sync.Mutex
	input    string
	identity *models.TickerIdentity
}

// NewSession creates an empty session backed by r.
func NewSession(r *Resolver) *Session {
	return &Session{resolver: r}
}

// Resolve returns the cached identity when raw matches the last input.
func (s *Session) Resolve(ctx context.Context, raw string) (models.TickerIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity != nil && raw == s.input {
		return *s.identity, nil
	}

	s.input = raw
	s.identity = nil
	id, err := s.resolver.Resolve(ctx, raw)
	if err != nil {
		return models.TickerIdentity{}, err
	}
	s.identity = &id
	return id, nil
}
