package spotify

import (
	"context"

	"github.com/mooddj/mooddj/internal/auth"
	"github.com/mooddj/mooddj/internal/playlist"
)

// Source adapts the session authenticator into a playlist.Source: each call
// yields a wrapped client for the session's live connection, or nil when the
// session is not authenticated.
type Source struct {
	auth *auth.Authenticator
}

// NewSource creates a Source backed by the given authenticator.
func NewSource(authenticator *auth.Authenticator) *Source {
	return &Source{auth: authenticator}
}

// Service returns an authenticated Service for the session, or (nil, nil)
// when no live client is available.
func (s *Source) Service(ctx context.Context, sessionID string) (playlist.Service, error) {
	api := s.auth.AuthenticatedClient(ctx, sessionID)
	if api == nil {
		return nil, nil
	}
	return New(api), nil
}

var _ playlist.Source = (*Source)(nil)
