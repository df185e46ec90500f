package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

// probeTimeout bounds the identity call used to check whether a pooled
// client is still live.
const probeTimeout = 10 * time.Second

// Sentinel errors.
var (
	// ErrMissingAuthCode is returned when the callback URL carries neither a
	// code nor an error parameter.
	ErrMissingAuthCode = errors.New("no authorization code found in callback URL")

	// ErrTokenExchange is returned when exchanging the authorization code
	// for a token fails.
	ErrTokenExchange = errors.New("failed to exchange code for access token")
)

// AuthorizationDeniedError is returned when the provider reports an error on
// the OAuth callback, e.g. the user declined the consent screen.
type AuthorizationDeniedError struct {
	Code        string
	Description string
}

func (e *AuthorizationDeniedError) Error() string {
	return fmt.Sprintf("authentication failed: %s - %s", e.Code, e.Description)
}

// Authenticator manages per-session OAuth contexts, a durable token cache,
// and a pool of live Spotify clients keyed by user id. Clients are pooled by
// user rather than session, so a user who re-opens the app in a new session
// reuses their existing connection.
type Authenticator struct {
	clientID     string
	clientSecret string
	redirectURI  string
	store        TokenStore
	logger       zerolog.Logger

	mu       sync.Mutex
	contexts map[string]*spotifyauth.Authenticator // session id -> OAuth context
	clients  map[string]*spotify.Client            // user id -> live client
}

// New creates an Authenticator. The token store decides where tokens
// persist; the OAuth scope is fixed to playlist modification.
func New(clientID, clientSecret, redirectURI string, store TokenStore, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		store:        store,
		logger:       logger.With().Str("component", "auth").Logger(),
		contexts:     make(map[string]*spotifyauth.Authenticator),
		clients:      make(map[string]*spotify.Client),
	}
}

// oauthContext returns the session's OAuth context, creating it once.
func (a *Authenticator) oauthContext(sessionID string) *spotifyauth.Authenticator {
	a.mu.Lock()
	defer a.mu.Unlock()

	if auth, ok := a.contexts[sessionID]; ok {
		return auth
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(a.clientID),
		spotifyauth.WithClientSecret(a.clientSecret),
		spotifyauth.WithRedirectURL(a.redirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopePlaylistModifyPublic,
			spotifyauth.ScopePlaylistModifyPrivate,
		),
	)
	a.contexts[sessionID] = auth
	return auth
}

// AuthURL returns the provider authorization URL for a session. The consent
// dialog is always shown so users can switch accounts.
func (a *Authenticator) AuthURL(sessionID string) string {
	return a.oauthContext(sessionID).AuthURL(sessionID, spotifyauth.ShowDialog)
}

// AuthenticateWithCode completes the OAuth flow from a pasted or redirected
// callback URL. On success the token is cached for the session, the client
// is pooled under the user's id, and the user's display name is returned
// (their id when no display name is set).
func (a *Authenticator) AuthenticateWithCode(ctx context.Context, callbackURL, sessionID string) (string, error) {
	parsed, err := url.Parse(callbackURL)
	if err != nil {
		return "", fmt.Errorf("parsing callback URL: %w", err)
	}
	query := parsed.Query()

	if errCode := query.Get("error"); errCode != "" {
		return "", &AuthorizationDeniedError{
			Code:        errCode,
			Description: query.Get("error_description"),
		}
	}

	code := query.Get("code")
	if code == "" {
		return "", ErrMissingAuthCode
	}

	oauthCtx := a.oauthContext(sessionID)
	token, err := oauthCtx.Exchange(ctx, code)
	if err != nil {
		a.logger.Error().Err(err).Msg("code exchange failed")
		return "", fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}

	client := spotify.New(oauthCtx.Client(ctx, token), spotify.WithRetry(true))
	user, err := client.CurrentUser(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("token validation failed")
		return "", fmt.Errorf("%w: validating token: %v", ErrTokenExchange, err)
	}

	a.mu.Lock()
	a.clients[user.ID] = client
	a.mu.Unlock()

	if err := a.store.Save(ctx, sessionID, token); err != nil {
		// The live client still works; only durability suffers.
		a.logger.Warn().Err(err).Msg("caching token failed")
	}

	displayName := user.DisplayName
	if displayName == "" {
		displayName = user.ID
	}

	a.logger.Info().Str("user", displayName).Msg("authenticated")
	return displayName, nil
}

// AuthenticatedClient returns a live Spotify client for the session, or nil
// when none is available. It first probes the pooled clients (evicting any
// that fail), then falls back to the session's cached token, refreshing it
// through the OAuth token source when expired. Network failures along the
// way mean "this handle or token is bad" and are never propagated.
func (a *Authenticator) AuthenticatedClient(ctx context.Context, sessionID string) *spotify.Client {
	if client := a.probePool(ctx); client != nil {
		return client
	}

	token, err := a.store.Load(ctx, sessionID)
	if err != nil {
		a.logger.Warn().Err(err).Msg("loading cached token failed")
		return nil
	}
	if token == nil {
		return nil
	}

	if !token.Valid() {
		a.logger.Info().Str("session", sessionID).Msg("cached token expired, refreshing")
	}

	oauthCtx := a.oauthContext(sessionID)

	// The oauth2 token source refreshes expired tokens transparently on the
	// first call the new client makes.
	client := spotify.New(oauthCtx.Client(ctx, token), spotify.WithRetry(true))

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	user, err := client.CurrentUser(probeCtx)
	if err != nil {
		a.logger.Warn().Err(err).Str("session", sessionID).Msg("cached token unusable")
		return nil
	}

	if refreshed, err := client.Token(); err == nil && refreshed.AccessToken != token.AccessToken {
		if err := a.store.Save(ctx, sessionID, refreshed); err != nil {
			a.logger.Warn().Err(err).Msg("caching refreshed token failed")
		}
	}

	a.mu.Lock()
	a.clients[user.ID] = client
	a.mu.Unlock()

	return client
}

// probePool checks every pooled client with a cheap identity call and
// returns the first live one. Dead clients are evicted, which self-heals a
// pool holding revoked or expired connections.
func (a *Authenticator) probePool(ctx context.Context) *spotify.Client {
	a.mu.Lock()
	snapshot := make(map[string]*spotify.Client, len(a.clients))
	for userID, client := range a.clients {
		snapshot[userID] = client
	}
	a.mu.Unlock()

	for userID, client := range snapshot {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		_, err := client.CurrentUser(probeCtx)
		cancel()

		if err == nil {
			return client
		}

		a.logger.Info().Str("user", userID).Msg("evicting dead client from pool")
		a.mu.Lock()
		delete(a.clients, userID)
		a.mu.Unlock()
	}

	return nil
}

// IsAuthenticated reports whether a live client exists for the session.
// Pool eviction triggered by the underlying probe is an intended side
// effect.
func (a *Authenticator) IsAuthenticated(ctx context.Context, sessionID string) bool {
	return a.AuthenticatedClient(ctx, sessionID) != nil
}

// Logout drops the session's cached token and OAuth context.
func (a *Authenticator) Logout(ctx context.Context, sessionID string) error {
	a.mu.Lock()
	delete(a.contexts, sessionID)
	a.mu.Unlock()
	return a.store.Delete(ctx, sessionID)
}
