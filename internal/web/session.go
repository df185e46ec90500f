package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	sessionCookieName = "mooddj_session"
	sessionMaxAge     = 30 * 24 * time.Hour
)

// sessionID returns the caller's session identifier, minting a new
// cookie-backed one on first contact. Clients that reject cookies all
// share the "default" session, matching single-user deployments.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// currentSessionID is the read-only variant for handlers that must not
// mint a session, such as the OAuth callback hit by Spotify's redirect.
func currentSessionID(r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return "default"
}
