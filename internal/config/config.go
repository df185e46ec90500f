// Package config loads and validates API credentials from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
)

// Spotify client ids and secrets are 32-character hex-ish tokens.
const credentialLength = 32

// Configuration errors. All of these are fatal at startup.
var (
	// ErrMissingCredentials is returned when SPOTIFY_CLIENT_ID or
	// SPOTIFY_CLIENT_SECRET is not set.
	ErrMissingCredentials = errors.New("missing SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET environment variable")

	// ErrMissingGroqKey is returned when GROQ_API_KEY is not set.
	ErrMissingGroqKey = errors.New("missing GROQ_API_KEY environment variable")

	// ErrInvalidClientID is returned when the Spotify client id is not a
	// 32-character alphanumeric string after cleaning.
	ErrInvalidClientID = errors.New("spotify client id format is invalid")

	// ErrInvalidClientSecret is returned when the Spotify client secret is
	// not a 32-character alphanumeric string after cleaning.
	ErrInvalidClientSecret = errors.New("spotify client secret format is invalid")
)

var alnumRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Config holds the application's externally supplied settings.
type Config struct {
	SpotifyClientID     string
	SpotifyClientSecret string
	GroqAPIKey          string
	RedirectURI         string
	DatabaseURL         string // optional; file token store is used when empty
	Addr                string
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		SpotifyClientID:     CleanCredential(os.Getenv("SPOTIFY_CLIENT_ID")),
		SpotifyClientSecret: CleanCredential(os.Getenv("SPOTIFY_CLIENT_SECRET")),
		GroqAPIKey:          CleanCredential(os.Getenv("GROQ_API_KEY")),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
	}

	if cfg.GroqAPIKey == "" {
		return nil, ErrMissingGroqKey
	}
	if cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	if len(cfg.SpotifyClientID) != credentialLength || !alnumRe.MatchString(cfg.SpotifyClientID) {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidClientID, len(cfg.SpotifyClientID))
	}
	if len(cfg.SpotifyClientSecret) != credentialLength || !alnumRe.MatchString(cfg.SpotifyClientSecret) {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidClientSecret, len(cfg.SpotifyClientSecret))
	}

	cfg.RedirectURI = ResolveRedirectURI()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	cfg.Addr = ":" + port

	return cfg, nil
}

// CleanCredential strips encoding artifacts that show up when credentials
// are copy-pasted into hosting dashboards: non-ASCII runes, zero-width
// characters, BOMs, stray newlines, and a single trailing punctuation rune.
func CleanCredential(credential string) string {
	if credential == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range credential {
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(r)
	}
	cleaned := b.String()

	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.ReplaceAll(cleaned, "\n", "")
	cleaned = strings.ReplaceAll(cleaned, "\r", "")

	// Drop one trailing artifact character such as an ellipsis remnant or dot.
	if n := len(cleaned); n > 0 {
		last := cleaned[n-1]
		if !isWordByte(last) && last != '-' {
			cleaned = cleaned[:n-1]
		}
	}

	return cleaned
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// ResolveRedirectURI determines the OAuth redirect URI for the current
// deployment environment. Priority: explicit SPOTIFY_REDIRECT_URI, then
// hosted-environment URLs, then the local development default.
func ResolveRedirectURI() string {
	if uri := os.Getenv("SPOTIFY_REDIRECT_URI"); uri != "" {
		return CleanCredential(uri)
	}

	if replURL := os.Getenv("REPL_URL"); replURL != "" {
		if !strings.HasPrefix(replURL, "https://") {
			replURL = strings.Replace(replURL, "http://", "https://", 1)
		}
		return replURL + "/api/spotify-callback"
	}

	if domain := os.Getenv("REPLIT_DEV_DOMAIN"); domain != "" {
		return "https://" + domain + "/api/spotify-callback"
	}

	return "http://127.0.0.1:8080/api/spotify-callback"
}
