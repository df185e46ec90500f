// Package auth provides per-session Spotify OAuth2 authentication with
// durable token caching and a pooled-client reuse strategy.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
)

// DefaultCacheDir is where file-backed tokens live, relative to the
// working directory.
const DefaultCacheDir = ".cache-spotify"

// TokenStore persists OAuth tokens keyed by session id.
type TokenStore interface {
	// Load returns the cached token for a session, or (nil, nil) when no
	// token has been stored.
	Load(ctx context.Context, sessionID string) (*oauth2.Token, error)

	// Save stores a token for a session, replacing any previous one.
	Save(ctx context.Context, sessionID string, token *oauth2.Token) error

	// Delete removes a session's token. Deleting a missing token is not an
	// error.
	Delete(ctx context.Context, sessionID string) error
}

// FileTokenStore keeps one JSON token file per session id under a cache
// directory.
type FileTokenStore struct {
	dir string
}

// NewFileTokenStore creates a FileTokenStore rooted at dir.
func NewFileTokenStore(dir string) *FileTokenStore {
	return &FileTokenStore{dir: dir}
}

// path maps a session id to its token file. Session ids are uuids in
// practice, but anything path-unsafe is stripped to keep files inside dir.
func (s *FileTokenStore) path(sessionID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, sessionID)
	if safe == "" {
		safe = "default"
	}
	return filepath.Join(s.dir, "spotify_token_"+safe+".json")
}

// Load reads a session's cached token from disk.
func (s *FileTokenStore) Load(_ context.Context, sessionID string) (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}

	return &token, nil
}

// Save writes a session's token to disk, creating the cache directory if
// needed.
func (s *FileTokenStore) Save(_ context.Context, sessionID string, token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	if err := os.WriteFile(s.path(sessionID), data, 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	return nil
}

// Delete removes a session's token file.
func (s *FileTokenStore) Delete(_ context.Context, sessionID string) error {
	err := os.Remove(s.path(sessionID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

var _ TokenStore = (*FileTokenStore)(nil)
