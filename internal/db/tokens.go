package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"
)

// TokenRepository stores OAuth tokens keyed by session id. It implements
// auth.TokenStore.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// Load retrieves a session's token, or (nil, nil) when none is stored.
func (r *TokenRepository) Load(ctx context.Context, sessionID string) (*oauth2.Token, error) {
	query := `
		SELECT access_token, refresh_token, token_type, expiry
		FROM spotify_tokens
		WHERE session_id = $1
	`
	var token oauth2.Token
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&token.AccessToken,
		&token.RefreshToken,
		&token.TokenType,
		&token.Expiry,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying token: %w", err)
	}
	return &token, nil
}

// Save upserts a session's token. The write is a single statement, so
// concurrent refreshes for one session resolve to last-writer-wins without
// corrupting other sessions.
func (r *TokenRepository) Save(ctx context.Context, sessionID string, token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}

	query := `
		INSERT INTO spotify_tokens (session_id, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE SET
			access_token  = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_type    = EXCLUDED.token_type,
			expiry        = EXCLUDED.expiry,
			updated_at    = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		sessionID,
		token.AccessToken,
		token.RefreshToken,
		token.TokenType,
		token.Expiry,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("upserting token: %w", err)
	}
	return nil
}

// Delete removes a session's token. Deleting a missing token is not an
// error.
func (r *TokenRepository) Delete(ctx context.Context, sessionID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM spotify_tokens WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}
