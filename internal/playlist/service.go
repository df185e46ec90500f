// Package playlist resolves LLM-recommended song labels to catalog tracks
// and publishes them as Spotify playlists.
package playlist

import "context"

// Track is a catalog search result.
type Track struct {
	ID         string
	URI        string
	Name       string
	Popularity int
	Artists    []Artist
}

// Artist identifies one credited artist on a track.
type Artist struct {
	ID   string
	Name string
}

// CreatedPlaylist describes a playlist created on the provider.
type CreatedPlaylist struct {
	ID   string
	Name string
	URL  string
}

// Catalog is the subset of the music service used during track resolution.
type Catalog interface {
	// SearchTracks runs a market-scoped track search, returning at most
	// limit results in provider relevance order.
	SearchTracks(ctx context.Context, query, market string, limit int) ([]Track, error)

	// ArtistPopularity returns the provider popularity score for an artist.
	ArtistPopularity(ctx context.Context, artistID string) (int, error)
}

// Library is the subset of the music service used to create playlists.
type Library interface {
	// CreatePlaylist creates a private playlist for the current user.
	CreatePlaylist(ctx context.Context, name, description string) (*CreatedPlaylist, error)

	// AddTracks appends tracks to a playlist in catalog order.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// TrackSummaries returns display strings ("Title by Artist") for tracks.
	TrackSummaries(ctx context.Context, trackIDs []string) ([]string, error)
}

// Service is the full music-service surface the pipeline needs.
type Service interface {
	Catalog
	Library
}

// Source yields an authenticated Service for a session. A (nil, nil) return
// means the session is not authenticated, which callers treat as
// "authentication required" rather than a hard failure.
type Source interface {
	Service(ctx context.Context, sessionID string) (Service, error)
}
