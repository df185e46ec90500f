// Package spotify wraps the Spotify Web API with the operations the
// playlist pipeline needs.
package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"

	"github.com/mooddj/mooddj/internal/playlist"
)

// Spotify rejects playlist additions above 100 tracks per request.
const maxTracksPerRequest = 100

// Client wraps an authenticated Spotify API client.
type Client struct {
	api *spotify.Client
}

// New creates a Client around an already-authenticated API client.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// SearchTracks runs a market-scoped track search.
func (c *Client) SearchTracks(ctx context.Context, query, market string, limit int) ([]playlist.Track, error) {
	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack,
		spotify.Limit(limit), spotify.Market(market))
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}
	if result.Tracks == nil {
		return nil, nil
	}

	tracks := make([]playlist.Track, 0, len(result.Tracks.Tracks))
	for _, ft := range result.Tracks.Tracks {
		tracks = append(tracks, convertTrack(ft))
	}
	return tracks, nil
}

// ArtistPopularity returns the popularity score of an artist.
func (c *Client) ArtistPopularity(ctx context.Context, artistID string) (int, error) {
	artist, err := c.api.GetArtist(ctx, spotify.ID(artistID))
	if err != nil {
		return 0, fmt.Errorf("getting artist: %w", err)
	}
	return int(artist.Popularity), nil
}

// CreatePlaylist creates a private playlist for the current user.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string) (*playlist.CreatedPlaylist, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting current user: %w", err)
	}

	created, err := c.api.CreatePlaylistForUser(ctx, user.ID, name, description, false, false)
	if err != nil {
		return nil, fmt.Errorf("creating playlist: %w", err)
	}

	return &playlist.CreatedPlaylist{
		ID:   created.ID.String(),
		Name: created.Name,
		URL:  created.ExternalURLs["spotify"],
	}, nil
}

// AddTracks appends tracks to a playlist, batching to the provider's
// per-request limit.
func (c *Client) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	for i := 0; i < len(ids); i += maxTracksPerRequest {
		end := min(i+maxTracksPerRequest, len(ids))
		if _, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids[i:end]...); err != nil {
			return fmt.Errorf("adding tracks (batch %d-%d): %w", i+1, end, err)
		}
	}

	return nil
}

// TrackSummaries returns "Title by Artist" display strings for the given
// tracks.
func (c *Client) TrackSummaries(ctx context.Context, trackIDs []string) ([]string, error) {
	if len(trackIDs) == 0 {
		return nil, nil
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	tracks, err := c.api.GetTracks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("getting tracks: %w", err)
	}

	summaries := make([]string, 0, len(tracks))
	for _, ft := range tracks {
		if ft == nil {
			continue
		}
		summaries = append(summaries, summarize(*ft))
	}
	return summaries, nil
}

// convertTrack converts a Spotify FullTrack to a playlist.Track.
func convertTrack(ft spotify.FullTrack) playlist.Track {
	artists := make([]playlist.Artist, len(ft.Artists))
	for i, a := range ft.Artists {
		artists[i] = playlist.Artist{ID: a.ID.String(), Name: a.Name}
	}

	return playlist.Track{
		ID:         ft.ID.String(),
		URI:        string(ft.URI),
		Name:       ft.Name,
		Popularity: int(ft.Popularity),
		Artists:    artists,
	}
}

// summarize formats one track as "Title by Artist, Artist".
func summarize(ft spotify.FullTrack) string {
	names := make([]string, len(ft.Artists))
	for i, a := range ft.Artists {
		names[i] = a.Name
	}
	return fmt.Sprintf("%s by %s", ft.Name, strings.Join(names, ", "))
}

var _ playlist.Service = (*Client)(nil)
