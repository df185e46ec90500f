package playlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// sampleTrackCount is how many resolved tracks are summarized for display.
const sampleTrackCount = 5

// ErrNoTracksFound is returned when Publish is given no tracks. The playlist
// has already been created at that point; the empty playlist is left behind,
// matching provider-side behavior users already see from the web player.
var ErrNoTracksFound = errors.New("no tracks found matching your preferences")

// Result describes a published playlist.
type Result struct {
	URL          string
	Name         string
	TrackCount   int
	SampleTracks []string
}

// Publisher creates playlists from resolved track IDs.
type Publisher struct {
	source Source
	logger zerolog.Logger
}

// NewPublisher creates a Publisher backed by the given service source.
func NewPublisher(source Source, logger zerolog.Logger) *Publisher {
	return &Publisher{
		source: source,
		logger: logger.With().Str("component", "publisher").Logger(),
	}
}

// Publish creates a private playlist and appends the given tracks in one
// batch. Returns ErrNotAuthenticated when the session has no live client and
// ErrNoTracksFound when trackIDs is empty.
func (p *Publisher) Publish(ctx context.Context, sessionID, name, description string, trackIDs []string) (*Result, error) {
	svc, err := p.source.Service(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("acquiring client: %w", err)
	}
	if svc == nil {
		return nil, ErrNotAuthenticated
	}

	created, err := svc.CreatePlaylist(ctx, name, description)
	if err != nil {
		return nil, fmt.Errorf("creating playlist: %w", err)
	}

	if len(trackIDs) == 0 {
		return nil, ErrNoTracksFound
	}

	if err := svc.AddTracks(ctx, created.ID, trackIDs); err != nil {
		return nil, fmt.Errorf("adding tracks: %w", err)
	}

	sampleIDs := trackIDs
	if len(sampleIDs) > sampleTrackCount {
		sampleIDs = sampleIDs[:sampleTrackCount]
	}
	samples, err := svc.TrackSummaries(ctx, sampleIDs)
	if err != nil {
		// Display-only data; the playlist itself is complete.
		p.logger.Warn().Err(err).Msg("fetching sample track details failed")
		samples = nil
	}

	p.logger.Info().
		Str("playlist", created.Name).
		Int("tracks", len(trackIDs)).
		Msg("playlist published")

	return &Result{
		URL:          created.URL,
		Name:         created.Name,
		TrackCount:   len(trackIDs),
		SampleTracks: samples,
	}, nil
}
