package playlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mooddj/mooddj/internal/oracle"
)

const (
	// searchPageSize bounds each catalog search.
	searchPageSize = 10

	// artistPopularityMargin is subtracted from the track popularity floor
	// to get the artist popularity floor for the secondary quality check.
	artistPopularityMargin = 20

	defaultSearchTimeout = 10 * time.Second
	defaultSearchRate    = rate.Limit(5)
)

// ErrNotAuthenticated is returned when no live client is available for the
// session. This is routine, not exceptional: callers should prompt for
// re-authentication rather than report a failure.
var ErrNotAuthenticated = errors.New("not authenticated")

// Resolver converts a recommendation's song list into catalog track IDs,
// applying per-language market and popularity quality gates.
type Resolver struct {
	source        Source
	limiter       *rate.Limiter
	searchTimeout time.Duration
	logger        zerolog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSearchRate overrides the search pacing limit. Tests pass rate.Inf.
func WithSearchRate(limit rate.Limit) ResolverOption {
	return func(r *Resolver) { r.limiter = rate.NewLimiter(limit, 1) }
}

// WithSearchTimeout overrides the per-call timeout for catalog requests.
func WithSearchTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) { r.searchTimeout = d }
}

// NewResolver creates a Resolver backed by the given service source.
func NewResolver(source Source, logger zerolog.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		source:        source,
		limiter:       rate.NewLimiter(defaultSearchRate, 1),
		searchTimeout: defaultSearchTimeout,
		logger:        logger.With().Str("component", "resolver").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve searches the catalog for each recommended song in order, collecting
// up to targetCount unique track IDs that pass the language's quality gates.
// Unresolvable candidates are skipped, so the result may be shorter than
// targetCount; an empty result with a nil error means nothing matched.
// Returns ErrNotAuthenticated when the session has no live client.
func (r *Resolver) Resolve(ctx context.Context, sessionID string, rec *oracle.Recommendation, targetCount int) ([]string, error) {
	if targetCount <= 0 || len(rec.Songs) == 0 {
		return []string{}, nil
	}

	svc, err := r.source.Service(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("acquiring client: %w", err)
	}
	if svc == nil {
		return nil, ErrNotAuthenticated
	}

	profile := ProfileFor(rec.Language)
	r.logger.Info().
		Int("candidates", len(rec.Songs)).
		Str("language", rec.Language).
		Int("min_popularity", profile.MinPopularity).
		Msg("resolving recommended songs")

	trackIDs := make([]string, 0, targetCount)
	seen := make(map[string]struct{})

	for _, label := range rec.Songs {
		if len(trackIDs) >= targetCount {
			break
		}

		id, ok := r.resolveCandidate(ctx, svc, label, profile, seen)
		if !ok {
			r.logger.Warn().Str("candidate", label).Msg("could not resolve candidate")
			continue
		}

		trackIDs = append(trackIDs, id)
		seen[id] = struct{}{}
	}

	r.logger.Info().
		Int("resolved", len(trackIDs)).
		Int("candidates", len(rec.Songs)).
		Msg("resolution complete")
	return trackIDs, nil
}

// resolveCandidate tries every market/query combination for one candidate
// label and returns the first track ID that passes the quality gates.
func (r *Resolver) resolveCandidate(ctx context.Context, svc Service, label string, profile MarketProfile, seen map[string]struct{}) (string, bool) {
	artist, title := splitLabel(label)
	queries := searchQueries(artist, title)

	for _, market := range profile.Markets {
		for _, query := range queries {
			if err := r.limiter.Wait(ctx); err != nil {
				return "", false
			}

			tracks, err := r.search(ctx, svc, query, market)
			if err != nil {
				r.logger.Warn().Err(err).Str("query", query).Str("market", market).Msg("search failed")
				continue
			}

			if id, ok := r.pickTrack(ctx, svc, tracks, profile, seen); ok {
				return id, true
			}
		}
	}

	return "", false
}

// pickTrack inspects search results in order and returns the first track
// that is new, popular enough, and credited to at least one artist. A
// passing track is then held to a best-effort artist popularity check;
// a failed lookup never penalizes the track.
func (r *Resolver) pickTrack(ctx context.Context, svc Service, tracks []Track, profile MarketProfile, seen map[string]struct{}) (string, bool) {
	for _, track := range tracks {
		if _, dup := seen[track.ID]; dup {
			continue
		}
		if track.Popularity < profile.MinPopularity || len(track.Artists) == 0 {
			continue
		}

		pop, err := r.artistPopularity(ctx, svc, track.Artists[0].ID)
		if err == nil && pop < profile.MinPopularity-artistPopularityMargin {
			continue
		}

		r.logger.Info().
			Str("artist", track.Artists[0].Name).
			Str("track", track.Name).
			Int("popularity", track.Popularity).
			Msg("resolved")
		return track.ID, true
	}

	return "", false
}

func (r *Resolver) search(ctx context.Context, svc Service, query, market string) ([]Track, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.searchTimeout)
	defer cancel()
	return svc.SearchTracks(callCtx, query, market, searchPageSize)
}

func (r *Resolver) artistPopularity(ctx context.Context, svc Service, artistID string) (int, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.searchTimeout)
	defer cancel()
	return svc.ArtistPopularity(callCtx, artistID)
}

// splitLabel parses a "Artist - Song Title" label on the first separator
// occurrence. Labels without the separator are treated as bare titles.
func splitLabel(label string) (artist, title string) {
	if before, after, found := strings.Cut(label, " - "); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return "", strings.TrimSpace(label)
}

// searchQueries builds the fallback query chain for one candidate, most
// specific first: strict field matching, then quoted free text, then
// unquoted free text. LLM labels are often slightly wrong, so later queries
// trade precision for recall.
func searchQueries(artist, title string) []string {
	if artist != "" && title != "" {
		return []string{
			fmt.Sprintf(`artist:"%s" track:"%s"`, artist, title),
			fmt.Sprintf(`"%s" "%s"`, artist, title),
			fmt.Sprintf("%s %s", artist, title),
			fmt.Sprintf(`track:"%s"`, title),
		}
	}
	return []string{
		fmt.Sprintf(`"%s"`, title),
		title,
	}
}
