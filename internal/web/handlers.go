package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/mooddj/mooddj/internal/auth"
	"github.com/mooddj/mooddj/internal/oracle"
	"github.com/mooddj/mooddj/internal/playlist"
)

const defaultPlaylistSize = 25

// Handlers carries the services behind the JSON API.
type Handlers struct {
	auth        *auth.Authenticator
	oracle      *oracle.Client
	resolver    *playlist.Resolver
	publisher   *playlist.Publisher
	redirectURI string
	logger      zerolog.Logger
}

func NewHandlers(a *auth.Authenticator, o *oracle.Client, r *playlist.Resolver, p *playlist.Publisher, redirectURI string, logger zerolog.Logger) *Handlers {
	return &Handlers{
		auth:        a,
		oracle:      o,
		resolver:    r,
		publisher:   p,
		redirectURI: redirectURI,
		logger:      logger,
	}
}

type authURLResponse struct {
	AuthURL     string `json:"auth_url"`
	RedirectURI string `json:"redirect_uri"`
}

type authenticateRequest struct {
	CallbackURL string `json:"callback_url"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type moodPlaylistRequest struct {
	MoodText string `json:"mood_text"`
	Language string `json:"language"`
}

type customPlaylistRequest struct {
	UserPrompt string `json:"user_prompt"`
	NumSongs   int    `json:"num_songs"`
	Language   string `json:"language"`
}

type playlistResponse struct {
	URL          string   `json:"url"`
	Name         string   `json:"name"`
	TrackCount   int      `json:"track_count"`
	SampleTracks []string `json:"sample_tracks"`
}

type moodAnalysisResponse struct {
	Emotion     string   `json:"emotion"`
	Themes      []string `json:"themes"`
	Genres      []string `json:"genres"`
	EnergyLevel int      `json:"energy_level"`
	Description string   `json:"mood_description"`
	Language    string   `json:"language_preference"`
}

type conceptResponse struct {
	PlaylistName string   `json:"playlist_name"`
	Description  string   `json:"description"`
	Themes       []string `json:"themes"`
	Genres       []string `json:"genres"`
	EnergyLevel  int      `json:"energy_level"`
	Language     string   `json:"language_preference"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"error": message})
}

func respondAuthNeeded(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusUnauthorized, map[string]any{
		"error":       message,
		"auth_needed": true,
	})
}

// handleAuthURL returns the Spotify consent URL for this session.
func (h *Handlers) handleAuthURL(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(w, r)
	respondJSON(w, http.StatusOK, authURLResponse{
		AuthURL:     h.auth.AuthURL(sid),
		RedirectURI: h.redirectURI,
	})
}

// handleCallback is the landing page Spotify redirects to. It completes
// the code exchange directly so the browser tab can simply be closed.
func (h *Handlers) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errCode := q.Get("error"); errCode != "" {
		h.renderCallbackPage(w, false, "Authorization was denied: "+errCode)
		return
	}
	if q.Get("code") == "" {
		h.renderCallbackPage(w, false, "No authorization code received from Spotify.")
		return
	}

	// Spotify does not forward our session cookie on the redirect in all
	// browsers, so fall back to the state parameter carrying the session id.
	sid := q.Get("state")
	if sid == "" {
		sid = currentSessionID(r)
	}

	callbackURL := h.redirectURI + "?" + r.URL.RawQuery
	name, err := h.auth.AuthenticateWithCode(r.Context(), callbackURL, sid)
	if err != nil {
		h.logger.Warn().Err(err).Msg("callback authentication failed")
		h.renderCallbackPage(w, false, "Authentication failed. Return to the app and try again.")
		return
	}
	h.renderCallbackPage(w, true, "Connected as "+name+". You can close this tab and return to the app.")
}

func (h *Handlers) renderCallbackPage(w http.ResponseWriter, ok bool, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	status := "Authentication failed"
	if ok {
		status = "Authentication complete"
	}
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Mood DJ</title></head>
<body style="font-family: sans-serif; text-align: center; margin-top: 4em">
<h1>%s</h1>
<p>%s</p>
</body>
</html>
`, status, message)
}

// handleAuthenticate completes the OAuth flow from a pasted callback URL,
// for deployments where the redirect lands outside the app.
func (h *Handlers) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.CallbackURL) == "" {
		respondError(w, http.StatusBadRequest, "Callback URL is required")
		return
	}

	sid := sessionID(w, r)
	name, err := h.auth.AuthenticateWithCode(r.Context(), req.CallbackURL, sid)
	if err != nil {
		var denied *auth.AuthorizationDeniedError
		switch {
		case errors.As(err, &denied):
			respondError(w, http.StatusBadRequest, denied.Error())
		case errors.Is(err, auth.ErrMissingAuthCode):
			respondError(w, http.StatusBadRequest, "No authorization code found in the callback URL.")
		default:
			h.logger.Warn().Err(err).Msg("authentication failed")
			respondError(w, http.StatusBadRequest, "Authentication failed. Please try again.")
		}
		return
	}

	respondJSON(w, http.StatusOK, statusResponse{
		Success: true,
		Message: "Connected to Spotify as " + name,
	})
}

func (h *Handlers) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(w, r)
	respondJSON(w, http.StatusOK, map[string]bool{
		"authenticated": h.auth.IsAuthenticated(r.Context(), sid),
	})
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(w, r)
	if err := h.auth.Logout(r.Context(), sid); err != nil {
		h.logger.Warn().Err(err).Str("session", sid).Msg("logout failed")
	}
	respondJSON(w, http.StatusOK, statusResponse{Success: true, Message: "Logged out"})
}

// handleMoodPlaylist runs the full pipeline: analyze the mood text,
// resolve the suggested songs against Spotify, and publish a playlist.
func (h *Handlers) handleMoodPlaylist(w http.ResponseWriter, r *http.Request) {
	var req moodPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.MoodText) == "" {
		respondError(w, http.StatusBadRequest, "Please describe how you're feeling today!")
		return
	}
	language := normalizeLanguage(req.Language)

	sid := sessionID(w, r)
	if !h.auth.IsAuthenticated(r.Context(), sid) {
		respondAuthNeeded(w, "Authentication required")
		return
	}

	rec, err := h.oracle.AnalyzeMood(r.Context(), req.MoodText, language)
	if err != nil {
		respondError(w, http.StatusBadRequest, moodErrorMessage(err))
		return
	}

	trackIDs, err := h.resolver.Resolve(r.Context(), sid, rec, defaultPlaylistSize)
	if err != nil {
		if errors.Is(err, playlist.ErrNotAuthenticated) {
			respondAuthNeeded(w, "Authentication expired")
			return
		}
		h.logger.Error().Err(err).Msg("track resolution failed")
		respondError(w, http.StatusInternalServerError, "Failed to search for tracks. Please try again.")
		return
	}
	if len(trackIDs) == 0 {
		respondError(w, http.StatusNotFound, "Couldn't find quality tracks matching your mood. Try different words.")
		return
	}

	name := titleCase(rec.Emotion) + " Vibes – " + time.Now().Format("January 2006")
	description := "🎵 " + rec.Description + " | Curated by Mood DJ with " + language + " preference"

	result, err := h.publisher.Publish(r.Context(), sid, name, description, trackIDs)
	if err != nil {
		if errors.Is(err, playlist.ErrNotAuthenticated) {
			respondAuthNeeded(w, "Authentication expired")
			return
		}
		h.logger.Error().Err(err).Msg("playlist creation failed")
		respondError(w, http.StatusInternalServerError, "Failed to create playlist. Please try again.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"playlist": toPlaylistResponse(result),
		"mood_analysis": moodAnalysisResponse{
			Emotion:     rec.Emotion,
			Themes:      rec.Themes,
			Genres:      rec.Genres,
			EnergyLevel: rec.EnergyLevel,
			Description: rec.Description,
			Language:    rec.Language,
		},
	})
}

// handleCustomPlaylist builds a playlist from a free-form concept prompt.
func (h *Handlers) handleCustomPlaylist(w http.ResponseWriter, r *http.Request) {
	var req customPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserPrompt) == "" {
		respondError(w, http.StatusBadRequest, "Please provide a detailed description of your desired playlist!")
		return
	}
	numSongs := req.NumSongs
	if numSongs <= 0 {
		numSongs = defaultPlaylistSize
	}
	language := normalizeLanguage(req.Language)

	sid := sessionID(w, r)
	if !h.auth.IsAuthenticated(r.Context(), sid) {
		respondAuthNeeded(w, "Authentication required")
		return
	}

	rec, err := h.oracle.CustomPlaylist(r.Context(), req.UserPrompt, numSongs, language)
	if err != nil {
		respondError(w, http.StatusBadRequest, moodErrorMessage(err))
		return
	}

	trackIDs, err := h.resolver.Resolve(r.Context(), sid, rec, numSongs)
	if err != nil {
		if errors.Is(err, playlist.ErrNotAuthenticated) {
			respondAuthNeeded(w, "Authentication expired")
			return
		}
		h.logger.Error().Err(err).Msg("track resolution failed")
		respondError(w, http.StatusInternalServerError, "Failed to search for tracks. Please try again.")
		return
	}
	if len(trackIDs) == 0 {
		respondError(w, http.StatusNotFound, "Couldn't find quality tracks matching your description. Try a different approach.")
		return
	}

	name := rec.PlaylistName
	if name == "" {
		name = "Custom Mix – " + time.Now().Format("January 2006")
	}
	description := rec.Description + " | Curated by Mood DJ"

	result, err := h.publisher.Publish(r.Context(), sid, name, description, trackIDs)
	if err != nil {
		if errors.Is(err, playlist.ErrNotAuthenticated) {
			respondAuthNeeded(w, "Authentication expired")
			return
		}
		h.logger.Error().Err(err).Msg("playlist creation failed")
		respondError(w, http.StatusInternalServerError, "Failed to create playlist. Please try again.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"playlist": toPlaylistResponse(result),
		"playlist_concept": conceptResponse{
			PlaylistName: rec.PlaylistName,
			Description:  rec.Description,
			Themes:       rec.Themes,
			Genres:       rec.Genres,
			EnergyLevel:  rec.EnergyLevel,
			Language:     rec.Language,
		},
	})
}

func toPlaylistResponse(result *playlist.Result) playlistResponse {
	return playlistResponse{
		URL:          result.URL,
		Name:         result.Name,
		TrackCount:   result.TrackCount,
		SampleTracks: result.SampleTracks,
	}
}

func moodErrorMessage(err error) string {
	switch {
	case errors.Is(err, oracle.ErrInputTooShort):
		return "Please describe your request in a few more words."
	case errors.Is(err, oracle.ErrParseFailed):
		return "Couldn't understand the analysis. Try describing it differently."
	case errors.Is(err, oracle.ErrUnavailable):
		return "Mood analysis is temporarily unavailable. Please try again."
	default:
		return "Mood analysis failed. Please try again."
	}
}

// normalizeLanguage maps the UI's auto-detect option onto the default
// track market profile.
func normalizeLanguage(language string) string {
	language = strings.TrimSpace(language)
	if language == "" || strings.EqualFold(language, "auto-detect") {
		return "English"
	}
	return language
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
