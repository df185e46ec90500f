// Package oracle turns free-text mood descriptions and playlist concepts
// into structured recommendations using the Groq chat completions API.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://api.groq.com/openai/v1"
	defaultModel   = "llama3-70b-8192"
	requestTimeout = 30 * time.Second
)

// Sentinel errors.
var (
	// ErrInputTooShort is returned when the user's text is too short to
	// analyze meaningfully.
	ErrInputTooShort = errors.New("input text too short")

	// ErrParseFailed is returned when the model's response cannot be parsed
	// into a recommendation. Callers should surface a "could not understand"
	// message rather than the raw parse failure.
	ErrParseFailed = errors.New("could not parse model response")

	// ErrUnavailable is returned on transport or API failures.
	ErrUnavailable = errors.New("recommendation service unavailable")
)

// Client is a Groq chat completions client.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// NewClient creates a Groq client with the given API key.
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger.With().Str("component", "oracle").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AnalyzeMood asks the model for a mood analysis with song recommendations.
func (c *Client) AnalyzeMood(ctx context.Context, text, language string) (*Recommendation, error) {
	if len(strings.TrimSpace(text)) < 3 {
		return nil, fmt.Errorf("%w: describe your mood in a few words", ErrInputTooShort)
	}
	if language == "" {
		language = "English"
	}

	content, err := c.complete(ctx, moodPrompt(text, language), 1024)
	if err != nil {
		return nil, err
	}

	var payload moodPayload
	if err := unmarshalModelJSON(content, &payload); err != nil {
		c.logger.Error().Err(err).Msg("failed to parse mood analysis")
		return nil, ErrParseFailed
	}
	if payload.Emotion == "" || len(payload.Genres) == 0 || payload.MoodDescription == "" || len(payload.RecommendedSongs) == 0 {
		c.logger.Error().Msg("mood analysis missing required fields")
		return nil, ErrParseFailed
	}

	if payload.Language == "" {
		payload.Language = language
	}

	return &Recommendation{
		Emotion:     payload.Emotion,
		Description: payload.MoodDescription,
		Themes:      payload.Themes,
		Genres:      payload.Genres,
		EnergyLevel: payload.EnergyLevel,
		Language:    payload.Language,
		Songs:       payload.RecommendedSongs,
	}, nil
}

// CustomPlaylist asks the model for a playlist concept matching the user's
// description, with numSongs candidate songs.
func (c *Client) CustomPlaylist(ctx context.Context, userPrompt string, numSongs int, language string) (*Recommendation, error) {
	if len(strings.TrimSpace(userPrompt)) < 5 {
		return nil, fmt.Errorf("%w: provide a more detailed description of your playlist", ErrInputTooShort)
	}
	if language == "" {
		language = "English"
	}

	content, err := c.complete(ctx, conceptPrompt(userPrompt, numSongs, language), 1536)
	if err != nil {
		return nil, err
	}

	var payload conceptPayload
	if err := unmarshalModelJSON(content, &payload); err != nil {
		c.logger.Error().Err(err).Msg("failed to parse playlist concept")
		return nil, ErrParseFailed
	}
	if payload.PlaylistName == "" || payload.Description == "" || len(payload.Genres) == 0 || len(payload.RecommendedSongs) == 0 {
		c.logger.Error().Msg("playlist concept missing required fields")
		return nil, ErrParseFailed
	}

	if payload.Language == "" {
		payload.Language = language
	}

	return &Recommendation{
		PlaylistName: payload.PlaylistName,
		Description:  payload.Description,
		Themes:       payload.Themes,
		Genres:       payload.Genres,
		EnergyLevel:  payload.EnergyLevel,
		Language:     payload.Language,
		Songs:        payload.RecommendedSongs,
	}, nil
}

// complete sends one chat completion request and returns the message content.
func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("completion request failed")
		return "", ErrUnavailable
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ErrUnavailable
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", ErrUnavailable
	}
	if parsed.Error != nil {
		c.logger.Error().Str("type", parsed.Error.Type).Str("message", parsed.Error.Message).Msg("API error")
		return "", ErrUnavailable
	}
	if resp.StatusCode != http.StatusOK || len(parsed.Choices) == 0 {
		c.logger.Error().Int("status", resp.StatusCode).Msg("unexpected completion response")
		return "", ErrUnavailable
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// unmarshalModelJSON extracts the first balanced {...} block from content
// and unmarshals it into v. Models wrap their JSON in prose often enough
// that decoding the raw content directly is not reliable.
func unmarshalModelJSON(content string, v any) error {
	block, ok := extractJSONBlock(content)
	if !ok {
		return errors.New("no JSON object in response")
	}
	return json.Unmarshal([]byte(block), v)
}

// extractJSONBlock returns the first balanced top-level {...} block,
// tracking string literals and escapes so braces inside values don't
// terminate the scan early.
func extractJSONBlock(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
