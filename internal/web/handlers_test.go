package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mooddj/mooddj/internal/auth"
	"github.com/mooddj/mooddj/internal/oracle"
	"github.com/mooddj/mooddj/internal/playlist"
)

// nilSource reports every session as unauthenticated.
type nilSource struct{}

func (nilSource) Service(context.Context, string) (playlist.Service, error) {
	return nil, nil
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	store := auth.NewFileTokenStore(t.TempDir())
	authenticator := auth.New("id", "secret", "http://127.0.0.1:8080/api/spotify-callback", store, logger)
	oracleClient := oracle.NewClient("test-key", logger)
	resolver := playlist.NewResolver(nilSource{}, logger)
	publisher := playlist.NewPublisher(nilSource{}, logger)

	handlers := NewHandlers(authenticator, oracleClient, resolver, publisher, "http://127.0.0.1:8080/api/spotify-callback", logger)
	srv := NewServer(ServerConfig{Addr: "127.0.0.1:0"}, handlers, logger)

	ts := httptest.NewServer(srv.router)
	t.Cleanup(ts.Close)
	return ts
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return body
}

func TestAuthStatus_NotAuthenticated(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/auth-status")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body := decodeBody(t, resp)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if body["authenticated"] != false {
		t.Errorf("authenticated = %v, want false", body["authenticated"])
	}
}

func TestAuthURL(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/auth-url")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body := decodeBody(t, resp)

	authURL, _ := body["auth_url"].(string)
	if !strings.Contains(authURL, "accounts.spotify.com/authorize") {
		t.Errorf("auth_url = %q, want Spotify authorize URL", authURL)
	}
	if !strings.Contains(authURL, "show_dialog=true") {
		t.Errorf("auth_url = %q, want show_dialog=true", authURL)
	}
	if body["redirect_uri"] != "http://127.0.0.1:8080/api/spotify-callback" {
		t.Errorf("redirect_uri = %v", body["redirect_uri"])
	}
}

func TestMoodPlaylist_RequiresAuth(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Post(ts.URL+"/api/mood-playlist", "application/json",
		strings.NewReader(`{"mood_text": "feeling great today", "language": "English"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body := decodeBody(t, resp)

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if body["auth_needed"] != true {
		t.Errorf("auth_needed = %v, want true", body["auth_needed"])
	}
}

func TestMoodPlaylist_EmptyMoodText(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Post(ts.URL+"/api/mood-playlist", "application/json",
		strings.NewReader(`{"mood_text": "  ", "language": "English"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body := decodeBody(t, resp)

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if msg, _ := body["error"].(string); msg == "" {
		t.Error("expected an error message")
	}
}

func TestCustomPlaylist_RequiresAuth(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Post(ts.URL+"/api/custom-playlist", "application/json",
		strings.NewReader(`{"user_prompt": "rainy day jazz", "num_songs": 15}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body := decodeBody(t, resp)

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if body["auth_needed"] != true {
		t.Errorf("auth_needed = %v, want true", body["auth_needed"])
	}
}

func TestCallback_ProviderError(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/spotify-callback?error=access_denied")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
}

func TestAuthenticate_MissingCallbackURL(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Post(ts.URL+"/api/authenticate", "application/json",
		strings.NewReader(`{"callback_url": ""}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSessionCookieIssued(t *testing.T) {
	ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/auth-status")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a session cookie to be set")
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"English", "English"},
		{"Spanish", "Spanish"},
		{"Auto-detect", "English"},
		{"auto-detect", "English"},
		{"", "English"},
		{"  Turkish  ", "Turkish"},
	}
	for _, tt := range tests {
		if got := normalizeLanguage(tt.in); got != tt.want {
			t.Errorf("normalizeLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"melancholic", "Melancholic"},
		{"quietly hopeful", "Quietly Hopeful"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := titleCase(tt.in); got != tt.want {
			t.Errorf("titleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
