package config

import (
	"errors"
	"strings"
	"testing"
)

func TestCleanCredential(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already clean",
			input: "abc123DEF456abc123def456ABC12345",
			want:  "abc123DEF456abc123def456ABC12345",
		},
		{
			name:  "surrounding whitespace",
			input: "  abc123  ",
			want:  "abc123",
		},
		{
			name:  "embedded newlines",
			input: "abc\n123\r",
			want:  "abc123",
		},
		{
			name:  "zero-width characters",
			input: "abc​123\ufeff",
			want:  "abc123",
		},
		{
			name:  "trailing ellipsis artifact",
			input: "abc123…",
			want:  "abc123",
		},
		{
			name:  "trailing dot artifact",
			input: "abc123.",
			want:  "abc123",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCredential(tt.input); got != tt.want {
				t.Errorf("CleanCredential(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	validID := strings.Repeat("a", 16) + strings.Repeat("1", 16)

	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name: "valid credentials",
			env: map[string]string{
				"GROQ_API_KEY":          "gsk_test",
				"SPOTIFY_CLIENT_ID":     validID,
				"SPOTIFY_CLIENT_SECRET": validID,
			},
			wantErr: nil,
		},
		{
			name: "missing groq key",
			env: map[string]string{
				"SPOTIFY_CLIENT_ID":     validID,
				"SPOTIFY_CLIENT_SECRET": validID,
			},
			wantErr: ErrMissingGroqKey,
		},
		{
			name: "missing spotify credentials",
			env: map[string]string{
				"GROQ_API_KEY": "gsk_test",
			},
			wantErr: ErrMissingCredentials,
		},
		{
			name: "client id too short",
			env: map[string]string{
				"GROQ_API_KEY":          "gsk_test",
				"SPOTIFY_CLIENT_ID":     "short",
				"SPOTIFY_CLIENT_SECRET": validID,
			},
			wantErr: ErrInvalidClientID,
		},
		{
			name: "client secret with invalid characters",
			env: map[string]string{
				"GROQ_API_KEY":          "gsk_test",
				"SPOTIFY_CLIENT_ID":     validID,
				"SPOTIFY_CLIENT_SECRET": strings.Repeat("a", 30) + "!!",
			},
			wantErr: ErrInvalidClientSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{
				"GROQ_API_KEY", "SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET",
				"SPOTIFY_REDIRECT_URI", "REPL_URL", "REPLIT_DEV_DOMAIN", "PORT",
			} {
				t.Setenv(key, "")
			}
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := Load()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}

			if tt.wantErr == nil {
				if cfg.SpotifyClientID != tt.env["SPOTIFY_CLIENT_ID"] {
					t.Errorf("SpotifyClientID = %q", cfg.SpotifyClientID)
				}
				if cfg.Addr != ":8080" {
					t.Errorf("Addr = %q, want :8080", cfg.Addr)
				}
			}
		})
	}
}

func TestResolveRedirectURI(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "explicit redirect URI wins",
			env: map[string]string{
				"SPOTIFY_REDIRECT_URI": "https://example.com/cb",
				"REPL_URL":             "https://app.repl.co",
			},
			want: "https://example.com/cb",
		},
		{
			name: "repl url upgraded to https",
			env:  map[string]string{"REPL_URL": "http://app.repl.co"},
			want: "https://app.repl.co/api/spotify-callback",
		},
		{
			name: "replit dev domain",
			env:  map[string]string{"REPLIT_DEV_DOMAIN": "xyz.replit.dev"},
			want: "https://xyz.replit.dev/api/spotify-callback",
		},
		{
			name: "local fallback",
			env:  map[string]string{},
			want: "http://127.0.0.1:8080/api/spotify-callback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"SPOTIFY_REDIRECT_URI", "REPL_URL", "REPLIT_DEV_DOMAIN"} {
				t.Setenv(key, "")
			}
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			if got := ResolveRedirectURI(); got != tt.want {
				t.Errorf("ResolveRedirectURI() = %q, want %q", got, tt.want)
			}
		})
	}
}
