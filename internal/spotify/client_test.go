package spotify

import (
	"testing"

	"github.com/zmb3/spotify/v2"
)

func TestConvertTrack(t *testing.T) {
	ft := spotify.FullTrack{
		SimpleTrack: spotify.SimpleTrack{
			ID:   "track123",
			URI:  "spotify:track:track123",
			Name: "Skinny Love",
			Artists: []spotify.SimpleArtist{
				{ID: "artist1", Name: "Bon Iver"},
			},
		},
		Popularity: 72,
	}

	got := convertTrack(ft)

	if got.ID != "track123" {
		t.Errorf("ID = %q", got.ID)
	}
	if got.URI != "spotify:track:track123" {
		t.Errorf("URI = %q", got.URI)
	}
	if got.Name != "Skinny Love" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Popularity != 72 {
		t.Errorf("Popularity = %d", got.Popularity)
	}
	if len(got.Artists) != 1 || got.Artists[0].Name != "Bon Iver" || got.Artists[0].ID != "artist1" {
		t.Errorf("Artists = %+v", got.Artists)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		track spotify.FullTrack
		want  string
	}{
		{
			name: "single artist",
			track: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					Name:    "Skinny Love",
					Artists: []spotify.SimpleArtist{{Name: "Bon Iver"}},
				},
			},
			want: "Skinny Love by Bon Iver",
		},
		{
			name: "multiple artists joined",
			track: spotify.FullTrack{
				SimpleTrack: spotify.SimpleTrack{
					Name: "Collab",
					Artists: []spotify.SimpleArtist{
						{Name: "Artist A"},
						{Name: "Artist B"},
					},
				},
			},
			want: "Collab by Artist A, Artist B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summarize(tt.track); got != tt.want {
				t.Errorf("summarize() = %q, want %q", got, tt.want)
			}
		})
	}
}
