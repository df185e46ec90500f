package playlist

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestPublish(t *testing.T) {
	svc := &fakeService{
		summaries: []string{"Skinny Love by Bon Iver", "Holocene by Bon Iver"},
	}
	publisher := NewPublisher(&fakeSource{svc: svc}, zerolog.Nop())

	result, err := publisher.Publish(context.Background(), "s1", "Chill Vibes", "a description", []string{"t1", "t2"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if svc.createdName != "Chill Vibes" || svc.createdDesc != "a description" {
		t.Errorf("created playlist = (%q, %q)", svc.createdName, svc.createdDesc)
	}
	if len(svc.addedTracks) != 2 {
		t.Errorf("added %d tracks, want 2", len(svc.addedTracks))
	}
	if result.TrackCount != 2 {
		t.Errorf("TrackCount = %d, want 2", result.TrackCount)
	}
	if result.URL == "" {
		t.Error("result URL is empty")
	}
	if len(result.SampleTracks) != 2 {
		t.Errorf("SampleTracks = %v", result.SampleTracks)
	}
}

func TestPublish_NoTracks(t *testing.T) {
	// The playlist is created before the track list is checked, so the
	// provider ends up with an empty playlist even though Publish fails.
	svc := &fakeService{}
	publisher := NewPublisher(&fakeSource{svc: svc}, zerolog.Nop())

	_, err := publisher.Publish(context.Background(), "s1", "Empty", "desc", nil)
	if !errors.Is(err, ErrNoTracksFound) {
		t.Fatalf("Publish() error = %v, want ErrNoTracksFound", err)
	}
	if svc.createdName != "Empty" {
		t.Error("playlist was not created before the empty-track check")
	}
	if len(svc.addedTracks) != 0 {
		t.Errorf("added %d tracks, want 0", len(svc.addedTracks))
	}
}

func TestPublish_Unauthenticated(t *testing.T) {
	publisher := NewPublisher(&fakeSource{}, zerolog.Nop())

	_, err := publisher.Publish(context.Background(), "s1", "Name", "desc", []string{"t1"})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Publish() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestPublish_CreateFails(t *testing.T) {
	svc := &fakeService{createErr: errors.New("quota exceeded")}
	publisher := NewPublisher(&fakeSource{svc: svc}, zerolog.Nop())

	_, err := publisher.Publish(context.Background(), "s1", "Name", "desc", []string{"t1"})
	if err == nil {
		t.Fatal("Publish() expected error")
	}
	if len(svc.addedTracks) != 0 {
		t.Error("tracks added despite create failure")
	}
}

func TestPublish_SummaryFailureIsNotFatal(t *testing.T) {
	// fakeService returns an error from TrackSummaries when none are set.
	svc := &fakeService{}
	publisher := NewPublisher(&fakeSource{svc: svc}, zerolog.Nop())

	result, err := publisher.Publish(context.Background(), "s1", "Name", "desc", []string{"t1"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if result.SampleTracks != nil {
		t.Errorf("SampleTracks = %v, want nil", result.SampleTracks)
	}
	if result.TrackCount != 1 {
		t.Errorf("TrackCount = %d, want 1", result.TrackCount)
	}
}
