package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rewired-gh/deadredux/internal/models"
)

func mustStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleDetails() *models.ShowDetails {
	return &models.ShowDetails{
		Date:        "1977-05-08",
		DisplayDate: "1977-05-08",
		Venue:       models.Venue{Name: "Barton Hall", Location: "Ithaca, NY"},
		Tour:        &models.Tour{Name: "Spring 1977"},
		AvgRating:   9.57,
		Sources: []models.Source{
			{
				ID:                 1,
				UpstreamIdentifier: "gd77-05-08.sbd.hicks.4982.sbeok.shnf",
				IsSoundboard:       true,
				AvgRatingWeighted:  9.4,
				NumReviews:         212,
				Sets: []models.Set{
					{Name: "Set 1", Tracks: []models.Track{{Title: "Loser", Duration: 420, TrackPosition: 1}}},
				},
			},
		},
	}
}

func TestStorage_DetailsRoundTrip(t *testing.T) {
	s := mustStorage(t)
	ctx := context.Background()

	if _, err := s.GetDetails(ctx, "1977-05-08"); !errors.Is(err, ErrNotCached) {
		t.Fatalf("Expected ErrNotCached, got %v", err)
	}

	fetchedAt := time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)
	if err := s.PutDetails(ctx, "1977-05-08", sampleDetails(), fetchedAt); err != nil {
		t.Fatalf("PutDetails failed: %v", err)
	}

	cached, err := s.GetDetails(ctx, "1977-05-08")
	if err != nil {
		t.Fatalf("GetDetails failed: %v", err)
	}
	if !cached.FetchedAt.Equal(fetchedAt) {
		t.Errorf("Expected fetched at %v, got %v", fetchedAt, cached.FetchedAt)
	}
	if cached.Details == nil {
		t.Fatal("Expected details, got nil")
	}
	if cached.Details.TourName() != "Spring 1977" {
		t.Errorf("Unexpected tour: %s", cached.Details.TourName())
	}
	if len(cached.Details.Sources) != 1 || cached.Details.Sources[0].Sets[0].Tracks[0].Title != "Loser" {
		t.Errorf("Unexpected sources: %+v", cached.Details.Sources)
	}
}

func TestStorage_NegativeLookupAndOverwrite(t *testing.T) {
	s := mustStorage(t)
	ctx := context.Background()

	first := time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)
	if err := s.PutDetails(ctx, "1966-01-01", nil, first); err != nil {
		t.Fatalf("PutDetails failed: %v", err)
	}

	cached, err := s.GetDetails(ctx, "1966-01-01")
	if err != nil {
		t.Fatalf("GetDetails failed: %v", err)
	}
	if cached.Details != nil {
		t.Errorf("Expected nil details for negative lookup, got %+v", cached.Details)
	}

	second := first.Add(25 * time.Hour)
	if err := s.PutDetails(ctx, "1966-01-01", sampleDetails(), second); err != nil {
		t.Fatalf("PutDetails overwrite failed: %v", err)
	}
	cached, err = s.GetDetails(ctx, "1966-01-01")
	if err != nil {
		t.Fatalf("GetDetails failed: %v", err)
	}
	if cached.Details == nil || !cached.FetchedAt.Equal(second) {
		t.Errorf("Expected overwritten row, got %+v", cached)
	}
}

func TestStorage_PruneDetails(t *testing.T) {
	s := mustStorage(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)

	_ = s.PutDetails(ctx, "1970-01-01", nil, now.Add(-48*time.Hour))
	_ = s.PutDetails(ctx, "1971-01-01", nil, now.Add(-30*time.Hour))
	_ = s.PutDetails(ctx, "1972-01-01", sampleDetails(), now.Add(-time.Hour))

	removed, err := s.PruneDetails(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneDetails failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 rows pruned, got %d", removed)
	}
	if _, err := s.GetDetails(ctx, "1970-01-01"); !errors.Is(err, ErrNotCached) {
		t.Errorf("Expected pruned row to be gone, got %v", err)
	}
	if _, err := s.GetDetails(ctx, "1972-01-01"); err != nil {
		t.Errorf("Expected fresh row to survive, got %v", err)
	}
}

func TestStorage_Announcements(t *testing.T) {
	s := mustStorage(t)
	ctx := context.Background()

	last, err := s.LastAnnouncement(ctx)
	if err != nil {
		t.Fatalf("LastAnnouncement failed: %v", err)
	}
	if last != nil {
		t.Errorf("Expected no announcements, got %+v", last)
	}

	sentAt := time.Now().Add(-time.Minute).UTC().Truncate(time.Millisecond)
	for _, a := range []models.Announcement{
		{FeaturedDate: "2026-02-16", ShowDate: "1974-06-18", MessageID: 10, SentAt: sentAt},
		{FeaturedDate: "2026-02-17", ShowDate: "1977-05-08", MessageID: 11, SentAt: sentAt},
	} {
		a := a
		if err := s.RecordAnnouncement(ctx, &a); err != nil {
			t.Fatalf("RecordAnnouncement failed: %v", err)
		}
	}

	// A duplicate keeps the original row.
	dup := models.Announcement{FeaturedDate: "2026-02-17", ShowDate: "1990-03-29", MessageID: 99, SentAt: sentAt}
	if err := s.RecordAnnouncement(ctx, &dup); err != nil {
		t.Fatalf("RecordAnnouncement duplicate failed: %v", err)
	}

	announced, err := s.IsAnnounced(ctx, "2026-02-17")
	if err != nil {
		t.Fatalf("IsAnnounced failed: %v", err)
	}
	if !announced {
		t.Error("Expected 2026-02-17 to be announced")
	}
	if announced, _ := s.IsAnnounced(ctx, "2026-02-18"); announced {
		t.Error("Expected 2026-02-18 not to be announced")
	}

	last, err = s.LastAnnouncement(ctx)
	if err != nil {
		t.Fatalf("LastAnnouncement failed: %v", err)
	}
	if last == nil || last.FeaturedDate != "2026-02-17" || last.ShowDate != "1977-05-08" || last.MessageID != 11 {
		t.Errorf("Unexpected last announcement: %+v", last)
	}
	if !last.SentAt.Equal(sentAt) {
		t.Errorf("Expected sent at %v, got %v", sentAt, last.SentAt)
	}

	bad := models.Announcement{FeaturedDate: "bad"}
	if err := s.RecordAnnouncement(ctx, &bad); err == nil {
		t.Error("Expected validation error for bad announcement")
	}
}

func TestStorage_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deadredux.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()
	if err := s.PutDetails(ctx, "1977-05-08", sampleDetails(), time.Now()); err != nil {
		t.Fatalf("PutDetails failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.GetDetails(ctx, "1977-05-08"); err != nil {
		t.Errorf("Expected row to persist across reopen, got %v", err)
	}
}
