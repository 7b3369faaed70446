package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/deadredux/internal/models"
	"github.com/rewired-gh/deadredux/internal/storage"
)

type fakeSender struct {
	failures int
	sent     []tgbotapi.MessageConfig
	calls    int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.calls++
	if f.calls <= f.failures {
		return tgbotapi.Message{}, errors.New("telegram unavailable")
	}
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable")
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{MessageID: 100 + f.calls}, nil
}

var cornell = models.DailyPick{
	FeaturedDate: "2026-02-17",
	Show: models.ShowSummary{
		Date:          "1977-05-08",
		Venue:         "Barton Hall, Cornell University",
		Location:      "Ithaca, NY, USA",
		AvgRating:     9.570934,
		SourceCount:   14,
		HasSoundboard: true,
	},
}

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Barton Hall", "Barton Hall"},
		{"9.6", "9\\.6"},
		{"Winterland (SF)", "Winterland \\(SF\\)"},
		{"Red Rocks - Morrison!", "Red Rocks \\- Morrison\\!"},
		{`a\b`, `a\\b`},
	}

	for _, tt := range tests {
		result := escapeMarkdownV2(tt.input)
		if result != tt.expected {
			t.Errorf("escapeMarkdownV2(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestFormatMessage(t *testing.T) {
	message := FormatMessage(cornell, "https://dead.example/2026-02-17")

	for _, want := range []string{
		"*Barton Hall, Cornell University*",
		"Ithaca, NY, USA",
		"May 8, 1977",
		"9\\.6 across 14 sources",
		"Soundboard available",
		"[Listen now](https://dead.example/2026-02-17)",
	} {
		if !strings.Contains(message, want) {
			t.Errorf("Expected message to contain %q, got:\n%s", want, message)
		}
	}

	bare := FormatMessage(models.DailyPick{Show: models.ShowSummary{Date: "1966-01-01", Venue: "Unknown Venue", Location: "Unknown Location"}}, "")
	if strings.Contains(bare, "⭐") || strings.Contains(bare, "Soundboard") || strings.Contains(bare, "Listen now") {
		t.Errorf("Expected bare message without rating, soundboard or link, got:\n%s", bare)
	}
}

func TestClientAnnounce_Retries(t *testing.T) {
	sender := &fakeSender{failures: 2}
	client, err := NewClientWithSender(sender, "12345", 3, time.Millisecond)
	if err != nil {
		t.Fatalf("NewClientWithSender failed: %v", err)
	}

	id, err := client.Announce(context.Background(), cornell, "https://dead.example/2026-02-17")
	if err != nil {
		t.Fatalf("Announce failed: %v", err)
	}
	if id != 103 {
		t.Errorf("Expected message ID 103, got %d", id)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("Expected 1 sent message, got %d", len(sender.sent))
	}
	if sender.sent[0].ChatID != 12345 || sender.sent[0].ParseMode != tgbotapi.ModeMarkdownV2 {
		t.Errorf("Unexpected message config: %+v", sender.sent[0])
	}
}

func TestClientAnnounce_GivesUp(t *testing.T) {
	sender := &fakeSender{failures: 10}
	client, _ := NewClientWithSender(sender, "12345", 3, time.Millisecond)

	if _, err := client.Announce(context.Background(), cornell, ""); err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if sender.calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", sender.calls)
	}
}

func TestNewClientWithSender_InvalidChatID(t *testing.T) {
	if _, err := NewClientWithSender(&fakeSender{}, "not-a-number", 3, time.Second); err == nil {
		t.Error("Expected error for invalid chat ID")
	}
}

type fakePicker struct {
	today string
}

func (p fakePicker) Today() string { return p.today }

func (p fakePicker) Pick(featuredDate string) (models.DailyPick, error) {
	pick := cornell
	pick.FeaturedDate = featuredDate
	return pick, nil
}

func TestAnnouncer_OncePerDay(t *testing.T) {
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer store.Close()

	sender := &fakeSender{}
	client, _ := NewClientWithSender(sender, "12345", 1, time.Millisecond)
	pageURL := func(date string) string { return "https://dead.example/" + date }
	announcer := NewAnnouncer(client, store, fakePicker{today: "2026-02-17"}, pageURL, time.Minute)
	ctx := context.Background()

	sent, err := announcer.AnnounceDate(ctx, "2026-02-17")
	if err != nil {
		t.Fatalf("AnnounceDate failed: %v", err)
	}
	if !sent {
		t.Error("Expected first announcement to be sent")
	}

	sent, err = announcer.AnnounceDate(ctx, "2026-02-17")
	if err != nil {
		t.Fatalf("AnnounceDate failed: %v", err)
	}
	if sent {
		t.Error("Expected repeat announcement to be skipped")
	}
	if len(sender.sent) != 1 {
		t.Errorf("Expected 1 message, got %d", len(sender.sent))
	}

	last, err := store.LastAnnouncement(ctx)
	if err != nil || last == nil {
		t.Fatalf("Expected a recorded announcement, got %v, %v", last, err)
	}
	if last.ShowDate != "1977-05-08" || last.MessageID != 101 {
		t.Errorf("Unexpected announcement: %+v", last)
	}
}

func TestAnnouncer_FailureNotRecorded(t *testing.T) {
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer store.Close()

	client, _ := NewClientWithSender(&fakeSender{failures: 5}, "12345", 1, time.Millisecond)
	announcer := NewAnnouncer(client, store, fakePicker{today: "2026-02-17"}, nil, time.Minute)

	if _, err := announcer.AnnounceDate(context.Background(), "2026-02-17"); err == nil {
		t.Fatal("Expected announce error")
	}
	if announced, _ := store.IsAnnounced(context.Background(), "2026-02-17"); announced {
		t.Error("Expected failed announcement not to be recorded")
	}
}

type brokenLedger struct {
	records int
}

func (l *brokenLedger) IsAnnounced(ctx context.Context, featuredDate string) (bool, error) {
	return false, nil
}

func (l *brokenLedger) RecordAnnouncement(ctx context.Context, a *models.Announcement) error {
	l.records++
	return errors.New("disk full")
}

func TestAnnouncer_RecordFailureDoesNotRepost(t *testing.T) {
	sender := &fakeSender{}
	client, _ := NewClientWithSender(sender, "12345", 1, time.Millisecond)
	ledger := &brokenLedger{}
	announcer := NewAnnouncer(client, ledger, fakePicker{today: "2026-02-17"}, nil, time.Minute)
	ctx := context.Background()

	sent, err := announcer.AnnounceDate(ctx, "2026-02-17")
	if !sent || err == nil {
		t.Fatalf("Expected sent with record error, got sent=%v err=%v", sent, err)
	}

	for i := 0; i < 3; i++ {
		sent, err := announcer.AnnounceDate(ctx, "2026-02-17")
		if err != nil {
			t.Fatalf("AnnounceDate failed: %v", err)
		}
		if sent {
			t.Errorf("Expected tick %d to skip an already posted date", i)
		}
	}
	if len(sender.sent) != 1 {
		t.Errorf("Expected 1 message for one featured date, got %d", len(sender.sent))
	}
	if ledger.records != 1 {
		t.Errorf("Expected 1 record attempt, got %d", ledger.records)
	}

	if sent, _ := announcer.AnnounceDate(ctx, "2026-02-18"); !sent {
		t.Error("Expected the next day to be announced")
	}
	if len(sender.sent) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(sender.sent))
	}
}

func TestAnnouncer_RunStopsOnCancel(t *testing.T) {
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer store.Close()

	sender := &fakeSender{}
	client, _ := NewClientWithSender(sender, "12345", 1, time.Millisecond)
	announcer := NewAnnouncer(client, store, fakePicker{today: "2026-02-17"}, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- announcer.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if announced, _ := store.IsAnnounced(context.Background(), "2026-02-17"); announced {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for first announcement")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil error on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
