package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rewired-gh/deadredux/internal/logger"
	"github.com/rewired-gh/deadredux/internal/models"
)

// Notifier posts a pick and returns the message ID.
type Notifier interface {
	Announce(ctx context.Context, pick models.DailyPick, pageURL string) (int, error)
}

// Ledger remembers which featured dates were announced.
type Ledger interface {
	IsAnnounced(ctx context.Context, featuredDate string) (bool, error)
	RecordAnnouncement(ctx context.Context, a *models.Announcement) error
}

// Picker resolves the pick for a featured date.
type Picker interface {
	Today() string
	Pick(featuredDate string) (models.DailyPick, error)
}

// Announcer posts each day's pick once.
type Announcer struct {
	notifier Notifier
	ledger   Ledger
	picker   Picker
	pageURL  func(featuredDate string) string
	interval time.Duration
	now      func() time.Time

	// lastSent holds the latest date posted in this process, so a ledger
	// write failure cannot cause a repost on the next tick.
	mu       sync.Mutex
	lastSent string
}

// NewAnnouncer creates an announcer that checks for a new day every interval.
func NewAnnouncer(notifier Notifier, ledger Ledger, picker Picker, pageURL func(string) string, interval time.Duration) *Announcer {
	return &Announcer{
		notifier: notifier,
		ledger:   ledger,
		picker:   picker,
		pageURL:  pageURL,
		interval: interval,
		now:      time.Now,
	}
}

// Run announces today's pick immediately and then on every tick until ctx is done.
func (a *Announcer) Run(ctx context.Context) error {
	logger.Info("Announcer started (check interval: %v)", a.interval)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		if _, err := a.AnnounceDate(ctx, a.picker.Today()); err != nil {
			logger.Error("Announcement failed: %v", err)
		}

		select {
		case <-ctx.Done():
			logger.Info("Announcer stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// AnnounceDate posts the pick for featuredDate unless it was already posted.
// It reports whether a message was sent.
func (a *Announcer) AnnounceDate(ctx context.Context, featuredDate string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.lastSent == featuredDate {
		logger.Debug("Pick for %s already announced", featuredDate)
		return false, nil
	}

	announced, err := a.ledger.IsAnnounced(ctx, featuredDate)
	if err != nil {
		return false, err
	}
	if announced {
		logger.Debug("Pick for %s already announced", featuredDate)
		return false, nil
	}

	pick, err := a.picker.Pick(featuredDate)
	if err != nil {
		return false, err
	}

	pageURL := ""
	if a.pageURL != nil {
		pageURL = a.pageURL(featuredDate)
	}

	messageID, err := a.notifier.Announce(ctx, pick, pageURL)
	if err != nil {
		return false, fmt.Errorf("announce %s: %w", featuredDate, err)
	}
	a.lastSent = featuredDate

	record := &models.Announcement{
		FeaturedDate: pick.FeaturedDate,
		ShowDate:     pick.Show.Date,
		MessageID:    messageID,
		SentAt:       a.now().UTC(),
	}
	if err := a.ledger.RecordAnnouncement(ctx, record); err != nil {
		return true, fmt.Errorf("record announcement %s: %w", featuredDate, err)
	}

	logger.Info("Announced %s: %s, %s (%s)", featuredDate, pick.Show.Venue, pick.Show.Location, pick.Show.Date)
	return true, nil
}
