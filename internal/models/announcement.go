package models

import (
	"errors"
	"time"
)

// Announcement records that a daily pick was posted to the notification channel.
type Announcement struct {
	FeaturedDate string    `json:"featured_date"`
	ShowDate     string    `json:"show_date"`
	MessageID    int       `json:"message_id"`
	SentAt       time.Time `json:"sent_at"`
}

// Validate checks that all announcement fields are valid
func (a *Announcement) Validate() error {
	if _, err := time.Parse(DateLayout, a.FeaturedDate); err != nil {
		return errors.New("featured date must be a YYYY-MM-DD calendar date")
	}
	if _, err := time.Parse(DateLayout, a.ShowDate); err != nil {
		return errors.New("show date must be a YYYY-MM-DD calendar date")
	}
	if a.SentAt.IsZero() {
		return errors.New("sent at must be set")
	}
	if a.SentAt.After(time.Now()) {
		return errors.New("sent at must not be in the future")
	}
	return nil
}
