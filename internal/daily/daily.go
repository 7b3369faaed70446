// Package daily maps calendar dates to catalog shows.
//
// Selection hashes "dead-redux-" + date with a djb2 variant that XORs each
// UTF-16 code unit into the running hash instead of adding it, wrapping at
// 32 bits. Shared links depend on every date mapping to the same show forever,
// so the hash must stay bit-exact; do not replace it with canonical djb2.
package daily

import (
	"errors"
	"fmt"
	"regexp"
	"time"
	"unicode/utf16"

	"github.com/rewired-gh/deadredux/internal/models"
)

// DefaultLaunchDate is the first day a pick was featured. The archive starts here.
const DefaultLaunchDate = "2026-02-16"

const (
	seedPrefix = "dead-redux-"
	hashSeed   = 5381
)

// ErrInvalidDate is returned for date strings that are not real YYYY-MM-DD calendar dates.
var ErrInvalidDate = errors.New("invalid date")

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Shows is the read-only view of the catalog the selector needs.
type Shows interface {
	Len() int
	At(i int) models.ShowSummary
}

// Hash returns the 32-bit djb2-xor hash of s.
func Hash(s string) uint32 {
	h := uint32(hashSeed)
	for _, unit := range utf16.Encode([]rune(s)) {
		h = (h * 33) ^ uint32(unit)
	}
	return h
}

// IsValidDate reports whether s is a YYYY-MM-DD string naming a real calendar date.
func IsValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

// DateOf formats t as a UTC calendar date.
func DateOf(t time.Time) string {
	return t.UTC().Format(models.DateLayout)
}

// TodayUTC returns the current UTC calendar date.
func TodayUTC() string {
	return DateOf(time.Now())
}

func parseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Selector picks the show for a date. It holds no mutable state and is safe
// for concurrent use.
type Selector struct {
	shows Shows
	now   func() time.Time
}

// NewSelector creates a selector over a non-empty catalog.
func NewSelector(shows Shows) *Selector {
	return &Selector{shows: shows, now: time.Now}
}

// WithClock returns a copy of the selector that reads the current time from now.
func (s *Selector) WithClock(now func() time.Time) *Selector {
	cp := *s
	cp.now = now
	return &cp
}

// Today returns the current UTC calendar date according to the selector's clock.
func (s *Selector) Today() string {
	return DateOf(s.now())
}

// Count returns the number of shows available for selection.
func (s *Selector) Count() int {
	return s.shows.Len()
}

// Select returns the show for date. An empty date means today (UTC).
// The date is not validated; callers check IsValidDate first.
func (s *Selector) Select(date string) models.ShowSummary {
	if date == "" {
		date = s.Today()
	}
	index := Hash(seedPrefix+date) % uint32(s.shows.Len())
	return s.shows.At(int(index))
}

// Pick returns the daily pick for date.
func (s *Selector) Pick(date string) models.DailyPick {
	if date == "" {
		date = s.Today()
	}
	return models.DailyPick{
		FeaturedDate: date,
		Show:         s.Select(date),
	}
}

// Range returns the picks for every day from start to end inclusive, newest first.
// A start after end yields an empty slice.
func (s *Selector) Range(start, end string) ([]models.DailyPick, error) {
	from, err := parseDate(start)
	if err != nil {
		return nil, fmt.Errorf("range start: %w", err)
	}
	to, err := parseDate(end)
	if err != nil {
		return nil, fmt.Errorf("range end: %w", err)
	}

	if from.After(to) {
		return []models.DailyPick{}, nil
	}

	days := int(to.Sub(from).Hours()/24) + 1
	picks := make([]models.DailyPick, 0, days)
	for day := to; !day.Before(from); day = day.AddDate(0, 0, -1) {
		picks = append(picks, s.Pick(day.Format(models.DateLayout)))
	}
	return picks, nil
}

// SinceLaunch returns every pick from launch through today, newest first, or
// an empty slice when today is before launch.
func (s *Selector) SinceLaunch(launch string) ([]models.DailyPick, error) {
	today := s.Today()
	if today < launch {
		return []models.DailyPick{}, nil
	}
	return s.Range(launch, today)
}
