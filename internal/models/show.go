// Package models defines the core domain entities for the dead-redux application.
// These models represent catalog entries, daily picks, and the show details fetched
// from Relisten at render time.
//
// Terminology (matching Relisten's own naming):
//   - Show: one concert on one calendar date.
//   - Source: one recording (taping) of a show. A show usually has several.
//   - Set: a named block of tracks within a source ("Set 1", "Encore").
package models

import (
	"errors"
	"time"
)

// DateLayout is the ISO calendar date layout used for every date string in the app.
const DateLayout = "2006-01-02"

// ShowSummary is the minimal show record stored in the static catalog.
// Full details are fetched at render time from Relisten.
type ShowSummary struct {
	Date          string  `json:"date"`          // ISO date: "1977-05-08"
	Venue         string  `json:"venue"`         // "Barton Hall, Cornell University"
	Location      string  `json:"location"`      // "Ithaca, NY, USA"
	AvgRating     float64 `json:"avgRating"`     // 0-10 scale
	SourceCount   int     `json:"sourceCount"`   // number of available recordings
	HasSoundboard bool    `json:"hasSoundboard"` // a soundboard recording exists
}

// Validate checks that all summary fields are valid.
func (s *ShowSummary) Validate() error {
	if _, err := time.Parse(DateLayout, s.Date); err != nil {
		return errors.New("show date must be a YYYY-MM-DD calendar date")
	}
	if s.AvgRating < 0.0 || s.AvgRating > 10.0 {
		return errors.New("average rating must be between 0.0 and 10.0")
	}
	if s.SourceCount < 0 {
		return errors.New("source count must not be negative")
	}
	return nil
}

// DailyPick is the show assigned to one calendar date.
type DailyPick struct {
	FeaturedDate string      `json:"featuredDate"` // the date the show was featured: "2026-02-16"
	Show         ShowSummary `json:"show"`
}

// Venue is where a show was played.
type Venue struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Tour names the tour a show belongs to.
type Tour struct {
	Name string `json:"name"`
}

// ShowDetails is the full show record fetched from Relisten.
type ShowDetails struct {
	Date        string   `json:"date"`
	DisplayDate string   `json:"displayDate"`
	Venue       Venue    `json:"venue"`
	Tour        *Tour    `json:"tour"` // nil when the show is not part of a named tour
	Sources     []Source `json:"sources"`
	AvgRating   float64  `json:"avgRating"`
}

// TourName returns the tour name or "" when the show has no tour.
func (d *ShowDetails) TourName() string {
	if d == nil || d.Tour == nil {
		return ""
	}
	return d.Tour.Name
}
