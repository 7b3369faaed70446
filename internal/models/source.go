package models

import "errors"

// Source is one recording of a show.
type Source struct {
	ID                 int     `json:"id"`
	UUID               string  `json:"uuid"`
	UpstreamIdentifier string  `json:"upstreamIdentifier"` // archive.org item, e.g. "gd77-05-08.sbd.hicks.4982.sbeok.shnf"
	IsSoundboard       bool    `json:"isSoundboard"`
	IsRemaster         bool    `json:"isRemaster"`
	AvgRating          float64 `json:"avgRating"`
	AvgRatingWeighted  float64 `json:"avgRatingWeighted"`
	Duration           float64 `json:"duration"` // seconds
	NumReviews         int     `json:"numReviews"`
	FlacType           string  `json:"flacType"`
	Description        string  `json:"description,omitempty"`
	TaperNotes         string  `json:"taperNotes,omitempty"`
	SourceNote         string  `json:"source,omitempty"`
	Sets               []Set   `json:"sets"`
}

// Validate checks the fields the player and ranking rely on.
func (s *Source) Validate() error {
	if s.UpstreamIdentifier == "" {
		return errors.New("upstream identifier must not be empty")
	}
	if s.NumReviews < 0 {
		return errors.New("review count must not be negative")
	}
	if s.Duration < 0 {
		return errors.New("duration must not be negative")
	}
	return nil
}

// TotalDuration sums the durations of every track in every set, in seconds.
func (s *Source) TotalDuration() float64 {
	if s == nil {
		return 0
	}
	var total float64
	for _, set := range s.Sets {
		for _, track := range set.Tracks {
			if track.Duration > 0 {
				total += track.Duration
			}
		}
	}
	return total
}

// Set is a named group of tracks. Name is "" when Relisten reports null.
type Set struct {
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks"`
}

// Track is a single song within a set.
type Track struct {
	Title         string  `json:"title"`
	Duration      float64 `json:"duration"` // seconds
	TrackPosition int     `json:"trackPosition"`
	MP3URL        string  `json:"mp3Url"`
	FlacURL       string  `json:"flacUrl,omitempty"` // "" when no FLAC file exists
}
