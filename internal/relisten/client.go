// Package relisten is a client for the Relisten API (api.relisten.net).
//
// It serves two callers: the catalog ingestion command, which lists years and
// the shows in each year, and the page service, which looks up full show
// details (sources, sets, tracks) for one date. Responses are mapped into the
// internal models with Relisten's nulls replaced by defaults.
//
// Requests are never retried. A details lookup tries the per-year path first
// and the per-show path second, in that order, and reports "no details" only
// when both answer with a non-success status.
package relisten

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rewired-gh/deadredux/internal/logger"
	"github.com/rewired-gh/deadredux/internal/models"
)

// DefaultAPIBaseURL is the Grateful Dead artist root of the Relisten v2 API.
const DefaultAPIBaseURL = "https://api.relisten.net/api/v2/artists/grateful-dead"

const (
	unknownVenue    = "Unknown Venue"
	unknownLocation = "Unknown Location"
)

// ErrUnexpectedStatus is wrapped by errors for non-2xx responses on endpoints
// that have no fallback.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client provides access to the Relisten API
type Client struct {
	apiBaseURL string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new Relisten client. A zero timeout leaves the
// transport default in place.
func NewClient(apiBaseURL string, timeout time.Duration, userAgent string) *Client {
	return &Client{
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Year is one touring year and its show count.
type Year struct {
	Year      string `json:"year"`
	ShowCount int    `json:"show_count"`
}

type relistenVenue struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type relistenTour struct {
	Name string `json:"name"`
}

type relistenYearShow struct {
	DisplayDate         string         `json:"display_date"`
	Venue               *relistenVenue `json:"venue"`
	AvgRating           float64        `json:"avg_rating"`
	SourceCount         int            `json:"source_count"`
	HasSoundboardSource bool           `json:"has_soundboard_source"`
}

type relistenYearResponse struct {
	Shows []relistenYearShow `json:"shows"`
}

type relistenShowResponse struct {
	Date        string           `json:"date"`
	DisplayDate string           `json:"display_date"`
	Venue       *relistenVenue   `json:"venue"`
	Tour        *relistenTour    `json:"tour"`
	Sources     []relistenSource `json:"sources"`
	AvgRating   float64          `json:"avg_rating"`
}

type relistenSource struct {
	ID                 int           `json:"id"`
	UUID               string        `json:"uuid"`
	UpstreamIdentifier string        `json:"upstream_identifier"`
	IsSoundboard       bool          `json:"is_soundboard"`
	IsRemaster         bool          `json:"is_remaster"`
	AvgRating          float64       `json:"avg_rating"`
	AvgRatingWeighted  float64       `json:"avg_rating_weighted"`
	Duration           float64       `json:"duration"`
	NumReviews         int           `json:"num_reviews"`
	FlacType           string        `json:"flac_type"`
	Description        *string       `json:"description"`
	TaperNotes         *string       `json:"taper_notes"`
	Source             *string       `json:"source"`
	Sets               []relistenSet `json:"sets"`
}

type relistenSet struct {
	Name   *string         `json:"name"`
	Tracks []relistenTrack `json:"tracks"`
}

type relistenTrack struct {
	Title         string  `json:"title"`
	Duration      float64 `json:"duration"`
	TrackPosition int     `json:"track_position"`
	MP3URL        string  `json:"mp3_url"`
	FlacURL       *string `json:"flac_url"`
}

// FetchYears lists every touring year with its show count.
func (c *Client) FetchYears(ctx context.Context) ([]Year, error) {
	url := c.apiBaseURL + "/years"

	var years []Year
	if err := c.getJSON(ctx, url, &years); err != nil {
		return nil, fmt.Errorf("failed to fetch years: %w", err)
	}
	return years, nil
}

// FetchYearShows lists the shows of one year as catalog summaries.
func (c *Client) FetchYearShows(ctx context.Context, year string) ([]models.ShowSummary, error) {
	url := fmt.Sprintf("%s/years/%s", c.apiBaseURL, year)

	var response relistenYearResponse
	if err := c.getJSON(ctx, url, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch shows for %s: %w", year, err)
	}

	shows := make([]models.ShowSummary, 0, len(response.Shows))
	for _, s := range response.Shows {
		venue, location := venueOrDefault(s.Venue)
		shows = append(shows, models.ShowSummary{
			Date:          s.DisplayDate,
			Venue:         venue,
			Location:      location,
			AvgRating:     s.AvgRating,
			SourceCount:   s.SourceCount,
			HasSoundboard: s.HasSoundboardSource,
		})
	}
	return shows, nil
}

// FetchShowDetails looks up a show by ISO date. It returns (nil, nil) when
// neither lookup path knows the show; transport and decode failures are errors.
func (c *Client) FetchShowDetails(ctx context.Context, date string) (*models.ShowDetails, error) {
	year, _, _ := strings.Cut(date, "-")
	candidates := []string{
		fmt.Sprintf("%s/years/%s/%s", c.apiBaseURL, year, date),
		fmt.Sprintf("%s/shows/%s", c.apiBaseURL, date),
	}

	for _, url := range candidates {
		var response relistenShowResponse
		found, err := c.lookupJSON(ctx, url, &response)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch show %s: %w", date, err)
		}
		if found {
			return parseShowResponse(&response), nil
		}
		logger.Debug("Relisten has no show at %s", url)
	}

	return nil, nil
}

// getJSON decodes a 2xx response into v and treats any other status as an error.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	found, err := c.lookupJSON(ctx, url, v)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w from %s", ErrUnexpectedStatus, url)
	}
	return nil
}

// lookupJSON decodes a 2xx response into v and reports found=false for any
// other status.
func (c *Client) lookupJSON(ctx context.Context, url string, v any) (bool, error) {
	resp, err := c.doRequest(ctx, url)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Debug("GET %s returned %d", url, resp.StatusCode)
		return false, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return true, nil
}

// doRequest performs a single GET request
func (c *Client) doRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	return c.httpClient.Do(req)
}

func venueOrDefault(v *relistenVenue) (string, string) {
	if v == nil {
		return unknownVenue, unknownLocation
	}
	return v.Name, v.Location
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseShowResponse(data *relistenShowResponse) *models.ShowDetails {
	name, location := venueOrDefault(data.Venue)

	details := &models.ShowDetails{
		Date:        data.Date,
		DisplayDate: data.DisplayDate,
		Venue:       models.Venue{Name: name, Location: location},
		Sources:     make([]models.Source, 0, len(data.Sources)),
		AvgRating:   data.AvgRating,
	}
	if data.Tour != nil {
		details.Tour = &models.Tour{Name: data.Tour.Name}
	}
	for i := range data.Sources {
		details.Sources = append(details.Sources, parseSource(&data.Sources[i]))
	}
	return details
}

func parseSource(s *relistenSource) models.Source {
	source := models.Source{
		ID:                 s.ID,
		UUID:               s.UUID,
		UpstreamIdentifier: s.UpstreamIdentifier,
		IsSoundboard:       s.IsSoundboard,
		IsRemaster:         s.IsRemaster,
		AvgRating:          s.AvgRating,
		AvgRatingWeighted:  s.AvgRatingWeighted,
		Duration:           s.Duration,
		NumReviews:         s.NumReviews,
		FlacType:           s.FlacType,
		Description:        deref(s.Description),
		TaperNotes:         deref(s.TaperNotes),
		SourceNote:         deref(s.Source),
		Sets:               make([]models.Set, 0, len(s.Sets)),
	}
	for _, set := range s.Sets {
		tracks := make([]models.Track, 0, len(set.Tracks))
		for _, t := range set.Tracks {
			tracks = append(tracks, models.Track{
				Title:         t.Title,
				Duration:      t.Duration,
				TrackPosition: t.TrackPosition,
				MP3URL:        t.MP3URL,
				FlacURL:       deref(t.FlacURL),
			})
		}
		source.Sets = append(source.Sets, models.Set{Name: deref(set.Name), Tracks: tracks})
	}
	return source
}
