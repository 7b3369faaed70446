// Package shows assembles everything a show page needs for one featured date:
// the daily pick, the Relisten details (through the cache), the best source,
// and the outbound links.
package shows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rewired-gh/deadredux/internal/daily"
	"github.com/rewired-gh/deadredux/internal/links"
	"github.com/rewired-gh/deadredux/internal/logger"
	"github.com/rewired-gh/deadredux/internal/models"
	"github.com/rewired-gh/deadredux/internal/ranking"
	"github.com/rewired-gh/deadredux/internal/storage"
)

// MaxArchiveDays bounds a single archive range request.
const MaxArchiveDays = 366

// ErrRangeTooLarge is returned for archive ranges longer than MaxArchiveDays.
var ErrRangeTooLarge = errors.New("archive range too large")

// DetailsFetcher looks up show details upstream. A nil result with a nil
// error means the show has no details.
type DetailsFetcher interface {
	FetchShowDetails(ctx context.Context, date string) (*models.ShowDetails, error)
}

// DetailsCache stores details lookups with their fetch time.
type DetailsCache interface {
	GetDetails(ctx context.Context, showDate string) (*storage.CachedDetails, error)
	PutDetails(ctx context.Context, showDate string, details *models.ShowDetails, fetchedAt time.Time) error
}

// Page is the view model of one show page.
type Page struct {
	FeaturedDate  string              `json:"featuredDate"`
	IsToday       bool                `json:"isToday"`
	Show          models.ShowSummary  `json:"show"`
	Details       *models.ShowDetails `json:"details,omitempty"`
	BestSource    *models.Source      `json:"bestSource,omitempty"`
	TourName      string              `json:"tourName,omitempty"`
	TotalDuration float64             `json:"totalDuration"`
	EmbedURL      string              `json:"embedUrl,omitempty"`
	RelistenURL   string              `json:"relistenUrl"`
	Share         links.Share         `json:"share"`
}

// HasAudio reports whether a playable source was found.
func (p *Page) HasAudio() bool {
	return p.BestSource != nil && p.EmbedURL != ""
}

// Service builds pages and archive listings. It is safe for concurrent use.
type Service struct {
	selector   *daily.Selector
	fetcher    DetailsFetcher
	cache      DetailsCache
	links      links.Builder
	launchDate string
	detailsTTL time.Duration
	now        func() time.Time
}

// Options configures a Service.
type Options struct {
	LaunchDate string
	DetailsTTL time.Duration
	Links      links.Builder
	Now        func() time.Time
}

// NewService creates a page service. cache may be nil to always fetch.
func NewService(selector *daily.Selector, fetcher DetailsFetcher, cache DetailsCache, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	launch := opts.LaunchDate
	if launch == "" {
		launch = daily.DefaultLaunchDate
	}
	return &Service{
		selector:   selector.WithClock(now),
		fetcher:    fetcher,
		cache:      cache,
		links:      opts.Links,
		launchDate: launch,
		detailsTTL: opts.DetailsTTL,
		now:        now,
	}
}

// Today returns the current UTC date according to the service clock.
func (s *Service) Today() string {
	return s.selector.Today()
}

// LaunchDate returns the first featured date.
func (s *Service) LaunchDate() string {
	return s.launchDate
}

// Pick returns the daily pick for a featured date without fetching details.
func (s *Service) Pick(featuredDate string) (models.DailyPick, error) {
	if !daily.IsValidDate(featuredDate) {
		return models.DailyPick{}, fmt.Errorf("%w: %q", daily.ErrInvalidDate, featuredDate)
	}
	return s.selector.Pick(featuredDate), nil
}

// TodayPage builds the page for today's pick.
func (s *Service) TodayPage(ctx context.Context) (*Page, error) {
	return s.Page(ctx, s.Today())
}

// Page builds the page for a featured date. Invalid dates return
// daily.ErrInvalidDate. When Relisten has no details the page carries
// metadata only; fetch failures are returned as errors.
func (s *Service) Page(ctx context.Context, featuredDate string) (*Page, error) {
	pick, err := s.Pick(featuredDate)
	if err != nil {
		return nil, err
	}

	details, err := s.Details(ctx, pick.Show.Date)
	if err != nil {
		return nil, err
	}

	page := &Page{
		FeaturedDate: pick.FeaturedDate,
		IsToday:      pick.FeaturedDate == s.Today(),
		Show:         pick.Show,
		Details:      details,
		RelistenURL:  s.links.Relisten(pick.Show.Date),
		Share:        s.links.Share(pick.FeaturedDate, pick.Show.Venue, pick.Show.Location, pick.Show.Date),
	}
	if details != nil {
		page.TourName = details.TourName()
		page.BestSource = ranking.PickBest(details.Sources)
	}
	if page.BestSource != nil {
		page.TotalDuration = page.BestSource.TotalDuration()
		page.EmbedURL = s.links.Embed(page.BestSource.UpstreamIdentifier)
	}
	return page, nil
}

// Details returns show details for a show date, serving a cached lookup when
// it is younger than the freshness window.
func (s *Service) Details(ctx context.Context, showDate string) (*models.ShowDetails, error) {
	if s.cache != nil && s.detailsTTL > 0 {
		cached, err := s.cache.GetDetails(ctx, showDate)
		switch {
		case err == nil && s.now().Sub(cached.FetchedAt) < s.detailsTTL:
			logger.Debug("Details cache hit for %s", showDate)
			return cached.Details, nil
		case err != nil && !errors.Is(err, storage.ErrNotCached):
			logger.Warn("Details cache read failed for %s: %v", showDate, err)
		}
	}

	details, err := s.fetcher.FetchShowDetails(ctx, showDate)
	if err != nil {
		return nil, fmt.Errorf("fetch details for %s: %w", showDate, err)
	}
	if details == nil {
		logger.Info("No Relisten details for %s, rendering metadata only", showDate)
	}

	if s.cache != nil && s.detailsTTL > 0 {
		if err := s.cache.PutDetails(ctx, showDate, details, s.now()); err != nil {
			logger.Warn("Details cache write failed for %s: %v", showDate, err)
		}
	}
	return details, nil
}

// Archive returns picks from start to end inclusive, newest first.
func (s *Service) Archive(start, end string) ([]models.DailyPick, error) {
	if !daily.IsValidDate(start) {
		return nil, fmt.Errorf("%w: %q", daily.ErrInvalidDate, start)
	}
	if !daily.IsValidDate(end) {
		return nil, fmt.Errorf("%w: %q", daily.ErrInvalidDate, end)
	}
	from, _ := time.Parse(models.DateLayout, start)
	to, _ := time.Parse(models.DateLayout, end)
	if to.Sub(from) >= MaxArchiveDays*24*time.Hour {
		return nil, fmt.Errorf("%w: %s to %s exceeds %d days", ErrRangeTooLarge, start, end, MaxArchiveDays)
	}
	return s.selector.Range(start, end)
}

// ArchiveSinceLaunch returns every pick from the launch date through today.
func (s *Service) ArchiveSinceLaunch() ([]models.DailyPick, error) {
	return s.selector.SinceLaunch(s.launchDate)
}
