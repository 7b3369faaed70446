// Package ingest builds the show catalog from the Relisten API: it walks every
// touring year, collects the year's shows, sorts them by date and writes the
// catalog file.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rewired-gh/deadredux/internal/catalog"
	"github.com/rewired-gh/deadredux/internal/logger"
	"github.com/rewired-gh/deadredux/internal/models"
	"github.com/rewired-gh/deadredux/internal/relisten"
)

// Source lists years and the shows within a year.
type Source interface {
	FetchYears(ctx context.Context) ([]relisten.Year, error)
	FetchYearShows(ctx context.Context, year string) ([]models.ShowSummary, error)
}

// Fetcher pages through a Source one year at a time.
type Fetcher struct {
	source Source
	delay  time.Duration
}

// NewFetcher creates a fetcher that waits delay between year requests.
func NewFetcher(source Source, delay time.Duration) *Fetcher {
	return &Fetcher{source: source, delay: delay}
}

// Result summarises an ingestion run.
type Result struct {
	RunID string
	Years int
	Shows int
	Path  string
}

// Collect fetches every year's shows and returns them sorted by date.
// Any failed request aborts the run.
func (f *Fetcher) Collect(ctx context.Context) ([]models.ShowSummary, int, error) {
	years, err := f.source.FetchYears(ctx)
	if err != nil {
		return nil, 0, err
	}
	logger.Info("Found %d years", len(years))

	var shows []models.ShowSummary
	for i, year := range years {
		if i > 0 {
			if err := sleep(ctx, f.delay); err != nil {
				return nil, 0, err
			}
		}

		logger.Info("Fetching %s (%d shows)...", year.Year, year.ShowCount)
		yearShows, err := f.source.FetchYearShows(ctx, year.Year)
		if err != nil {
			return nil, 0, err
		}
		if len(yearShows) != year.ShowCount {
			logger.Debug("Year %s listed %d shows, received %d", year.Year, year.ShowCount, len(yearShows))
		}
		shows = append(shows, yearShows...)
	}

	sort.SliceStable(shows, func(i, j int) bool {
		return shows[i].Date < shows[j].Date
	})
	return shows, len(years), nil
}

// Run collects the catalog and writes it to path.
func (f *Fetcher) Run(ctx context.Context, path string) (*Result, error) {
	runID := uuid.New().String()
	logger.Info("Catalog ingestion %s started", runID)
	start := time.Now()

	shows, years, err := f.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingestion %s failed: %w", runID, err)
	}

	invalid := 0
	for i := range shows {
		if err := shows[i].Validate(); err != nil {
			invalid++
			logger.Warn("Show %d of run %s failed validation: %v", i, runID, err)
		}
	}
	if invalid > 0 {
		logger.Warn("%d of %d shows failed validation and were kept as-is", invalid, len(shows))
	}

	if err := catalog.Save(path, shows); err != nil {
		return nil, fmt.Errorf("ingestion %s failed: %w", runID, err)
	}

	logger.Info("Wrote %d shows to %s in %v", len(shows), path, time.Since(start).Round(time.Millisecond))
	return &Result{RunID: runID, Years: years, Shows: len(shows), Path: path}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
