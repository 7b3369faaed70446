// Package catalog holds the static, pre-fetched list of every known show.
//
// The catalog is built offline by the ingestion command, written to a JSON file
// sorted by date ascending, and loaded once at process start. A Catalog has no
// mutation API, so request handlers can share one instance without locking.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gofrs/flock"

	"github.com/rewired-gh/deadredux/internal/models"
)

// ErrEmpty is returned when a catalog would contain no shows. Daily selection
// takes the hash modulo the catalog length, so an empty catalog is unusable.
var ErrEmpty = errors.New("catalog is empty")

const (
	filePermissions = 0o644
	dirPermissions  = 0o755
)

// Catalog is an immutable, ordered sequence of show summaries.
type Catalog struct {
	shows []models.ShowSummary
}

// New builds a catalog from shows, keeping their order. The slice is copied.
func New(shows []models.ShowSummary) (*Catalog, error) {
	if len(shows) == 0 {
		return nil, ErrEmpty
	}
	owned := make([]models.ShowSummary, len(shows))
	copy(owned, shows)
	return &Catalog{shows: owned}, nil
}

// Load reads a catalog file written by Save.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var shows []models.ShowSummary
	if err := json.Unmarshal(data, &shows); err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", path, err)
	}

	c, err := New(shows)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

// Len returns the number of shows in the catalog.
func (c *Catalog) Len() int {
	return len(c.shows)
}

// At returns the show at index i. It panics if i is out of range.
func (c *Catalog) At(i int) models.ShowSummary {
	return c.shows[i]
}

// Shows returns a copy of every show in catalog order.
func (c *Catalog) Shows() []models.ShowSummary {
	out := make([]models.ShowSummary, len(c.shows))
	copy(out, c.shows)
	return out
}

// IsSorted reports whether shows are in ascending date order.
func (c *Catalog) IsSorted() bool {
	return sort.SliceIsSorted(c.shows, func(i, j int) bool {
		return c.shows[i].Date < c.shows[j].Date
	})
}

// Save writes shows to path as indented JSON. The write goes to a temporary file
// that is renamed into place, under an exclusive lock on path+".lock" so two
// ingestion runs cannot interleave.
func Save(path string, shows []models.ShowSummary) error {
	if len(shows) == 0 {
		return ErrEmpty
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock catalog: %w", err)
	}
	if !locked {
		return fmt.Errorf("catalog %s is being written by another process", path)
	}
	defer func() { _ = lock.Unlock() }()

	jsonData, err := json.MarshalIndent(shows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, filePermissions); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename catalog: %w", err)
	}

	return nil
}
