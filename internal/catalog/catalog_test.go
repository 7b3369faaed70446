package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rewired-gh/deadredux/internal/models"
)

func TestLoad_Testdata(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "shows.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Len() != 10 {
		t.Fatalf("Expected 10 shows, got %d", c.Len())
	}
	if !c.IsSorted() {
		t.Error("Expected testdata catalog to be sorted by date")
	}

	cornell := c.At(3)
	if cornell.Date != "1977-05-08" {
		t.Errorf("Expected date 1977-05-08, got %s", cornell.Date)
	}
	if cornell.Venue != "Barton Hall, Cornell University" {
		t.Errorf("Unexpected venue: %s", cornell.Venue)
	}
	if !cornell.HasSoundboard {
		t.Error("Expected Cornell to have a soundboard")
	}
	if cornell.SourceCount != 14 {
		t.Errorf("Expected 14 sources, got %d", cornell.SourceCount)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("Expected error for malformed file")
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(empty); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}
}

func TestNew_CopiesInput(t *testing.T) {
	shows := []models.ShowSummary{{Date: "1972-05-04", Venue: "Olympia Theatre"}}
	c, err := New(shows)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	shows[0].Venue = "changed"
	if c.At(0).Venue != "Olympia Theatre" {
		t.Error("Catalog must not observe writes to the input slice")
	}

	out := c.Shows()
	out[0].Venue = "changed again"
	if c.At(0).Venue != "Olympia Theatre" {
		t.Error("Catalog must not observe writes to the Shows() copy")
	}

	if _, err := New(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty for nil input, got %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "shows.json")
	shows := []models.ShowSummary{
		{Date: "1969-02-27", Venue: "Fillmore West", Location: "San Francisco, CA", AvgRating: 9.1, SourceCount: 7, HasSoundboard: true},
		{Date: "1990-03-29", Venue: "Nassau Coliseum", Location: "Uniondale, NY", AvgRating: 9.4, SourceCount: 9},
	}

	if err := Save(path, shows); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temp file to be renamed away")
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Expected 2 shows, got %d", c.Len())
	}
	if c.At(1) != shows[1] {
		t.Errorf("Expected %+v, got %+v", shows[1], c.At(1))
	}

	if err := Save(path, nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty when saving no shows, got %v", err)
	}
}

func TestIsSorted(t *testing.T) {
	c, _ := New([]models.ShowSummary{{Date: "1980-01-01"}, {Date: "1970-01-01"}})
	if c.IsSorted() {
		t.Error("Expected unsorted catalog to report false")
	}
}
