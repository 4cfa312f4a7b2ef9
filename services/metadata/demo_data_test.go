package metadata

import (
	"testing"

	"moviegate/models"
)

func TestFilterSamplesFoldsCaseAndAccents(t *testing.T) {
	samples := []models.MovieSummary{
		{ID: 1, Title: "Amélie"},
		{ID: 2, Title: "Inception"},
	}
	if got := filterSamples(samples, "AMELIE"); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected Amélie, got %+v", got)
	}
	if got := filterSamples(samples, "cept"); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected substring match, got %+v", got)
	}
	if got := filterSamples(samples, ""); len(got) != 2 {
		t.Fatalf("empty query should match everything, got %+v", got)
	}
}

func TestDefaultSamplesAreCopies(t *testing.T) {
	a := DefaultSamples()
	a[0].Title = "mutated"
	if DefaultSamples()[0].Title != "Inception" {
		t.Fatal("DefaultSamples must not expose the bundled slice")
	}
}

func TestLookupSample(t *testing.T) {
	found := lookupSample(sampleMovies, 6)
	if found == nil || found.Title != "Dune: Part Two" {
		t.Fatalf("expected Dune: Part Two, got %+v", found)
	}
	found.Title = "mutated"
	if sampleMovies[5].Title != "Dune: Part Two" {
		t.Fatal("lookupSample must return a copy")
	}
	if lookupSample(sampleMovies, 0) != nil {
		t.Fatal("expected nil for unknown id")
	}
}
