package models

import (
	"strconv"
	"strings"
)

const (
	// PosterBaseURL is the TMDB image host prefix for poster artwork.
	PosterBaseURL = "https://image.tmdb.org/t/p/w500"
	// PosterPlaceholderURL is served when a title has no poster path.
	PosterPlaceholderURL = "https://via.placeholder.com/500x750?text=No+Image"
)

// MovieSummary is a single catalog entry as returned by the metadata service.
// Values are treated as immutable once received.
type MovieSummary struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path,omitempty"` // relative path fragment, empty when absent
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"` // YYYY-MM-DD
	VoteAverage float64 `json:"vote_average"`
}

// Year returns the year component of ReleaseDate, or "" when unknown.
func (m MovieSummary) Year() string {
	year, _, _ := strings.Cut(strings.TrimSpace(m.ReleaseDate), "-")
	return year
}

// Rating formats VoteAverage with one decimal place, or "N/A" when unrated.
func (m MovieSummary) Rating() string {
	if m.VoteAverage == 0 {
		return "N/A"
	}
	return strconv.FormatFloat(m.VoteAverage, 'f', 1, 64)
}

// PosterURL returns the absolute poster URL for the title.
func (m MovieSummary) PosterURL() string {
	return BuildPosterURL(m.PosterPath)
}

// BuildPosterURL joins a relative poster path with the image host prefix.
func BuildPosterURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return PosterPlaceholderURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return PosterBaseURL + path
}
