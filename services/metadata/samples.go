package metadata

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"moviegate/models"
)

// LoadSampleSet reads a replacement sample set from a JSON array of movie
// summaries in TMDB field naming.
func LoadSampleSet(fs afero.Fs, path string) ([]models.MovieSummary, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read sample set: %w", err)
	}
	var movies []models.MovieSummary
	if err := json.Unmarshal(data, &movies); err != nil {
		return nil, fmt.Errorf("parse sample set %s: %w", path, err)
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("sample set %s is empty", path)
	}
	seen := make(map[int]struct{}, len(movies))
	for i, movie := range movies {
		if movie.ID <= 0 {
			return nil, fmt.Errorf("sample set %s: entry %d has invalid id %d", path, i, movie.ID)
		}
		if strings.TrimSpace(movie.Title) == "" {
			return nil, fmt.Errorf("sample set %s: entry %d has no title", path, i)
		}
		if _, dup := seen[movie.ID]; dup {
			return nil, fmt.Errorf("sample set %s: duplicate id %d", path, movie.ID)
		}
		seen[movie.ID] = struct{}{}
	}
	return movies, nil
}
