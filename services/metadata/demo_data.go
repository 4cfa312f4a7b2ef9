package metadata

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"

	"moviegate/models"
)

// sampleMovies is the bundled fallback set served when no TMDB key is
// configured or a popular/details call fails.
var sampleMovies = []models.MovieSummary{
	{
		ID:          1,
		Title:       "Inception",
		Overview:    "Cobb, a skilled thief who commits corporate espionage by infiltrating the subconscious of his targets is offered a chance to regain his old life as payment for a task considered to be impossible: \"inception\", the implantation of another person's idea into a target's subconscious.",
		PosterPath:  "/9gk7adHYeDvHkCSEqAvQNLV5Uge.jpg",
		VoteAverage: 8.8,
		ReleaseDate: "2010-07-15",
	},
	{
		ID:          2,
		Title:       "The Dark Knight",
		Overview:    "Batman raises the stakes in his war on crime. With the help of Lt. Jim Gordon and District Attorney Harvey Dent, Batman sets out to dismantle the remaining criminal organizations that plague the streets. The partnership proves to be effective, but they soon find themselves prey to a reign of chaos unleashed by a rising criminal mastermind known to the terrified citizens of Gotham as the Joker.",
		PosterPath:  "/qJ2tW6WMUDux911r6m7haRef0WH.jpg",
		VoteAverage: 8.5,
		ReleaseDate: "2008-07-14",
	},
	{
		ID:          3,
		Title:       "Interstellar",
		Overview:    "The adventures of a group of explorers who make use of a newly discovered wormhole to surpass the limitations on human space travel and conquer the vast distances involved in an interstellar voyage.",
		PosterPath:  "/gEU2QniL6E8AHtMY4kRFWJOatf.jpg",
		VoteAverage: 8.4,
		ReleaseDate: "2014-11-05",
	},
	{
		ID:          4,
		Title:       "Parasite",
		Overview:    "All unemployed, Ki-taek's family takes peculiar interest in the wealthy and glamorous Parks for their livelihood until they get entangled in an unexpected incident.",
		PosterPath:  "/7IiTTgloJzvGI1TAYymCfbfl3vT.jpg",
		VoteAverage: 8.5,
		ReleaseDate: "2019-05-30",
	},
	{
		ID:          5,
		Title:       "Everything Everywhere All At Once",
		Overview:    "An aging Chinese immigrant is swept up in an insane adventure, where she alone can save what's important to her by connecting with the lives she could have led in other universes.",
		PosterPath:  "/w3LxiVYdWWRvEVdn5RYq6jIqkb1.jpg",
		VoteAverage: 8.0,
		ReleaseDate: "2022-03-24",
	},
	{
		ID:          6,
		Title:       "Dune: Part Two",
		Overview:    "Follow the mythic journey of Paul Atreides as he unites with Chani and the Fremen while on a warpath of revenge against the conspirators who destroyed his family. Facing a choice between the love of his life and the fate of the known universe, Paul endeavors to prevent a terrible future only he can foresee.",
		PosterPath:  "/1pdfLvkbY9ohJlCjQH2CZjjYVvJ.jpg",
		VoteAverage: 8.2,
		ReleaseDate: "2024-02-27",
	},
}

// DefaultSamples returns a copy of the bundled sample set.
func DefaultSamples() []models.MovieSummary {
	return copyMovies(sampleMovies)
}

func copyMovies(items []models.MovieSummary) []models.MovieSummary {
	cloned := make([]models.MovieSummary, len(items))
	copy(cloned, items)
	return cloned
}

// filterSamples returns the entries whose title contains query, ignoring case
// and diacritics. The result is never nil.
func filterSamples(samples []models.MovieSummary, query string) []models.MovieSummary {
	needle := foldTitle(query)
	results := make([]models.MovieSummary, 0)
	for _, movie := range samples {
		if strings.Contains(foldTitle(movie.Title), needle) {
			results = append(results, movie)
		}
	}
	return results
}

func lookupSample(samples []models.MovieSummary, id int) *models.MovieSummary {
	for _, movie := range samples {
		if movie.ID == id {
			found := movie
			return &found
		}
	}
	return nil
}

func foldTitle(value string) string {
	return cases.Fold().String(unidecode.Unidecode(value))
}
