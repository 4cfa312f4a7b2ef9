// Package render draws catalog snapshots for the terminal shell.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"moviegate/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	cardIndexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	ratingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	gatewayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(1, 2)

	detailsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(1, 2)
)

// Gateway renders the locked screen shown until a wallet connects.
func Gateway(errMsg string, providerAvailable bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🔒 Access Restricted"))
	b.WriteString("\n\n")
	b.WriteString("Please connect your Ethereum wallet to access the Movie Finder.\n")
	b.WriteString(metaStyle.Render("Type 'connect' to continue."))
	if errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(errMsg))
	}
	if !providerAvailable {
		b.WriteString("\n\n")
		b.WriteString(metaStyle.Render("Install MetaMask: https://metamask.io/download/"))
	}
	return gatewayStyle.Render(b.String())
}

// Header renders the title bar with the connected account.
func Header(w models.WalletSession) string {
	line := titleStyle.Render("Movie Finder")
	if w.Connected() {
		line += "  " + metaStyle.Render("Connected: "+w.ShortAddress())
	}
	return line
}

// Card renders one result line; index is the 1-based position used by 'show'.
func Card(index int, m models.MovieSummary) string {
	year := m.Year()
	if year != "" {
		year = " (" + year + ")"
	}
	return fmt.Sprintf("%s %s%s  %s",
		cardIndexStyle.Render(fmt.Sprintf("%3d.", index)),
		m.Title,
		metaStyle.Render(year),
		ratingStyle.Render("⭐ "+m.Rating()),
	)
}

// Catalog renders the result grid for state.
func Catalog(s models.CatalogState) string {
	var b strings.Builder
	if s.Searching() {
		b.WriteString(metaStyle.Render(fmt.Sprintf("Results for %q, page %d", s.ActiveQuery, s.Page)))
	} else {
		b.WriteString(metaStyle.Render(fmt.Sprintf("Popular movies, page %d", s.Page)))
	}
	b.WriteString("\n")

	if s.Loading && s.Page == 1 {
		b.WriteString("Loading...\n")
	}
	if s.Error != "" {
		// The banner replaces the grid.
		b.WriteString(errorStyle.Render(s.Error))
		b.WriteString("\n")
		return b.String()
	}

	for i, m := range s.Results {
		b.WriteString(Card(i+1, m))
		b.WriteString("\n")
	}
	if len(s.Results) == 0 && !s.Loading {
		b.WriteString("No movies found.\n")
	}
	if len(s.Results) > 0 {
		if s.Loading {
			b.WriteString(metaStyle.Render("Loading..."))
		} else {
			b.WriteString(metaStyle.Render("Type 'more' to load more movies."))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Details renders the details view for a selected movie.
func Details(m models.MovieSummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.Title))
	b.WriteString("\n")
	meta := []string{}
	if year := m.Year(); year != "" {
		meta = append(meta, year)
	}
	meta = append(meta, "⭐ "+m.Rating())
	b.WriteString(metaStyle.Render(strings.Join(meta, "  ")))
	b.WriteString("\n")
	b.WriteString(metaStyle.Render("Poster: " + m.PosterURL()))
	b.WriteString("\n\n")
	b.WriteString(m.Overview)
	b.WriteString("\n\n")
	b.WriteString(metaStyle.Render("Type 'close' to return."))
	return detailsStyle.Render(b.String())
}
