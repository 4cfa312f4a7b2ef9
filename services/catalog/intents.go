package catalog

import (
	"fmt"

	"moviegate/models"
)

// Intent is a user- or system-triggered event consumed by a Controller.
type Intent interface {
	fmt.Stringer
	isIntent()
}

// SessionEstablished reports that the wallet returned an account.
type SessionEstablished struct{ Address string }

// SessionCleared reports that the wallet's account list became empty.
type SessionCleared struct{}

// LoadPopular requests a page of the popular list.
type LoadPopular struct{ Page int }

// SearchSubmitted carries a search box submission.
type SearchSubmitted struct{ Query string }

// LoadMoreRequested asks for the next page of the current listing.
type LoadMoreRequested struct{}

// ItemSelected opens the details view for a movie.
type ItemSelected struct{ Movie models.MovieSummary }

// DetailsClosed closes the details view.
type DetailsClosed struct{}

func (SessionEstablished) isIntent() {}
func (SessionCleared) isIntent()     {}
func (LoadPopular) isIntent()        {}
func (SearchSubmitted) isIntent()    {}
func (LoadMoreRequested) isIntent()  {}
func (ItemSelected) isIntent()       {}
func (DetailsClosed) isIntent()      {}

func (i SessionEstablished) String() string { return "SessionEstablished(" + i.Address + ")" }
func (SessionCleared) String() string       { return "SessionCleared" }
func (i LoadPopular) String() string        { return fmt.Sprintf("LoadPopular(%d)", i.Page) }
func (i SearchSubmitted) String() string    { return fmt.Sprintf("SearchSubmitted(%q)", i.Query) }
func (LoadMoreRequested) String() string    { return "LoadMoreRequested" }
func (i ItemSelected) String() string       { return fmt.Sprintf("ItemSelected(%d)", i.Movie.ID) }
func (DetailsClosed) String() string        { return "DetailsClosed" }
