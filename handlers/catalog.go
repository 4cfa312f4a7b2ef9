package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"moviegate/internal/logger"
	"moviegate/models"
	"moviegate/services/catalog"
	"moviegate/services/metadata"
)

// CatalogHandler exposes the session's catalog controller. Every endpoint
// answers with the resulting state; failures are carried in state.error.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// movieView adds the presentation fields the cards and details view show.
type movieView struct {
	models.MovieSummary
	PosterURL string `json:"posterUrl"`
	Year      string `json:"year"`
	Rating    string `json:"rating"`
}

func newMovieView(m models.MovieSummary) movieView {
	return movieView{MovieSummary: m, PosterURL: m.PosterURL(), Year: m.Year(), Rating: m.Rating()}
}

type catalogResponse struct {
	Results     []movieView `json:"results"`
	Page        int         `json:"page"`
	ActiveQuery string      `json:"activeQuery"`
	Loading     bool        `json:"loading"`
	Error       string      `json:"error,omitempty"`
	Selected    *movieView  `json:"selected,omitempty"`
	CanLoadMore bool        `json:"canLoadMore"`
}

func newCatalogResponse(s models.CatalogState) catalogResponse {
	resp := catalogResponse{
		Results:     make([]movieView, 0, len(s.Results)),
		Page:        s.Page,
		ActiveQuery: s.ActiveQuery,
		Loading:     s.Loading,
		Error:       s.Error,
		CanLoadMore: s.CanLoadMore(),
	}
	for _, m := range s.Results {
		resp.Results = append(resp.Results, newMovieView(m))
	}
	if s.Selected != nil {
		v := newMovieView(*s.Selected)
		resp.Selected = &v
	}
	return resp
}

func (h *CatalogHandler) respond(w http.ResponseWriter, c *catalog.Controller) {
	writeJSON(w, http.StatusOK, newCatalogResponse(c.State().Catalog))
}

func logIntentError(r *http.Request, intent string, err error) {
	if err != nil {
		logger.For(r.Context()).WithError(err).WithField("intent", intent).Warn("catalog request failed")
	}
}

func (h *CatalogHandler) State(w http.ResponseWriter, r *http.Request) {
	if c := sessionController(w, r); c != nil {
		h.respond(w, c)
	}
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	c := sessionController(w, r)
	if c == nil {
		return
	}
	var body struct {
		Query string `json:"query"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	logIntentError(r, "search", c.Search(r.Context(), body.Query))
	h.respond(w, c)
}

func (h *CatalogHandler) Popular(w http.ResponseWriter, r *http.Request) {
	c := sessionController(w, r)
	if c == nil {
		return
	}
	var body struct {
		Page int `json:"page"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Page < 1 {
		body.Page = 1
	}
	err := c.LoadPopular(r.Context(), body.Page)
	if errors.Is(err, catalog.ErrLoadMoreUnavailable) {
		writeError(w, http.StatusConflict, "a load is in progress")
		return
	}
	logIntentError(r, "popular", err)
	h.respond(w, c)
}

func (h *CatalogHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	c := sessionController(w, r)
	if c == nil {
		return
	}
	err := c.LoadMore(r.Context())
	if errors.Is(err, catalog.ErrLoadMoreUnavailable) {
		writeError(w, http.StatusConflict, "nothing to load more from or a load is in progress")
		return
	}
	logIntentError(r, "load-more", err)
	h.respond(w, c)
}

func (h *CatalogHandler) Select(w http.ResponseWriter, r *http.Request) {
	c := sessionController(w, r)
	if c == nil {
		return
	}
	var body struct {
		ID int `json:"id"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, m := range c.State().Catalog.Results {
		if m.ID == body.ID {
			c.Select(m)
			h.respond(w, c)
			return
		}
	}
	writeError(w, http.StatusNotFound, "movie not in current results")
}

func (h *CatalogHandler) CloseDetails(w http.ResponseWriter, r *http.Request) {
	c := sessionController(w, r)
	if c == nil {
		return
	}
	c.CloseDetails()
	h.respond(w, c)
}

func (h *CatalogHandler) Details(w http.ResponseWriter, r *http.Request) {
	c := sessionController(w, r)
	if c == nil {
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}
	movie, err := c.Details(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, metadata.ErrMalformedResponse) {
			status = http.StatusBadGateway
		}
		writeError(w, status, "failed to load movie details")
		return
	}
	if movie == nil {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}
	writeJSON(w, http.StatusOK, newMovieView(*movie))
}
