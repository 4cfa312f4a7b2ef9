// Package catalog holds the browsing state machine that sits between the
// presentation surfaces and the metadata client.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"moviegate/internal/logger"
	"moviegate/internal/metrics"
	"moviegate/models"
)

// Messages stored in CatalogState.Error. The underlying cause is only logged.
const (
	MsgLoadFailed     = "Failed to load movies."
	MsgSearchFailed   = "Search failed."
	MsgLoadMoreFailed = "Failed to load more movies."
)

// ErrLoadMoreUnavailable is returned when load-more is requested with no
// results on screen or while a load is in progress.
var ErrLoadMoreUnavailable = errors.New("load more unavailable")

// Source is the subset of the metadata client the controller consumes.
type Source interface {
	FetchPopular(ctx context.Context, page int) ([]models.MovieSummary, error)
	Search(ctx context.Context, query string, page int) ([]models.MovieSummary, error)
	FetchDetails(ctx context.Context, id int) (*models.MovieSummary, error)
}

// Snapshot is a copy of the controller's state handed to listeners and renderers.
type Snapshot struct {
	Catalog models.CatalogState  `json:"catalog"`
	Wallet  models.WalletSession `json:"wallet"`
}

// Listener is notified after every state change.
type Listener func(Snapshot)

// Option customizes a Controller.
type Option func(*Controller)

// WithListener registers a change listener at construction time.
func WithListener(l Listener) Option {
	return func(c *Controller) {
		if l != nil {
			c.listeners = append(c.listeners, l)
		}
	}
}

type stream int

const (
	streamPopular stream = iota
	streamSearch
)

func (s stream) String() string {
	if s == streamSearch {
		return "search"
	}
	return "popular"
}

// Controller owns one CatalogState and one WalletSession.
//
// Each request captures the generation of its stream when issued. A request
// that replaces results bumps both streams; an append bumps only its own. A
// response whose generation is no longer current is dropped without touching
// loading, error or results.
type Controller struct {
	source Source

	mu        sync.Mutex
	state     models.CatalogState
	wallet    models.WalletSession
	gens      [2]uint64
	listeners []Listener

	wg conc.WaitGroup
}

// New returns a controller with an empty catalog on page 1.
func New(source Source, opts ...Option) *Controller {
	c := &Controller{
		source: source,
		state:  models.CatalogState{Results: []models.MovieSummary{}, Page: 1},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers a listener.
func (c *Controller) OnChange(l Listener) {
	if l == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// State returns a snapshot of the current state.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Apply runs intent to completion on the calling goroutine.
func (c *Controller) Apply(ctx context.Context, intent Intent) error {
	switch in := intent.(type) {
	case SessionEstablished:
		return c.EstablishSession(ctx, in.Address)
	case SessionCleared:
		c.ClearSession()
		return nil
	case LoadPopular:
		return c.LoadPopular(ctx, in.Page)
	case SearchSubmitted:
		return c.Search(ctx, in.Query)
	case LoadMoreRequested:
		return c.LoadMore(ctx)
	case ItemSelected:
		c.Select(in.Movie)
		return nil
	case DetailsClosed:
		c.CloseDetails()
		return nil
	default:
		return fmt.Errorf("unknown intent %T", intent)
	}
}

// Dispatch runs intent on its own goroutine. Errors and panics are logged.
func (c *Controller) Dispatch(ctx context.Context, intent Intent) {
	c.wg.Go(func() {
		var pc panics.Catcher
		pc.Try(func() {
			if err := c.Apply(ctx, intent); err != nil && !errors.Is(err, ErrLoadMoreUnavailable) {
				logger.For(ctx).WithError(err).WithField("intent", intent.String()).Warn("intent failed")
			}
		})
		if r := pc.Recovered(); r != nil {
			logger.For(ctx).WithField("intent", intent.String()).Errorf("intent panicked: %v", r.Value)
		}
	})
}

// Wait blocks until every dispatched intent has settled.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// EstablishSession records address as the wallet session. The popular list is
// reloaded from page 1 only when the address changed.
func (c *Controller) EstablishSession(ctx context.Context, address string) error {
	if address == "" {
		c.ClearSession()
		return nil
	}
	c.mu.Lock()
	changed := c.wallet.Address != address
	c.wallet.Address = address
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if !changed {
		return nil
	}
	logger.For(ctx).WithField("address", models.WalletSession{Address: address}.ShortAddress()).Info("wallet session established")
	c.notify(snap)
	return c.LoadPopular(ctx, 1)
}

// ClearSession drops the wallet session. Catalog state is kept.
func (c *Controller) ClearSession() {
	c.mu.Lock()
	if !c.wallet.Connected() {
		c.mu.Unlock()
		return
	}
	c.wallet = models.WalletSession{}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	logger.For(context.Background()).Info("wallet session cleared")
	c.notify(snap)
}

// LoadPopular fetches a page of the popular list. Page 1 replaces the results
// and leaves search mode; later pages append and are refused with
// ErrLoadMoreUnavailable while another load is in flight.
func (c *Controller) LoadPopular(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	replace := page == 1

	c.mu.Lock()
	if !replace && c.state.Loading {
		c.mu.Unlock()
		return ErrLoadMoreUnavailable
	}
	if replace {
		c.state.Page = 1
		c.state.ActiveQuery = ""
	} else if page > c.state.Page {
		c.state.Page = page
	}
	gen := c.beginLocked(streamPopular, replace)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	movies, err := c.source.FetchPopular(ctx, page)
	return c.settle(ctx, streamPopular, gen, replace, movies, err, MsgLoadFailed)
}

// Search submits query. A blank query is the popular list on page 1.
func (c *Controller) Search(ctx context.Context, query string) error {
	if strings.TrimSpace(query) == "" {
		return c.LoadPopular(ctx, 1)
	}

	c.mu.Lock()
	c.state.ActiveQuery = query
	c.state.Page = 1
	gen := c.beginLocked(streamSearch, true)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	movies, err := c.source.Search(ctx, query, 1)
	return c.settle(ctx, streamSearch, gen, true, movies, err, MsgSearchFailed)
}

// LoadMore appends the next page of the current listing.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.CanLoadMore() {
		c.mu.Unlock()
		return ErrLoadMoreUnavailable
	}
	c.state.Page++
	page := c.state.Page
	query := c.state.ActiveQuery
	s := streamPopular
	if strings.TrimSpace(query) != "" {
		s = streamSearch
	}
	gen := c.beginLocked(s, false)
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	if s == streamPopular {
		movies, err := c.source.FetchPopular(ctx, page)
		return c.settle(ctx, s, gen, false, movies, err, MsgLoadFailed)
	}
	movies, err := c.source.Search(ctx, query, page)
	return c.settle(ctx, s, gen, false, movies, err, MsgLoadMoreFailed)
}

// Select opens the details view for movie.
func (c *Controller) Select(movie models.MovieSummary) {
	c.mu.Lock()
	if c.state.Selected != nil && *c.state.Selected == movie {
		c.mu.Unlock()
		return
	}
	c.state.Selected = &movie
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// CloseDetails closes the details view.
func (c *Controller) CloseDetails() {
	c.mu.Lock()
	if c.state.Selected == nil {
		c.mu.Unlock()
		return
	}
	c.state.Selected = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Details passes through to the source's by-id lookup. State is not touched.
func (c *Controller) Details(ctx context.Context, id int) (*models.MovieSummary, error) {
	return c.source.FetchDetails(ctx, id)
}

// beginLocked marks a request as issued and returns the generation it must
// still match when it settles. Only replaces invalidate in-flight requests.
func (c *Controller) beginLocked(s stream, replace bool) uint64 {
	if replace {
		c.gens[streamPopular]++
		c.gens[streamSearch]++
	}
	c.state.Loading = true
	c.state.Error = ""
	return c.gens[s]
}

func (c *Controller) settle(ctx context.Context, s stream, gen uint64, replace bool, movies []models.MovieSummary, err error, failMsg string) error {
	c.mu.Lock()
	if c.gens[s] != gen {
		current := c.gens[s]
		c.mu.Unlock()
		metrics.StaleResponsesTotal.WithLabelValues(s.String()).Inc()
		logger.For(ctx).
			WithField("stream", s.String()).
			WithField("generation", gen).
			WithField("current", current).
			Debug("discarding stale catalog response")
		return nil
	}

	c.state.Loading = false
	switch {
	case err != nil:
		c.state.Error = failMsg
	case replace:
		c.state.Results = append(make([]models.MovieSummary, 0, len(movies)), movies...)
	default:
		c.state.Results = append(c.state.Results, movies...)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	if err != nil {
		logger.For(ctx).WithError(err).WithField("stream", s.String()).Error(failMsg)
		return err
	}
	return nil
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{Catalog: c.state.Clone(), Wallet: c.wallet}
}

func (c *Controller) notify(snap Snapshot) {
	c.mu.Lock()
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()
	for _, l := range listeners {
		l(snap)
	}
}
