package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"moviegate/internal/logger"
	"moviegate/internal/metrics"
	"moviegate/models"
)

// Minimal TMDB v3 client (popular, search and movie-by-id endpoints).

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultLanguage = "en-US"

	opPopular = "popular"
	opSearch  = "search"
	opDetails = "details"
)

// ErrMalformedResponse is returned when TMDB answers successfully but the body
// cannot be decoded into the expected shape. It is never absorbed by a fallback.
var ErrMalformedResponse = errors.New("malformed metadata response")

// RequestError describes a transport failure or a non-success status.
// Callers never see it: each operation absorbs it according to its FallbackPolicy.
type RequestError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("tmdb %s: HTTP %d: %v", e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("tmdb %s: %v", e.Operation, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// FallbackPolicy names what an operation returns when TMDB cannot be reached.
type FallbackPolicy int

const (
	// FallbackSamples serves the whole sample set.
	FallbackSamples FallbackPolicy = iota
	// FallbackEmpty serves an empty result.
	FallbackEmpty
	// FallbackSampleLookup looks the requested id up in the sample set.
	FallbackSampleLookup
)

func (p FallbackPolicy) String() string {
	switch p {
	case FallbackSamples:
		return "samples"
	case FallbackEmpty:
		return "empty"
	case FallbackSampleLookup:
		return "sample-lookup"
	default:
		return "unknown"
	}
}

// Policies reports the failure policy of each operation.
//
// Popular and details fall back to bundled data while search falls back to
// nothing. The asymmetry is kept as is; the two policies are not unified.
type Policies struct {
	Popular FallbackPolicy
	Search  FallbackPolicy
	Details FallbackPolicy
}

var defaultPolicies = Policies{
	Popular: FallbackSamples,
	Search:  FallbackEmpty,
	Details: FallbackSampleLookup,
}

// Client wraps the three read-only TMDB operations used by the catalog.
type Client struct {
	apiKey   string
	baseURL  string
	language string
	httpc    *http.Client
	samples  []models.MovieSummary
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different TMDB-compatible host.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.baseURL = base
		}
	}
}

// WithLanguage sets the language query parameter.
func WithLanguage(language string) Option {
	return func(c *Client) {
		if language = strings.TrimSpace(language); language != "" {
			c.language = language
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// WithSamples replaces the bundled sample set.
func WithSamples(samples []models.MovieSummary) Option {
	return func(c *Client) {
		if len(samples) > 0 {
			c.samples = copyMovies(samples)
		}
	}
}

// NewClient builds a client. An empty apiKey is a supported mode: every
// operation is answered from the sample set.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   strings.TrimSpace(apiKey),
		baseURL:  defaultBaseURL,
		language: defaultLanguage,
		httpc:    &http.Client{},
		samples:  DefaultSamples(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsConfigured reports whether an API key is present.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Policies returns the failure policy of each operation.
func (c *Client) Policies() Policies {
	return defaultPolicies
}

type pageResponse struct {
	Page    int                    `json:"page"`
	Results *[]models.MovieSummary `json:"results"`
}

// FetchPopular returns one page of the popular-movies list.
func (c *Client) FetchPopular(ctx context.Context, page int) ([]models.MovieSummary, error) {
	page = normalizePage(page)
	if !c.IsConfigured() {
		logger.For(ctx).Warn("no TMDB API key configured; serving sample set")
		metrics.MetadataRequestsTotal.WithLabelValues(opPopular, metrics.OutcomeSamples).Inc()
		return copyMovies(c.samples), nil
	}

	var resp pageResponse
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	err := c.doGET(ctx, opPopular, "/movie/popular", q, &resp)
	if err == nil && resp.Results == nil {
		err = fmt.Errorf("tmdb %s: %w: missing results", opPopular, ErrMalformedResponse)
	}
	if err != nil {
		return c.fallbackList(ctx, opPopular, defaultPolicies.Popular, err)
	}
	metrics.MetadataRequestsTotal.WithLabelValues(opPopular, metrics.OutcomeOK).Inc()
	return *resp.Results, nil
}

// Search returns one page of title matches for query. Routing a blank query to
// FetchPopular is the caller's job.
func (c *Client) Search(ctx context.Context, query string, page int) ([]models.MovieSummary, error) {
	page = normalizePage(page)
	if !c.IsConfigured() {
		logger.For(ctx).WithField("query", query).Warn("no TMDB API key configured; searching sample set")
		metrics.MetadataRequestsTotal.WithLabelValues(opSearch, metrics.OutcomeSamples).Inc()
		return filterSamples(c.samples, query), nil
	}

	var resp pageResponse
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("include_adult", "false")
	err := c.doGET(ctx, opSearch, "/search/movie", q, &resp)
	if err == nil && resp.Results == nil {
		err = fmt.Errorf("tmdb %s: %w: missing results", opSearch, ErrMalformedResponse)
	}
	if err != nil {
		return c.fallbackList(ctx, opSearch, defaultPolicies.Search, err)
	}
	metrics.MetadataRequestsTotal.WithLabelValues(opSearch, metrics.OutcomeOK).Inc()
	return *resp.Results, nil
}

// FetchDetails returns a single movie by id, or nil when it is unknown.
func (c *Client) FetchDetails(ctx context.Context, id int) (*models.MovieSummary, error) {
	if !c.IsConfigured() {
		metrics.MetadataRequestsTotal.WithLabelValues(opDetails, metrics.OutcomeSamples).Inc()
		return lookupSample(c.samples, id), nil
	}

	var movie models.MovieSummary
	err := c.doGET(ctx, opDetails, "/movie/"+strconv.Itoa(id), url.Values{}, &movie)
	if err == nil && movie.ID == 0 {
		err = fmt.Errorf("tmdb %s: %w: missing id", opDetails, ErrMalformedResponse)
	}
	if err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			metrics.MetadataRequestsTotal.WithLabelValues(opDetails, metrics.OutcomeMalformed).Inc()
			logger.For(ctx).WithError(err).Error("tmdb details response could not be decoded")
			return nil, err
		}
		logger.For(ctx).WithError(err).WithField("id", id).Warn("tmdb details failed; looking up sample set")
		metrics.MetadataRequestsTotal.WithLabelValues(opDetails, metrics.OutcomeSamples).Inc()
		return lookupSample(c.samples, id), nil
	}
	metrics.MetadataRequestsTotal.WithLabelValues(opDetails, metrics.OutcomeOK).Inc()
	return &movie, nil
}

// fallbackList applies policy to a failed list operation. Malformed responses
// are always returned to the caller.
func (c *Client) fallbackList(ctx context.Context, op string, policy FallbackPolicy, err error) ([]models.MovieSummary, error) {
	entry := logger.For(ctx).WithError(err).WithField("operation", op)
	if errors.Is(err, ErrMalformedResponse) {
		metrics.MetadataRequestsTotal.WithLabelValues(op, metrics.OutcomeMalformed).Inc()
		entry.Error("tmdb response could not be decoded")
		return nil, err
	}
	switch policy {
	case FallbackSamples:
		entry.Warn("tmdb call failed; serving sample set")
		metrics.MetadataRequestsTotal.WithLabelValues(op, metrics.OutcomeSamples).Inc()
		return copyMovies(c.samples), nil
	default:
		entry.Warn("tmdb call failed; returning no results")
		metrics.MetadataRequestsTotal.WithLabelValues(op, metrics.OutcomeEmpty).Inc()
		return []models.MovieSummary{}, nil
	}
}

func (c *Client) doGET(ctx context.Context, op, path string, q url.Values, v any) error {
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	u := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &RequestError{Operation: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	logger.For(ctx).WithField("operation", op).WithField("path", path).Debug("tmdb GET")
	defer logger.Track(ctx, "tmdb "+op)()
	start := time.Now()
	resp, err := c.httpc.Do(req)
	metrics.MetadataRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		return &RequestError{Operation: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &RequestError{Operation: op, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestError{Operation: op, Err: err}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("tmdb %s: %w: %w", op, ErrMalformedResponse, err)
	}
	return nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
