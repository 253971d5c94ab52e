package radarr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"textflix/internal/services"
)

// Movie is the subset of the Radarr movie resource the agent consumes.
type Movie struct {
	ID                  int64  `json:"id"`
	Title               string `json:"title"`
	Year                int    `json:"year"`
	TMDBID              int64  `json:"tmdbId"`
	HasFile             bool   `json:"hasFile"`
	Monitored           bool   `json:"monitored"`
	Status              string `json:"status"`
	IsAvailable         bool   `json:"isAvailable"`
	QualityProfileID    int64  `json:"qualityProfileId"`
	RootFolderPath      string `json:"rootFolderPath"`
	MinimumAvailability string `json:"minimumAvailability"`
}

// QueueItem is one in-flight download in the Radarr queue.
type QueueItem struct {
	ID                    int64   `json:"id"`
	MovieID               int64   `json:"movieId"`
	Title                 string  `json:"title"`
	Status                string  `json:"status"`
	Size                  float64 `json:"size"`
	SizeLeft              float64 `json:"sizeleft"`
	TrackedDownloadState  string  `json:"trackedDownloadState"`
	TrackedDownloadStatus string  `json:"trackedDownloadStatus"`
}

// AddOptions control what Radarr does when a movie is added.
type AddOptions struct {
	QualityProfileID int64
	RootFolder       string
	Monitored        bool
	SearchNow        bool
}

// Service defines the Radarr operations the agent and monitor consume.
type Service interface {
	MovieByTMDBID(ctx context.Context, tmdbID int64) (*Movie, error)
	AddMovie(ctx context.Context, tmdbID int64, opts AddOptions) (*Movie, error)
	QueueForMovie(ctx context.Context, movieID int64) ([]QueueItem, error)
	Movies(ctx context.Context) ([]Movie, error)
	HealthCheck(ctx context.Context) error
}

// Client talks to a Radarr instance over its v3 API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a Radarr client.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("radarr url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("radarr api key required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// MovieByTMDBID returns the library record for a TMDB id, or nil when the
// movie is not in the library.
func (c *Client) MovieByTMDBID(ctx context.Context, tmdbID int64) (*Movie, error) {
	if tmdbID <= 0 {
		return nil, errors.New("tmdb id must be positive")
	}
	params := url.Values{}
	params.Set("tmdbId", strconv.FormatInt(tmdbID, 10))
	var movies []Movie
	if err := c.get(ctx, "/api/v3/movie", params, &movies); err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, nil
	}
	movie := movies[0]
	return &movie, nil
}

// AddMovie adds a movie to Radarr by TMDB id and optionally triggers a search.
func (c *Client) AddMovie(ctx context.Context, tmdbID int64, opts AddOptions) (*Movie, error) {
	if tmdbID <= 0 {
		return nil, errors.New("tmdb id must be positive")
	}
	lookup, err := c.lookupByTMDBID(ctx, tmdbID)
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"title":            lookup.Title,
		"tmdbId":           tmdbID,
		"year":             lookup.Year,
		"qualityProfileId": opts.QualityProfileID,
		"rootFolderPath":   opts.RootFolder,
		"monitored":        opts.Monitored,
		"addOptions": map[string]any{
			"searchForMovie": opts.SearchNow,
		},
	}
	var added Movie
	if err := c.post(ctx, "/api/v3/movie", payload, &added); err != nil {
		return nil, err
	}
	return &added, nil
}

// QueueForMovie lists in-flight queue entries for a movie.
func (c *Client) QueueForMovie(ctx context.Context, movieID int64) ([]QueueItem, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	params := url.Values{}
	params.Set("movieId", strconv.FormatInt(movieID, 10))
	var items []QueueItem
	if err := c.get(ctx, "/api/v3/queue/details", params, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Movies lists every movie Radarr tracks.
func (c *Client) Movies(ctx context.Context) ([]Movie, error) {
	var movies []Movie
	if err := c.get(ctx, "/api/v3/movie", nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// HealthCheck verifies the Radarr instance is reachable and the key works.
func (c *Client) HealthCheck(ctx context.Context) error {
	var status struct {
		Version string `json:"version"`
	}
	if err := c.get(ctx, "/api/v3/system/status", nil, &status); err != nil {
		return err
	}
	if strings.TrimSpace(status.Version) == "" {
		return errors.New("radarr status: missing version")
	}
	return nil
}

func (c *Client) lookupByTMDBID(ctx context.Context, tmdbID int64) (*Movie, error) {
	params := url.Values{}
	params.Set("tmdbId", strconv.FormatInt(tmdbID, 10))
	var movie Movie
	if err := c.get(ctx, "/api/v3/movie/lookup/tmdb", params, &movie); err != nil {
		return nil, err
	}
	if movie.TMDBID == 0 {
		return nil, services.Wrap(services.ErrNotFound, "radarr", "lookup",
			fmt.Sprintf("TMDB id %d not found", tmdbID), nil)
	}
	return &movie, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, target)
}

func (c *Client) post(ctx context.Context, path string, payload any, target any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target any) error {
	req.Header.Set("X-Api-Key", c.apiKey)
	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrTransient, "radarr", req.URL.Path,
			fmt.Sprintf("Request failed (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		marker := services.ErrExternalService
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			marker = services.ErrConfiguration
		case http.StatusNotFound:
			marker = services.ErrNotFound
		case http.StatusServiceUnavailable, http.StatusTooManyRequests:
			marker = services.ErrTransient
		}
		return services.Wrap(marker, "radarr", req.URL.Path,
			fmt.Sprintf("Unexpected status %d (latency=%v)", resp.StatusCode, latency), nil)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return services.Wrap(services.ErrTransient, "radarr", req.URL.Path, "Failed to decode response", err)
	}
	return nil
}
