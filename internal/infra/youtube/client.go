// Package youtube provides a client for the YouTube Data API v3.
package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	zlog "github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/osa030/playtime/internal/domain/duration"
	"github.com/osa030/playtime/internal/domain/playlist"
	"github.com/osa030/playtime/internal/domain/video"
)

const (
	// DefaultBaseURL is the YouTube Data API v3 endpoint.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"
	// MaxPageSize is the largest page and batch size the API accepts.
	MaxPageSize = 50
)

var (
	// ErrPlaylistNotFound marks errors caused by an unknown playlist.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrNetwork marks connectivity-level failures.
	ErrNetwork = errors.New("network error")
)

// Client is a YouTube Data API client.
type Client struct {
	apiKey     string
	baseURL    string
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	maxRetries int
	retryDelay time.Duration
}

// Config represents YouTube client configuration.
type Config struct {
	BaseURL           string
	APIKey            string
	AccessToken       string // optional OAuth2 bearer token
	PageSize          int
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64 // 0 disables pacing
	BreakerFailures   uint32
	BreakerTimeout    time.Duration
}

// New creates a new YouTube client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("youtube API key is required")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.AccessToken != "" {
		// Bearer token on every request in addition to the key parameter
		base := context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(base, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.AccessToken,
			TokenType:   "Bearer",
		}))
		httpClient.Timeout = timeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		pageSize:   pageSize,
		httpClient: httpClient,
		limiter:    limiter,
		breaker:    newBreaker(failures, cfg.BreakerTimeout),
		maxRetries: maxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

func newBreaker(failures uint32, timeout time.Duration) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "youtube-api",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Client errors say nothing about catalog health
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zlog.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

// playlistListResponse represents the response from the playlists endpoint.
type playlistListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string                     `json:"title"`
			ChannelTitle string                     `json:"channelTitle"`
			PublishedAt  string                     `json:"publishedAt"`
			Thumbnails   map[string]thumbnailRecord `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			ItemCount int64 `json:"itemCount"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type thumbnailRecord struct {
	URL string `json:"url"`
}

// playlistItemListResponse represents the response from the playlistItems endpoint.
type playlistItemListResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// videoListResponse represents the response from the videos endpoint.
type videoListResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails *struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// FetchPlaylistMetadata retrieves descriptive information about a playlist.
func (c *Client) FetchPlaylistMetadata(ctx context.Context, id playlist.ID) (*playlist.Metadata, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", string(id))

	body, err := c.get(ctx, "playlists", params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get playlist")
	}

	var response playlistListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "failed to parse playlist response")
	}
	if len(response.Items) == 0 {
		return nil, errors.Mark(errors.Newf("playlist %s not found", id), ErrPlaylistNotFound)
	}

	p := response.Items[0]
	return &playlist.Metadata{
		ID:           id,
		Title:        p.Snippet.Title,
		Creator:      p.Snippet.ChannelTitle,
		ItemCount:    p.ContentDetails.ItemCount,
		CreatedAt:    parseTime(p.Snippet.PublishedAt),
		ThumbnailURL: pickThumbnail(p.Snippet.Thumbnails),
	}, nil
}

// FetchItemPage retrieves one page of playlist items.
func (c *Client) FetchItemPage(ctx context.Context, id playlist.ID, pageToken string) (playlist.Page, error) {
	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("playlistId", string(id))
	params.Set("maxResults", fmt.Sprintf("%d", c.pageSize))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	body, err := c.get(ctx, "playlistItems", params)
	if err != nil {
		return playlist.Page{}, errors.Wrap(err, "failed to get playlist items")
	}

	var response playlistItemListResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return playlist.Page{}, errors.Wrap(err, "failed to parse playlist items response")
	}

	items := make([]playlist.Item, 0, len(response.Items))
	for _, it := range response.Items {
		items = append(items, playlist.Item{VideoID: it.ContentDetails.VideoID})
	}

	return playlist.Page{Items: items, NextPageToken: response.NextPageToken}, nil
}

// FetchItemDuration looks up a single video's duration.
// Failures degrade to a zero-second resolution instead of an error.
func (c *Client) FetchItemDuration(ctx context.Context, videoID string) video.Resolution {
	return c.FetchItemDurations(ctx, []string{videoID})[0]
}

// FetchItemDurations looks up several videos' durations, MaxPageSize ids per call.
// The result has one entry per input id, in input order.
func (c *Client) FetchItemDurations(ctx context.Context, videoIDs []string) []video.Resolution {
	results := make([]video.Resolution, 0, len(videoIDs))

	for i := 0; i < len(videoIDs); i += MaxPageSize {
		end := i + MaxPageSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		results = append(results, c.fetchDurationBatch(ctx, videoIDs[i:end])...)
	}

	return results
}

func (c *Client) fetchDurationBatch(ctx context.Context, ids []string) []video.Resolution {
	results := make([]video.Resolution, len(ids))

	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", strings.Join(ids, ","))

	body, err := c.get(ctx, "videos", params)
	var response videoListResponse
	if err == nil {
		err = errors.Wrap(json.Unmarshal(body, &response), "failed to parse videos response")
	}
	if err != nil {
		for i, id := range ids {
			zlog.Warn().Err(err).Str("video_id", id).Msg("failed to fetch video duration, counting as zero")
			results[i] = video.Degrade(id, err.Error())
		}
		return results
	}

	tokens := make(map[string]string, len(response.Items))
	for _, it := range response.Items {
		if it.ContentDetails != nil {
			tokens[it.ID] = it.ContentDetails.Duration
		}
	}

	for i, id := range ids {
		token, ok := tokens[id]
		if !ok {
			zlog.Warn().Str("video_id", id).Msg("video is unavailable or hidden, counting as zero")
			results[i] = video.Degrade(id, "video is unavailable or hidden")
			continue
		}
		results[i] = video.Resolved(id, duration.Parse(token))
	}

	return results
}

// PlaylistURL returns the public URL for a playlist.
func PlaylistURL(id playlist.ID) string {
	return fmt.Sprintf("https://www.youtube.com/playlist?list=%s", url.QueryEscape(string(id)))
}

// get performs a GET on an API endpoint with retry, pacing and circuit breaking.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	params.Set("key", c.apiKey)
	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	var body []byte
	err := c.retry(ctx, func() error {
		b, err := c.breaker.Execute(func() ([]byte, error) {
			return c.do(ctx, reqURL)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return errors.Mark(err, ErrNetwork)
		}
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

// do sends one request and returns the body of a successful response.
func (c *Client) do(ctx context.Context, reqURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limiter wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Mark(errors.Wrap(err, "failed to send request"), ErrNetwork)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to read response body"), ErrNetwork)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, newAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// retry retries an operation with linear backoff.
func (c *Client) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			zlog.Debug().Err(err).Int("attempt", i+1).Msg("retrying catalog request")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(i+1)):
			}
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	// Transport failures
	return errors.Is(err, ErrNetwork)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// pickThumbnail prefers the high resolution thumbnail.
func pickThumbnail(thumbs map[string]thumbnailRecord) string {
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := thumbs[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}
