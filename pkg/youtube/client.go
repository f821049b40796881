package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tubeharvest/platform/pkg/common/config"
	"golang.org/x/time/rate"
)

const (
	playlistPageSize = 50
	commentPageSize  = 100
)

// Options configures a Client. Zero values fall back to sane defaults;
// tests override BaseURL and zero out the backoff.
type Options struct {
	APIKey        string
	BaseURL       string
	MaxRetries    int
	BackoffFactor time.Duration
	RateLimit     float64
	Timeout       time.Duration
	HTTPClient    *http.Client
}

// Client fetches paginated channel/video/comment data from the
// YouTube Data API v3, hiding pagination mechanics and transient
// failure retry from callers.
type Client struct {
	apiKey        string
	baseURL       string
	httpClient    *http.Client
	maxRetries    int
	backoffFactor time.Duration
	limiter       *rate.Limiter

	mu      sync.Mutex
	uploads map[string]string // channel id -> uploads playlist id
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		transport := &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
		httpClient = &http.Client{Timeout: opts.Timeout, Transport: transport}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &Client{
		apiKey:        opts.APIKey,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		httpClient:    httpClient,
		maxRetries:    opts.MaxRetries,
		backoffFactor: opts.BackoffFactor,
		limiter:       limiter,
		uploads:       make(map[string]string),
	}
}

func NewFromConfig(cfg *config.Config) *Client {
	return New(Options{
		APIKey:        cfg.YouTubeAPIKey,
		BaseURL:       cfg.YouTubeBaseURL,
		MaxRetries:    cfg.YouTubeMaxRetries,
		BackoffFactor: cfg.YouTubeBackoff,
		RateLimit:     cfg.YouTubeRateLimit,
		Timeout:       cfg.YouTubeTimeout,
	})
}

// ListVideos returns one page of the channel's uploads with full video
// details. An empty pageToken means the first page.
func (c *Client) ListVideos(ctx context.Context, channelID, pageToken string) (*VideoPage, error) {
	uploadsID, err := c.uploadsPlaylistID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("playlistId", uploadsID)
	params.Set("maxResults", fmt.Sprintf("%d", playlistPageSize))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	body, err := c.request(ctx, "playlistItems", params)
	if err != nil {
		return nil, err
	}

	var playlist struct {
		Items         []PlaylistItem `json:"items"`
		NextPageToken string         `json:"nextPageToken"`
		PrevPageToken string         `json:"prevPageToken"`
	}
	if err := json.Unmarshal(body, &playlist); err != nil {
		return nil, &ProtocolError{Path: "playlistItems", Err: err}
	}

	page := &VideoPage{
		PlaylistItems: playlist.Items,
		NextPageToken: playlist.NextPageToken,
		PrevPageToken: playlist.PrevPageToken,
	}

	var videoIDs []string
	for _, item := range playlist.Items {
		if id := item.ContentDetails.VideoID; id != "" {
			videoIDs = append(videoIDs, id)
		}
	}
	if len(videoIDs) == 0 {
		return page, nil
	}

	detailParams := url.Values{}
	detailParams.Set("part", "snippet,contentDetails,statistics")
	detailParams.Set("id", strings.Join(videoIDs, ","))
	detailParams.Set("maxResults", fmt.Sprintf("%d", playlistPageSize))

	body, err = c.request(ctx, "videos", detailParams)
	if err != nil {
		return nil, err
	}

	var details struct {
		Items []Video `json:"items"`
	}
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, &ProtocolError{Path: "videos", Err: err}
	}
	page.Items = details.Items

	return page, nil
}

// ListCommentThreads returns one page of comment threads for a video.
func (c *Client) ListCommentThreads(ctx context.Context, videoID, pageToken string) (*CommentPage, error) {
	params := url.Values{}
	params.Set("part", "snippet,replies")
	params.Set("videoId", videoID)
	params.Set("maxResults", fmt.Sprintf("%d", commentPageSize))
	params.Set("textFormat", "plainText")
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}

	body, err := c.request(ctx, "commentThreads", params)
	if err != nil {
		return nil, err
	}

	var page CommentPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &ProtocolError{Path: "commentThreads", Err: err}
	}
	page.Raw = append(json.RawMessage(nil), body...)

	return &page, nil
}

// uploadsPlaylistID resolves (and caches) the channel's canonical
// uploads playlist.
func (c *Client) uploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	c.mu.Lock()
	cached, ok := c.uploads[channelID]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", channelID)

	body, err := c.request(ctx, "channels", params)
	if err != nil {
		return "", err
	}

	var resp struct {
		Items []struct {
			ContentDetails struct {
				RelatedPlaylists struct {
					Uploads string `json:"uploads"`
				} `json:"relatedPlaylists"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &ProtocolError{Path: "channels", Err: err}
	}

	if len(resp.Items) == 0 {
		return "", fmt.Errorf("channel %s: %w", channelID, ErrChannelNotFound)
	}
	uploadsID := resp.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if uploadsID == "" {
		return "", fmt.Errorf("channel %s has no uploads playlist: %w", channelID, ErrChannelNotFound)
	}

	c.mu.Lock()
	c.uploads[channelID] = uploadsID
	c.mu.Unlock()

	return uploadsID, nil
}

// request issues an authenticated GET with retry. Transport failures
// and 5xx responses are retried up to the attempt budget with linearly
// increasing backoff; 4xx responses surface immediately.
func (c *Client) request(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("key", c.apiKey)
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, path, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		body, retryable, err := c.doOnce(ctx, endpoint, path)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err

		if attempt == c.maxRetries {
			break
		}

		select {
		case <-time.After(time.Duration(attempt) * c.backoffFactor):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, &UpstreamError{Path: path, Attempts: c.maxRetries, Err: lastErr}
}

func (c *Client) doOnce(ctx context.Context, endpoint, path string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("reading %s response: %w", path, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%s: %w", path, ErrNotFound)
	case resp.StatusCode >= 400:
		return nil, false, &InvalidRequestError{Path: path, StatusCode: resp.StatusCode}
	}

	return body, false, nil
}
