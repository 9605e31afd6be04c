// Package apiclient talks to a running shortsd server.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// APIError is a non-2xx answer of the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type Stats struct {
	ViewCount    int64  `json:"view_count"`
	LikeCount    int64  `json:"like_count"`
	CommentCount int64  `json:"comment_count"`
	LastUpdated  string `json:"last_updated"`
}

// Track is the union of the link shapes returned by the search endpoints.
type Track struct {
	VideoID           string  `json:"video_id"`
	Title             string  `json:"title"`
	ChannelTitle      string  `json:"channel_title"`
	DurationSec       int     `json:"duration_sec"`
	PrimaryGenre      *string `json:"primary_genre"`
	GenreConfidence   float64 `json:"genre_confidence"`
	IsDownloaded      bool    `json:"is_downloaded"`
	DownloadedAt      *string `json:"downloaded_at"`
	YoutubeURL        string  `json:"youtube_url"`
	DownloadURL       string  `json:"download_url"`
	APIDownloadURL    string  `json:"api_download_url"`
	DirectDownloadURL string  `json:"direct_download_url"`
	DownloadInfoURL   string  `json:"download_info_url"`
	Stats             *Stats  `json:"stats,omitempty"`
}

type DownloadReport struct {
	Requested  int      `json:"requested"`
	Skipped    []string `json:"skipped"`
	Downloaded []string `json:"downloaded"`
	Failed     []string `json:"failed"`
}

type SearchResult struct {
	Status        string          `json:"status"`
	Message       string          `json:"message"`
	Query         string          `json:"query"`
	Found         int             `json:"found"`
	Downloaded    bool            `json:"downloaded"`
	Report        *DownloadReport `json:"report,omitempty"`
	Links         []Track         `json:"links,omitempty"`
	DownloadLinks []Track         `json:"download_links,omitempty"`
}

// Tracks returns whichever track list the endpoint filled.
func (r *SearchResult) Tracks() []Track {
	if len(r.DownloadLinks) > 0 {
		return r.DownloadLinks
	}
	return r.Links
}

type RankedTrack struct {
	VideoID      string  `json:"video_id"`
	Title        string  `json:"title"`
	ChannelTitle string  `json:"channel_title"`
	DurationSec  int     `json:"duration_sec"`
	TrendScore   float64 `json:"trend_score"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Ping checks that the server answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var out map[string]any
	return c.do(ctx, http.MethodGet, "/health", nil, nil, &out)
}

// SearchAndDownload searches the provider and optionally downloads the best
// ranked results on the server.
func (c *Client) SearchAndDownload(ctx context.Context, query string, maxResults int, download bool) (*SearchResult, error) {
	body := map[string]any{"query": query, "max_results": maxResults, "download": download}
	var out SearchResult
	if err := c.do(ctx, http.MethodPost, "/api/search_and_download", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Links lists stored tracks matching query.
func (c *Client) Links(ctx context.Context, query string, maxResults int) (*SearchResult, error) {
	return c.links(ctx, "/api/search_links", query, maxResults)
}

// DirectLinks searches the provider and lists matching tracks with links to
// resolve their audio streams.
func (c *Client) DirectLinks(ctx context.Context, query string, maxResults int) (*SearchResult, error) {
	return c.links(ctx, "/api/search_direct_links", query, maxResults)
}

func (c *Client) links(ctx context.Context, path, query string, maxResults int) (*SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", strconv.Itoa(maxResults))
	var out SearchResult
	if err := c.do(ctx, http.MethodGet, path, params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Top(ctx context.Context, n int) ([]RankedTrack, error) {
	params := url.Values{}
	if n > 0 {
		params.Set("n", strconv.Itoa(n))
	}
	var out []RankedTrack
	if err := c.do(ctx, http.MethodGet, "/api/top", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DownloadAudio streams a stored audio file into w and returns the file name
// suggested by the server.
func (c *Client) DownloadAudio(ctx context.Context, videoID string, w io.Writer) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/download/"+url.PathEscape(videoID), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("reading audio of %s: %w", videoID, err)
	}

	name := videoID
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return name, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var payload struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		apiErr.Message = payload.Message
	}
	return apiErr
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
