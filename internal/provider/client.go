package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shortsd/internal/providers"
	"shortsd/internal/structures"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const maxErrorBody = 512

// Source is the read side of the video provider.
type Source interface {
	FetchPage(ctx context.Context, cursor string) (Page, error)
	Search(ctx context.Context, query string, maxResults int) ([]Item, error)
}

// Client talks to the YouTube Data API v3.
type Client struct {
	http           *http.Client
	baseURL        string
	apiKey         string
	region         string
	pageSize       int
	order          string
	publishedAfter string
	limiter        *rate.Limiter
	retry          RetryPolicy
	logger         providers.Logger
}

func NewClient(conf *structures.Config, logger providers.Logger) *Client {
	pc := conf.Provider

	timeout := pc.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	limit := rate.Inf
	if pc.RequestsPerSecond > 0 {
		limit = rate.Limit(pc.RequestsPerSecond)
	}
	pageSize := pc.PageSize
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 50
	}

	return &Client{
		http:           &http.Client{Timeout: timeout},
		baseURL:        strings.TrimRight(pc.BaseURL, "/"),
		apiKey:         pc.APIKey,
		region:         pc.Region,
		pageSize:       pageSize,
		order:          pc.SearchOrder,
		publishedAfter: pc.PublishedAfter,
		limiter:        rate.NewLimiter(limit, 1),
		retry:          NewRetryPolicy(pc.Retry),
		logger:         logger,
	}
}

// Region is the chart and search region of the client.
func (c *Client) Region() string {
	return c.region
}

type videoListResponse struct {
	Items         []Item `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

type searchListResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

// FetchPage returns one page of the mostPopular chart. An empty cursor
// requests the first page.
func (c *Client) FetchPage(ctx context.Context, cursor string) (Page, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails,statistics")
	params.Set("chart", "mostPopular")
	params.Set("regionCode", c.region)
	params.Set("maxResults", strconv.Itoa(c.pageSize))
	if cursor != "" {
		params.Set("pageToken", cursor)
	}

	var resp videoListResponse
	if err := c.get(ctx, "videos", params, &resp); err != nil {
		return Page{}, fmt.Errorf("fetching popular page: %w", err)
	}
	return Page{Items: resp.Items, NextCursor: resp.NextPageToken}, nil
}

// Search runs search.list for short videos and loads their details with
// videos.list.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Item, error) {
	if maxResults <= 0 || maxResults > 50 {
		maxResults = 50
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("videoDuration", "short")
	params.Set("regionCode", c.region)
	params.Set("maxResults", strconv.Itoa(maxResults))
	if c.order != "" {
		params.Set("order", c.order)
	}
	if c.publishedAfter != "" {
		params.Set("publishedAfter", c.publishedAfter)
	}

	var found searchListResponse
	if err := c.get(ctx, "search", params, &found); err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}

	ids := make([]string, 0, len(found.Items))
	for _, it := range found.Items {
		if it.ID.VideoID != "" {
			ids = append(ids, it.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return []Item{}, nil
	}

	details := url.Values{}
	details.Set("part", "snippet,contentDetails,statistics")
	details.Set("id", strings.Join(ids, ","))

	var resp videoListResponse
	if err := c.get(ctx, "videos", details, &resp); err != nil {
		return nil, fmt.Errorf("loading details for %q: %w", query, err)
	}
	return resp.Items, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	target := c.baseURL + "/" + endpoint + "?" + params.Encode()

	return c.retry.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Warnf(providers.TypeIngest, "Request to %s failed: %s", endpoint, err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			c.logger.Warnf(providers.TypeIngest, "Request to %s returned %d", endpoint, resp.StatusCode)
			return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s response: %w", endpoint, err)
		}
		return nil
	})
}
