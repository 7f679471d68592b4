// Package feedclient is the HTTP client for the feed API: the query service
// for the aggregator, and the SSE stream for push delivery.
package feedclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"deepscifi.app/feed/internal/feed"
	"deepscifi.app/feed/internal/model"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No overall timeout: the same client serves the long-lived SSE
		// stream. Page fetches bound themselves via request contexts.
		http: &http.Client{},
	}
}

type pageResponse struct {
	Items      []model.FeedItem `json:"items"`
	NextCursor *string          `json:"next_cursor"`
}

// GetFeed implements feed.Source against GET /api/feed.
func (c *Client) GetFeed(ctx context.Context, cursor *string, limit int32) (*feed.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	q := url.Values{}
	q.Set("limit", strconv.FormatInt(int64(limit), 10))
	if cursor != nil && *cursor != "" {
		q.Set("cursor", *cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/feed?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed request failed: status %d", resp.StatusCode)
	}

	var page pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding feed page: %w", err)
	}

	return &feed.Page{
		Items:      page.Items,
		NextCursor: page.NextCursor,
	}, nil
}

// Stream connects to GET /api/feed/stream and invokes apply for every pushed
// feed item until ctx is cancelled. A connect failure or a mid-stream drop
// returns feed.ErrStreamUnavailable so the caller can surface a retry state;
// deliberate cancellation returns nil.
func (c *Client) Stream(ctx context.Context, apply func(model.FeedItem)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/feed/stream", nil)
	if err != nil {
		return fmt.Errorf("building stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: %v", feed.ErrStreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", feed.ErrStreamUnavailable, resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event, data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			// Blank line terminates one SSE frame.
			if event == "feed_item" && data != "" {
				var item model.FeedItem
				if err := json.Unmarshal([]byte(data), &item); err == nil {
					apply(item)
				}
			}
			event, data = "", ""
		case strings.HasPrefix(line, ":"):
			// Heartbeat comment.
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", feed.ErrStreamUnavailable, err)
	}
	// Server closed the stream; to the client that is a drop.
	return fmt.Errorf("%w: stream closed by server", feed.ErrStreamUnavailable)
}
