package arr

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"loopguard/internal/config"
)

const userAgent = "Loopguard-Go/0.1.0"

const (
	queuePageSize = 1000
	// maxQueuePages caps pagination so a misbehaving instance cannot stall
	// the handler; 50k queue items is far past any realistic queue.
	maxQueuePages = 50
)

// ErrQueueItemNotFound reports that no queue item matched the release. The
// item may already have been imported or removed by the instance itself.
var ErrQueueItemNotFound = errors.New("queue item not found")

// Client is an API client for a single Radarr or Sonarr instance.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient builds a client for one configured instance. The instance URL
// must already be normalized without a trailing slash.
func NewClient(instance config.Instance, verifySSL bool, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	if !verifySSL {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(instance.URL), "/"),
		apiKey:  strings.TrimSpace(instance.APIKey),
		client:  httpClient,
	}
}

type queueItem struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	DownloadID string `json:"downloadId"`
}

type queuePage struct {
	Page         int         `json:"page"`
	PageSize     int         `json:"pageSize"`
	TotalRecords int         `json:"totalRecords"`
	Records      []queueItem `json:"records"`
}

// Blocklist locates the queue item for the given release and removes it with
// blocklisting enabled so the instance will not grab the same release again.
// Returns ErrQueueItemNotFound when the queue holds no matching item.
func (c *Client) Blocklist(ctx context.Context, title, downloadID string) error {
	item, err := c.findQueueItem(ctx, title, downloadID)
	if err != nil {
		return err
	}
	return c.removeQueueItem(ctx, item.ID)
}

// findQueueItem pages through the queue looking for the release. Exact
// download-id and title matches win; a substring title match is the fallback
// for instances that decorate queue titles.
func (c *Client) findQueueItem(ctx context.Context, title, downloadID string) (*queueItem, error) {
	title = strings.TrimSpace(title)
	downloadID = strings.TrimSpace(downloadID)
	loweredTitle := strings.ToLower(title)

	var partial *queueItem
	for page := 1; page <= maxQueuePages; page++ {
		result, err := c.fetchQueuePage(ctx, page)
		if err != nil {
			return nil, err
		}
		for i := range result.Records {
			item := &result.Records[i]
			if downloadID != "" && strings.EqualFold(item.DownloadID, downloadID) {
				return item, nil
			}
			if title != "" && strings.EqualFold(item.Title, title) {
				return item, nil
			}
			if partial == nil && loweredTitle != "" && strings.Contains(strings.ToLower(item.Title), loweredTitle) {
				partial = item
			}
		}
		if page*result.PageSize >= result.TotalRecords || len(result.Records) == 0 {
			break
		}
	}

	if partial != nil {
		return partial, nil
	}
	return nil, ErrQueueItemNotFound
}

func (c *Client) fetchQueuePage(ctx context.Context, page int) (*queuePage, error) {
	endpoint := fmt.Sprintf("%s/api/v3/queue?page=%d&pageSize=%d", c.baseURL, page, queuePageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build queue request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch queue: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("queue request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result queuePage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode queue response: %w", err)
	}
	if result.PageSize <= 0 {
		result.PageSize = queuePageSize
	}
	return &result, nil
}

func (c *Client) removeQueueItem(ctx context.Context, id int64) error {
	endpoint := fmt.Sprintf("%s/api/v3/queue/%d?%s", c.baseURL, id, url.Values{
		"removeFromClient": {"true"},
		"blocklist":        {"true"},
	}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build queue delete request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete queue item: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("queue delete returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
