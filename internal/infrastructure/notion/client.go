package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"RecipeScanner/internal/domain"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"
)

// Options configures the API client.
type Options struct {
	BaseURL string
	Token   string
	Version string
	// RequestsPerSecond paces every request; zero or less disables pacing.
	RequestsPerSecond float64
	Timeout           time.Duration
	HTTPClient        *http.Client
}

// Client talks to the Notion REST API.
type Client struct {
	baseURL string
	token   string
	version string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a reusable HTTP client.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	version := opts.Version
	if version == "" {
		version = DefaultVersion
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL: baseURL,
		token:   opts.Token,
		version: version,
		http:    httpClient,
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c
}

// RetrieveDatabase fetches database metadata.
func (c *Client) RetrieveDatabase(ctx context.Context, id string) (Database, error) {
	var db Database
	if err := c.do(ctx, "retrieve database", http.MethodGet, "/databases/"+id, nil, &db); err != nil {
		return Database{}, err
	}
	return db, nil
}

// QueryDatabase runs a filtered query and returns one page of results.
func (c *Client) QueryDatabase(ctx context.Context, id string, query QueryRequest) (QueryResponse, error) {
	var resp QueryResponse
	if err := c.do(ctx, "query database", http.MethodPost, "/databases/"+id+"/query", query, &resp); err != nil {
		return QueryResponse{}, err
	}
	return resp, nil
}

// CreatePage adds a row to a database.
func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) (Page, error) {
	var page Page
	if err := c.do(ctx, "create page", http.MethodPost, "/pages", req, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

// RetrievePage fetches a page with its properties.
func (c *Client) RetrievePage(ctx context.Context, id string) (Page, error) {
	var page Page
	if err := c.do(ctx, "retrieve page", http.MethodGet, "/pages/"+id, nil, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

// UpdatePage patches the given properties of a page.
func (c *Client) UpdatePage(ctx context.Context, id string, props Properties) (Page, error) {
	var page Page
	if err := c.do(ctx, "update page", http.MethodPatch, "/pages/"+id, updatePageRequest{Properties: props}, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any, v any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &domain.RemoteStoreError{Op: op, Err: err}
		}
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Notion-Version", c.version)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.RemoteStoreError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(op, resp)
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &domain.RemoteStoreError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	remoteErr := &domain.RemoteStoreError{Op: op, Status: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		remoteErr.Err = fmt.Errorf("read error body: %w", err)
		return remoteErr
	}
	var body errorBody
	if json.Unmarshal(raw, &body) == nil && body.Message != "" {
		remoteErr.Message = body.Message
	} else {
		remoteErr.Message = strings.TrimSpace(string(raw))
		if remoteErr.Message == "" {
			remoteErr.Message = resp.Status
		}
	}
	return remoteErr
}
