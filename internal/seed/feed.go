package seed

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

	"github.com/shopspring/decimal"
)

const (
	defaultFeedURL          = "https://dummyjson.com"
	defaultUserAgent        = "Mozilla/5.0"
	errorBodyReadLimit      = 1024
	maxImageBytes     int64 = 10 << 20
)

var errFeedURLRequired = errors.New("feed base url is required")

// FeedProduct is one product from the dummyjson catalog feed.
type FeedProduct struct {
	ID                 int             `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Category           string          `json:"category"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage float64         `json:"discountPercentage"`
	Stock              int             `json:"stock"`
	Rating             float64         `json:"rating"`
	Thumbnail          string          `json:"thumbnail"`
}

// FeedClient reads the catalog feed and downloads images.
type FeedClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Option configures optional client behavior.
type Option func(*FeedClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *FeedClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *FeedClient) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewFeedClient builds a feed client rooted at baseURL (e.g. https://dummyjson.com).
func NewFeedClient(baseURL string, opts ...Option) (*FeedClient, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errFeedURLRequired
	}
	client := &FeedClient{
		baseURL:    trimmed,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// FetchProducts returns up to limit products from {base}/products?limit=N.
func (c *FeedClient) FetchProducts(ctx context.Context, limit int) ([]FeedProduct, error) {
	endpoint := fmt.Sprintf("%s/products?limit=%s", c.baseURL, strconv.Itoa(limit))
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var payload struct {
		Products []FeedProduct `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}
	return payload.Products, nil
}

// Download fetches a remote object and returns its body and declared content type.
func (c *FeedClient) Download(ctx context.Context, source string) ([]byte, string, error) {
	resp, err := c.get(ctx, source)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", source, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// PlaceholderURL is the generated image used when a product thumbnail cannot be stored.
func (c *FeedClient) PlaceholderURL(slug string) string {
	return fmt.Sprintf("%s/image/400?text=%s", c.baseURL, url.QueryEscape(slug))
}

func (c *FeedClient) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("get %s: status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}
