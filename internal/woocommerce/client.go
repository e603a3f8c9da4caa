package woocommerce

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mirror/internal/logger"
)

// Client talks to the WooCommerce REST API (wp-json/wc/v3). It exposes the
// paginated listing endpoints the sync engine consumes and nothing else.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	logger         *logger.Logger
}

func NewClient(baseURL, consumerKey, consumerSecret string, timeout time.Duration, logger *logger.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ListProducts fetches one page of products. It returns the page's records
// plus the total item and total page counts from the response headers.
func (c *Client) ListProducts(params url.Values, page, perPage int) ([]Product, int, int, error) {
	return listPage[Product](c, "products", params, page, perPage)
}

// ListOrders fetches one page of orders.
func (c *Client) ListOrders(params url.Values, page, perPage int) ([]Order, int, int, error) {
	return listPage[Order](c, "orders", params, page, perPage)
}

// ListVariations fetches the variations sub-resource of one product.
func (c *Client) ListVariations(productID int64) ([]Variation, error) {
	variations, _, _, err := listPage[Variation](c, fmt.Sprintf("products/%d/variations", productID), nil, 1, 100)
	return variations, err
}

func listPage[T any](c *Client, resource string, params url.Values, page, perPage int) ([]T, int, int, error) {
	endpoint := fmt.Sprintf("%s/wp-json/wc/v3/%s", c.baseURL, resource)

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	for key, values := range params {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	q.Set("consumer_key", c.consumerKey)
	q.Set("consumer_secret", c.consumerSecret)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Fetching %s page %d (per_page=%d)", resource, page, perPage)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Request for %s page %d failed: %v", resource, page, err)
		return nil, 0, 0, fmt.Errorf("failed to fetch %s page %d: %w", resource, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, 0, 0, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var records []T
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode %s response: %w", resource, err)
	}

	total := headerInt(resp, "X-WP-Total", len(records))
	totalPages := headerInt(resp, "X-WP-TotalPages", 1)

	return records, total, totalPages, nil
}

func headerInt(resp *http.Response, name string, fallback int) int {
	if raw := resp.Header.Get(name); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil {
			return value
		}
	}
	return fallback
}
