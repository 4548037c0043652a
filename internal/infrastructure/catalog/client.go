package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stockboard/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ClientConfig holds tuning for the remote store client
type ClientConfig struct {
	Timeout   time.Duration
	RateLimit float64 // requests per second
	Burst     int
}

// Client handles communication with the remote product store
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a new remote store client
func NewClient(baseURL string, config ClientConfig, logger *zap.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 20
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.Burst),
		logger:      logger.Named("catalog"),
	}
}

// doRequest executes an HTTP request and returns the status code and body.
// Transport failures and limiter refusals are reported as transient.
func (c *Client) doRequest(ctx context.Context, method, reqURL string, payload any) (int, []byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrTransientFailure, err)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "StockBoard/1.0")
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("method", method), zap.String("url", reqURL), zap.Error(err))
		return 0, nil, fmt.Errorf("%w: %v", domain.ErrTransientFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: reading body: %v", domain.ErrTransientFailure, err)
	}

	c.logger.Debug("request done",
		zap.String("method", method),
		zap.String("url", reqURL),
		zap.Int("status", resp.StatusCode))

	return resp.StatusCode, respBody, nil
}

// statusError maps a non-2xx response onto the error taxonomy.
// clientErr is used for 4xx responses other than 404 and 429.
func statusError(status int, body []byte, clientErr error) error {
	remoteErr := &domain.RemoteError{Status: status, Message: remoteMessage(body)}

	switch {
	case status == http.StatusNotFound:
		remoteErr.Err = domain.ErrProductNotFound
	case status == http.StatusTooManyRequests || status >= 500:
		remoteErr.Err = domain.ErrTransientFailure
	default:
		remoteErr.Err = clientErr
	}
	return remoteErr
}

// remoteMessage extracts the store's {"message": ...} field, if any
func remoteMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// ListProducts fetches the full product snapshot
func (c *Client) ListProducts(ctx context.Context) ([]domain.ProductRecord, error) {
	status, body, err := c.doRequest(ctx, http.MethodGet, c.baseURL+"/products", nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, statusError(status, body, domain.ErrRequestRejected)
	}

	products, err := DecodeProducts(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched snapshot", zap.Int("products", len(products)))
	return products, nil
}

// GetByBarcode looks up a single product by barcode
func (c *Client) GetByBarcode(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	if barcode == "" {
		return nil, domain.ErrEmptyIdentifier
	}

	reqURL := fmt.Sprintf("%s/products/product/%s", c.baseURL, url.PathEscape(barcode))
	status, body, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		// Any application-level refusal of a lookup surfaces as not-found
		return nil, statusError(status, body, domain.ErrProductNotFound)
	}

	product, err := DecodeProduct(body)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SetCategory persists a product's category
func (c *Client) SetCategory(ctx context.Context, id string, category domain.BucketName) error {
	reqURL := fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(id))
	payload := map[string]string{"category": string(category)}

	status, body, err := c.doRequest(ctx, http.MethodPut, reqURL, payload)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return statusError(status, body, domain.ErrRequestRejected)
	}
	return nil
}

// Analytics fetches the remote category summary and recent products
func (c *Client) Analytics(ctx context.Context) (*domain.Analytics, error) {
	status, body, err := c.doRequest(ctx, http.MethodGet, c.baseURL+"/products/analytics", nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, statusError(status, body, domain.ErrRequestRejected)
	}

	var wire struct {
		CategoryStats  []domain.CategoryStat `json:"categoryStats"`
		RecentProducts json.RawMessage       `json:"recentProducts"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	analytics := &domain.Analytics{CategoryStats: wire.CategoryStats}
	if len(wire.RecentProducts) > 0 && string(wire.RecentProducts) != "null" {
		recent, err := DecodeProducts(wire.RecentProducts)
		if err != nil {
			return nil, err
		}
		analytics.RecentProducts = recent
	}
	return analytics, nil
}

// Search queries products by name and category
func (c *Client) Search(ctx context.Context, query domain.SearchQuery) ([]domain.ProductRecord, error) {
	params := url.Values{}
	params.Add("name", query.Name)
	params.Add("category", query.Category)
	reqURL := fmt.Sprintf("%s/products/search?%s", c.baseURL, params.Encode())

	status, body, err := c.doRequest(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		err := statusError(status, body, domain.ErrRequestRejected)
		if errors.Is(err, domain.ErrProductNotFound) {
			// an empty search is not an error
			return []domain.ProductRecord{}, nil
		}
		return nil, err
	}
	return DecodeProducts(body)
}
