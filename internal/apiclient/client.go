// Package apiclient talks to an external REST order API. In mock mode it
// serves an in-memory copy of the demo orders instead.
package apiclient

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

	"go.uber.org/zap"
	"mets-backend/internal/models"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultRetryAttempts = 3
)

// CredentialProvider supplies the bearer token for each request. An empty
// token sends the request unauthenticated.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a CredentialProvider with a fixed token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// APIError is a non-2xx response. Message is the server's message field
// when the body carries one.
type APIError struct {
	StatusCode int
	Message    string
	Body       json.RawMessage
}

func (e *APIError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

type Config struct {
	BaseURL       string
	MockMode      bool
	Timeout       time.Duration
	RetryAttempts int
	Credentials   CredentialProvider
	// OnUnauthorized runs after any 401 response, e.g. to drop a cached
	// token.
	OnUnauthorized func()
}

type Client struct {
	baseURL        string
	credentials    CredentialProvider
	onUnauthorized func()
	retryAttempts  int
	httpClient     *http.Client
	logger         *zap.Logger
	mock           *mockStore

	// Backoff is the wait before each retry of a GET.
	Backoff []time.Duration
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = DefaultRetryAttempts
	}
	if cfg.Credentials == nil {
		cfg.Credentials = StaticToken("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		credentials:    cfg.Credentials,
		onUnauthorized: cfg.OnUnauthorized,
		retryAttempts:  cfg.RetryAttempts,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		logger:         logger,
		Backoff:        []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
	if cfg.MockMode {
		c.mock = newMockStore()
	}

	logger.Info("api client initialised", zap.String("base_url", c.baseURL), zap.Bool("mock_mode", cfg.MockMode))
	return c
}

func (c *Client) MockMode() bool {
	return c.mock != nil
}

// Load implements orders.Source.
func (c *Client) Load(ctx context.Context) ([]models.Order, error) {
	return c.GetOrders(ctx, nil)
}

func (c *Client) GetOrders(ctx context.Context, params url.Values) ([]models.Order, error) {
	if c.mock != nil {
		return c.mock.list(), nil
	}

	var list []models.Order
	err := c.RetryWithBackoff(ctx, func() error {
		return c.do(ctx, http.MethodGet, "/orders", params, nil, &list)
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	if c.mock != nil {
		return c.mock.get(orderID)
	}

	var o models.Order
	err := c.RetryWithBackoff(ctx, func() error {
		return c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), nil, nil, &o)
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder posts o and returns the order as stored by the API.
func (c *Client) CreateOrder(ctx context.Context, o models.Order) (*models.Order, error) {
	if c.mock != nil {
		return c.mock.create(o), nil
	}

	var created models.Order
	if err := c.do(ctx, http.MethodPost, "/orders", nil, o, &created); err != nil {
		return nil, err
	}
	created.RiskLevel = o.RiskLevel
	return &created, nil
}

func (c *Client) UpdateOrder(ctx context.Context, orderID string, o models.Order) (*models.Order, error) {
	if c.mock != nil {
		return c.mock.update(orderID, o)
	}

	var updated models.Order
	if err := c.do(ctx, http.MethodPut, "/orders/"+url.PathEscape(orderID), nil, o, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateOrderStatus reads the order and writes it back with the new status
// and progress; the API has no partial update.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus, progress int) error {
	o, err := c.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	o.Status = status
	o.Progress = progress
	_, err = c.UpdateOrder(ctx, orderID, *o)
	return err
}

func (c *Client) DeleteOrder(ctx context.Context, orderID string) error {
	if c.mock != nil {
		return c.mock.delete(orderID)
	}
	return c.do(ctx, http.MethodDelete, "/orders/"+url.PathEscape(orderID), nil, nil, nil)
}

// RetryWithBackoff runs fn up to the configured number of attempts, waiting
// between attempts. Client errors other than 429 are not retried.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i < c.retryAttempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) || i == c.retryAttempts-1 {
			break
		}

		c.logger.Debug("retrying api request", zap.Int("attempt", i+1), zap.Error(err))
		if i < len(c.Backoff) {
			t := time.NewTimer(c.Backoff[i])
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	return lastErr
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	token, err := c.credentials.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get api token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp, respBody)
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		c.logger.Warn("api request rejected", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("invalid JSON response from server: %w", err)
	}
	return nil
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Body = body
		apiErr.Message = parsed.Message
		if apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("HTTP error! Status: %d", resp.StatusCode)
		}
		return apiErr
	}

	apiErr.Message = fmt.Sprintf("HTTP error! Status: %d - %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	return apiErr
}
