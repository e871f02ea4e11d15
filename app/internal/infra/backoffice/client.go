// Package backoffice talks to a remote ordering API over HTTP. It lets a
// storefront run its checkout against another instance's client lookup and
// order endpoints.
package backoffice

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

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
	domorder "example.com/cleantec-orders/app/internal/domain/order"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = gobreaker.ErrOpenState

type Config struct {
	BaseURL string
	Timeout time.Duration
	// Breaker trips once MinRequests calls have been made in Interval and
	// at least FailureRatio of them failed; it stays open for OpenTimeout.
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	OpenTimeout  time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MinRequests == 0 {
		c.MinRequests = 5
	}
	if c.FailureRatio <= 0 {
		c.FailureRatio = 0.5
	}
	if c.Interval <= 0 {
		c.Interval = 60 * time.Second
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = 30 * time.Second
	}
	return c
}

// StateFunc observes breaker transitions; state is 0 closed, 1 half-open,
// 2 open.
type StateFunc func(name string, state float64)

type response struct {
	status int
	body   []byte
}

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[response]
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger, onState StateFunc) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	settings := gobreaker.Settings{
		Name:        "backoffice",
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if onState != nil {
				onState(name, stateValue(to))
			}
		},
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[response](settings),
		logger:  logger,
	}
}

func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Lookup resolves a client number through GET /api/v1/clients. A 404 is a
// miss, not a failure.
func (c *Client) Lookup(ctx context.Context, clientNumber string) (*domcustomer.Customer, error) {
	endpoint := c.baseURL + "/api/v1/clients?clientNumber=" + url.QueryEscape(clientNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create lookup request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		return nil, domcustomer.ErrCustomerNotFound
	}
	if resp.status != http.StatusOK {
		return nil, statusError(resp)
	}

	var body clientResponse
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}
	if !body.Success || body.Client == nil {
		return nil, domcustomer.ErrCustomerNotFound
	}
	return body.Client.toDomain(), nil
}

// CreateOrder posts the payload to POST /api/v1/orders.
func (c *Client) CreateOrder(ctx context.Context, payload domorder.Payload) (*domorder.Receipt, error) {
	data, err := json.Marshal(newOrderRequest(payload))
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/orders", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK && resp.status != http.StatusCreated {
		return nil, statusError(resp)
	}

	var body orderResponse
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	if !body.Success || body.OrderNumber == "" {
		return nil, fmt.Errorf("order rejected: %s", body.Error)
	}
	return &domorder.Receipt{OrderID: body.OrderID, OrderNumber: body.OrderNumber}, nil
}

// do runs req through the breaker. Transport errors and 5xx responses
// count as failures; every other status is handed back to the caller.
func (c *Client) do(req *http.Request) (response, error) {
	resp, err := c.breaker.Execute(func() (response, error) {
		r, err := c.http.Do(req)
		if err != nil {
			return response{}, err
		}
		defer r.Body.Close()

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			return response{}, fmt.Errorf("read response: %w", err)
		}
		out := response{status: r.StatusCode, body: body}
		if r.StatusCode >= http.StatusInternalServerError {
			return out, statusError(out)
		}
		return out, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("backoffice call rejected", zap.String("url", req.URL.Path), zap.Error(err))
		}
		return response{}, fmt.Errorf("backoffice %s %s: %w", req.Method, req.URL.Path, err)
	}
	return resp, nil
}

func statusError(r response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(r.body, &body)
	if body.Error != "" {
		return fmt.Errorf("unexpected status %d: %s", r.status, body.Error)
	}
	return fmt.Errorf("unexpected status %d", r.status)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
