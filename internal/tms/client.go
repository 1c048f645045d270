// Package tms is a client for the TMS order listing endpoint.
package tms

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

	"golang.org/x/oauth2"

	"github.com/andresuchdata/tms-dashboard/internal/domain"
)

const (
	dateParamLayout   = "2006-01-02"
	defaultOrdersPath = "/api/orders"
	defaultTimeout    = 60 * time.Second
	maxErrorBody      = 512
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	OrdersPath string
	// Token is sent as a bearer token when set.
	Token   string
	Timeout time.Duration
	// HTTPClient replaces the default client. Token is ignored when set.
	HTTPClient *http.Client
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tms: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client fetches order records for a date range.
type Client struct {
	endpoint *url.URL
	http     *http.Client
}

// NewClient validates opts and builds a Client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("tms: base url is required")
	}
	path := opts.OrdersPath
	if path == "" {
		path = defaultOrdersPath
	}
	endpoint, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("tms: invalid base url: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
		if opts.Token != "" {
			httpClient.Transport = &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"}),
				Base:   http.DefaultTransport,
			}
		}
	}

	return &Client{endpoint: endpoint, http: httpClient}, nil
}

// FetchOrders returns the orders between start and end, both inclusive days.
func (c *Client) FetchOrders(ctx context.Context, start, end time.Time) ([]domain.OrderRecord, error) {
	u := *c.endpoint
	q := u.Query()
	q.Set("startDate", start.Format(dateParamLayout))
	q.Set("endDate", end.Format(dateParamLayout))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("tms: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tms: request %s..%s: %w", q.Get("startDate"), q.Get("endDate"), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tms: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: msg}
	}

	return DecodeOrders(body)
}

// DecodeOrders accepts either a bare JSON array of orders or an object
// wrapping it under "Data" or "data".
func DecodeOrders(body []byte) ([]domain.OrderRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	var orders []domain.OrderRecord
	if body[0] == '[' {
		if err := json.Unmarshal(body, &orders); err != nil {
			return nil, fmt.Errorf("tms: decode orders: %w", err)
		}
		return orders, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("tms: decode envelope: %w", err)
	}
	for _, key := range []string{"Data", "data"} {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &orders); err != nil {
			return nil, fmt.Errorf("tms: decode %s: %w", key, err)
		}
		return orders, nil
	}
	return nil, errors.New("tms: response has no order list")
}
