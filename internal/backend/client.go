// Package backend is the REST client for the device-ingestion backend. It
// owns request timeouts, bearer authentication, and error classification; it
// never mutates session state itself.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linnemanlabs/wardview/internal/alert"
	"github.com/linnemanlabs/wardview/internal/resident"
	"github.com/linnemanlabs/wardview/internal/vitals"
)

// DefaultTimeout bounds every backend request unless overridden.
const DefaultTimeout = 30 * time.Second

// Snapshot is the authoritative resident/alert view at one point in time.
type Snapshot struct {
	Residents []resident.Resident
	Alerts    []alert.Alert
}

// Client talks to the ingestion backend over REST with bearer-token auth.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a backend client. A non-positive timeout falls back to
// DefaultTimeout.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Snapshot fetches the full resident and alert collections. The two fetches
// are independent requests; if either fails the whole load fails and no
// partial result is returned.
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	var residents struct {
		Residents []resident.Resident `json:"residents"`
	}
	if err := c.get(ctx, "/residents", nil, &residents); err != nil {
		return nil, fmt.Errorf("load residents: %w", err)
	}

	var alerts struct {
		Alerts []alert.Alert `json:"alerts"`
	}
	if err := c.get(ctx, "/alerts", nil, &alerts); err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}

	return &Snapshot{Residents: residents.Residents, Alerts: alerts.Alerts}, nil
}

// VitalsHistory fetches the last N hours of readings for one resident.
func (c *Client) VitalsHistory(ctx context.Context, residentID string, hours int) ([]vitals.VitalReading, error) {
	var out struct {
		Vitals []vitals.VitalReading `json:"vitals"`
	}
	q := url.Values{"hours": []string{strconv.Itoa(hours)}}
	path := "/residents/" + url.PathEscape(residentID) + "/vitals/history"
	if err := c.get(ctx, path, q, &out); err != nil {
		return nil, fmt.Errorf("load vitals history: %w", err)
	}
	return out.Vitals, nil
}

// Acknowledge submits an acknowledge action and returns the updated alert.
// The returned record is informational only; callers re-derive authoritative
// state from the next snapshot load.
func (c *Client) Acknowledge(ctx context.Context, alertID string) (*alert.Alert, error) {
	var out alert.Alert
	path := "/alerts/" + url.PathEscape(alertID) + "/acknowledge"
	if err := c.post(ctx, path, nil, &out); err != nil {
		return nil, fmt.Errorf("acknowledge alert: %w", err)
	}
	return &out, nil
}

// Resolve submits a resolve action with an outcome and optional notes.
func (c *Client) Resolve(ctx context.Context, alertID, outcome, notes string) (*alert.Alert, error) {
	var out alert.Alert
	path := "/alerts/" + url.PathEscape(alertID) + "/resolve"
	body := map[string]string{"outcome": outcome, "notes": notes}
	if err := c.post(ctx, path, body, &out); err != nil {
		return nil, fmt.Errorf("resolve alert: %w", err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// correlation id so retried submits are traceable end to end
	req.Header.Set("X-Request-Id", ulid.Make().String())
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportErr(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return classifyTransportErr(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		if err := json.Unmarshal(respBody, &eb); err == nil && eb.Error.Code != "" {
			return &APIError{Code: eb.Error.Code, Message: eb.Error.Message, HTTPStatus: resp.StatusCode}
		}
		return &APIError{
			Code:       CodeUnknown,
			Message:    fmt.Sprintf("backend returned %d", resp.StatusCode),
			HTTPStatus: resp.StatusCode,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
