// Package client posts expressions to a solve server and classifies the
// outcome.
package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"integral-solver/api"

	"github.com/bytedance/sonic"
)

const maxErrorBody = 512

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds a whole round trip. Zero keeps the default of no
// timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Solve sends expression as typed by the user. It returns
// ErrEmptyExpression without contacting the server when the text is blank.
// A response with success false is returned together with a *SolveError.
func (c *Client) Solve(ctx context.Context, expression string) (*api.SolveResponse, error) {
	return c.Do(ctx, api.SolveRequest{Expression: expression})
}

func (c *Client) Do(ctx context.Context, req api.SolveRequest) (*api.SolveResponse, error) {
	if strings.TrimSpace(req.Expression) == "" {
		return nil, ErrEmptyExpression
	}
	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, &TransportError{Op: "encode", Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/solve", bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "send", Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read", Err: err}
	}

	out, decErr := decode(data)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decErr == nil && !out.Success {
			return out, &SolveError{StatusCode: resp.StatusCode, Message: out.Error}
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(data)}
	}
	if decErr != nil {
		return nil, &DecodeError{Body: truncate(data), Err: decErr}
	}
	if !out.Success {
		return out, &SolveError{StatusCode: resp.StatusCode, Message: out.Error}
	}
	return out, nil
}

var errNoSuccessField = errors.New("missing success field")

func decode(data []byte) (*api.SolveResponse, error) {
	var probe struct {
		Success *bool `json:"success"`
	}
	if err := sonic.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.Success == nil {
		return nil, errNoSuccessField
	}
	var out api.SolveResponse
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody])
	}
	return string(b)
}
