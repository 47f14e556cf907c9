// Package client talks to the student grouping backend.
//
// Every operation is a single request to one backend endpoint. Read and check operations
// fail soft (nil, false, 0) while operations that change backend state return an *APIError
// carrying the backend's detail message so callers can react to it. There are no retries.
//
// The backend is the only source of truth for validation and authorization: the client
// never checks passwords or input locally.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/information-sharing-networks/talimbot/internal/locale"
	"github.com/information-sharing-networks/talimbot/internal/logger"
	"golang.org/x/text/message"
)

// DefaultTimeout bounds each request when no http.Client is supplied
const DefaultTimeout = 10 * time.Second

// Client handles communication with the grouping backend. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	printer    *message.Printer
}

type Option func(*Client)

// WithHTTPClient replaces the default http client (request logging transport, DefaultTimeout)
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request logs and deprecation warnings
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithLanguage sets the language of user facing messages (default Persian)
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.printer = locale.NewPrinter(lang)
	}
}

// NewClient creates a client for the backend at baseURL, e.g. "http://localhost:8000/api".
// The base url is resolved once at startup, see config.NewConfig.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  slog.Default(),
		printer: locale.NewPrinter(locale.Supported[0].String()),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   DefaultTimeout,
			Transport: logger.NewTransport(nil, c.logger),
		}
	}

	return c
}

// BaseURL returns the backend base url used by the client
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Printer returns the printer used for user facing messages
func (c *Client) Printer() *message.Printer {
	return c.printer
}

// RequestOptions customise a call to Request
type RequestOptions struct {
	Method   string      // defaults to GET
	Headers  http.Header // merged over the default headers, caller values win
	Body     any         // JSON encoded when not nil
	Fallback string      // error message used when a failed response has no detail
}

// Request sends a JSON request to endpoint (a path below the base url, e.g. "/students")
// and decodes a successful response into out (ignored when nil).
//
// Any non-2xx response or transport failure is returned as an *APIError.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	fallback := opts.Fallback
	if fallback == "" {
		fallback = defaultFallback
	}

	var body io.Reader
	if opts.Body != nil {
		jsonData, err := json.Marshal(opts.Body)
		if err != nil {
			return NewInternalError(err, "marshaling "+endpoint+" request")
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return NewInternalError(err, "creating "+endpoint+" request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, values := range opts.Headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return NewConnectionError(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return NewResponseError(res, fallback)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return NewInternalError(err, "decoding "+endpoint+" response")
	}

	return nil
}
