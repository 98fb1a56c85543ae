// Package apiclient talks to the attendance analytics backend. Every call goes
// through Client.Request, which validates the response envelope, reports
// failures and keeps the shared busy indicator up to date.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/odyssey-erp/attendance-dashboard/internal/notify"
)

// Options customises a single request.
type Options struct {
	Method  string
	Headers map[string]string
	// Body is sent unmodified when it is a string, []byte or json.RawMessage
	// and JSON-encoded otherwise.
	Body any
}

// Recorder receives per-request instrumentation.
type Recorder interface {
	ObserveAPIRequest(route, method, outcome string, duration time.Duration)
	SetAPIInFlight(n int)
}

// Params groups the dependencies of a Client.
type Params struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Notifier   notify.Notifier
	Recorder   Recorder
}

// Client performs backend calls under the shared envelope contract.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *slog.Logger
	notifier notify.Notifier
	recorder Recorder
	busy     *Busy
}

// NewClient constructs a Client. The HTTP client has no timeout of its own;
// callers bound requests through the context.
func NewClient(params Params) *Client {
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:  strings.TrimRight(params.BaseURL, "/"),
		http:     httpClient,
		logger:   logger,
		notifier: params.Notifier,
		recorder: params.Recorder,
		busy:     &Busy{},
	}
	if c.recorder != nil {
		c.busy.OnChange(func(_ bool, inflight int) {
			c.recorder.SetAPIInFlight(inflight)
		})
	}
	return c
}

// BaseURL returns the resolved backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Busy exposes the loading indicator.
func (c *Client) Busy() *Busy { return c.busy }

// Request performs a call against endpoint and returns the full envelope on
// success. Any failure is logged, surfaced as an error notification and
// returned as a *RequestError.
func (c *Client) Request(ctx context.Context, endpoint string, opts Options) (RawEnvelope, error) {
	release := c.busy.Acquire()
	defer release()

	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if method == "" {
		method = http.MethodGet
	}

	start := time.Now()
	env, err := c.do(ctx, method, endpoint, opts)
	outcome := "success"
	if err != nil {
		outcome = "failure"
		err = c.fail(ctx, endpoint, err)
	}
	if c.recorder != nil {
		c.recorder.ObserveAPIRequest(routeLabel(endpoint), method, outcome, time.Since(start))
	}
	return env, err
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, endpoint string) (RawEnvelope, error) {
	return c.Request(ctx, endpoint, Options{Method: http.MethodGet})
}

// Post issues a POST request with body.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (RawEnvelope, error) {
	return c.Request(ctx, endpoint, Options{Method: http.MethodPost, Body: body})
}

// Put issues a PUT request with body.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (RawEnvelope, error) {
	return c.Request(ctx, endpoint, Options{Method: http.MethodPut, Body: body})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string) (RawEnvelope, error) {
	return c.Request(ctx, endpoint, Options{Method: http.MethodDelete})
}

// Fetch performs a GET and decodes the envelope payload into T. Decoding
// failures are reported exactly like transport failures.
func Fetch[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	var zero T
	env, err := c.Get(ctx, endpoint)
	if err != nil {
		return zero, err
	}
	data, err := Decode[T](env)
	if err != nil {
		return zero, c.fail(ctx, endpoint, err)
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, opts Options) (RawEnvelope, error) {
	var env RawEnvelope

	payload, err := encodeBody(opts.Body)
	if err != nil {
		return env, err
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return env, err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return env, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return env, &RequestError{Endpoint: endpoint, Status: resp.StatusCode, Message: err.Error(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		message := strings.TrimSpace(env.Error)
		if message == "" {
			message = FallbackMessage
		}
		return env, &RequestError{Endpoint: endpoint, Status: resp.StatusCode, Message: message}
	}
	return env, nil
}

func (c *Client) fail(ctx context.Context, endpoint string, err error) error {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		reqErr = &RequestError{Endpoint: endpoint, Message: err.Error(), Err: err}
	}
	if reqErr.Endpoint == "" {
		reqErr.Endpoint = endpoint
	}
	c.logger.Error("api request failed",
		slog.String("endpoint", endpoint),
		slog.Int("status", reqErr.Status),
		slog.Any("error", err),
	)
	if c.notifier != nil && !isQuiet(ctx) {
		c.notifier.Notify(ctx, reqErr.Error(), notify.KindError)
	}
	return reqErr
}

type quietKey struct{}

// Quiet marks ctx so failures are still logged and returned but not notified.
// Callers that report a combined failure themselves use it.
func Quiet(ctx context.Context) context.Context {
	return context.WithValue(ctx, quietKey{}, true)
}

func isQuiet(ctx context.Context) bool {
	quiet, _ := ctx.Value(quietKey{}).(bool)
	return quiet
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

var idSegment = regexp.MustCompile(`/[^/]*\d[^/]*`)

// routeLabel collapses identifiers so metric labels stay bounded.
func routeLabel(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	return idSegment.ReplaceAllString(endpoint, "/:id")
}
