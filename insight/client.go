package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/marketinsight/internal/metrics"
	"github.com/rustyeddy/marketinsight/pkg/id"
)

// DefaultBaseURL is the collaborator API served by a local backend.
const DefaultBaseURL = "http://127.0.0.1:5000/api"

// Endpoint names used for logging and metrics.
const (
	EndpointMarketData     = "market_data"
	EndpointGenerateReport = "generate_report"
	EndpointHealth         = "health"
	EndpointViewReport     = "view_report"
)

// maxErrorBody bounds how much of a failed response is read.
const maxErrorBody = 64 << 10

var validate = validator.New()

// Client talks to the MarketInsight collaborator API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
	metrics    *metrics.Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every round trip. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithMetrics records per-endpoint counters and latency.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = r
	}
}

// NewClient creates a client for baseURL (DefaultBaseURL when empty).
// No timeout is applied unless WithTimeout is given.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// call is one round trip: build, send, classify the status, decode.
type call struct {
	endpoint string
	method   string
	path     string
	query    string
	body     any
	symbol   string
}

// do executes cl. On 2xx the body is handed to onOK; otherwise the error
// body is returned as *APIError.
func (c *Client) do(ctx context.Context, cl call, onOK func(io.Reader) error) (err error) {
	start := time.Now()
	rid := id.NewRequestID()

	log := c.log.With().
		Str("request_id", rid).
		Str("endpoint", cl.endpoint).
		Str("symbol", cl.symbol).
		Logger()
	log.Debug().Str("method", cl.method).Str("path", cl.path).Msg("api request")

	status := 0
	defer func() {
		outcome := outcomeOf(err)
		c.metrics.RecordRequest(cl.endpoint, outcome, time.Since(start).Seconds())

		ev := log.Debug()
		if err != nil {
			ev = log.Warn().Err(err)
		}
		ev.Int("status", status).
			Str("outcome", outcome).
			Dur("duration", time.Since(start)).
			Msg("api response")
	}()

	req, err := c.newRequest(ctx, cl, rid)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: cl.endpoint, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(cl.endpoint, resp)
	}

	if err := onOK(resp.Body); err != nil {
		var wErr *WriteError
		if errors.As(err, &wErr) {
			return err
		}
		if isTransportFailure(ctx, err) {
			return &TransportError{Op: cl.endpoint, Err: err}
		}
		return &DecodeError{Op: cl.endpoint, Err: err}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, cl call, rid string) (*http.Request, error) {
	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + cl.path
	if cl.query != "" {
		u += "?" + cl.query
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set(id.Header, rid)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

type errorBody struct {
	Error string `json:"error"`
}

func decodeAPIError(op string, resp *http.Response) error {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	// Non-JSON bodies (proxy pages, Flask's HTML 404) carry no message.
	var eb errorBody
	if err := json.Unmarshal(b, &eb); err != nil {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: eb.Error}
}

// decodeJSON decodes r into dst and validates it against its struct tags.
func decodeJSON(r io.Reader, dst any) error {
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

// isTransportFailure reports whether a body read failed because the request
// was cancelled or timed out rather than because the body is malformed.
func isTransportFailure(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func outcomeOf(err error) string {
	var (
		apiErr *APIError
		decErr *DecodeError
		wErr   *WriteError
	)
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &apiErr):
		return metrics.OutcomeAPIError
	case errors.As(err, &decErr):
		return metrics.OutcomeDecodeError
	case errors.As(err, &wErr):
		return metrics.OutcomeWriteError
	default:
		return metrics.OutcomeTransportError
	}
}
