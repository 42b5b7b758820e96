package apiclient

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

	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/utils"
)

const (
	// DefaultTimeout bounds a single call when no http.Client is supplied.
	DefaultTimeout = 30 * time.Second

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 8 << 20
)

// TokenSource supplies the bearer token attached to outgoing requests.
// An empty token means "anonymous".
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Options configures a Client.
type Options struct {
	BaseURL    string        // ex: "https://api.example.com/api/v1"
	HTTPClient *http.Client  // optional, defaults to a client with Timeout
	Timeout    time.Duration // used only when HTTPClient is nil
	Tokens     TokenSource   // optional
	Logger     logger.Logger // optional
}

// Client performs single, uncached requests against the portfolio API.
// It never retries: a failed attempt is returned to the caller as-is.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  logger.Logger
}

// New creates an API client.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    hc,
		tokens:  opts.Tokens,
		logger:  log,
	}
}

// WithTokens returns a copy of c that authenticates with ts.
// The underlying http.Client (and its connection pool) is shared.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// request describes one outbound call.
type request struct {
	op          string // human readable, used as fallback error message
	method      string
	path        string
	body        io.Reader
	contentType string
}

// jsonRequest builds a request whose body is v encoded as JSON.
func jsonRequest(op, method, path string, v any) (request, error) {
	req := request{op: op, method: method, path: path}
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return request{}, fmt.Errorf("failed to marshal %s payload: %w", op, err)
		}
		req.body = bytes.NewReader(data)
		req.contentType = "application/json"
	}
	return req, nil
}

// do executes req and returns the decoded envelope and the HTTP status.
// Non-2xx statuses and success=false envelopes become *TransportError.
func (c *Client) do(ctx context.Context, req request) (rawEnvelope, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, req.body)
	if err != nil {
		return rawEnvelope{}, 0, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Cache-Control", "no-store")
	httpReq.Header.Set("Pragma", "no-cache")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("api request failed",
			logger.String("method", req.method),
			logger.String("path", req.path),
			logger.Error(err))
		return rawEnvelope{}, 0, &TransportError{Op: req.op, Message: "failed to " + req.op, Err: err}
	}
	defer utils.Close(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return rawEnvelope{}, resp.StatusCode, &TransportError{Op: req.op, Status: resp.StatusCode, Message: "failed to " + req.op, Err: err}
	}

	c.logger.Debug("api request",
		logger.String("method", req.method),
		logger.String("path", req.path),
		logger.Int("status", resp.StatusCode),
		logger.Duration("duration", time.Since(start)))

	var env rawEnvelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return env, resp.StatusCode, &TransportError{
			Op:      req.op,
			Status:  resp.StatusCode,
			Message: messageOr(env.Message, "failed to "+req.op),
		}
	}
	if decodeErr != nil {
		return env, resp.StatusCode, &TransportError{Op: req.op, Status: resp.StatusCode, Message: "invalid response from server", Err: decodeErr}
	}
	if env.failed() {
		return env, resp.StatusCode, &TransportError{
			Op:      req.op,
			Status:  resp.StatusCode,
			Message: messageOr(env.Message, "failed to "+req.op),
		}
	}
	return env, resp.StatusCode, nil
}

// decodeData unmarshals env.Data into out. It reports false when data was null or absent.
func decodeData(op string, status int, env rawEnvelope, out any) (bool, error) {
	if !env.hasData() {
		return false, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, &TransportError{Op: op, Status: status, Message: "invalid response from server", Err: err}
	}
	return true, nil
}

func messageOr(msg, fallback string) string {
	if strings.TrimSpace(msg) != "" {
		return msg
	}
	return fallback
}

// isStatus reports whether err is a TransportError carrying status.
func isStatus(err error, status int) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Status == status
}
