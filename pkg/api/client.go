// Package api is the typed HTTP access layer for the reservation and
// order endpoints of the restobook backend. Every call is a single
// request; failures are never retried here and propagate to the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"restobook/pkg/logger"
)

// APIError carries the HTTP status and the server-provided message when
// one is present, otherwise a generic fallback.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

type Client struct {
	baseURL  string
	http     *http.Client
	stream   *http.Client
	session  *Session
	log      logger.ILogger
	validate *validator.Validate

	// OnUnauthorized fires after a 401 has reset the session. It receives
	// the path of the rejected call so a front-end can return there after
	// a fresh login.
	OnUnauthorized func(path string)
}

func New(baseURL string, session *Session, log logger.ILogger) *Client {
	transport := otelhttp.NewTransport(http.DefaultTransport)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: transport,
			Timeout:   15 * time.Second,
		},
		// The push channel is long-lived, so no client timeout applies.
		stream: &http.Client{
			Transport: transport,
		},
		session:  session,
		log:      log,
		validate: validator.New(),
	}
}

func (c *Client) Session() *Session {
	return c.session
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	c.setHeaders(req, body != nil)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return c.unauthorized(path, resp.Body)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return apiErrorFrom(resp.StatusCode, resp.Body)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response of %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// unauthorized converts a 401 into a forced session reset. Callers still
// get the standard error; the hook carries the interrupted path.
func (c *Client) unauthorized(path string, body io.Reader) error {
	apiErr := apiErrorFrom(http.StatusUnauthorized, body)
	c.session.Reset()
	c.log.Warning("session rejected, forcing logout", logger.String("path", path))
	if c.OnUnauthorized != nil {
		c.OnUnauthorized(path)
	}
	return apiErr
}

func apiErrorFrom(status int, body io.Reader) error {
	msg := ""
	var envelope errorEnvelope
	if err := json.NewDecoder(body).Decode(&envelope); err == nil {
		if envelope.Error != "" {
			msg = envelope.Error
		} else if envelope.Message != "" {
			msg = envelope.Message
		}
	}
	if msg == "" {
		msg = "request failed"
	}
	return &APIError{Status: status, Message: msg}
}

// OptText trims s and returns nil when nothing remains, so optional text
// fields serialize as explicit null rather than empty string.
func OptText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
