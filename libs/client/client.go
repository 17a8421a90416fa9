// Package client is the Go SDK for the MentorNest REST API.
//
// A Client keeps the bearer token in a TokenStore and applies the same
// response rules to every call: a 401 clears the stored token and fires the
// session expired handler, a 403 outside the auth endpoints is silent, and
// every other failure is reported to the Notifier. Nothing is retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Toast messages
const (
	MessageGenericError = "An error occurred."
	MessageNetworkError = "Network error. Please try again."
	MessageAccessDenied = "Access denied"
)

const (
	apiBasePath    = "/api"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 1 << 20
)

var sessionExpiredHandler atomic.Pointer[func()]

// SetSessionExpiredHandler registers the callback fired when a held session is
// rejected with 401. It fires only when the rejected request carried the
// currently stored token, so a 401 received while no session is held (a
// failed login, an anonymous call) does not notify. It is meant to be called
// once at application start, a later call replaces the previous handler and
// nil removes it.
func SetSessionExpiredHandler(fn func()) {
	if fn == nil {
		sessionExpiredHandler.Store(nil)
		return
	}
	sessionExpiredHandler.Store(&fn)
}

func notifySessionExpired() {
	if fn := sessionExpiredHandler.Load(); fn != nil {
		(*fn)()
	}
}

// Notifier receives user facing error messages
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(message string)

// Notify calls f(message)
func (f NotifierFunc) Notify(message string) {
	f(message)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

// APIError is returned for every non-2xx response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to the MentorNest API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	notifier   Notifier
	logger     *zap.Logger

	certificateInterval time.Duration
	profileInterval     time.Duration

	// serialises the 401 check-and-clear so concurrent failures notify once
	expiryMu sync.Mutex

	refreshMu    sync.RWMutex
	refreshToken string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTokenStore sets where the bearer token is kept
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) {
		c.tokens = store
	}
}

// WithNotifier sets the sink for error toasts
func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		c.notifier = n
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithPollIntervals overrides CertificateRecheckInterval and
// ProfileRefreshInterval, zero keeps the default
func WithPollIntervals(certificate, profile time.Duration) Option {
	return func(c *Client) {
		if certificate > 0 {
			c.certificateInterval = certificate
		}
		if profile > 0 {
			c.profileInterval = profile
		}
	}
}

// New creates a client for the API served at baseURL. The /api prefix is
// appended unless baseURL already ends with it.
func New(baseURL string, opts ...Option) *Client {
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasSuffix(base, apiBasePath) {
		base += apiBasePath
	}

	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: defaultTimeout},
		tokens:     NewMemoryTokenStore(),
		notifier:   nopNotifier{},
		logger:     zap.NewNop(),

		certificateInterval: CertificateRecheckInterval,
		profileInterval:     ProfileRefreshInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the API root including the /api prefix
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the stored bearer token
func (c *Client) Token() string {
	return c.tokens.Token()
}

// Authenticated reports whether a bearer token is held
func (c *Client) Authenticated() bool {
	return c.tokens.Token() != ""
}

func (c *Client) setSession(token, refreshToken string) {
	if token != "" {
		c.tokens.SetToken(token)
	}
	if refreshToken != "" {
		c.refreshMu.Lock()
		c.refreshToken = refreshToken
		c.refreshMu.Unlock()
	}
}

func (c *Client) clearSession() {
	c.tokens.Clear()
	c.refreshMu.Lock()
	c.refreshToken = ""
	c.refreshMu.Unlock()
}

func (c *Client) storedRefreshToken() string {
	c.refreshMu.RLock()
	defer c.refreshMu.RUnlock()
	return c.refreshToken
}

// do sends a JSON request and decodes a JSON response into out (if non-nil)
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	resp, err := c.send(ctx, method, path, reader, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := decodeJSON(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}

	return nil
}

func decodeJSON(r io.Reader, out any) error {
	return json.NewDecoder(r).Decode(out)
}

// doRaw sends a request and returns the raw response body
func (c *Client) doRaw(ctx context.Context, method, path string) ([]byte, error) {
	resp, err := c.send(ctx, method, path, nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}

	return data, nil
}

// send performs the request and applies the response rules. On success the
// caller owns the response body.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	token := c.tokens.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// a cancelled owner is not a network failure
		if ctx.Err() == nil {
			c.notifier.Notify(MessageNetworkError)
		}
		c.logger.Debug("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	c.logger.Debug("request rejected",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", apiErr.Status),
		zap.String("message", apiErr.Message),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.expireSession(token)
	case resp.StatusCode == http.StatusForbidden:
		if !silentForbidden(path) {
			c.notifier.Notify(firstNonEmpty(apiErr.Message, MessageAccessDenied))
		}
	default:
		c.notifier.Notify(firstNonEmpty(apiErr.Message, MessageGenericError))
	}

	return nil, apiErr
}

// expireSession drops the session that sent was part of. Only the first 401
// for a held token clears it and notifies, a newer token is left alone.
func (c *Client) expireSession(sent string) {
	c.expiryMu.Lock()
	expired := sent != "" && c.tokens.Token() == sent
	if expired {
		c.clearSession()
	}
	c.expiryMu.Unlock()

	if expired {
		notifySessionExpired()
	}
}

// silentForbidden reports whether a 403 on path is expected and shown to nobody
func silentForbidden(path string) bool {
	p := path
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return p == "/auth/me" || !strings.HasPrefix(p, "/auth/")
}

// errorMessage extracts the server message from an {"error"} or {"message"} body
func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		return firstNonEmpty(payload.Error, payload.Message)
	}

	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
