package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/congo-pay/dashgate/internal/identity"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 64 << 10

	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
	verifyPath   = "/api/auth/verify-token"
)

// Client talks to the auth backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// Options overrides client dependencies.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *slog.Logger
}

// New builds an auth backend client rooted at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("auth base url is empty")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse auth base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("auth base url %q must be absolute", baseURL)
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: parsed, httpClient: client, logger: opts.Logger}, nil
}

// Error reports a failed auth backend call. Message is safe to show to users.
type Error struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "auth request failed"
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, identifier, password string) (AuthResult, error) {
	const op = "Login"
	var payload authResponse
	if err := c.post(ctx, op, loginPath, loginRequest{Identifier: identifier, Password: password}, &payload); err != nil {
		return AuthResult{}, err
	}
	return payload.result(op)
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	const op = "Register"
	var payload authResponse
	if err := c.post(ctx, op, registerPath, req, &payload); err != nil {
		return AuthResult{}, err
	}
	return payload.result(op)
}

// VerifyToken resolves the user a token belongs to.
func (c *Client) VerifyToken(ctx context.Context, token string) (identity.User, error) {
	const op = "VerifyToken"
	var payload verifyResponse
	if err := c.post(ctx, op, verifyPath, verifyRequest{Token: token}, &payload); err != nil {
		return identity.User{}, err
	}
	if payload.User == nil {
		return identity.User{}, &Error{Op: op, Status: http.StatusOK, Message: "auth service returned no user"}
	}
	return *payload.User, nil
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return &Error{Op: op, Message: "could not encode request", Err: err}
	}

	rel, err := url.Parse(path)
	if err != nil {
		return &Error{Op: op, Message: "invalid auth endpoint", Err: err}
	}
	full := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, full.String(), buf)
	if err != nil {
		return &Error{Op: op, Message: "could not build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(op, 0, start, err)
		return &Error{Op: op, Message: "unable to reach the authentication service", Err: err}
	}
	defer resp.Body.Close()
	c.log(op, resp.StatusCode, start, nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Op:      op,
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, raw),
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Message: "invalid response from the authentication service", Err: err}
	}
	return nil
}

func (c *Client) log(op string, status int, start time.Time, err error) {
	if c.logger == nil {
		return
	}
	attrs := []any{
		slog.String("op", op),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		c.logger.Warn("auth request failed", attrs...)
		return
	}
	c.logger.Debug("auth request completed", attrs...)
}

// errorMessage picks the most useful human-readable text out of an error body.
func errorMessage(status int, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(trimmed, &payload) == nil {
			if msg := strings.TrimSpace(payload.Message); msg != "" {
				return msg
			}
			if msg := strings.TrimSpace(payload.Error); msg != "" {
				return msg
			}
		}
	} else if len(trimmed) > 0 {
		return string(trimmed)
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}
