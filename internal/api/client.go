// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/comercia-tui/internal/history"
	"github.com/jeranaias/comercia-tui/internal/session"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

const (
	// DefaultLoginTimeout is the deadline raced against every
	// authentication and recovery call.
	DefaultLoginTimeout = 10 * time.Second

	// MaxResponseSize caps response bodies.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 2 * 1024 * 1024 // 2MB

	// loginPath, recoverPath, and resetPath are the auth endpoints.
	loginPath   = "/auth/login"
	recoverPath = "/auth/recuperar"
	resetPath   = "/auth/restablecer"

	// Attempt throttle: one login every two seconds, small burst. Applied
	// before any network activity.
	throttleEvery = 2 * time.Second
	throttleBurst = 3
)

// Recorder receives auth events for the local history log. Implementations
// must not fail loudly; recording is best-effort.
type Recorder interface {
	Record(kind, email, detail string)
}

// nopRecorder discards all events.
type nopRecorder struct{}

func (nopRecorder) Record(string, string, string) {}

// Config configures the backend client.
type Config struct {
	// BaseURL is the backend root, e.g. "https://api.comercia.mx".
	BaseURL string

	// Store receives the session on successful login and supplies the
	// bearer token for every request.
	Store *session.Store

	// LoginTimeout overrides DefaultLoginTimeout when positive.
	LoginTimeout time.Duration

	// History receives auth events. Optional.
	History Recorder

	// Transport overrides the base transport under AuthTransport.
	// Testing hook; nil means the shared pooled transport.
	Transport http.RoundTripper
}

// sharedTransport pools connections for all backend requests.
// SECURITY: TLS 1.2 minimum, verification always on.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the comercia backend. Every request goes through
// AuthTransport; login commits to the session store before returning.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	loginTimeout time.Duration
	store        *session.Store
	history      Recorder
	throttle     *rate.Limiter
}

// New creates a backend client.
func New(cfg Config) *Client {
	base := cfg.Transport
	if base == nil {
		base = sharedTransport
	}
	timeout := cfg.LoginTimeout
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}
	recorder := cfg.History
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Transport: &AuthTransport{Base: base, Source: cfg.Store},
		},
		loginTimeout: timeout,
		store:        cfg.Store,
		history:      recorder,
		throttle:     rate.NewLimiter(rate.Every(throttleEvery), throttleBurst),
	}
}

// HTTPClient exposes the authorized client for resource endpoints (users,
// products, sales…), which are plain request/response calls outside this
// package's concern.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// DEADLINE RACE
// =============================================================================

// outcome tags the result of racing a network call against a deadline.
type outcome int

const (
	// outcomeCompleted means the network call settled first.
	outcomeCompleted outcome = iota
	// outcomeTimedOut means the deadline fired first. The call keeps
	// running but its eventual result is drained and discarded.
	outcomeTimedOut
	// outcomeCanceled means the caller's context ended first.
	outcomeCanceled
)

// raceDeadline runs fn and waits for whichever settles first: the call, the
// fixed deadline, or the caller's context. The in-flight call is not
// cancelled on timeout, only rendered moot: its reply lands in a buffered
// channel nobody reads, so a late success can never mutate state.
func raceDeadline[T any](ctx context.Context, deadline time.Duration, fn func() (T, error)) (outcome, T, error) {
	type reply struct {
		val T
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		val, err := fn()
		ch <- reply{val, err}
	}()

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	var zero T
	select {
	case r := <-ch:
		return outcomeCompleted, r.val, r.err
	case <-timer.C:
		return outcomeTimedOut, zero, ErrTimeout
	case <-ctx.Done():
		return outcomeCanceled, zero, ctx.Err()
	}
}

// =============================================================================
// LOGIN
// =============================================================================

// loginRequest is the credential payload. Never persisted, never logged.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login executes the credential handshake. The network call races the fixed
// deadline; on success the session is committed to the store before the
// call returns. Outcomes are normalized to the package's sentinel errors.
//
// Overlapping calls are not deduplicated here; the UI disables its submit
// control while one is in flight.
func (c *Client) Login(ctx context.Context, email, password string) (session.Session, error) {
	if !c.throttle.Allow() {
		c.history.Record(history.KindLoginFail, email, Kind(ErrRateLimited))
		return session.Session{}, ErrRateLimited
	}

	log.Printf("API Request: POST %s", loginPath)
	started := time.Now()

	res, sess, err := raceDeadline(ctx, c.loginTimeout, func() (session.Session, error) {
		return c.doLogin(ctx, email, password)
	})
	log.Printf("API Login: outcome=%d (%v)", res, time.Since(started))

	switch res {
	case outcomeTimedOut:
		c.history.Record(history.KindLoginFail, email, Kind(ErrTimeout))
		return session.Session{}, ErrTimeout
	case outcomeCanceled:
		return session.Session{}, err
	}

	if err != nil {
		c.history.Record(history.KindLoginFail, email, Kind(err))
		return session.Session{}, err
	}

	// Persist before returning: a successful Login means a durable session.
	if err := c.store.Set(sess); err != nil {
		c.history.Record(history.KindLoginFail, email, "store: "+err.Error())
		return session.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	c.history.Record(history.KindLoginOK, email, "")
	return sess, nil
}

// doLogin performs the raw handshake and normalizes the response.
func (c *Client) doLogin(ctx context.Context, email, password string) (session.Session, error) {
	body, err := c.postJSON(ctx, loginPath, loginRequest{Email: email, Password: password})
	if err != nil {
		return session.Session{}, err
	}

	env, status := body.env, body.status
	if status == http.StatusOK && env.Success {
		var data loginData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return session.Session{}, &APIError{Status: status, Detail: "malformed login data"}
		}
		sess := session.Session{Token: data.Token, User: data.Usuario}
		if err := sess.Validate(); err != nil {
			return session.Session{}, &APIError{Status: status, Detail: "incomplete login data"}
		}
		return sess, nil
	}

	return session.Session{}, normalizeAuthFailure(status, env)
}

// normalizeAuthFailure maps a rejected login response to its category. The
// backend uses 401 for bad credentials and 403 for refusals; a disabled
// account is a 403 whose reason names the inactive state.
func normalizeAuthFailure(status int, env *envelope) error {
	detail := env.detail()
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrInvalidCredentials, detail)
	case http.StatusForbidden:
		lower := strings.ToLower(detail)
		if strings.Contains(lower, "inactiv") || strings.Contains(lower, "deshabilitad") {
			return fmt.Errorf("%w: %s", ErrInactiveAccount, detail)
		}
		return fmt.Errorf("%w: %s", ErrAccessDenied, detail)
	default:
		return &APIError{Status: status, Detail: detail}
	}
}

// =============================================================================
// PASSWORD RECOVERY
// =============================================================================

// RequestPasswordReset asks the backend to send a recovery token to the
// given email. Shares the login deadline race and normalization.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	_, _, err := raceDeadline(ctx, c.loginTimeout, func() (struct{}, error) {
		return struct{}{}, c.doRecovery(ctx, recoverPath, map[string]string{"email": email})
	})
	c.history.Record(history.KindResetRequest, email, Kind(err))
	return err
}

// ConfirmPasswordReset exchanges a recovery token for a new password.
func (c *Client) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	_, _, err := raceDeadline(ctx, c.loginTimeout, func() (struct{}, error) {
		return struct{}{}, c.doRecovery(ctx, resetPath, map[string]string{
			"token":    token,
			"password": newPassword,
		})
	})
	c.history.Record(history.KindResetConfirm, "", Kind(err))
	return err
}

func (c *Client) doRecovery(ctx context.Context, path string, payload any) error {
	body, err := c.postJSON(ctx, path, payload)
	if err != nil {
		return err
	}
	if body.status == http.StatusOK && body.env.Success {
		return nil
	}
	if body.status >= 400 && body.status < 500 {
		return fmt.Errorf("%w: %s", ErrResetRejected, body.env.detail())
	}
	return &APIError{Status: body.status, Detail: body.env.detail()}
}

// =============================================================================
// TRANSPORT PLUMBING
// =============================================================================

type response struct {
	status int
	env    *envelope
}

// postJSON sends a JSON payload and decodes the uniform envelope. Transport
// failures come back as ErrConnectivity; bodies are read with a size limit.
func (c *Client) postJSON(ctx context.Context, path string, payload any) (*response, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Raw transport text stays wrapped; the UI shows the category.
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, &APIError{Status: resp.StatusCode, Detail: "unparseable response"}
	}
	return &response{status: resp.StatusCode, env: env}, nil
}

// readResponse reads a body with the size cap.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}
