// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"log"
	"net/http"

	"github.com/google/uuid"
)

// =============================================================================
// AUTHORIZATION TRANSPORT
// =============================================================================

// TokenSource is the transport's narrow view of the session store: read the
// current bearer token, revoke the session on rejection.
type TokenSource interface {
	Token() string
	Clear()
}

// AuthTransport is the http.RoundTripper every backend request passes
// through. Outgoing, it attaches the stored bearer token and default
// headers; incoming, it enforces the revoke-on-401 policy: any unauthorized
// response clears the session store unconditionally, with no retry and no
// refresh. The transport never navigates; whichever component next
// observes the empty store reacts to it.
type AuthTransport struct {
	// Base is the underlying transport. http.DefaultTransport when nil.
	Base http.RoundTripper

	// Source supplies the bearer token and receives the revoke.
	Source TokenSource
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Per RoundTripper contract the request must not be mutated.
	out := req.Clone(req.Context())

	// A missing token means no header at all, never an empty one.
	if token := t.Source.Token(); token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	// Multipart bodies carry their own boundary-aware content type set by
	// the caller; only bare bodies default to JSON.
	if out.Body != nil && out.Header.Get("Content-Type") == "" {
		out.Header.Set("Content-Type", "application/json")
	}

	if out.Header.Get("X-Request-ID") == "" {
		out.Header.Set("X-Request-ID", uuid.NewString())
	}

	resp, err := t.base().RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Revoke-on-401, independent of how the caller handles its own
		// error.
		log.Printf("API Response: 401 %s %s - session revoked", req.Method, req.URL.Path)
		t.Source.Clear()
	}

	return resp, nil
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}
