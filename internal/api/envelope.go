// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"fmt"

	"github.com/jeranaias/comercia-tui/internal/session"
)

// =============================================================================
// RESPONSE ENVELOPE
// =============================================================================

// envelope is the backend's uniform response shape. Success responses carry
// `{"success": true, "data": …}`; failures carry `success: false` with the
// reason in `detalles` or `error`, or the flat `{error, status, message}`
// shape used by the recovery endpoints.
type envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Error    string          `json:"error"`
	Detalles string          `json:"detalles"`
	Status   int             `json:"status"`
	Message  string          `json:"message"`
}

// detail returns the most specific server-supplied reason text.
func (e *envelope) detail() string {
	switch {
	case e.Detalles != "":
		return e.Detalles
	case e.Message != "":
		return e.Message
	default:
		return e.Error
	}
}

// loginData is the payload of a successful login envelope.
type loginData struct {
	Usuario session.UserProfile `json:"usuario"`
	Token   string              `json:"token"`
}

// decodeEnvelope parses a response body into the envelope shape.
func decodeEnvelope(body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("malformed response envelope: %w", err)
	}
	return &env, nil
}
