// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import "time"

// =============================================================================
// ASYNC SESSION EVENTS
// =============================================================================

// idleWarnMsg signals the inactivity warning threshold was crossed.
type idleWarnMsg struct {
	remaining time.Duration
}

// idleExpiredMsg signals the inactivity threshold elapsed.
type idleExpiredMsg struct{}

// sessionRevokedMsg signals the store was emptied from outside this model,
// which happens when the backend rejects the bearer token.
type sessionRevokedMsg struct{}

// countdownTickMsg drives the warning overlay countdown.
type countdownTickMsg struct{}
