// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the client's authentication state: the Session and
// UserProfile types, the persisted Store that survives restarts, and the
// inactivity Watchdog that force-expires idle sessions.
//
// A session is all-or-nothing: it is either fully present (token and profile)
// or fully absent. The store enforces this on write, on hydration, and on
// every clear, no matter which of the three termination triggers (explicit
// logout, revoked request, idle expiry) fires first.
package session
