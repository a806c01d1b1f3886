// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the comercia backend: the
// credential login handshake, password recovery, and the authorization
// transport every request passes through.
//
// All outcomes are normalized before they leave this package. Raw transport
// error text never reaches the UI; callers get a sentinel error category and
// a human-readable message.
package api
