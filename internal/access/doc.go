// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package access implements permission-based navigation control for the
// comercia client.
//
// It defines the closed set of capability names granted by the backend, a
// static table mapping each guarded route to the capability it requires, the
// Gate that decides whether a navigation target may render, and the resolver
// that picks the first reachable route after login.
package access
