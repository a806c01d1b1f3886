// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	runewidth "github.com/mattn/go-runewidth"

	"github.com/jeranaias/comercia-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the bottom bar: the signed-in user and role on the
// left, the active route on the right.
type StatusBar struct {
	width int

	userName string
	roleName string
	route    string
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBar {
	return StatusBar{}
}

// SetWidth sets the render width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// SetUser sets the signed-in identity. Empty clears it.
func (s *StatusBar) SetUser(name, role string) {
	s.userName = name
	s.roleName = role
}

// SetRoute sets the active route label.
func (s *StatusBar) SetRoute(route string) {
	s.route = route
}

// View renders the bar at the configured width.
func (s StatusBar) View(theme *styles.Theme) string {
	width := s.width
	if width <= 0 {
		width = 80
	}

	left := "sin sesión"
	if s.userName != "" {
		left = s.userName
		if s.roleName != "" {
			left += " · " + s.roleName
		}
	}
	left = truncate(left, width/2)

	right := truncate(s.route, width/3)

	leftRendered := theme.StatusUser.Render(left)
	rightRendered := theme.StatusRoute.Render(right)

	// Pad with display-cell width, not byte length, so wide runes and
	// accented names do not skew the layout.
	gap := width - runewidth.StringWidth(left) - runewidth.StringWidth(right) - 2
	if gap < 1 {
		gap = 1
	}

	bar := leftRendered + strings.Repeat(" ", gap) + rightRendered
	return theme.StatusBar.Width(width).Render(bar)
}

// truncate trims s to the given display width with an ellipsis.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "…")
}
