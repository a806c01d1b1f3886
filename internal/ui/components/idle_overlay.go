// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the comercia TUI.
package components

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/comercia-tui/internal/ui/styles"
)

// =============================================================================
// INACTIVITY OVERLAY
// =============================================================================

// IdleOverlay warns the user that the session is about to expire for
// inactivity, and announces the expiration once it happens.
type IdleOverlay struct {
	visible       bool
	timeRemaining time.Duration
	expired       bool

	width  int
	height int
}

// NewIdleOverlay creates a hidden overlay.
func NewIdleOverlay() IdleOverlay {
	return IdleOverlay{}
}

// SetSize sets the overlay dimensions.
func (o *IdleOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// ShowWarning displays the pre-expiry countdown.
func (o *IdleOverlay) ShowWarning(remaining time.Duration) {
	o.visible = true
	o.expired = false
	o.timeRemaining = remaining
}

// ShowExpired displays the terminal expiration notice.
func (o *IdleOverlay) ShowExpired() {
	o.visible = true
	o.expired = true
	o.timeRemaining = 0
}

// Hide hides the overlay.
func (o *IdleOverlay) Hide() {
	o.visible = false
	o.expired = false
}

// UpdateTime updates the countdown.
func (o *IdleOverlay) UpdateTime(remaining time.Duration) {
	o.timeRemaining = remaining
	if remaining <= 0 {
		o.expired = true
	}
}

// IsVisible returns whether the overlay is currently shown.
func (o *IdleOverlay) IsVisible() bool {
	return o.visible
}

// IsExpired returns whether the expiration notice is shown.
func (o *IdleOverlay) IsExpired() bool {
	return o.expired
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// ActivityExtendedMsg signals the user pressed a key during the warning,
// which counts as activity and dismisses the countdown.
type ActivityExtendedMsg struct{}

// Update handles messages for the overlay.
func (o IdleOverlay) Update(msg tea.Msg) (IdleOverlay, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		o.width = msg.Width
		o.height = msg.Height

	case tea.KeyMsg:
		// A key press during the warning is activity; after expiry only
		// the owner can dismiss the overlay.
		if o.visible && !o.expired {
			o.Hide()
			return o, func() tea.Msg {
				return ActivityExtendedMsg{}
			}
		}
	}

	return o, nil
}

// View renders the overlay, or "" when hidden.
func (o IdleOverlay) View(theme *styles.Theme) string {
	if !o.visible {
		return ""
	}
	if o.expired {
		return o.viewExpired(theme)
	}
	return o.viewWarning(theme)
}

// =============================================================================
// RENDER METHODS
// =============================================================================

func (o IdleOverlay) viewWarning(theme *styles.Theme) string {
	maxWidth := contentWidth(o.width)

	timeStr := formatCountdown(o.timeRemaining)

	var parts []string
	title := lipgloss.NewStyle().Foreground(styles.Ambar).Bold(true)
	parts = append(parts, title.Render("⚠ Sesión por expirar"))
	parts = append(parts, "")

	countdown := lipgloss.NewStyle().Foreground(styles.Ambar).Bold(true)
	msg := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 4).
		Align(lipgloss.Center)
	parts = append(parts, msg.Render("La sesión expirará en "+countdown.Render(timeStr)))
	parts = append(parts, "")
	parts = append(parts, theme.Hint.Render("Presiona cualquier tecla para continuar"))

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return o.center(theme.WarningBox.Render(content))
}

func (o IdleOverlay) viewExpired(theme *styles.Theme) string {
	maxWidth := contentWidth(o.width)

	var parts []string
	title := lipgloss.NewStyle().Foreground(styles.Rojo).Bold(true)
	parts = append(parts, title.Render("Sesión expirada"))
	parts = append(parts, "")

	msg := lipgloss.NewStyle().
		Foreground(styles.TextPrimary).
		Width(maxWidth - 4).
		Align(lipgloss.Center)
	parts = append(parts, msg.Render("Tu sesión terminó por inactividad. Inicia sesión de nuevo."))
	parts = append(parts, "")
	parts = append(parts, theme.Hint.Render("Presiona Enter para ir al inicio de sesión"))

	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return o.center(theme.DangerBox.Render(content))
}

func (o IdleOverlay) center(box string) string {
	width := o.width
	if width == 0 {
		width = 60
	}
	height := o.height
	if height == 0 {
		height = 24
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func contentWidth(width int) int {
	maxWidth := width - 8
	if maxWidth < 40 {
		maxWidth = 40
	}
	if maxWidth > 60 {
		maxWidth = 60
	}
	return maxWidth
}

// formatCountdown renders a duration as M:SS.
func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
