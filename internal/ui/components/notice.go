// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/comercia-tui/internal/ui/styles"
)

// =============================================================================
// BLOCKING NOTICE
// =============================================================================

// Notice is a modal message box that blocks the view until acknowledged.
// Used for normalized operation failures and forced-logout announcements.
type Notice struct {
	visible bool
	title   string
	body    string
	danger  bool

	width  int
	height int
}

// NewNotice creates a hidden notice.
func NewNotice() Notice {
	return Notice{}
}

// Show displays an informational notice.
func (n *Notice) Show(title, body string) {
	n.visible = true
	n.title = title
	n.body = body
	n.danger = false
}

// ShowDanger displays an error notice.
func (n *Notice) ShowDanger(title, body string) {
	n.Show(title, body)
	n.danger = true
}

// Hide dismisses the notice.
func (n *Notice) Hide() {
	n.visible = false
}

// IsVisible returns whether the notice is currently shown.
func (n *Notice) IsVisible() bool {
	return n.visible
}

// Title returns the current title.
func (n *Notice) Title() string {
	return n.title
}

// SetSize sets the notice dimensions.
func (n *Notice) SetSize(width, height int) {
	n.width = width
	n.height = height
}

// NoticeDismissedMsg signals the user acknowledged the notice.
type NoticeDismissedMsg struct{}

// Update dismisses the notice on Enter or Esc.
func (n Notice) Update(msg tea.Msg) (Notice, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		n.width = msg.Width
		n.height = msg.Height

	case tea.KeyMsg:
		if n.visible && (msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc) {
			n.Hide()
			return n, func() tea.Msg {
				return NoticeDismissedMsg{}
			}
		}
	}
	return n, nil
}

// View renders the notice, or "" when hidden.
func (n Notice) View(theme *styles.Theme) string {
	if !n.visible {
		return ""
	}

	maxWidth := contentWidth(n.width)

	body := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(maxWidth - 4).
		Align(lipgloss.Center)

	content := lipgloss.JoinVertical(lipgloss.Center,
		theme.NoticeTitle.Render(n.title),
		"",
		body.Render(n.body),
		"",
		theme.Hint.Render("Enter para continuar"),
	)

	box := theme.WarningBox
	if n.danger {
		box = theme.DangerBox
	}

	width := n.width
	if width == 0 {
		width = 60
	}
	height := n.height
	if height == 0 {
		height = 24
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box.Render(content))
}
