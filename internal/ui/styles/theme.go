// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER AND STATUS BAR STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	StatusBar   lipgloss.Style
	StatusUser  lipgloss.Style
	StatusRoute lipgloss.Style

	// ==========================================================================
	// FORM STYLES
	// ==========================================================================

	FormBox      lipgloss.Style
	FieldLabel   lipgloss.Style
	FieldError   lipgloss.Style
	SubmitActive lipgloss.Style
	SubmitBusy   lipgloss.Style

	// ==========================================================================
	// OVERLAY AND NOTICE STYLES
	// ==========================================================================

	WarningBox  lipgloss.Style
	DangerBox   lipgloss.Style
	NoticeTitle lipgloss.Style
	NoticeBody  lipgloss.Style
	Hint        lipgloss.Style

	// ==========================================================================
	// CONTENT STYLES
	// ==========================================================================

	SectionTitle lipgloss.Style
	Forbidden    lipgloss.Style
	Spinner      lipgloss.Style
}

// NewTheme creates a theme sized for the current terminal.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	hasTrueColor := colorProfile == termenv.TrueColor
	isDark := termenv.HasDarkBackground()

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: hasTrueColor,
		ColorProfile: colorProfile,
	}

	t.App = lipgloss.NewStyle().
		Background(Surface)

	t.Container = lipgloss.NewStyle().
		Padding(1, 2)

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Azul).
		Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusUser = lipgloss.NewStyle().
		Foreground(Esmeralda).
		Bold(true)

	t.StatusRoute = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.FormBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(1, 3)

	t.FieldLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.FieldError = lipgloss.NewStyle().
		Foreground(Rojo)

	t.SubmitActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Azul).
		Padding(0, 2).
		Bold(true)

	t.SubmitBusy = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(Overlay).
		Padding(0, 2)

	t.WarningBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Ambar).
		Padding(1, 3)

	t.DangerBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rojo).
		Padding(1, 3)

	t.NoticeTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.NoticeBody = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Hint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.SectionTitle = lipgloss.NewStyle().
		Foreground(Azul).
		Bold(true).
		Underline(true)

	t.Forbidden = lipgloss.NewStyle().
		Foreground(Rojo).
		Bold(true)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Azul)

	return t
}

// SetSize records the terminal dimensions on the theme.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
