// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the sign-in and password recovery views.
package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/comercia-tui/internal/api"
	"github.com/jeranaias/comercia-tui/internal/session"
	"github.com/jeranaias/comercia-tui/internal/ui/components"
	"github.com/jeranaias/comercia-tui/internal/ui/styles"
	"github.com/jeranaias/comercia-tui/internal/validate"
)

// =============================================================================
// AUTHENTICATOR
// =============================================================================

// Authenticator is the slice of the backend client the login view needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (session.Session, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

// =============================================================================
// MESSAGES
// =============================================================================

// SucceededMsg signals a committed login. The session is already persisted.
type SucceededMsg struct {
	Session session.Session
}

// failedMsg carries a normalized login failure.
type failedMsg struct {
	err error
}

// resetSentMsg signals the recovery request was accepted.
type resetSentMsg struct{}

// resetDoneMsg signals the token and new password were accepted.
type resetDoneMsg struct{}

// resetFailedMsg carries a normalized recovery failure.
type resetFailedMsg struct {
	err error
}

// =============================================================================
// MODEL
// =============================================================================

// mode selects which form the view shows.
type mode int

const (
	modeLogin mode = iota
	modeRecovery
	modeConfirm
)

const (
	fieldEmail = iota
	fieldPassword
	fieldCount
)

// Model is the Bubble Tea model for the sign-in screen.
type Model struct {
	theme *styles.Theme
	auth  Authenticator

	mode  mode
	busy  bool
	focus int

	email    textinput.Model
	password textinput.Model
	token    textinput.Model

	fieldErrs validate.FieldErrors
	notice    components.Notice
	spin      spinner.Model

	width  int
	height int
}

// New creates the sign-in screen.
func New(theme *styles.Theme, auth Authenticator) Model {
	email := textinput.New()
	email.Placeholder = "correo@empresa.mx"
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "contraseña"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	token := textinput.New()
	token.Placeholder = "token del correo"
	token.CharLimit = 128

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = theme.Spinner

	return Model{
		theme:    theme,
		auth:     auth,
		email:    email,
		password: password,
		token:    token,
		notice:   components.NewNotice(),
		spin:     spin,
	}
}

// Busy reports whether a login attempt is in flight.
func (m Model) Busy() bool {
	return m.busy
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the sign-in screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.notice.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case failedMsg:
		m.busy = false
		notice := api.Message(msg.err)
		m.notice.ShowDanger(notice.Title, notice.Body)
		return m, nil

	case resetSentMsg:
		m.busy = false
		m.mode = modeConfirm
		m.password.SetValue("")
		m.setFocus(fieldEmail)
		m.notice.Show("Correo enviado", "Si el correo existe, recibirás un token. Ingrésalo junto con tu nueva contraseña.")
		return m, nil

	case resetDoneMsg:
		m.busy = false
		m.mode = modeLogin
		m.token.SetValue("")
		m.password.SetValue("")
		m.setFocus(fieldEmail)
		m.notice.Show("Contraseña actualizada", "Inicia sesión con tu nueva contraseña.")
		return m, nil

	case resetFailedMsg:
		m.busy = false
		notice := api.Message(msg.err)
		m.notice.ShowDanger(notice.Title, notice.Body)
		return m, nil

	case tea.KeyMsg:
		if m.notice.IsVisible() {
			var cmd tea.Cmd
			m.notice, cmd = m.notice.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil

	case tea.KeyShiftTab, tea.KeyUp:
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil

	case tea.KeyEnter:
		return m.submit()

	case tea.KeyCtrlR:
		// From recovery or confirm, Ctrl+R abandons the flow.
		if !m.busy {
			if m.mode == modeLogin {
				m.mode = modeRecovery
			} else {
				m.mode = modeLogin
			}
			m.fieldErrs = validate.FieldErrors{}
			m.setFocus(fieldEmail)
		}
		return m, nil
	}

	return m.updateInputs(msg)
}

// setFocus moves the cursor to slot i. Slot 0 is the email input, or the
// token input while confirming a reset.
func (m *Model) setFocus(i int) {
	m.focus = i
	m.email.Blur()
	m.password.Blur()
	m.token.Blur()
	if i != fieldEmail {
		m.password.Focus()
		return
	}
	if m.mode == modeConfirm {
		m.token.Focus()
	} else {
		m.email.Focus()
	}
}

func (m Model) updateInputs(msg tea.Msg) (Model, tea.Cmd) {
	if m.busy {
		// Fields are frozen while an attempt is in flight.
		return m, nil
	}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	m.token, cmd = m.token.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// SUBMISSION
// =============================================================================

// submit validates the form and launches the attempt. While one is in
// flight further submits are ignored, so attempts never overlap.
func (m Model) submit() (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	email := strings.TrimSpace(m.email.Value())

	if m.mode == modeRecovery {
		m.fieldErrs = validate.Email(email)
		if !m.fieldErrs.Empty() {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.resetCmd(email))
	}

	if m.mode == modeConfirm {
		token := strings.TrimSpace(m.token.Value())
		newPassword := m.password.Value()
		m.fieldErrs = validate.NewPassword(newPassword)
		if token == "" {
			m.fieldErrs.Add("token", "El token es obligatorio")
		}
		if !m.fieldErrs.Empty() {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.confirmCmd(token, newPassword))
	}

	password := m.password.Value()
	m.fieldErrs = validate.Credentials(email, password)
	if !m.fieldErrs.Empty() {
		return m, nil
	}

	m.busy = true
	return m, tea.Batch(m.spin.Tick, m.loginCmd(email, password))
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	auth := m.auth
	return func() tea.Msg {
		sess, err := auth.Login(context.Background(), email, password)
		if err != nil {
			return failedMsg{err}
		}
		return SucceededMsg{Session: sess}
	}
}

func (m Model) resetCmd(email string) tea.Cmd {
	auth := m.auth
	return func() tea.Msg {
		if err := auth.RequestPasswordReset(context.Background(), email); err != nil {
			return resetFailedMsg{err}
		}
		return resetSentMsg{}
	}
}

func (m Model) confirmCmd(token, newPassword string) tea.Cmd {
	auth := m.auth
	return func() tea.Msg {
		if err := auth.ConfirmPasswordReset(context.Background(), token, newPassword); err != nil {
			return resetFailedMsg{err}
		}
		return resetDoneMsg{}
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the sign-in or recovery form.
func (m Model) View() string {
	if m.notice.IsVisible() {
		return m.notice.View(m.theme)
	}

	var parts []string

	title := "Iniciar sesión"
	switch m.mode {
	case modeRecovery:
		title = "Recuperar contraseña"
	case modeConfirm:
		title = "Restablecer contraseña"
	}
	parts = append(parts, m.theme.HeaderTitle.Render("Comercia · "+title))
	parts = append(parts, "")

	if m.mode == modeConfirm {
		parts = append(parts, m.theme.FieldLabel.Render("Token de recuperación"))
		parts = append(parts, m.token.View())
		parts = append(parts, m.renderFieldErrors("token"))
		parts = append(parts, m.theme.FieldLabel.Render("Nueva contraseña"))
		parts = append(parts, m.password.View())
		parts = append(parts, m.renderFieldErrors("password"))
	} else {
		parts = append(parts, m.theme.FieldLabel.Render("Correo electrónico"))
		parts = append(parts, m.email.View())
		parts = append(parts, m.renderFieldErrors("email"))
	}

	if m.mode == modeLogin {
		parts = append(parts, m.theme.FieldLabel.Render("Contraseña"))
		parts = append(parts, m.password.View())
		parts = append(parts, m.renderFieldErrors("password"))
	}

	parts = append(parts, "")
	if m.busy {
		parts = append(parts, m.spin.View()+m.theme.SubmitBusy.Render(" Verificando…"))
	} else {
		label := "Entrar"
		switch m.mode {
		case modeRecovery:
			label = "Enviar correo"
		case modeConfirm:
			label = "Restablecer"
		}
		parts = append(parts, m.theme.SubmitActive.Render(label))
	}

	parts = append(parts, "")
	hint := "Enter envía · Ctrl+R recuperar contraseña"
	if m.mode != modeLogin {
		hint = "Enter envía · Ctrl+R volver"
	}
	parts = append(parts, m.theme.Hint.Render(hint))

	form := m.theme.FormBox.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))

	width := m.width
	if width == 0 {
		width = 80
	}
	height := m.height
	if height == 0 {
		height = 24
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, form)
}

func (m Model) renderFieldErrors(field string) string {
	msgs := m.fieldErrs[field]
	if len(msgs) == 0 {
		return ""
	}
	return m.theme.FieldError.Render("· " + strings.Join(msgs, "\n· "))
}
