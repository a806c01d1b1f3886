// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package login

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/comercia-tui/internal/api"
	"github.com/jeranaias/comercia-tui/internal/session"
	"github.com/jeranaias/comercia-tui/internal/ui/styles"
)

// fakeAuth scripts the backend result and counts attempts.
type fakeAuth struct {
	loginCalls   int
	resetCalls   int
	confirmCalls int
	lastToken    string
	lastPassword string
	sess         session.Session
	err          error
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (session.Session, error) {
	f.loginCalls++
	return f.sess, f.err
}

func (f *fakeAuth) RequestPasswordReset(ctx context.Context, email string) error {
	f.resetCalls++
	return f.err
}

func (f *fakeAuth) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	f.confirmCalls++
	f.lastToken = token
	f.lastPassword = newPassword
	return f.err
}

func newTestModel(auth *fakeAuth) Model {
	return New(styles.NewTheme(), auth)
}

func typeInto(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func fillCredentials(m Model, email, password string) Model {
	m = typeInto(m, email)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeInto(m, password)
	return m
}

func TestSubmit_EmptyFormShowsFieldErrors(t *testing.T) {
	auth := &fakeAuth{}
	m := newTestModel(auth)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("empty form must not launch an attempt")
	}
	if m.Busy() {
		t.Error("model busy without an attempt")
	}
	if len(m.fieldErrs["email"]) == 0 {
		t.Error("missing email error")
	}
	if len(m.fieldErrs["password"]) == 0 {
		t.Error("missing password error")
	}
	if auth.loginCalls != 0 {
		t.Errorf("backend called %d times", auth.loginCalls)
	}
}

func TestSubmit_ValidCredentialsLaunchAttempt(t *testing.T) {
	auth := &fakeAuth{sess: session.Session{Token: "t", User: session.UserProfile{
		ID: 1, Nombre: "Ana", Email: "ana@x.mx", Rol: session.RoleVendedor, Permisos: []string{"Ventas"},
	}}}
	m := newTestModel(auth)
	m = fillCredentials(m, "ana@x.mx", "Secret1!")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if !m.Busy() {
		t.Fatal("model should be busy while the attempt runs")
	}
	if cmd == nil {
		t.Fatal("expected a login command")
	}

	msg := runBatch(t, cmd)
	succeeded, ok := msg.(SucceededMsg)
	if !ok {
		t.Fatalf("command produced %T, want SucceededMsg", msg)
	}
	if succeeded.Session.Token != "t" {
		t.Errorf("session token = %q", succeeded.Session.Token)
	}
	if auth.loginCalls != 1 {
		t.Errorf("backend called %d times, want 1", auth.loginCalls)
	}
}

func TestSubmit_IgnoredWhileBusy(t *testing.T) {
	auth := &fakeAuth{}
	m := newTestModel(auth)
	m = fillCredentials(m, "ana@x.mx", "Secret1!")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Busy() {
		t.Fatal("first submit should set busy")
	}

	// A second Enter while in flight must not start a new attempt.
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("submit while busy launched a command")
	}
}

func TestFailedLoginShowsNotice(t *testing.T) {
	auth := &fakeAuth{}
	m := newTestModel(auth)
	m = fillCredentials(m, "ana@x.mx", "Secret1!")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m, _ = m.Update(failedMsg{err: api.ErrInvalidCredentials})

	if m.Busy() {
		t.Error("failure should clear busy")
	}
	if !m.notice.IsVisible() {
		t.Fatal("failure should show a notice")
	}
	if m.notice.Title() != "Credenciales inválidas" {
		t.Errorf("notice title = %q", m.notice.Title())
	}
}

func TestRecoveryModeSubmitsEmailOnly(t *testing.T) {
	auth := &fakeAuth{}
	m := newTestModel(auth)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.mode != modeRecovery {
		t.Fatal("Ctrl+R should enter recovery mode")
	}

	m = typeInto(m, "ana@x.mx")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a reset command")
	}

	msg := runBatch(t, cmd)
	if _, ok := msg.(resetSentMsg); !ok {
		t.Fatalf("command produced %T, want resetSentMsg", msg)
	}
	if auth.resetCalls != 1 {
		t.Errorf("reset called %d times, want 1", auth.resetCalls)
	}

	m, _ = m.Update(msg)
	if m.mode != modeConfirm {
		t.Error("accepted reset should move to the token form")
	}
}

// enterConfirmMode walks the model through an accepted recovery request.
func enterConfirmMode(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	m = typeInto(m, "ana@x.mx")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(runBatch(t, cmd))
	if m.mode != modeConfirm {
		t.Fatal("model did not reach the token form")
	}
	// Dismiss the "correo enviado" notice.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return m
}

func TestConfirmMode_WeakPasswordShowsFieldErrors(t *testing.T) {
	auth := &fakeAuth{}
	m := enterConfirmMode(t, newTestModel(auth))

	m = typeInto(m, "tok-123")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeInto(m, "corta")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("weak password must not launch a confirmation")
	}
	if len(m.fieldErrs["password"]) == 0 {
		t.Error("missing password strength errors")
	}
	if auth.confirmCalls != 0 {
		t.Errorf("backend called %d times", auth.confirmCalls)
	}
}

func TestConfirmMode_MissingTokenShowsFieldError(t *testing.T) {
	auth := &fakeAuth{}
	m := enterConfirmMode(t, newTestModel(auth))

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeInto(m, "NuevaClave9!")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("missing token must not launch a confirmation")
	}
	if len(m.fieldErrs["token"]) == 0 {
		t.Error("missing token error")
	}
}

func TestConfirmMode_AcceptedResetReturnsToLogin(t *testing.T) {
	auth := &fakeAuth{}
	m := enterConfirmMode(t, newTestModel(auth))

	m = typeInto(m, "tok-123")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeInto(m, "NuevaClave9!")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a confirm command")
	}

	msg := runBatch(t, cmd)
	if _, ok := msg.(resetDoneMsg); !ok {
		t.Fatalf("command produced %T, want resetDoneMsg", msg)
	}
	if auth.confirmCalls != 1 {
		t.Errorf("confirm called %d times, want 1", auth.confirmCalls)
	}
	if auth.lastToken != "tok-123" || auth.lastPassword != "NuevaClave9!" {
		t.Errorf("confirm got (%q, %q)", auth.lastToken, auth.lastPassword)
	}

	m, _ = m.Update(msg)
	if m.mode != modeLogin {
		t.Error("accepted confirmation should return to the login form")
	}
	if m.token.Value() != "" || m.password.Value() != "" {
		t.Error("token and password must be wiped after the reset")
	}
	if m.notice.Title() != "Contraseña actualizada" {
		t.Errorf("notice title = %q", m.notice.Title())
	}
}

func TestConfirmMode_RejectedTokenShowsNotice(t *testing.T) {
	auth := &fakeAuth{}
	m := enterConfirmMode(t, newTestModel(auth))
	auth.err = api.ErrResetRejected

	m = typeInto(m, "tok-viejo")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = typeInto(m, "NuevaClave9!")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	msg := runBatch(t, cmd)
	if _, ok := msg.(resetFailedMsg); !ok {
		t.Fatalf("command produced %T, want resetFailedMsg", msg)
	}

	m, _ = m.Update(msg)
	if m.mode != modeConfirm {
		t.Error("rejected token should keep the token form open")
	}
	if !m.notice.IsVisible() {
		t.Error("rejection should show a notice")
	}
}

// runBatch executes a command tree and returns the first non-tick message.
func runBatch(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case SucceededMsg, failedMsg, resetSentMsg, resetDoneMsg, resetFailedMsg:
			return msg
		}
	}
	t.Fatal("no terminal message produced")
	return nil
}
