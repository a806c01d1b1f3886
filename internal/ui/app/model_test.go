// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/comercia-tui/internal/access"
	"github.com/jeranaias/comercia-tui/internal/history"
	"github.com/jeranaias/comercia-tui/internal/session"
	"github.com/jeranaias/comercia-tui/internal/ui/login"
)

type captureRecorder struct {
	mu    sync.Mutex
	kinds []string
}

func (r *captureRecorder) Record(kind, email, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
}

func (r *captureRecorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.kinds) == 0 {
		return ""
	}
	return r.kinds[len(r.kinds)-1]
}

func sessionWith(perms ...string) session.Session {
	return session.Session{
		Token: "tok",
		User: session.UserProfile{
			ID:       3,
			Nombre:   "Luis Rivera",
			Email:    "luis@comercia.mx",
			Rol:      session.RoleVendedor,
			Permisos: perms,
		},
	}
}

func newTestApp(t *testing.T, sess *session.Session) (*Model, *session.Store, *captureRecorder) {
	t.Helper()
	store := session.NewStore(t.TempDir())
	store.Hydrate()
	if sess != nil {
		if err := store.Set(*sess); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}
	rec := &captureRecorder{}
	m := New(Config{
		Store:    store,
		Watchdog: session.NewWatchdog(session.DefaultWatchdogConfig()),
		History:  rec,
	})
	return m, store, rec
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStartsAtLoginWithoutSession(t *testing.T) {
	m, _, _ := newTestApp(t, nil)
	if m.Route() != access.RouteLogin {
		t.Errorf("route = %q, want %q", m.Route(), access.RouteLogin)
	}
}

func TestHydratedSessionLandsByCapability(t *testing.T) {
	sess := sessionWith("Ventas")
	m, _, _ := newTestApp(t, &sess)

	if m.Route() != access.RouteVentas {
		t.Errorf("route = %q, want %q", m.Route(), access.RouteVentas)
	}
	if !m.watchdog.Running() {
		t.Error("watchdog not started for hydrated session")
	}
}

func TestNavigateForbiddenRedirectsToUnauthorized(t *testing.T) {
	sess := sessionWith("Dashboard", "Ventas")
	m, _, _ := newTestApp(t, &sess)

	// No Compras capability.
	m.Update(key("3"))

	if m.Route() != access.RouteUnauthorized {
		t.Errorf("route = %q, want %q", m.Route(), access.RouteUnauthorized)
	}
}

func TestNavigateAuthorizedSwitchesRoute(t *testing.T) {
	sess := sessionWith("Dashboard", "Ventas")
	m, _, _ := newTestApp(t, &sess)

	m.Update(key("2"))

	if m.Route() != access.RouteVentas {
		t.Errorf("route = %q, want %q", m.Route(), access.RouteVentas)
	}
}

func TestManualLogout(t *testing.T) {
	sess := sessionWith("Dashboard")
	m, store, rec := newTestApp(t, &sess)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})

	if m.Route() != access.RouteLogin {
		t.Errorf("route = %q, want login", m.Route())
	}
	if _, ok := store.Current(); ok {
		t.Error("store should be empty after logout")
	}
	if m.watchdog.Running() {
		t.Error("watchdog should be stopped after logout")
	}
	if rec.last() != history.KindLogout {
		t.Errorf("history kind = %q, want %q", rec.last(), history.KindLogout)
	}
}

func TestIdleExpiry(t *testing.T) {
	sess := sessionWith("Dashboard")
	m, store, rec := newTestApp(t, &sess)

	m.Update(idleExpiredMsg{})

	if _, ok := store.Current(); ok {
		t.Error("store should be empty after expiry")
	}
	if !m.overlay.IsVisible() || !m.overlay.IsExpired() {
		t.Error("expired overlay should be up")
	}
	if rec.last() != history.KindExpired {
		t.Errorf("history kind = %q, want %q", rec.last(), history.KindExpired)
	}

	// Only Enter dismisses the expired overlay.
	m.Update(key("x"))
	if !m.overlay.IsVisible() {
		t.Error("plain key dismissed the expired overlay")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.overlay.IsVisible() {
		t.Error("Enter should dismiss the expired overlay")
	}
	if m.Route() != access.RouteLogin {
		t.Errorf("route = %q, want login", m.Route())
	}
}

func TestExternalRevocationShowsNotice(t *testing.T) {
	sess := sessionWith("Dashboard")
	m, store, rec := newTestApp(t, &sess)

	// Simulate the transport clearing the store after a 401.
	store.Clear()
	m.Update(sessionRevokedMsg{})

	if m.Route() != access.RouteLogin {
		t.Errorf("route = %q, want login", m.Route())
	}
	if !m.notice.IsVisible() {
		t.Error("revocation should show a notice")
	}
	if rec.last() != history.KindRevoked {
		t.Errorf("history kind = %q, want %q", rec.last(), history.KindRevoked)
	}
}

func TestSelfClearDoesNotDoubleReport(t *testing.T) {
	sess := sessionWith("Dashboard")
	m, _, rec := newTestApp(t, &sess)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlQ})
	kindsAfterLogout := rec.last()

	// The store subscription fires for the model's own Clear too; the
	// queued revocation event must be swallowed.
	m.Update(sessionRevokedMsg{})

	if rec.last() != kindsAfterLogout {
		t.Errorf("self-initiated clear recorded %q", rec.last())
	}
}

func TestLoginSuccessRestoresRememberedRoute(t *testing.T) {
	m, store, _ := newTestApp(t, nil)
	m.remembered = access.RouteVentas

	sess := sessionWith("Ventas")
	if err := store.Set(sess); err != nil {
		t.Fatalf("set session: %v", err)
	}

	m.Update(login.SucceededMsg{Session: sess})

	if m.Route() != access.RouteVentas {
		t.Errorf("route = %q, want remembered %q", m.Route(), access.RouteVentas)
	}
}

func TestLoginSuccessFallsBackWhenRememberedForbidden(t *testing.T) {
	m, store, _ := newTestApp(t, nil)
	m.remembered = access.RouteCompras

	sess := sessionWith("Ventas")
	if err := store.Set(sess); err != nil {
		t.Fatalf("set session: %v", err)
	}

	m.Update(login.SucceededMsg{Session: sess})

	if m.Route() != access.RouteVentas {
		t.Errorf("route = %q, want landing %q", m.Route(), access.RouteVentas)
	}
}

func TestWarningCountdown(t *testing.T) {
	sess := sessionWith("Dashboard")
	m, _, _ := newTestApp(t, &sess)

	m.Update(idleWarnMsg{remaining: 90 * time.Second})

	if !m.overlay.IsVisible() {
		t.Fatal("warning overlay should be up")
	}
	if m.overlay.IsExpired() {
		t.Error("warning is not expiry")
	}

	// Activity during the warning dismisses it and keeps the session.
	m.Update(key("a"))
	if m.overlay.IsVisible() {
		t.Error("key during warning should dismiss the overlay")
	}
	if m.Route() == access.RouteLogin {
		t.Error("warning dismissal must not end the session")
	}
}
