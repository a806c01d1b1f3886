// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app provides the root Bubble Tea model: route navigation guarded
// by the permission gate, the inactivity watchdog, and the shared logout
// path used by manual logout, idle expiry, and server-side revocation.
package app

import (
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/comercia-tui/internal/access"
	"github.com/jeranaias/comercia-tui/internal/api"
	"github.com/jeranaias/comercia-tui/internal/history"
	"github.com/jeranaias/comercia-tui/internal/session"
	"github.com/jeranaias/comercia-tui/internal/ui/components"
	"github.com/jeranaias/comercia-tui/internal/ui/login"
	"github.com/jeranaias/comercia-tui/internal/ui/styles"
)

// =============================================================================
// ROOT MODEL
// =============================================================================

// Model is the application root.
type Model struct {
	theme *styles.Theme

	store    *session.Store
	client   *api.Client
	watchdog *session.Watchdog
	history  api.Recorder

	login     login.Model
	statusBar components.StatusBar
	overlay   components.IdleOverlay
	notice    components.Notice

	// route is the active path; remembered is where to return after a
	// login forced by an unauthenticated navigation.
	route      string
	remembered string

	// clearing suppresses the store-subscription revocation handler while
	// this model empties the store itself.
	clearing bool

	// events carries watchdog and store callbacks, which fire on other
	// goroutines, into the update loop.
	events chan tea.Msg

	width  int
	height int
	quit   bool
}

// Config wires the root model's collaborators.
type Config struct {
	Theme    *styles.Theme
	Store    *session.Store
	Client   *api.Client
	Watchdog *session.Watchdog
	History  api.Recorder
}

// New creates the root model. The store must already be hydrated.
func New(cfg Config) *Model {
	theme := cfg.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	hist := cfg.History
	if hist == nil {
		hist = nopRecorder{}
	}

	m := &Model{
		theme:     theme,
		store:     cfg.Store,
		client:    cfg.Client,
		watchdog:  cfg.Watchdog,
		history:   hist,
		login:     login.New(theme, cfg.Client),
		statusBar: components.NewStatusBar(),
		overlay:   components.NewIdleOverlay(),
		notice:    components.NewNotice(),
		route:     access.RouteLogin,
		events:    make(chan tea.Msg, 8),
	}

	m.watchdog.SetExpireCallback(func() {
		m.events <- idleExpiredMsg{}
	})
	m.watchdog.SetWarnCallback(func(remaining time.Duration) {
		m.events <- idleWarnMsg{remaining: remaining}
	})
	m.store.Subscribe(func(authenticated bool) {
		if !authenticated {
			m.events <- sessionRevokedMsg{}
		}
	})

	if sess, ok := m.store.Current(); ok {
		m.enterSession(sess)
	}

	return m
}

// nopRecorder discards events when no history log is configured.
type nopRecorder struct{}

func (nopRecorder) Record(string, string, string) {}

// Route returns the active path.
func (m *Model) Route() string {
	return m.route
}

// gateInfo snapshots the store for the permission gate.
func (m *Model) gateInfo() access.SessionInfo {
	info := access.SessionInfo{Hydrated: m.store.Hydrated()}
	if sess, ok := m.store.Current(); ok {
		info.Authenticated = true
		info.Perms = access.NewSet(sess.User.Permisos)
	}
	return info
}

// enterSession switches to the authenticated state for sess.
func (m *Model) enterSession(sess session.Session) {
	target := m.remembered
	m.remembered = ""
	if target == "" || target == access.RouteLogin {
		target = access.ResolveLanding(access.NewSet(sess.User.Permisos))
	} else if access.Evaluate(m.gateInfo(), target).Verdict != access.VerdictAuthorized {
		target = access.ResolveLanding(access.NewSet(sess.User.Permisos))
	}

	m.route = target
	m.statusBar.SetUser(sess.User.Nombre, sess.User.Rol.String())
	m.statusBar.SetRoute(target)
	m.watchdog.Start()
	log.Printf("SESSION | ENTER | user=%d route=%s", sess.User.ID, target)
}

// leaveSession drops to the login screen. The store is already empty.
func (m *Model) leaveSession(reason string) {
	m.watchdog.Stop()
	m.statusBar.SetUser("", "")
	m.route = access.RouteLogin
	m.statusBar.SetRoute(m.route)
	m.login = login.New(m.theme, m.client)
	log.Printf("SESSION | LEAVE | reason=%s", reason)
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the event pump and the login cursor.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listenEvents(), m.login.Init())
}

// listenEvents forwards one async session event into the update loop.
func (m *Model) listenEvents() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// Update handles messages for the root model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.statusBar.SetWidth(msg.Width)
		m.overlay.SetSize(msg.Width, msg.Height)
		m.notice.SetSize(msg.Width, msg.Height)
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd

	case idleWarnMsg:
		if m.authenticated() {
			m.overlay.ShowWarning(msg.remaining)
			return m, tea.Batch(m.listenEvents(), m.countdownTick())
		}
		return m, m.listenEvents()

	case idleExpiredMsg:
		m.expire()
		return m, m.listenEvents()

	case sessionRevokedMsg:
		if m.clearing {
			// This model emptied the store itself.
			m.clearing = false
			return m, m.listenEvents()
		}
		m.history.Record(history.KindRevoked, "", "bearer rejected")
		m.leaveSession("revoked")
		m.notice.ShowDanger("Sesión revocada", "El servidor rechazó tu sesión. Inicia sesión de nuevo.")
		return m, m.listenEvents()

	case countdownTickMsg:
		if m.overlay.IsVisible() && !m.overlay.IsExpired() {
			m.overlay.UpdateTime(m.watchdog.Remaining())
			return m, m.countdownTick()
		}
		return m, nil

	case login.SucceededMsg:
		m.enterSession(msg.Session)
		return m, nil

	case components.ActivityExtendedMsg:
		m.watchdog.Signal()
		return m, nil

	case tea.MouseMsg:
		if m.authenticated() {
			m.watchdog.Signal()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.route == access.RouteLogin {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits, even mid-login.
	if msg.Type == tea.KeyCtrlC {
		m.quit = true
		return m, tea.Quit
	}

	if m.overlay.IsVisible() {
		if m.overlay.IsExpired() {
			if msg.Type == tea.KeyEnter {
				m.overlay.Hide()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		return m, cmd
	}

	if m.notice.IsVisible() {
		var cmd tea.Cmd
		m.notice, cmd = m.notice.Update(msg)
		return m, cmd
	}

	if m.route == access.RouteLogin {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}

	// Authenticated: every key is activity.
	m.watchdog.Signal()

	switch msg.String() {
	case "ctrl+q":
		m.logout()
		return m, nil
	case "1":
		return m, m.navigate(access.RouteDashboard)
	case "2":
		return m, m.navigate(access.RouteVentas)
	case "3":
		return m, m.navigate(access.RouteCompras)
	case "4":
		return m, m.navigate(access.RouteProductos)
	case "5":
		return m, m.navigate(access.RouteClientes)
	case "6":
		return m, m.navigate(access.RouteProveedores)
	case "7":
		return m, m.navigate(access.RouteUsuarios)
	case "8":
		return m, m.navigate(access.RouteReportes)
	case "p":
		return m, m.navigate(access.RoutePerfil)
	}

	return m, nil
}

// navigate runs the target through the gate before switching routes.
func (m *Model) navigate(path string) tea.Cmd {
	decision := access.Evaluate(m.gateInfo(), path)
	switch decision.Verdict {
	case access.VerdictAuthorized:
		m.route = path
		m.statusBar.SetRoute(path)

	case access.VerdictForbidden:
		m.route = decision.RedirectTo
		m.statusBar.SetRoute(m.route)

	case access.VerdictUnauthenticated:
		m.remembered = decision.Remember
		m.leaveSession("unauthenticated")
	}
	return nil
}

func (m *Model) countdownTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownTickMsg{}
	})
}

func (m *Model) authenticated() bool {
	_, ok := m.store.Current()
	return ok
}

// =============================================================================
// SHARED LOGOUT PATH
// =============================================================================

// logout is the user-initiated exit.
func (m *Model) logout() {
	sess, ok := m.store.Current()
	if !ok {
		return
	}
	m.clearing = true
	m.store.Clear()
	m.history.Record(history.KindLogout, sess.User.Email, "")
	m.leaveSession("logout")
	m.notice.Show("Sesión cerrada", "Cerraste sesión correctamente.")
}

// expire is the inactivity exit. Unlike logout it leaves the expired
// overlay up until the user acknowledges it.
func (m *Model) expire() {
	sess, ok := m.store.Current()
	if !ok {
		return
	}
	m.clearing = true
	m.store.Clear()
	m.history.Record(history.KindExpired, sess.User.Email, "idle")
	m.leaveSession("expired")
	m.overlay.ShowExpired()
}
