// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/comercia-tui/internal/access"
)

// sectionTitles maps routes to their screen headings.
var sectionTitles = map[string]string{
	access.RouteDashboard:    "Panel",
	access.RouteUsuarios:     "Usuarios",
	access.RouteRoles:        "Roles",
	access.RouteProductos:    "Productos",
	access.RouteCategorias:   "Categorías",
	access.RouteVentas:       "Ventas",
	access.RouteCompras:      "Compras",
	access.RouteClientes:     "Clientes",
	access.RouteProveedores:  "Proveedores",
	access.RouteReportes:     "Reportes",
	access.RoutePerfil:       "Mi perfil",
	access.RouteUnauthorized: "Sin acceso",
}

// View renders the root model.
func (m *Model) View() string {
	if m.quit {
		return ""
	}

	if m.overlay.IsVisible() {
		return m.overlay.View(m.theme)
	}
	if m.notice.IsVisible() {
		return m.notice.View(m.theme)
	}
	if m.route == access.RouteLogin {
		return m.login.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		m.viewSection(),
		m.statusBar.View(m.theme),
	)
}

func (m *Model) viewHeader() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.theme.Header.Width(width).Render(m.theme.HeaderTitle.Render("Comercia"))
}

func (m *Model) viewSection() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	height := m.height - 2
	if height < 4 {
		height = 4
	}

	title := sectionTitles[m.route]
	if title == "" {
		title = m.route
	}

	var body string
	if m.route == access.RouteUnauthorized {
		body = m.theme.Forbidden.Render("No tienes permiso para ver esta sección.")
	} else {
		body = m.theme.Hint.Render(m.sectionHint())
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.SectionTitle.Render(title),
		"",
		body,
	)

	return m.theme.Container.Width(width).Height(height).Render(content)
}

func (m *Model) sectionHint() string {
	var allowed []string
	info := m.gateInfo()
	shortcuts := []struct {
		key   string
		route string
	}{
		{"1", access.RouteDashboard},
		{"2", access.RouteVentas},
		{"3", access.RouteCompras},
		{"4", access.RouteProductos},
		{"5", access.RouteClientes},
		{"6", access.RouteProveedores},
		{"7", access.RouteUsuarios},
		{"8", access.RouteReportes},
	}
	for _, s := range shortcuts {
		if access.Evaluate(info, s.route).Verdict == access.VerdictAuthorized {
			allowed = append(allowed, s.key+" "+sectionTitles[s.route])
		}
	}
	allowed = append(allowed, "Ctrl+Q salir")
	return strings.Join(allowed, " · ")
}
