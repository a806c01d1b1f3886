// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

// =============================================================================
// ROUTES
// =============================================================================

// Route paths. The client navigates between views by these paths; they mirror
// the backend's module layout so audit entries line up with server logs.
const (
	RouteLogin        = "/login"
	RouteRecovery     = "/recuperar"
	RouteUnauthorized = "/unauthorized"

	RouteDashboard   = "/dashboard"
	RouteUsuarios    = "/usuarios"
	RouteRoles       = "/roles"
	RouteProductos   = "/productos"
	RouteCategorias  = "/categorias"
	RouteVentas      = "/ventas"
	RouteCompras     = "/compras"
	RouteClientes    = "/clientes"
	RouteProveedores = "/proveedores"
	RouteReportes    = "/reportes"
	RoutePerfil      = "/perfil"
)

// requirements maps each guarded route to the capability it requires. A route
// absent from this table requires no specific capability beyond being
// authenticated (e.g. RoutePerfil). The table is fixed at compile time; it is
// deliberately not configurable at runtime.
var requirements = map[string]Permission{
	RouteDashboard:   PermDashboard,
	RouteUsuarios:    PermUsuarios,
	RouteRoles:       PermRoles,
	RouteProductos:   PermProductos,
	RouteCategorias:  PermCategorias,
	RouteVentas:      PermVentas,
	RouteCompras:     PermCompras,
	RouteClientes:    PermClientes,
	RouteProveedores: PermProveedores,
	RouteReportes:    PermReportes,
}

// Requirement returns the capability required for path, if any. ok is false
// when the path has no entry, meaning authenticated access is enough.
func Requirement(path string) (Permission, bool) {
	p, ok := requirements[path]
	return p, ok
}

// =============================================================================
// LANDING ROUTE RESOLUTION
// =============================================================================

// landingPreferences is the ordered list consulted after login: the user
// lands on the route paired with the first capability they hold.
var landingPreferences = []struct {
	perm  Permission
	route string
}{
	{PermDashboard, RouteDashboard},
	{PermCompras, RouteCompras},
	{PermVentas, RouteVentas},
	{PermClientes, RouteClientes},
	{PermProductos, RouteProductos},
	{PermUsuarios, RouteUsuarios},
	{PermReportes, RouteReportes},
}

// ResolveLanding returns the post-login landing route for the given
// capability set: the route of the first preference the user holds, or
// RouteUnauthorized when none match. Pure and deterministic.
func ResolveLanding(perms Set) string {
	for _, pref := range landingPreferences {
		if perms.Has(pref.perm) {
			return pref.route
		}
	}
	return RouteUnauthorized
}
