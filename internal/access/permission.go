// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

// =============================================================================
// CAPABILITIES
// =============================================================================

// Permission is a named capability granted to a user by the backend. The
// backend stores capability names as free-form strings; on this side they are
// a closed enumeration so that a typo in a route table is a compile-time
// constant mismatch instead of a silent deny.
type Permission string

const (
	// PermDashboard grants access to the dashboard view.
	PermDashboard Permission = "Dashboard"

	// PermUsuarios grants access to user administration.
	PermUsuarios Permission = "Usuarios"

	// PermRoles grants access to role administration.
	PermRoles Permission = "Roles"

	// PermProductos grants access to the product catalog.
	PermProductos Permission = "Productos"

	// PermCategorias grants access to category administration.
	PermCategorias Permission = "Categorias"

	// PermVentas grants access to sales.
	PermVentas Permission = "Ventas"

	// PermCompras grants access to purchases.
	PermCompras Permission = "Compras"

	// PermClientes grants access to the customer directory.
	PermClientes Permission = "Clientes"

	// PermProveedores grants access to the supplier directory.
	PermProveedores Permission = "Proveedores"

	// PermReportes grants access to reporting.
	PermReportes Permission = "Reportes"
)

// AllPermissions lists every capability the client knows about, in display
// order.
var AllPermissions = []Permission{
	PermDashboard,
	PermUsuarios,
	PermRoles,
	PermProductos,
	PermCategorias,
	PermVentas,
	PermCompras,
	PermClientes,
	PermProveedores,
	PermReportes,
}

// =============================================================================
// PERMISSION SET
// =============================================================================

// Set is an order-irrelevant collection of capabilities, built from the
// `permisos` array of a user profile. Unknown capability names are carried
// without error: the backend may grant capabilities a given client build has
// no route for, and they simply never match a requirement.
type Set map[Permission]struct{}

// NewSet builds a Set from the raw capability names of a user profile.
func NewSet(names []string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[Permission(n)] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the given capability.
func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Names returns the capability names in AllPermissions order. Unknown names
// are omitted; this is a display helper, not a round-trip.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for _, p := range AllPermissions {
		if s.Has(p) {
			names = append(names, string(p))
		}
	}
	return names
}
