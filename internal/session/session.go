// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "errors"

// =============================================================================
// ROLES
// =============================================================================

// Role is the backend role identifier carried in the user profile.
type Role uint8

const (
	// RoleAdministrador has full access.
	RoleAdministrador Role = 1

	// RoleGerente manages catalog and reporting.
	RoleGerente Role = 2

	// RoleVendedor operates sales.
	RoleVendedor Role = 3

	// RoleConsulta has read-only access.
	RoleConsulta Role = 4
)

// String returns the display name of the role.
func (r Role) String() string {
	switch r {
	case RoleAdministrador:
		return "Administrador"
	case RoleGerente:
		return "Gerente"
	case RoleVendedor:
		return "Vendedor"
	case RoleConsulta:
		return "Consulta"
	default:
		return "Desconocido"
	}
}

// IsValid reports whether the role is one the backend issues.
func (r Role) IsValid() bool {
	return r >= RoleAdministrador && r <= RoleConsulta
}

// =============================================================================
// USER PROFILE
// =============================================================================

// UserProfile is the account profile returned by the login endpoint and
// persisted alongside the token. JSON tags follow the backend wire format.
type UserProfile struct {
	ID       int      `json:"id"`
	Nombre   string   `json:"nombre"`
	Email    string   `json:"email"`
	Rol      Role     `json:"rol"`
	Permisos []string `json:"permisos"`
}

// ErrInvalidProfile marks a profile that failed structural validation after
// decoding, typically corrupt or tampered persisted state.
var ErrInvalidProfile = errors.New("structurally invalid user profile")

// Validate checks the structural invariants a hydrated profile must satisfy.
// Permisos must have decoded as an array: JSON null or an absent field leaves
// the slice nil, which marks the whole profile invalid. An empty array is
// fine: a user with no capabilities is valid, just unable to reach any
// guarded route.
func (u *UserProfile) Validate() error {
	if u.Permisos == nil {
		return ErrInvalidProfile
	}
	return nil
}

// =============================================================================
// SESSION
// =============================================================================

// Session pairs the opaque bearer token with the authenticated user profile.
// The token is never parsed on this side of the wire.
type Session struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// ErrIncompleteSession marks an attempt to store a session missing either
// the token or a structurally valid profile.
var ErrIncompleteSession = errors.New("session must carry both token and valid profile")

// Validate checks the all-or-nothing invariant before a session is stored.
func (s *Session) Validate() error {
	if s.Token == "" {
		return ErrIncompleteSession
	}
	if err := s.User.Validate(); err != nil {
		return ErrIncompleteSession
	}
	return nil
}
