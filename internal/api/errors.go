// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
)

// =============================================================================
// NORMALIZED ERROR CATEGORIES
// =============================================================================

// Sentinel errors for the normalized outcome categories. Call sites match
// with errors.Is; the raw transport or server text stays wrapped underneath
// and is never shown to the user.
var (
	// ErrInvalidCredentials indicates the backend rejected the email or
	// password.
	ErrInvalidCredentials = errors.New("credenciales inválidas")

	// ErrInactiveAccount indicates the account exists but is disabled.
	ErrInactiveAccount = errors.New("cuenta inactiva")

	// ErrAccessDenied indicates the backend refused the login for reasons
	// other than bad credentials or an inactive account.
	ErrAccessDenied = errors.New("acceso denegado")

	// ErrTimeout indicates the deadline elapsed before the network call
	// settled.
	ErrTimeout = errors.New("tiempo de espera agotado")

	// ErrConnectivity indicates a transport-level failure: the request
	// never produced an HTTP response.
	ErrConnectivity = errors.New("fallo de conexión")

	// ErrRateLimited indicates the client-side attempt throttle rejected
	// the call before any network activity.
	ErrRateLimited = errors.New("demasiados intentos")

	// ErrResetRejected indicates the backend refused a password-recovery
	// operation (unknown email, expired or spent token).
	ErrResetRejected = errors.New("recuperación rechazada")
)

// APIError carries the status and server-supplied detail of a response that
// fits no specific category. The detail is for logs; user-facing text comes
// from Message.
type APIError struct {
	Status int
	Code   string
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error [%s] (HTTP %d): %s", e.Code, e.Status, e.Detail)
	}
	return fmt.Sprintf("api error (HTTP %d): %s", e.Status, e.Detail)
}

// =============================================================================
// USER-FACING MESSAGES
// =============================================================================

// Notice is the blocking message shown for a failed operation: a
// category-specific title and a human-readable body. No raw transport text.
type Notice struct {
	Title string
	Body  string
}

// Message maps a normalized error to its user-facing notice.
func Message(err error) Notice {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return Notice{"Credenciales inválidas", "El correo o la contraseña no son correctos."}
	case errors.Is(err, ErrInactiveAccount):
		return Notice{"Cuenta inactiva", "Tu cuenta está deshabilitada. Contacta al administrador."}
	case errors.Is(err, ErrAccessDenied):
		return Notice{"Acceso denegado", "No tienes autorización para iniciar sesión."}
	case errors.Is(err, ErrTimeout):
		return Notice{"Tiempo agotado", "El servidor tardó demasiado en responder. Intenta de nuevo."}
	case errors.Is(err, ErrConnectivity):
		return Notice{"Sin conexión", "No se pudo contactar al servidor. Revisa tu conexión."}
	case errors.Is(err, ErrRateLimited):
		return Notice{"Demasiados intentos", "Espera unos segundos antes de volver a intentar."}
	case errors.Is(err, ErrResetRejected):
		return Notice{"Recuperación rechazada", "No fue posible procesar la recuperación. Verifica los datos."}
	default:
		return Notice{"Error inesperado", "Ocurrió un error inesperado. Intenta de nuevo."}
	}
}

// Kind returns the short category name used for history records and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrInactiveAccount):
		return "inactive_account"
	case errors.Is(err, ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrConnectivity):
		return "connectivity"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrResetRejected):
		return "reset_rejected"
	default:
		return "unknown"
	}
}
