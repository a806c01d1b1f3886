// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package validate implements the client-side field rules applied to login
// and password-recovery input. Validation failures are reported per field
// and never reach the network layer.
package validate

import (
	"strings"
	"unicode"

	"github.com/jeranaias/comercia-tui/internal/util"
)

// =============================================================================
// FIELD ERRORS
// =============================================================================

// FieldErrors maps a field name to every rule it violated. All violations
// are reported simultaneously so the user fixes the input in one pass.
type FieldErrors map[string][]string

// Empty reports whether no rule was violated.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// Add appends a violation message for a field.
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Merge folds other into e.
func (e FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		e[field] = append(e[field], msgs...)
	}
}

// =============================================================================
// EMAIL
// =============================================================================

const maxEmailLength = 254

// emailLocalChars are the characters accepted in the local part beyond
// letters and digits.
const emailLocalChars = "._%+-"

// Email checks the address shape before a request is spent on it. The rule
// is deliberately simple (one @, a dot somewhere in the domain, no spaces)
// because the backend is the authority; this only catches typos.
func Email(s string) FieldErrors {
	errs := make(FieldErrors)

	if s == "" {
		errs.Add("email", "El correo es obligatorio")
		return errs
	}
	if len(s) > maxEmailLength {
		errs.Add("email", "El correo es demasiado largo")
	}

	at := strings.Index(s, "@")
	if at <= 0 || at != strings.LastIndex(s, "@") || at == len(s)-1 {
		errs.Add("email", "El formato del correo no es válido")
		return errs
	}

	local, domain := s[:at], s[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		errs.Add("email", "El formato del correo no es válido")
		return errs
	}

	for _, r := range local {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune(emailLocalChars, r) {
			errs.Add("email", "El correo contiene caracteres no permitidos")
			return errs
		}
	}
	for _, r := range domain {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '-' {
			errs.Add("email", "El correo contiene caracteres no permitidos")
			return errs
		}
	}

	return errs
}

// =============================================================================
// PASSWORD
// =============================================================================

const minPasswordLength = 8

// Password checks every strength rule and reports all failures at once, so
// the form can show the full list instead of one complaint per submit.
func Password(s string) FieldErrors {
	errs := make(FieldErrors)

	if util.RuneLen(s) < minPasswordLength {
		errs.Add("password", "Debe tener al menos 8 caracteres")
	}

	var hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	if !hasUpper {
		errs.Add("password", "Debe incluir al menos una mayúscula")
	}
	if !hasDigit {
		errs.Add("password", "Debe incluir al menos un número")
	}
	if !hasSymbol {
		errs.Add("password", "Debe incluir al menos un símbolo")
	}

	return errs
}

// Credentials validates a login form in one pass. The password rule here is
// presence only: existing accounts may predate the strength rules, and the
// backend is the one rejecting bad credentials. Strength rules apply when a
// password is being set (see Password).
func Credentials(email, password string) FieldErrors {
	errs := Email(email)
	if password == "" {
		errs.Add("password", "La contraseña es obligatoria")
	}
	return errs
}

// NewPassword validates a password being set during recovery.
func NewPassword(password string) FieldErrors {
	return Password(password)
}
