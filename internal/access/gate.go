// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

// =============================================================================
// PERMISSION GATE
// =============================================================================

// Verdict is the outcome of evaluating a navigation target.
type Verdict int

const (
	// VerdictLoading means session hydration has not finished. The caller
	// renders a neutral placeholder and takes no redirect action.
	VerdictLoading Verdict = iota

	// VerdictUnauthenticated means hydration finished and no user is
	// present. The caller redirects to the login route, remembering the
	// attempted path.
	VerdictUnauthenticated

	// VerdictForbidden means a user is present but lacks the capability
	// the path requires. The caller redirects to the unauthorized route.
	VerdictForbidden

	// VerdictAuthorized means the guarded content may render.
	VerdictAuthorized
)

// String returns a string representation of the Verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictLoading:
		return "LOADING"
	case VerdictUnauthenticated:
		return "UNAUTHENTICATED"
	case VerdictForbidden:
		return "FORBIDDEN"
	case VerdictAuthorized:
		return "AUTHORIZED"
	default:
		return "UNKNOWN"
	}
}

// SessionInfo is the gate's view of the session store. It is a plain value so
// the gate stays a pure function and tests can drive it with synthetic state.
type SessionInfo struct {
	// Hydrated is true once the persisted session has been loaded (or
	// discarded) at startup.
	Hydrated bool

	// Authenticated is true when a full session is present.
	Authenticated bool

	// Perms is the authenticated user's capability set. Ignored unless
	// Authenticated is true.
	Perms Set
}

// Decision is the result of a gate evaluation.
type Decision struct {
	Verdict Verdict

	// RedirectTo is the route to navigate to instead of the requested
	// path. Empty unless the verdict demands a redirect.
	RedirectTo string

	// Remember is the attempted path to return to after login. Set only
	// for VerdictUnauthenticated.
	Remember string
}

// Evaluate decides whether the given path may render for the given session
// state. The requirement lookup is a pure function of the path against the
// static route table; a path without an entry requires authentication only.
func Evaluate(info SessionInfo, path string) Decision {
	if !info.Hydrated {
		return Decision{Verdict: VerdictLoading}
	}

	if !info.Authenticated {
		return Decision{
			Verdict:    VerdictUnauthenticated,
			RedirectTo: RouteLogin,
			Remember:   path,
		}
	}

	required, ok := Requirement(path)
	if ok && !info.Perms.Has(required) {
		return Decision{
			Verdict:    VerdictForbidden,
			RedirectTo: RouteUnauthorized,
		}
	}

	return Decision{Verdict: VerdictAuthorized}
}
