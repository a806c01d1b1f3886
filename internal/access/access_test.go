// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import "testing"

// =============================================================================
// PERMISSION SET TESTS
// =============================================================================

func TestNewSet(t *testing.T) {
	s := NewSet([]string{"Ventas", "Dashboard"})

	if !s.Has(PermVentas) {
		t.Error("set should contain Ventas")
	}
	if !s.Has(PermDashboard) {
		t.Error("set should contain Dashboard")
	}
	if s.Has(PermCompras) {
		t.Error("set should not contain Compras")
	}
}

func TestNewSet_Empty(t *testing.T) {
	s := NewSet(nil)
	if len(s) != 0 {
		t.Errorf("empty set has %d entries", len(s))
	}
	if s.Has(PermDashboard) {
		t.Error("empty set should not contain Dashboard")
	}
}

func TestSet_UnknownCapabilityCarried(t *testing.T) {
	// The backend may grant capabilities this build has no route for; they
	// are carried without error and never match a requirement.
	s := NewSet([]string{"Almacenes"})
	if !s.Has(Permission("Almacenes")) {
		t.Error("unknown capability should be carried in the set")
	}
	if got := s.Names(); len(got) != 0 {
		t.Errorf("Names() should omit unknown capabilities, got %v", got)
	}
}

func TestSet_NamesOrder(t *testing.T) {
	s := NewSet([]string{"Ventas", "Dashboard", "Compras"})
	want := []string{"Dashboard", "Ventas", "Compras"}
	got := s.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// =============================================================================
// ROUTE REQUIREMENT TESTS
// =============================================================================

func TestRequirement(t *testing.T) {
	tests := []struct {
		path     string
		want     Permission
		required bool
	}{
		{RouteDashboard, PermDashboard, true},
		{RouteVentas, PermVentas, true},
		{RouteCompras, PermCompras, true},
		{RouteUsuarios, PermUsuarios, true},
		{RoutePerfil, "", false},
		{"/no-such-route", "", false},
	}
	for _, tt := range tests {
		got, ok := Requirement(tt.path)
		if ok != tt.required {
			t.Errorf("Requirement(%q) required = %v, want %v", tt.path, ok, tt.required)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("Requirement(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

// =============================================================================
// LANDING ROUTE TESTS
// =============================================================================

func TestResolveLanding_PreferenceOrder(t *testing.T) {
	tests := []struct {
		name  string
		perms []string
		want  string
	}{
		{"dashboard first", []string{"Ventas", "Dashboard"}, RouteDashboard},
		{"ventas only", []string{"Ventas"}, RouteVentas},
		{"compras before ventas", []string{"Ventas", "Compras"}, RouteCompras},
		{"clientes only", []string{"Clientes"}, RouteClientes},
		{"no listed capability", []string{"Roles"}, RouteUnauthorized},
		{"empty set", nil, RouteUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveLanding(NewSet(tt.perms)); got != tt.want {
				t.Errorf("ResolveLanding(%v) = %q, want %q", tt.perms, got, tt.want)
			}
		})
	}
}

func TestResolveLanding_Deterministic(t *testing.T) {
	perms := NewSet([]string{"Clientes", "Compras", "Dashboard", "Ventas"})
	first := ResolveLanding(perms)
	for i := 0; i < 50; i++ {
		if got := ResolveLanding(perms); got != first {
			t.Fatalf("ResolveLanding not deterministic: %q then %q", first, got)
		}
	}
	if first != RouteDashboard {
		t.Errorf("ResolveLanding = %q, want %q", first, RouteDashboard)
	}
}

// =============================================================================
// GATE TESTS
// =============================================================================

func TestEvaluate_Loading(t *testing.T) {
	d := Evaluate(SessionInfo{Hydrated: false}, RouteDashboard)
	if d.Verdict != VerdictLoading {
		t.Errorf("verdict = %v, want LOADING", d.Verdict)
	}
	if d.RedirectTo != "" {
		t.Errorf("loading must not redirect, got %q", d.RedirectTo)
	}
}

func TestEvaluate_Unauthenticated(t *testing.T) {
	d := Evaluate(SessionInfo{Hydrated: true}, RouteVentas)
	if d.Verdict != VerdictUnauthenticated {
		t.Errorf("verdict = %v, want UNAUTHENTICATED", d.Verdict)
	}
	if d.RedirectTo != RouteLogin {
		t.Errorf("redirect = %q, want %q", d.RedirectTo, RouteLogin)
	}
	if d.Remember != RouteVentas {
		t.Errorf("remember = %q, want %q", d.Remember, RouteVentas)
	}
}

func TestEvaluate_Forbidden(t *testing.T) {
	info := SessionInfo{
		Hydrated:      true,
		Authenticated: true,
		Perms:         NewSet([]string{"Dashboard", "Ventas"}),
	}
	d := Evaluate(info, RouteCompras)
	if d.Verdict != VerdictForbidden {
		t.Errorf("verdict = %v, want FORBIDDEN", d.Verdict)
	}
	if d.RedirectTo != RouteUnauthorized {
		t.Errorf("redirect = %q, want %q", d.RedirectTo, RouteUnauthorized)
	}
}

func TestEvaluate_Authorized(t *testing.T) {
	info := SessionInfo{
		Hydrated:      true,
		Authenticated: true,
		Perms:         NewSet([]string{"Ventas"}),
	}
	d := Evaluate(info, RouteVentas)
	if d.Verdict != VerdictAuthorized {
		t.Errorf("verdict = %v, want AUTHORIZED", d.Verdict)
	}
	if d.RedirectTo != "" {
		t.Errorf("authorized must not redirect, got %q", d.RedirectTo)
	}
}

func TestEvaluate_UnguardedPathNeedsAuthOnly(t *testing.T) {
	info := SessionInfo{
		Hydrated:      true,
		Authenticated: true,
		Perms:         NewSet(nil),
	}
	d := Evaluate(info, RoutePerfil)
	if d.Verdict != VerdictAuthorized {
		t.Errorf("verdict = %v, want AUTHORIZED for unguarded path", d.Verdict)
	}
}

func TestVerdict_String(t *testing.T) {
	tests := []struct {
		v    Verdict
		want string
	}{
		{VerdictLoading, "LOADING"},
		{VerdictUnauthenticated, "UNAUTHENTICATED"},
		{VerdictForbidden, "FORBIDDEN"},
		{VerdictAuthorized, "AUTHORIZED"},
		{Verdict(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("Verdict(%d).String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}
