package auth

import "testing"

func TestAuthorizeExactMatch(t *testing.T) {
	held := PermissionSet([]string{"ventas.leer", "crear_compras"})
	if !Authorize(held, "ventas.leer", false) {
		t.Fatalf("expected exact dotted match")
	}
	if !Authorize(held, "crear_compras", false) {
		t.Fatalf("expected exact underscored match")
	}
	if Authorize(held, "ventas.eliminar", false) {
		t.Fatalf("unexpected grant")
	}
}

func TestAuthorizeSpellingEquivalence(t *testing.T) {
	if !Authorize(PermissionSet([]string{"ventas.leer"}), "leer_ventas", false) {
		t.Fatalf("dotted grant should satisfy underscored request")
	}
	if !Authorize(PermissionSet([]string{"leer_ventas"}), "ventas.leer", false) {
		t.Fatalf("underscored grant should satisfy dotted request")
	}
}

func TestAuthorizeAdminOverride(t *testing.T) {
	held := PermissionSet([]string{"administracion.total"})
	if !IsAdmin(held) {
		t.Fatalf("expected admin set to be detected")
	}
	if !Authorize(held, "servicios.cerrar_ticket", IsAdmin(held)) {
		t.Fatalf("admin override should authorize any permission")
	}
	if IsAdmin(PermissionSet([]string{"ventas.leer"})) {
		t.Fatalf("regular permission should not grant admin")
	}
}

func TestAuthorizeDenies(t *testing.T) {
	held := PermissionSet([]string{"ventas.leer"})
	for _, requested := range []string{"", "compras.leer", "leer_compras", "sinconvencion"} {
		if Authorize(held, requested, false) {
			t.Fatalf("unexpected grant for %q", requested)
		}
	}
}

func TestAltSpelling(t *testing.T) {
	cases := map[string]string{
		"ventas.leer":   "leer_ventas",
		"leer_ventas":   "ventas.leer",
		"crear_ordenes": "ordenes.crear",
		"sinconvencion": "",
	}
	for in, want := range cases {
		if got := altSpelling(in); got != want {
			t.Fatalf("altSpelling(%q) = %q, want %q", in, got, want)
		}
	}
}
