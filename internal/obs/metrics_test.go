package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                            "/",
		"/metrics":                    "/metrics",
		"/api/auth/login":             "/api/auth/login",
		"/api/auth/login?remember=1":  "/api/auth/login",
		"/api/usuarios/42":            "/api/usuarios/:id",
		"/api/usuarios/42/sucursales": "/api/usuarios/:id",
		"/api/ventas":                 "/api/ventas",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
