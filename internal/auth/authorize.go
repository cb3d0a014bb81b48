package auth

import "strings"

// AdminPermissions is the fixed set of high-privilege permission names. A
// principal holding any of them is authorized for every action.
var AdminPermissions = []string{
	"administracion.total",
	"total_administracion",
	"sistema.admin",
	"admin_sistema",
}

// PermissionSet builds a lookup set from permission names.
func PermissionSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return set
}

// IsAdmin reports whether the held set intersects AdminPermissions.
func IsAdmin(held map[string]struct{}) bool {
	for _, p := range AdminPermissions {
		if _, ok := held[p]; ok {
			return true
		}
	}
	return false
}

// Authorize decides whether the held permission set grants the requested
// permission. Permission names were seeded under two conventions, dotted
// "modulo.accion" and underscored "accion_modulo"; both spellings of the same
// capability must stay interchangeable for tokens already in circulation.
func Authorize(held map[string]struct{}, requested string, adminOverride bool) bool {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return false
	}
	if _, ok := held[requested]; ok {
		return true
	}
	if alt := altSpelling(requested); alt != "" {
		if _, ok := held[alt]; ok {
			return true
		}
	}
	return adminOverride
}

// altSpelling rewrites "modulo.accion" as "accion_modulo" and vice versa.
// Names that follow neither convention have no alternate spelling.
func altSpelling(perm string) string {
	if module, action, ok := strings.Cut(perm, "."); ok {
		return action + "_" + module
	}
	if action, module, ok := strings.Cut(perm, "_"); ok {
		return module + "." + action
	}
	return ""
}
