package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Isaac-Coronel-Motas/castro-sub004/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "

	wwwAuthenticate = `Bearer realm="castro"`
)

// SuperAdminRoleID is the highest privilege tier; user deletion requires it.
const SuperAdminRoleID = 1

// ErrSelfDeletion is returned when a user attempts to delete their own
// account. The text is the user-facing message.
var ErrSelfDeletion = errors.New("No puede eliminarse a sí mismo")

var publicPaths = []string{
	"/api/auth/login",
	"/api/auth/refresh",
	"/healthz",
	"/readyz",
	"/metrics",
}

// withAuth authenticates every request outside the public set and stores the
// verified claims in the request context. Authentication failures are 401;
// they never expose why the token was rejected.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			w.Header().Set("WWW-Authenticate", wwwAuthenticate)
			respondError(w, http.StatusUnauthorized, "Token requerido", "UNAUTHORIZED")
			return
		}

		claims, err := a.tokens.VerifyAccessToken(token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", wwwAuthenticate)
			respondError(w, http.StatusUnauthorized, "Token inválido o expirado", "UNAUTHORIZED")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
	})
}

// RequirePermission authorizes the request for one permission. Runs after
// withAuth; a missing principal is a 401, an insufficient one a 403.
func RequirePermission(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				w.Header().Set("WWW-Authenticate", wwwAuthenticate)
				respondError(w, http.StatusUnauthorized, "Token requerido", "UNAUTHORIZED")
				return
			}
			held := auth.PermissionSet(claims.Permissions)
			if !auth.Authorize(held, perm, auth.IsAdmin(held)) {
				w.Header().Set("WWW-Authenticate", wwwAuthenticate)
				respondError(w, http.StatusForbidden, "No tiene permisos para realizar esta acción", "FORBIDDEN")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole restricts a route to one role id.
func RequireRole(roleID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				w.Header().Set("WWW-Authenticate", wwwAuthenticate)
				respondError(w, http.StatusUnauthorized, "Token requerido", "UNAUTHORIZED")
				return
			}
			if claims.RoleID != roleID {
				w.Header().Set("WWW-Authenticate", wwwAuthenticate)
				respondError(w, http.StatusForbidden, "No tiene permisos para realizar esta acción", "FORBIDDEN")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin restricts a route to principals holding any administrative
// permission.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				w.Header().Set("WWW-Authenticate", wwwAuthenticate)
				respondError(w, http.StatusUnauthorized, "Token requerido", "UNAUTHORIZED")
				return
			}
			if !auth.IsAdmin(auth.PermissionSet(claims.Permissions)) {
				w.Header().Set("WWW-Authenticate", wwwAuthenticate)
				respondError(w, http.StatusForbidden, "Requiere privilegios de administrador", "FORBIDDEN")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperAdmin restricts a route to the highest privilege tier.
func RequireSuperAdmin() func(http.Handler) http.Handler {
	return RequireRole(SuperAdminRoleID)
}

// CanModifyUser authorizes changes to the target account: owners may modify
// themselves, otherwise an administrative permission is required.
func CanModifyUser(r *http.Request, targetID int64) (bool, error) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return false, auth.ErrUnauthorized
	}
	if claims.UserID == targetID {
		return true, nil
	}
	if auth.IsAdmin(auth.PermissionSet(claims.Permissions)) {
		return true, nil
	}
	return false, auth.ErrUnauthorized
}

// CanDeleteUser authorizes account deletion. Self-deletion is always
// forbidden, regardless of privilege, and deleting others requires the
// highest tier.
func CanDeleteUser(r *http.Request, targetID int64) (bool, error) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return false, auth.ErrUnauthorized
	}
	if claims.UserID == targetID {
		return false, ErrSelfDeletion
	}
	if claims.RoleID != SuperAdminRoleID {
		return false, auth.ErrUnauthorized
	}
	return true, nil
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
