package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Isaac-Coronel-Motas/castro-sub004/internal/audit"
	"github.com/Isaac-Coronel-Motas/castro-sub004/internal/auth"
	"github.com/Isaac-Coronel-Motas/castro-sub004/internal/obs"
)

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// userPayload is the profile returned to clients. Credential material never
// appears here.
type userPayload struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	RolID       int64  `json:"rol_id"`
	TOTPEnabled bool   `json:"totp_habilitado"`
}

type loginData struct {
	Usuario      userPayload   `json:"usuario"`
	Token        string        `json:"token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"`
	Permisos     []string      `json:"permisos"`
	Sucursales   []auth.Branch `json:"sucursales"`
}

type refreshData struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expires_in"`
	Permisos  []string `json:"permisos"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Solicitud inválida", "BAD_REQUEST")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Usuario y contraseña son requeridos", "BAD_REQUEST")
		return
	}

	result, err := a.auth.Login(r.Context(), auth.LoginRequest{
		Identifier: req.Username,
		Password:   req.Password,
		RememberMe: req.RememberMe,
		OriginIP:   clientIP(r),
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		a.renderLoginError(w, r, req.Username, err)
		return
	}

	obs.ObserveLogin(auth.OutcomeSuccess)
	obs.ObserveTokenIssued("access")
	obs.ObserveTokenIssued("refresh")
	_ = audit.LogEvent(r.Context(), "auth.login.exitoso", map[string]any{
		"username": req.Username,
		"ip":       clientIP(r),
	})

	respondSuccess(w, "Inicio de sesión exitoso", loginData{
		Usuario: userPayload{
			ID:          result.User.ID,
			Username:    result.User.Username,
			Email:       result.User.Email,
			RolID:       result.User.RoleID,
			TOTPEnabled: result.User.TOTPEnabled,
		},
		Token:        result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		Permisos:     result.Permissions,
		Sucursales:   result.Branches,
	})
}

// renderLoginError maps orchestrator failures onto the error taxonomy:
// 401 for bad credentials, 423 for an active lockout, 500 otherwise. The 401
// body depends only on the remaining-attempt count, so a nonexistent
// username and a wrong password are indistinguishable to the caller.
func (a *API) renderLoginError(w http.ResponseWriter, r *http.Request, username string, err error) {
	var locked *auth.LockedError
	if errors.As(err, &locked) {
		obs.ObserveLogin("bloqueado")
		obs.ObserveLockout()
		_ = audit.LogEvent(r.Context(), "auth.login.bloqueado", map[string]any{
			"username":          username,
			"ip":                clientIP(r),
			"minutos_restantes": locked.RemainingMinutes,
		})
		msg := fmt.Sprintf("Cuenta bloqueada por múltiples intentos fallidos. Intente nuevamente en %d minutos", locked.RemainingMinutes)
		respondError(w, http.StatusLocked, msg, "LOCKED")
		return
	}

	var credentials *auth.CredentialsError
	if errors.As(err, &credentials) {
		obs.ObserveLogin(auth.OutcomeFailure)
		_ = audit.LogEvent(r.Context(), "auth.login.fallido", map[string]any{
			"username": username,
			"ip":       clientIP(r),
		})
		msg := fmt.Sprintf("Credenciales inválidas. Intentos restantes: %d", credentials.AttemptsRemaining)
		respondError(w, http.StatusUnauthorized, msg, "UNAUTHORIZED")
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login.error", map[string]any{
		"username": username,
		"ip":       clientIP(r),
	})
	respondError(w, http.StatusInternalServerError, "Error de autenticación", "INTERNAL")
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		respondError(w, http.StatusBadRequest, "Token de refresco requerido", "BAD_REQUEST")
		return
	}

	result, err := a.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			respondError(w, http.StatusUnauthorized, "Token inválido o expirado", "UNAUTHORIZED")
			return
		}
		respondError(w, http.StatusInternalServerError, "Error de autenticación", "INTERNAL")
		return
	}

	obs.ObserveTokenIssued("access")
	_ = audit.LogEvent(r.Context(), "auth.token.refrescado", map[string]any{
		"user_id": result.User.ID,
	})

	respondSuccess(w, "Token renovado", refreshData{
		Token:     result.AccessToken,
		ExpiresIn: result.ExpiresIn,
		Permisos:  result.Permissions,
	})
}

func (a *API) handlePerfil(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		w.Header().Set("WWW-Authenticate", wwwAuthenticate)
		respondError(w, http.StatusUnauthorized, "Token requerido", "UNAUTHORIZED")
		return
	}

	respondSuccess(w, "Perfil", map[string]any{
		"usuario": userPayload{
			ID:       claims.UserID,
			Username: claims.Username,
			Email:    claims.Email,
			RolID:    claims.RoleID,
		},
		"permisos": claims.Permissions,
	})
}
