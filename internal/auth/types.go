package auth

import "time"

// User is a system account. The orchestrator reads users; it never mutates
// credential material.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RoleID       int64     `json:"rol_id"`
	Active       bool      `json:"activo"`
	Deleted      bool      `json:"-"`
	TOTPEnabled  bool      `json:"totp_habilitado"`
	CreatedAt    time.Time `json:"created_at"`
}

// Role groups permissions.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion,omitempty"`
	Active      bool   `json:"activo"`
}

// Permission is a named capability. Names follow one of two seeded
// conventions: dotted "modulo.accion" or underscored "accion_modulo".
type Permission struct {
	ID     int64  `json:"id"`
	Name   string `json:"nombre"`
	Active bool   `json:"activo"`
}

// Branch is a sucursal/location a user operates from.
type Branch struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
	Code string `json:"codigo,omitempty"`
}

// Attempt outcomes recorded in the access ledger.
const (
	OutcomeSuccess = "exitoso"
	OutcomeFailure = "fallido"
)

// AccessAttempt is one row of the append-only login attempt ledger. Rows are
// never updated or deleted; lockout is derived from aggregates over them.
type AccessAttempt struct {
	ID        string         `json:"id"`
	UserID    int64          `json:"usuario_id"`
	Outcome   string         `json:"resultado"`
	OriginIP  string         `json:"ip_origen"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
