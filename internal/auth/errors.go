package auth

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("auth: credenciales inválidas")
	ErrAccountLocked      = errors.New("auth: cuenta bloqueada")
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrUnauthorized       = errors.New("auth: unauthorized")
	ErrNotFound           = errors.New("auth: not found")
	ErrLedgerWrite        = errors.New("auth: attempt ledger write failed")
)

// CredentialsError reports a failed credential check along with how many
// attempts remain before the account locks. It matches ErrInvalidCredentials
// under errors.Is.
type CredentialsError struct {
	AttemptsRemaining int
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("auth: credenciales inválidas, %d intentos restantes", e.AttemptsRemaining)
}

func (e *CredentialsError) Is(target error) bool {
	return target == ErrInvalidCredentials
}

// LockedError reports an active lockout window. RemainingMinutes is the
// ceiling of the time left before the account unlocks. It matches
// ErrAccountLocked under errors.Is.
type LockedError struct {
	RemainingMinutes int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("auth: cuenta bloqueada, intente en %d minutos", e.RemainingMinutes)
}

func (e *LockedError) Is(target error) bool {
	return target == ErrAccountLocked
}
