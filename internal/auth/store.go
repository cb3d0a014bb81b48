package auth

import (
	"context"
	"time"
)

// Store describes the persistence contracts the auth subsystem consumes. SQL
// and schema belong to the implementation; the orchestrator only depends on
// these operations.
type Store interface {
	// FindActiveUser resolves an active, non-deleted user by username or
	// email. Returns ErrNotFound when no such user exists.
	FindActiveUser(ctx context.Context, identifier string) (*User, error)

	// FindUser resolves a user by id regardless of how they authenticated.
	// Returns ErrNotFound when missing.
	FindUser(ctx context.Context, id int64) (*User, error)

	// RolePermissions returns the names of active permissions granted
	// through the role. A permission is effective only if both the
	// role-permission link and the permission's active flag hold.
	RolePermissions(ctx context.Context, roleID int64) ([]string, error)

	// UserBranches returns the sucursales associated with the user.
	UserBranches(ctx context.Context, userID int64) ([]Branch, error)

	// FailedAttempts counts ledger rows with outcome "fallido" for the user
	// within the trailing window and reports the most recent failure time.
	FailedAttempts(ctx context.Context, userID int64, window time.Duration) (int, time.Time, error)

	// RecordAttempt appends one attempt row. Implementations must surface
	// write errors; a silently dropped failure row would defeat the lockout.
	RecordAttempt(ctx context.Context, attempt *AccessAttempt) error
}
