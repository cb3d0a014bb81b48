package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Lockout policy. These are fixed constants, not per-request configuration:
// the security policy must stay uniform across instances.
const (
	FailureThreshold = 3
	LockoutWindow    = time.Hour
	LockoutDuration  = 15 * time.Minute
)

// Service coordinates user lookup, lockout checks, credential verification,
// ledger updates and token issuance. It holds no per-user state; the attempt
// ledger is the single source of truth, so lockout survives restarts and
// works across horizontally scaled instances sharing the store.
type Service struct {
	store   Store
	tokens  *TokenService
	now     func() time.Time
	compare func(hash, password string) bool
}

// Option configures Service.
type Option func(*Service)

// WithClock overrides the time source (tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the login orchestrator.
func NewService(store Store, tokens *TokenService, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: store is required")
	}
	if tokens == nil {
		return nil, errors.New("auth: token service is required")
	}
	s := &Service{store: store, tokens: tokens, now: time.Now, compare: VerifyPassword}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LoginRequest is one credential submission.
type LoginRequest struct {
	Identifier string
	Password   string
	RememberMe bool
	OriginIP   string
	UserAgent  string
}

// LoginResult is the successful outcome of a login: tokens, the permission
// snapshot baked into the access token, and the user profile minus
// credential material.
type LoginResult struct {
	User         *User
	Permissions  []string
	Branches     []Branch
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// RefreshResult carries a fresh access token with permissions re-derived
// from the store at refresh time.
type RefreshResult struct {
	User        *User
	Permissions []string
	AccessToken string
	ExpiresIn   int64
}

// Login runs the full authentication flow. Every branch is terminal; a
// failed attempt produces exactly one ledger row and lockout is recomputed
// from ledger history on each call.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.store.FindActiveUser(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Indistinguishable from a wrong password on a fresh
			// account: same error detail, and the same bcrypt work
			// so response timing leaks nothing either. No ledger
			// row exists to decrement.
			s.compare(dummyHash, req.Password)
			return nil, &CredentialsError{AttemptsRemaining: FailureThreshold - 1}
		}
		return nil, err
	}

	failures, lastFailure, err := s.store.FailedAttempts(ctx, user.ID, LockoutWindow)
	if err != nil {
		return nil, err
	}
	if failures >= FailureThreshold {
		if since := s.now().Sub(lastFailure); since < LockoutDuration {
			return nil, &LockedError{RemainingMinutes: remainingMinutes(LockoutDuration - since)}
		}
	}

	if !s.compare(user.PasswordHash, req.Password) {
		if err := s.record(ctx, user.ID, OutcomeFailure, req, nil); err != nil {
			return nil, err
		}
		failures++
		if failures >= FailureThreshold {
			return nil, &LockedError{RemainingMinutes: remainingMinutes(LockoutDuration)}
		}
		return nil, &CredentialsError{AttemptsRemaining: FailureThreshold - failures}
	}

	if err := s.record(ctx, user.ID, OutcomeSuccess, req, map[string]any{"remember_me": req.RememberMe}); err != nil {
		return nil, err
	}

	permissions, err := s.store.RolePermissions(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	branches, err := s.store.UserBranches(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	ttl := DefaultAccessTTL
	if req.RememberMe {
		ttl = RememberMeAccessTTL
	}
	accessToken, _, err := s.tokens.IssueAccessToken(Claims{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		RoleID:      user.RoleID,
		Permissions: permissions,
	}, ttl)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := s.tokens.IssueRefreshToken(user.ID, DefaultRefreshTTL)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         user,
		Permissions:  permissions,
		Branches:     branches,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(ttl.Seconds()),
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// permission snapshot is always re-derived from the store here, never copied
// from the old token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.Active || user.Deleted {
		return nil, ErrInvalidToken
	}
	permissions, err := s.store.RolePermissions(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	accessToken, _, err := s.tokens.IssueAccessToken(Claims{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		RoleID:      user.RoleID,
		Permissions: permissions,
	}, DefaultAccessTTL)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{
		User:        user,
		Permissions: permissions,
		AccessToken: accessToken,
		ExpiresIn:   int64(DefaultAccessTTL.Seconds()),
	}, nil
}

// record appends one ledger row. A write failure is fatal to the enclosing
// login: an unrecorded failed attempt would undermine the lockout.
func (s *Service) record(ctx context.Context, userID int64, outcome string, req LoginRequest, extra map[string]any) error {
	now := s.now().UTC()
	metadata := map[string]any{
		"user_agent": req.UserAgent,
		"timestamp":  now.Format(time.RFC3339),
	}
	for k, v := range extra {
		metadata[k] = v
	}
	attempt := &AccessAttempt{
		UserID:    userID,
		Outcome:   outcome,
		OriginIP:  req.OriginIP,
		Metadata:  metadata,
		CreatedAt: now,
	}
	if err := s.store.RecordAttempt(ctx, attempt); err != nil {
		return fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}
	return nil
}

func remainingMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Minute - 1) / time.Minute)
}
