package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token lifetimes. Access TTL is caller-selectable (remember-me sessions get
// the long variant); the refresh TTL is fixed.
const (
	DefaultAccessTTL    = time.Hour
	RememberMeAccessTTL = 7 * 24 * time.Hour
	DefaultRefreshTTL   = 7 * 24 * time.Hour
)

const defaultIssuer = "castro-api"

// Claims carries the identity and permission snapshot embedded into access
// tokens. The snapshot is point-in-time: revoking a role permission does not
// invalidate tokens already issued.
type Claims struct {
	UserID      int64    `json:"user_id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	RoleID      int64    `json:"rol_id"`
	Permissions []string `json:"permisos"`
	jwt.RegisteredClaims
}

// RefreshClaims is deliberately minimal: refreshing re-derives permissions
// from the store instead of trusting a stale snapshot.
type RefreshClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 tokens. Access and refresh tokens
// are signed with independent secrets so a leak of one cannot mint the other.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	now           func() time.Time
}

// TokenOption configures TokenService.
type TokenOption func(*TokenService)

// WithTokenIssuer overrides the issuer claim.
func WithTokenIssuer(issuer string) TokenOption {
	return func(s *TokenService) {
		if issuer != "" {
			s.issuer = issuer
		}
	}
}

// WithTokenClock overrides the time source (tests).
func WithTokenClock(fn func() time.Time) TokenOption {
	return func(s *TokenService) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewTokenService constructs a TokenService. Both secrets are required and
// must differ.
func NewTokenService(accessSecret, refreshSecret string, opts ...TokenOption) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("auth: both signing secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("auth: access and refresh secrets must differ")
	}
	s := &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        defaultIssuer,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IssueAccessToken signs claims plus issued-at/expiry with the access secret.
func (s *TokenService) IssueAccessToken(claims Claims, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, errors.New("auth: ttl must be greater than zero")
	}
	now := s.now().UTC()
	exp := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   strconv.FormatInt(claims.UserID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueRefreshToken signs only the user id with the refresh secret.
func (s *TokenService) IssueRefreshToken(userID int64, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, errors.New("auth: ttl must be greater than zero")
	}
	now := s.now().UTC()
	exp := now.Add(ttl)
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyAccessToken checks signature and expiry. Any malformed, expired or
// mis-signed token yields ErrInvalidToken; attacker-supplied input never
// panics.
func (s *TokenService) VerifyAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := s.verify(tokenString, claims, s.accessSecret); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken is symmetric to VerifyAccessToken, using the refresh
// secret.
func (s *TokenService) VerifyRefreshToken(tokenString string) (int64, error) {
	claims := &RefreshClaims{}
	if err := s.verify(tokenString, claims, s.refreshSecret); err != nil {
		return 0, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

func (s *TokenService) verify(tokenString string, claims jwt.Claims, secret []byte) error {
	if tokenString == "" {
		return ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
