package crypto

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer   = "spendtrack"
	tokenAudience = "spendtrack-api"

	// MinSecretLength is the shortest HMAC key NewTokenService accepts.
	MinSecretLength = 32
)

var (
	// ErrInvalidToken is the only error Verify returns, whatever the cause.
	ErrInvalidToken = errors.New("invalid or expired token")

	ErrWeakSecret    = fmt.Errorf("token secret must be at least %d bytes", MinSecretLength)
	ErrInvalidExpiry = errors.New("token expiry must be positive")
)

// Claims represents the JWT claims for spendtrack authentication.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// TokenService issues and verifies HS256 session tokens. It holds its
// signing key for its whole lifetime and is safe for concurrent use.
type TokenService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with secret. The secret is
// copied so later changes to the caller's slice have no effect.
func NewTokenService(secret []byte, expiry time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if expiry <= 0 {
		return nil, ErrInvalidExpiry
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &TokenService{secret: key, expiry: expiry, now: time.Now}, nil
}

// Issue creates a signed token for userID and returns it with its expiry.
func (s *TokenService) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("issuing token: empty user id")
	}

	now := s.now()
	expiresAt := now.Add(s.expiry)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return token, expiresAt, nil
}

// Verify validates tokenString and returns the user id it was issued for.
// Every failure yields ErrInvalidToken; the cause is only logged.
func (s *TokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		slog.Debug("token rejected", "reason", err)
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		slog.Debug("token rejected", "reason", "unexpected claims")
		return "", ErrInvalidToken
	}
	if claims.UserID == "" || claims.UserID != claims.Subject {
		slog.Debug("token rejected", "reason", "subject mismatch")
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
