// Package auth implements issuance and verification of the signed access and
// refresh tokens carried in HTTP cookies.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenMissing indicates no token was supplied at all.
	ErrTokenMissing = errors.New("token missing")
	// ErrTokenInvalid indicates a token that failed signature, expiry,
	// type or revocation checks.
	ErrTokenInvalid = errors.New("invalid token")
)

const (
	// TypeAccess marks short-lived tokens authorizing API requests.
	TypeAccess = "access"
	// TypeRefresh marks long-lived tokens used solely to obtain new access tokens.
	TypeRefresh = "refresh"
)

// TokenStore is the revocation list used when refresh rotation is enabled.
type TokenStore interface {
	// RevokeToken records a token id as no longer valid until expiresAt.
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	// IsTokenRevoked reports whether a token id has been revoked.
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Claims is the JWT payload for both token types.
type Claims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed tokens.
type TokenService struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	rotate     bool
	store      TokenStore

	// now is replaceable in tests.
	now func() time.Time
}

// NewTokenService constructs a TokenService. store may be nil only when
// rotation is disabled.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, rotate bool, store TokenStore) *TokenService {
	return &TokenService{
		secretKey:  []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		rotate:     rotate,
		store:      store,
		now:        time.Now,
	}
}

// AccessTTL returns the configured access token lifetime.
func (s *TokenService) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenService) generate(userID, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// GeneratePair issues a fresh access and refresh token for the user.
func (s *TokenService) GeneratePair(userID string) (access, refresh string, err error) {
	access, err = s.generate(userID, TypeAccess, s.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.generate(userID, TypeRefresh, s.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (s *TokenService) parse(tokenStr, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != wantType || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ValidateAccess verifies an access token and returns the owning user id.
func (s *TokenService) ValidateAccess(tokenStr string) (string, error) {
	claims, err := s.parse(tokenStr, TypeAccess)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// Refresh verifies a refresh token and issues a new access token. With
// rotation enabled it also issues a replacement refresh token and revokes the
// presented one, so the old refresh token no longer validates afterward.
// The returned refresh token is empty when rotation is disabled.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (access, newRefresh string, err error) {
	if refreshToken == "" {
		return "", "", ErrTokenMissing
	}

	claims, err := s.parse(refreshToken, TypeRefresh)
	if err != nil {
		return "", "", err
	}

	if s.store != nil {
		revoked, err := s.store.IsTokenRevoked(ctx, claims.ID)
		if err != nil {
			return "", "", err
		}
		if revoked {
			return "", "", ErrTokenInvalid
		}
	}

	access, err = s.generate(claims.UserID, TypeAccess, s.accessTTL)
	if err != nil {
		return "", "", err
	}

	if !s.rotate {
		return access, "", nil
	}

	newRefresh, err = s.generate(claims.UserID, TypeRefresh, s.refreshTTL)
	if err != nil {
		return "", "", err
	}
	if s.store != nil {
		if err := s.store.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return "", "", err
		}
	}
	return access, newRefresh, nil
}
