package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/eventbuddy/backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Each token kind carries its use in the claims, so a long-lived refresh
// token can never stand in for an access token and vice versa.
const (
	useAccess    = "access"
	useAutoLogin = "auto_login"
	useRefresh   = "refresh"
)

type tokenClaims struct {
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the HS256 bearer tokens used across the
// auth flows: short-lived access tokens, one-shot auto-login tokens, and the
// long-lived refresh tokens stored on the user row. It is stateless; the
// signing secret is injected once at construction.
type TokenService struct {
	secret       []byte
	accessTTL    time.Duration
	autoLoginTTL time.Duration
	refreshTTL   time.Duration
}

func NewTokenService(secret string, accessTTL, autoLoginTTL, refreshTTL time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}
	return &TokenService{
		secret:       []byte(secret),
		accessTTL:    accessTTL,
		autoLoginTTL: autoLoginTTL,
		refreshTTL:   refreshTTL,
	}, nil
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenService) IssueAccessToken(subjectEmail string) (string, error) {
	return s.issue(subjectEmail, s.accessTTL, useAccess)
}

// IssueAutoLoginToken mints a one-shot login capability for a verified
// identity, typically embedded in an email link.
func (s *TokenService) IssueAutoLoginToken(subjectEmail string) (string, error) {
	return s.issue(subjectEmail, s.autoLoginTTL, useAutoLogin)
}

func (s *TokenService) IssueRefreshToken(subjectEmail string) (string, error) {
	return s.issue(subjectEmail, s.refreshTTL, useRefresh)
}

// issue always sets a fresh jti, so two tokens minted in the same second for
// the same subject are still distinct values. Rotation depends on that:
// overwriting the stored refresh token must actually change it.
func (s *TokenService) issue(subjectEmail string, ttl time.Duration, use string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectEmail,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMisconfigured, err)
	}
	return signed, nil
}

// ExtractAccessSubject verifies an access token and returns its subject email.
func (s *TokenService) ExtractAccessSubject(signedToken string) (string, error) {
	return s.extractSubject(signedToken, useAccess)
}

// ExtractAutoLoginSubject verifies a one-shot auto-login token.
func (s *TokenService) ExtractAutoLoginSubject(signedToken string) (string, error) {
	return s.extractSubject(signedToken, useAutoLogin)
}

// ExtractRefreshSubject verifies a refresh token.
func (s *TokenService) ExtractRefreshSubject(signedToken string) (string, error) {
	return s.extractSubject(signedToken, useRefresh)
}

// extractSubject verifies signature, expiry, and token use, and returns the
// subject email. Any malformed, tampered, expired, or wrong-use token yields
// ErrInvalidToken.
func (s *TokenService) extractSubject(signedToken, use string) (string, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(signedToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.TokenUse != use || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// IsValid re-verifies the access token and cross-checks its subject against
// the user's current email, so a token issued before an email change dies
// with it.
func (s *TokenService) IsValid(signedToken string, user *model.User) bool {
	subject, err := s.ExtractAccessSubject(signedToken)
	if err != nil {
		return false
	}
	return user != nil && subject == user.Email
}
