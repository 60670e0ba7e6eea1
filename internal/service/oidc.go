package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/eventbuddy/backend/internal/config"
	"github.com/eventbuddy/backend/internal/db"
	"github.com/eventbuddy/backend/internal/model"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

// OIDCService implements the optional provider login. When no issuer/client
// is configured the service stays disabled and the routes respond 403.
type OIDCService struct {
	enabled  bool
	verifier *oidc.IDTokenVerifier
	oauth    *oauth2.Config
}

func NewOIDCService(ctx context.Context, cfg config.OIDCConfig) (*OIDCService, error) {
	if cfg.Issuer == "" || cfg.ClientID == "" {
		return &OIDCService{}, nil
	}
	if cfg.ClientSecret == "" || cfg.RedirectURL == "" {
		return nil, fmt.Errorf("%w: OIDC_CLIENT_SECRET and OIDC_REDIRECT_URL are required", ErrMisconfigured)
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("%w: OIDC discovery failed: %v", ErrMisconfigured, err)
	}

	return &OIDCService{
		enabled:  true,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func (s *OIDCService) Enabled() bool {
	return s.enabled
}

func (s *OIDCService) LoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// Exchange trades the callback code for a verified identity. Only providers
// that assert a verified email are accepted.
func (s *OIDCService) Exchange(ctx context.Context, code string) (email, name string, err error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", "", ErrInvalidToken
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return "", "", ErrInvalidToken
	}
	idToken, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", "", ErrInvalidToken
	}
	if claims.Email == "" || !claims.EmailVerified {
		return "", "", ErrNotVerified
	}
	return NormalizeEmail(claims.Email), claims.Name, nil
}

// NewState returns a random value for the OIDC state cookie.
func NewState() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// LoginWithOIDC maps a provider-verified email onto a local session, creating
// a verified account on first login. OIDC accounts get an unguessable random
// password; password login still works after a recovery flow.
func (s *AuthService) LoginWithOIDC(ctx context.Context, email, name string) (*Session, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if !db.IsNoRows(err) {
			return nil, err
		}
		user, err = s.createOIDCUser(ctx, email, name)
		if err != nil {
			return nil, err
		}
	}
	if !user.Verified {
		// An unverified local signup must still complete the code flow.
		return nil, ErrNotVerified
	}
	return s.issueSession(ctx, user)
}

func (s *AuthService) createOIDCUser(ctx context.Context, email, name string) (*model.User, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(base64.RawURLEncoding.EncodeToString(raw)), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	return s.store.CreateVerifiedUser(ctx, email, name, string(hash))
}
