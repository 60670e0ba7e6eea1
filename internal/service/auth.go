package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/eventbuddy/backend/internal/config"
	"github.com/eventbuddy/backend/internal/db"
	"github.com/eventbuddy/backend/internal/model"
	"github.com/eventbuddy/backend/internal/template"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

// UserStore is the persistence collaborator of the auth flows. *db.Postgres
// implements it; tests substitute an in-memory fake.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByRefreshToken(ctx context.Context, token string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, email, name, passwordHash, code string, codeExpiresAt time.Time) (*model.User, error)
	CreateVerifiedUser(ctx context.Context, email, name, passwordHash string) (*model.User, error)
	SetVerificationCode(ctx context.Context, email, code string, expiresAt time.Time) error
	ConsumeVerificationCode(ctx context.Context, email, code string) (bool, error)
	SetRecoveryCode(ctx context.Context, email, code string, expiresAt time.Time) error
	ConsumeRecoveryCode(ctx context.Context, email, code, newPasswordHash string) (bool, error)
	SetRefreshToken(ctx context.Context, email, token string, issuedAt time.Time) error
	ClearRefreshToken(ctx context.Context, email string) error
}

// Session bundles what a successful login-like operation returns.
type Session struct {
	User         *model.User
	AccessToken  string
	RefreshToken string
	// AutoLoginToken is set only by VerifyUser, for the email link.
	AutoLoginToken string
}

// AuthService orchestrates signup, login, verification, refresh, auto-login,
// logout, and recovery. All durable credential state lives in the store; the
// service itself holds no per-user state between requests.
type AuthService struct {
	store   UserStore
	tokens  *TokenService
	codes   *CodeGenerator
	mailer  Mailer
	baseURL string
	now     func() time.Time
}

func NewAuthService(store UserStore, tokens *TokenService, codes *CodeGenerator, mailer Mailer, baseURL string) *AuthService {
	return &AuthService{
		store:   store,
		tokens:  tokens,
		codes:   codes,
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// NewAuthServiceFromConfig parses the duration knobs and wires the token and
// code services. Any bad value fails startup with ErrMisconfigured.
func NewAuthServiceFromConfig(store UserStore, mailer Mailer, cfg config.AuthConfig, baseURL string) (*AuthService, error) {
	accessTTL, err := parseTTL("JWT_ACCESS_TTL", cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	autoLoginTTL, err := parseTTL("JWT_AUTO_LOGIN_TTL", cfg.AutoLoginTTL)
	if err != nil {
		return nil, err
	}
	refreshTTL, err := parseTTL("JWT_REFRESH_TTL", cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	verificationTTL, err := parseTTL("VERIFICATION_CODE_TTL", cfg.VerificationTTL)
	if err != nil {
		return nil, err
	}
	recoveryTTL, err := parseTTL("RECOVERY_CODE_TTL", cfg.RecoveryTTL)
	if err != nil {
		return nil, err
	}

	tokens, err := NewTokenService(cfg.JWTSecret, accessTTL, autoLoginTTL, refreshTTL)
	if err != nil {
		return nil, err
	}
	codes := NewCodeGenerator(verificationTTL, recoveryTTL)

	return NewAuthService(store, tokens, codes, mailer, baseURL), nil
}

func parseTTL(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", ErrMisconfigured, name)
	}
	return d, nil
}

func (s *AuthService) Tokens() *TokenService { return s.tokens }

// Signup creates an unverified credential with a pending verification code and
// dispatches the confirmation mail. A failed dispatch is reported through
// ErrDelivery alongside the created user; the account is not rolled back.
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (*model.User, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateIdentity
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	code, expiresAt, err := s.codes.Generate(PurposeEmailVerification)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, email, strings.TrimSpace(name), string(hash), code, expiresAt)
	if err != nil {
		return nil, err
	}

	if err := s.sendVerificationMail(user, code, expiresAt); err != nil {
		return user, err
	}
	return user, nil
}

// Authenticate checks the password and, on success, rotates the refresh token
// and issues an access token. Any previously active session is implicitly
// invalidated by the rotation.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.Verified {
		return nil, ErrNotVerified
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return s.issueSession(ctx, user)
}

// VerifyUser consumes the pending verification code, flips the credential to
// verified, and logs the user in. The response also carries a one-shot
// auto-login token for the email link.
func (s *AuthService) VerifyUser(ctx context.Context, email, code string) (*Session, error) {
	email = NormalizeEmail(email)
	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.HasPendingVerificationCode() {
		return nil, ErrNoCodePending
	}
	// Expiry is inclusive: an attempt at exactly issuance+window is too late.
	if !s.now().Before(*user.VerificationExpiresAt) {
		return nil, ErrCodeExpired
	}
	if *user.VerificationCode != code {
		return nil, ErrCodeMismatch
	}

	ok, err := s.store.ConsumeVerificationCode(ctx, email, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a concurrent consume, or the slot was superseded in between.
		return nil, ErrNoCodePending
	}
	user.Verified = true
	user.VerificationCode = nil
	user.VerificationExpiresAt = nil

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	autoLogin, err := s.tokens.IssueAutoLoginToken(email)
	if err != nil {
		return nil, err
	}
	session.AutoLoginToken = autoLogin
	return session, nil
}

// ProcessAutoLogin exchanges a one-shot signed token for a full session,
// equivalent to authenticating without a password.
func (s *AuthService) ProcessAutoLogin(ctx context.Context, autoLoginToken string) (*Session, error) {
	email, err := s.tokens.ExtractAutoLoginSubject(autoLoginToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.Verified {
		return nil, ErrNotVerified
	}
	return s.issueSession(ctx, user)
}

// RefreshToken issues a fresh access token against the stored refresh record.
// The refresh value is echoed back unchanged: this endpoint deliberately does
// not rotate it.
func (s *AuthService) RefreshToken(ctx context.Context, presented string) (*Session, error) {
	if strings.TrimSpace(presented) == "" {
		return nil, ErrMissingToken
	}
	// Signature/expiry first, then the value must resolve to its single owner.
	if _, err := s.tokens.ExtractRefreshSubject(presented); err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.store.FindByRefreshToken(ctx, presented)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	access, err := s.tokens.IssueAccessToken(user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, AccessToken: access, RefreshToken: presented}, nil
}

// Logout clears the stored refresh token. Idempotent: a user with no live
// session logs out without error.
func (s *AuthService) Logout(ctx context.Context, email string) error {
	return s.store.ClearRefreshToken(ctx, NormalizeEmail(email))
}

// ResendVerificationCode overwrites the verification slot with a fresh code,
// invalidating the previous one, and re-sends the mail.
func (s *AuthService) ResendVerificationCode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}
	if user.Verified {
		return ErrAlreadyVerified
	}

	code, expiresAt, err := s.codes.Generate(PurposeEmailVerification)
	if err != nil {
		return err
	}
	if err := s.store.SetVerificationCode(ctx, email, code, expiresAt); err != nil {
		return err
	}
	return s.sendVerificationMail(user, code, expiresAt)
}

// RequestPasswordRecovery generates a recovery code, overwriting any pending
// one, and mails it.
func (s *AuthService) RequestPasswordRecovery(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}

	code, expiresAt, err := s.codes.Generate(PurposePasswordRecovery)
	if err != nil {
		return err
	}
	if err := s.store.SetRecoveryCode(ctx, email, code, expiresAt); err != nil {
		return err
	}
	return s.sendRecoveryMail(user, code, expiresAt)
}

// ResendRecoveryCode re-triggers generation; the prior code becomes invalid
// because the slot is overwritten.
func (s *AuthService) ResendRecoveryCode(ctx context.Context, email string) error {
	return s.RequestPasswordRecovery(ctx, email)
}

// ResetPassword consumes the recovery code and replaces the password hash.
// The store clears any live refresh token in the same statement, forcing
// re-login everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = NormalizeEmail(email)
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}
	if !user.HasPendingRecoveryCode() {
		return ErrNoCodePending
	}
	if !s.now().Before(*user.RecoveryExpiresAt) {
		return ErrCodeExpired
	}
	if *user.RecoveryCode != code {
		return ErrCodeMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	ok, err := s.store.ConsumeRecoveryCode(ctx, email, code, string(hash))
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoCodePending
	}
	return nil
}

// ResolveAccessToken validates a bearer access token and resolves it to the
// current user, cross-checking the subject against the stored identity.
func (s *AuthService) ResolveAccessToken(ctx context.Context, accessToken string) (*model.User, error) {
	email, err := s.tokens.ExtractAccessSubject(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if !s.tokens.IsValid(accessToken, user) {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *AuthService) findUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// issueSession rotates the refresh token (overwriting the previous value) and
// issues an access token.
func (s *AuthService) issueSession(ctx context.Context, user *model.User) (*Session, error) {
	refresh, err := s.tokens.IssueRefreshToken(user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetRefreshToken(ctx, user.Email, refresh, s.now()); err != nil {
		return nil, err
	}
	access, err := s.tokens.IssueAccessToken(user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) sendVerificationMail(user *model.User, code string, expiresAt time.Time) error {
	body := template.VerificationEmail(user.Name, code, s.baseURL, expiresAt)
	if err := s.mailer.Send(user.Email, "Confirm your EventBuddy account", body); err != nil {
		log.Printf("[auth] verification mail to %s failed: %v", user.Email, err)
		return fmt.Errorf("%w: verification mail", ErrDelivery)
	}
	return nil
}

func (s *AuthService) sendRecoveryMail(user *model.User, code string, expiresAt time.Time) error {
	body := template.RecoveryEmail(user.Name, code, expiresAt)
	if err := s.mailer.Send(user.Email, "EventBuddy password recovery", body); err != nil {
		log.Printf("[auth] recovery mail to %s failed: %v", user.Email, err)
		return fmt.Errorf("%w: recovery mail", ErrDelivery)
	}
	return nil
}

// NormalizeEmail lowercases and trims; identities are keyed by the normalized
// form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || len(email) > 254 {
		return fmt.Errorf("%w: email", ErrInvalidInput)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password", ErrInvalidInput)
	}
	return nil
}
