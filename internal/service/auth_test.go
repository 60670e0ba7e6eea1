package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eventbuddy/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// fakeUserStore is an in-memory UserStore keyed by email. It mirrors the
// row-level semantics of the SQL layer, including the conditional updates
// behind the consume operations.
type fakeUserStore struct {
	mu     sync.Mutex
	users  map[string]*model.User
	nextID int64
	now    func() time.Time
}

func newFakeUserStore(now func() time.Time) *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User), now: now}
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) FindByRefreshToken(_ context.Context, token string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, name, passwordHash, code string, codeExpiresAt time.Time) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := &model.User{
		ID:                    f.nextID,
		Email:                 email,
		Name:                  name,
		PasswordHash:          passwordHash,
		VerificationCode:      &code,
		VerificationExpiresAt: &codeExpiresAt,
	}
	f.users[email] = u
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) CreateVerifiedUser(_ context.Context, email, name, passwordHash string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := &model.User{ID: f.nextID, Email: email, Name: name, PasswordHash: passwordHash, Verified: true}
	f.users[email] = u
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) SetVerificationCode(_ context.Context, email, code string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return pgx.ErrNoRows
	}
	u.VerificationCode = &code
	u.VerificationExpiresAt = &expiresAt
	return nil
}

func (f *fakeUserStore) ConsumeVerificationCode(_ context.Context, email, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok || u.VerificationCode == nil || *u.VerificationCode != code {
		return false, nil
	}
	if u.VerificationExpiresAt == nil || !u.VerificationExpiresAt.After(f.now()) {
		return false, nil
	}
	u.Verified = true
	u.VerificationCode = nil
	u.VerificationExpiresAt = nil
	return true, nil
}

func (f *fakeUserStore) SetRecoveryCode(_ context.Context, email, code string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return pgx.ErrNoRows
	}
	u.RecoveryCode = &code
	u.RecoveryExpiresAt = &expiresAt
	return nil
}

func (f *fakeUserStore) ConsumeRecoveryCode(_ context.Context, email, code, newPasswordHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok || u.RecoveryCode == nil || *u.RecoveryCode != code {
		return false, nil
	}
	if u.RecoveryExpiresAt == nil || !u.RecoveryExpiresAt.After(f.now()) {
		return false, nil
	}
	u.PasswordHash = newPasswordHash
	u.RecoveryCode = nil
	u.RecoveryExpiresAt = nil
	u.RefreshToken = nil
	u.RefreshTokenIssuedAt = nil
	return true, nil
}

func (f *fakeUserStore) SetRefreshToken(_ context.Context, email, token string, issuedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return pgx.ErrNoRows
	}
	u.RefreshToken = &token
	u.RefreshTokenIssuedAt = &issuedAt
	return nil
}

func (f *fakeUserStore) ClearRefreshToken(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[email]; ok {
		u.RefreshToken = nil
		u.RefreshTokenIssuedAt = nil
	}
	return nil
}

// pendingVerificationCode reads the stored code directly, standing in for the
// mail the user would receive.
func (f *fakeUserStore) pendingVerificationCode(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[email]; ok && u.VerificationCode != nil {
		return *u.VerificationCode
	}
	return ""
}

func (f *fakeUserStore) pendingRecoveryCode(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[email]; ok && u.RecoveryCode != nil {
		return *u.RecoveryCode
	}
	return ""
}

type sentMail struct {
	to      string
	subject string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) Send(to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject})
	return nil
}

func (m *fakeMailer) Enabled() bool { return true }

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type authFixture struct {
	svc    *AuthService
	store  *fakeUserStore
	mailer *fakeMailer
	clock  *fakeClock
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := newFakeUserStore(clock.Now)
	mailer := &fakeMailer{}

	tokens, err := NewTokenService("test-secret", 15*time.Minute, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)
	codes := NewCodeGenerator(24*time.Hour, 15*time.Minute)
	codes.now = clock.Now

	svc := NewAuthService(store, tokens, codes, mailer, "http://localhost:8080")
	svc.now = clock.Now

	return &authFixture{svc: svc, store: store, mailer: mailer, clock: clock}
}

func (fx *authFixture) signup(t *testing.T, email, password string) {
	t.Helper()
	_, err := fx.svc.Signup(context.Background(), email, password, "Test User")
	require.NoError(t, err)
}

func (fx *authFixture) signupVerified(t *testing.T, email, password string) {
	t.Helper()
	fx.signup(t, email, password)
	code := fx.store.pendingVerificationCode(email)
	require.NotEmpty(t, code)
	_, err := fx.svc.VerifyUser(context.Background(), email, code)
	require.NoError(t, err)
}

func TestSignupVerifyLogin(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	user, err := fx.svc.Signup(ctx, "Alice@Example.com", "hunter2secret", "Alice")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.False(t, user.Verified)
	require.Equal(t, 1, fx.mailer.count())

	// Unverified accounts cannot log in.
	_, err = fx.svc.Authenticate(ctx, "alice@example.com", "hunter2secret")
	require.ErrorIs(t, err, ErrNotVerified)

	code := fx.store.pendingVerificationCode("alice@example.com")
	require.Len(t, code, 6)

	_, err = fx.svc.VerifyUser(ctx, "alice@example.com", "000000x")
	require.ErrorIs(t, err, ErrCodeMismatch)

	session, err := fx.svc.VerifyUser(ctx, "alice@example.com", code)
	require.NoError(t, err)
	require.True(t, session.User.Verified)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)
	require.NotEmpty(t, session.AutoLoginToken)

	session, err = fx.svc.Authenticate(ctx, "alice@example.com", "hunter2secret")
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)
}

func TestSignupValidation(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Signup(ctx, "not-an-email", "hunter2secret", "X")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = fx.svc.Signup(ctx, "short@example.com", "short", "X")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSignupDuplicate(t *testing.T) {
	fx := newAuthFixture(t)
	fx.signup(t, "alice@example.com", "hunter2secret")

	_, err := fx.svc.Signup(context.Background(), "ALICE@example.com", "hunter2secret", "Alice")
	require.ErrorIs(t, err, ErrDuplicateIdentity)
}

func TestSignupDeliveryFailureKeepsAccount(t *testing.T) {
	fx := newAuthFixture(t)
	fx.mailer.fail = true

	user, err := fx.svc.Signup(context.Background(), "alice@example.com", "hunter2secret", "Alice")
	require.ErrorIs(t, err, ErrDelivery)
	require.NotNil(t, user)

	exists, err := fx.store.ExistsByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestVerifyWrongCredential(t *testing.T) {
	fx := newAuthFixture(t)

	_, err := fx.svc.VerifyUser(context.Background(), "nobody@example.com", "123456")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerificationCodeExpires(t *testing.T) {
	fx := newAuthFixture(t)
	fx.signup(t, "alice@example.com", "hunter2secret")
	code := fx.store.pendingVerificationCode("alice@example.com")

	fx.clock.Advance(24*time.Hour + time.Minute)

	_, err := fx.svc.VerifyUser(context.Background(), "alice@example.com", code)
	require.ErrorIs(t, err, ErrCodeExpired)
}

// The expiry window is half-open: an attempt at exactly issuance+window is
// already expired, not a mismatch of a cleared slot.
func TestVerificationCodeExpiresAtExactBoundary(t *testing.T) {
	fx := newAuthFixture(t)
	fx.signup(t, "alice@example.com", "hunter2secret")
	code := fx.store.pendingVerificationCode("alice@example.com")

	fx.clock.Advance(24 * time.Hour)

	_, err := fx.svc.VerifyUser(context.Background(), "alice@example.com", code)
	require.ErrorIs(t, err, ErrCodeExpired)
}

func TestVerificationCodeSingleUse(t *testing.T) {
	fx := newAuthFixture(t)
	fx.signup(t, "alice@example.com", "hunter2secret")
	code := fx.store.pendingVerificationCode("alice@example.com")

	_, err := fx.svc.VerifyUser(context.Background(), "alice@example.com", code)
	require.NoError(t, err)

	_, err = fx.svc.VerifyUser(context.Background(), "alice@example.com", code)
	require.ErrorIs(t, err, ErrNoCodePending)
}

func TestResendSupersedesCode(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	fx.signup(t, "alice@example.com", "hunter2secret")
	first := fx.store.pendingVerificationCode("alice@example.com")

	require.NoError(t, fx.svc.ResendVerificationCode(ctx, "alice@example.com"))
	second := fx.store.pendingVerificationCode("alice@example.com")

	if first != second {
		_, err := fx.svc.VerifyUser(ctx, "alice@example.com", first)
		require.ErrorIs(t, err, ErrCodeMismatch)
	}
	_, err := fx.svc.VerifyUser(ctx, "alice@example.com", second)
	require.NoError(t, err)
}

func TestResendAfterVerification(t *testing.T) {
	fx := newAuthFixture(t)
	fx.signupVerified(t, "alice@example.com", "hunter2secret")

	err := fx.svc.ResendVerificationCode(context.Background(), "alice@example.com")
	require.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestLoginRotatesRefreshToken(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	fx.signupVerified(t, "alice@example.com", "hunter2secret")

	first, err := fx.svc.Authenticate(ctx, "alice@example.com", "hunter2secret")
	require.NoError(t, err)

	second, err := fx.svc.Authenticate(ctx, "alice@example.com", "hunter2secret")
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The overwritten token is dead even though its signature is still good.
	_, err = fx.svc.RefreshToken(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	session, err := fx.svc.RefreshToken(ctx, second.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, second.RefreshToken, session.RefreshToken)
	require.NotEmpty(t, session.AccessToken)
}

func TestRefreshRejectsBadInput(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	_, err := fx.svc.RefreshToken(ctx, "")
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = fx.svc.RefreshToken(ctx, "garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutIsIdempotent(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	fx.signupVerified(t, "alice@example.com", "hunter2secret")

	session, err := fx.svc.Authenticate(ctx, "alice@example.com", "hunter2secret")
	require.NoError(t, err)

	require.NoError(t, fx.svc.Logout(ctx, "alice@example.com"))

	_, err = fx.svc.RefreshToken(ctx, session.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	// No live session is not an error.
	require.NoError(t, fx.svc.Logout(ctx, "alice@example.com"))
	require.NoError(t, fx.svc.Logout(ctx, "nobody@example.com"))
}

func TestAutoLogin(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	fx.signup(t, "alice@example.com", "hunter2secret")
	code := fx.store.pendingVerificationCode("alice@example.com")

	verified, err := fx.svc.VerifyUser(ctx, "alice@example.com", code)
	require.NoError(t, err)

	session, err := fx.svc.ProcessAutoLogin(ctx, verified.AutoLoginToken)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", session.User.Email)
	require.NotEmpty(t, session.AccessToken)

	_, err = fx.svc.ProcessAutoLogin(ctx, verified.AutoLoginToken+"x")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordRecoveryFlow(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	fx.signupVerified(t, "alice@example.com", "hunter2secret")

	session, err := fx.svc.Authenticate(ctx, "alice@example.com", "hunter2secret")
	require.NoError(t, err)

	require.NoError(t, fx.svc.RequestPasswordRecovery(ctx, "alice@example.com"))
	code := fx.store.pendingRecoveryCode("alice@example.com")
	require.Len(t, code, 6)

	err = fx.svc.ResetPassword(ctx, "alice@example.com", "000000x", "newpassword1")
	require.ErrorIs(t, err, ErrCodeMismatch)

	require.NoError(t, fx.svc.ResetPassword(ctx, "alice@example.com", code, "newpassword1"))

	// The code is consumed and the live session is revoked.
	err = fx.svc.ResetPassword(ctx, "alice@example.com", code, "newpassword2")
	require.ErrorIs(t, err, ErrNoCodePending)
	_, err = fx.svc.RefreshToken(ctx, session.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = fx.svc.Authenticate(ctx, "alice@example.com", "hunter2secret")
	require.ErrorIs(t, err, ErrBadCredentials)
	_, err = fx.svc.Authenticate(ctx, "alice@example.com", "newpassword1")
	require.NoError(t, err)
}

func TestRecoveryCodeExpires(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	fx.signupVerified(t, "alice@example.com", "hunter2secret")

	require.NoError(t, fx.svc.RequestPasswordRecovery(ctx, "alice@example.com"))
	code := fx.store.pendingRecoveryCode("alice@example.com")

	fx.clock.Advance(16 * time.Minute)

	err := fx.svc.ResetPassword(ctx, "alice@example.com", code, "newpassword1")
	require.ErrorIs(t, err, ErrCodeExpired)
}

func TestRecoveryCodeExpiresAtExactBoundary(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	fx.signupVerified(t, "alice@example.com", "hunter2secret")

	require.NoError(t, fx.svc.RequestPasswordRecovery(ctx, "alice@example.com"))
	code := fx.store.pendingRecoveryCode("alice@example.com")

	fx.clock.Advance(15 * time.Minute)

	err := fx.svc.ResetPassword(ctx, "alice@example.com", code, "newpassword1")
	require.ErrorIs(t, err, ErrCodeExpired)
}

func TestRecoveryResendOverwrites(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	fx.signupVerified(t, "alice@example.com", "hunter2secret")

	require.NoError(t, fx.svc.RequestPasswordRecovery(ctx, "alice@example.com"))
	first := fx.store.pendingRecoveryCode("alice@example.com")

	require.NoError(t, fx.svc.ResendRecoveryCode(ctx, "alice@example.com"))
	second := fx.store.pendingRecoveryCode("alice@example.com")

	if first != second {
		err := fx.svc.ResetPassword(ctx, "alice@example.com", first, "newpassword1")
		require.ErrorIs(t, err, ErrCodeMismatch)
	}
	require.NoError(t, fx.svc.ResetPassword(ctx, "alice@example.com", second, "newpassword1"))
}

func TestResetPasswordValidatesNewPassword(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	fx.signupVerified(t, "alice@example.com", "hunter2secret")
	require.NoError(t, fx.svc.RequestPasswordRecovery(ctx, "alice@example.com"))
	code := fx.store.pendingRecoveryCode("alice@example.com")

	err := fx.svc.ResetPassword(ctx, "alice@example.com", code, "short")
	require.ErrorIs(t, err, ErrInvalidInput)

	// A rejected password must not burn the code.
	require.NoError(t, fx.svc.ResetPassword(ctx, "alice@example.com", code, "longenough1"))
}

func TestResolveAccessToken(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()
	fx.signupVerified(t, "alice@example.com", "hunter2secret")

	session, err := fx.svc.Authenticate(ctx, "alice@example.com", "hunter2secret")
	require.NoError(t, err)

	user, err := fx.svc.ResolveAccessToken(ctx, session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)

	_, err = fx.svc.ResolveAccessToken(ctx, session.AccessToken+"x")
	require.ErrorIs(t, err, ErrInvalidToken)

	// A refresh token is not a bearer credential.
	_, err = fx.svc.ResolveAccessToken(ctx, session.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}
