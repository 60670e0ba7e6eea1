package db

import (
	"context"
	"time"

	"github.com/eventbuddy/backend/internal/model"
	"github.com/jackc/pgx/v5"
)

const userColumns = `
	id, email, name, password_hash, avatar_url, verified,
	refresh_token, refresh_token_issued_at,
	verification_code, verification_expires_at,
	recovery_code, recovery_expires_at,
	created_at, updated_at
`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.AvatarURL,
		&u.Verified,
		&u.RefreshToken,
		&u.RefreshTokenIssuedAt,
		&u.VerificationCode,
		&u.VerificationExpiresAt,
		&u.RecoveryCode,
		&u.RecoveryExpiresAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *Postgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, email))
}

// FindByRefreshToken resolves the presented refresh value to its single owner
// via the unique refresh_token index. No credential scan.
func (db *Postgres) FindByRefreshToken(ctx context.Context, token string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, token))
}

func (db *Postgres) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (db *Postgres) CreateUser(ctx context.Context, email, name, passwordHash, code string, codeExpiresAt time.Time) (*model.User, error) {
	query := `
		INSERT INTO users (email, name, password_hash, verified, verification_code, verification_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, $5, NOW(), NOW())
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, email, name, passwordHash, code, codeExpiresAt))
}

// CreateVerifiedUser inserts a user that needs no email confirmation. Used for
// identities established through the OIDC provider.
func (db *Postgres) CreateVerifiedUser(ctx context.Context, email, name, passwordHash string) (*model.User, error) {
	query := `
		INSERT INTO users (email, name, password_hash, verified, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, email, name, passwordHash))
}

func (db *Postgres) SetVerificationCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET verification_code = $2, verification_expires_at = $3, updated_at = NOW()
		WHERE email = $1
	`
	_, err := db.Pool.Exec(ctx, query, email, code, expiresAt)
	return err
}

// ConsumeVerificationCode marks the user verified and clears the code slot in
// one compare-and-clear statement. Returns false when the code does not match
// the live slot anymore, so a concurrent consume cannot succeed twice.
func (db *Postgres) ConsumeVerificationCode(ctx context.Context, email, code string) (bool, error) {
	query := `
		UPDATE users
		SET verified = TRUE, verification_code = NULL, verification_expires_at = NULL, updated_at = NOW()
		WHERE email = $1 AND verification_code = $2 AND verification_expires_at > NOW()
	`
	tag, err := db.Pool.Exec(ctx, query, email, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (db *Postgres) SetRecoveryCode(ctx context.Context, email, code string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET recovery_code = $2, recovery_expires_at = $3, updated_at = NOW()
		WHERE email = $1
	`
	_, err := db.Pool.Exec(ctx, query, email, code, expiresAt)
	return err
}

// ConsumeRecoveryCode replaces the password hash, clears the recovery slot, and
// drops any live refresh token in a single statement, so a successful reset
// forces re-login everywhere and the code cannot be accepted twice.
func (db *Postgres) ConsumeRecoveryCode(ctx context.Context, email, code, newPasswordHash string) (bool, error) {
	query := `
		UPDATE users
		SET password_hash = $3,
		    recovery_code = NULL, recovery_expires_at = NULL,
		    refresh_token = NULL, refresh_token_issued_at = NULL,
		    updated_at = NOW()
		WHERE email = $1 AND recovery_code = $2 AND recovery_expires_at > NOW()
	`
	tag, err := db.Pool.Exec(ctx, query, email, code, newPasswordHash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SetRefreshToken overwrites the previous value. One live refresh token per
// user; a login elsewhere invalidates the prior session.
func (db *Postgres) SetRefreshToken(ctx context.Context, email, token string, issuedAt time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = $2, refresh_token_issued_at = $3, updated_at = NOW()
		WHERE email = $1
	`
	_, err := db.Pool.Exec(ctx, query, email, token, issuedAt)
	return err
}

func (db *Postgres) ClearRefreshToken(ctx context.Context, email string) error {
	query := `
		UPDATE users
		SET refresh_token = NULL, refresh_token_issued_at = NULL, updated_at = NOW()
		WHERE email = $1
	`
	_, err := db.Pool.Exec(ctx, query, email)
	return err
}

func (db *Postgres) UpdateProfile(ctx context.Context, email, name string) (*model.User, error) {
	query := `
		UPDATE users SET name = $2, updated_at = NOW()
		WHERE email = $1
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, email, name))
}

func (db *Postgres) UpdateAvatar(ctx context.Context, email, avatarURL string) error {
	query := `UPDATE users SET avatar_url = $2, updated_at = NOW() WHERE email = $1`
	_, err := db.Pool.Exec(ctx, query, email, avatarURL)
	return err
}

func (db *Postgres) ListUsers(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *u)
	}
	if list == nil {
		list = []model.User{}
	}
	return list, rows.Err()
}

func (db *Postgres) DeleteUser(ctx context.Context, email string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM users WHERE email = $1`, email)
	return err
}
