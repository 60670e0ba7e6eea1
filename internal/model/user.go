package model

import "time"

// User is the durable identity record keyed by email. The credential fields
// (password hash, verification state, refresh token, one-time code slots) are
// mutated only by the auth service.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	AvatarURL    *string
	Verified     bool

	RefreshToken         *string
	RefreshTokenIssuedAt *time.Time

	VerificationCode      *string
	VerificationExpiresAt *time.Time
	RecoveryCode          *string
	RecoveryExpiresAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPendingVerificationCode reports whether an email verification code is
// currently stored for the user.
func (u *User) HasPendingVerificationCode() bool {
	return u.VerificationCode != nil && u.VerificationExpiresAt != nil
}

// HasPendingRecoveryCode reports whether a password recovery code is currently
// stored for the user.
func (u *User) HasPendingRecoveryCode() bool {
	return u.RecoveryCode != nil && u.RecoveryExpiresAt != nil
}

type UserDto struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
	Verified  bool    `json:"verified"`
}

func NewUserDto(u *User) UserDto {
	return UserDto{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Verified:  u.Verified,
	}
}
