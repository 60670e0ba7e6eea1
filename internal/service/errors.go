package service

import "errors"

// Expected, user-facing failures of the auth flows. Handlers map each to a
// structured 4xx response; none is retried automatically.
var (
	ErrDuplicateIdentity = errors.New("email already registered")
	ErrNotFound          = errors.New("user not found")
	ErrNotVerified       = errors.New("account not verified")
	ErrAlreadyVerified   = errors.New("account already verified")
	ErrBadCredentials    = errors.New("invalid credentials")
	ErrInvalidToken      = errors.New("invalid token")
	ErrMissingToken      = errors.New("missing token")
	ErrNoCodePending     = errors.New("no code pending")
	ErrCodeExpired       = errors.New("code expired")
	ErrCodeMismatch      = errors.New("code mismatch")
	ErrInvalidInput      = errors.New("invalid input")
	ErrForbidden         = errors.New("forbidden")
)

// ErrDelivery marks a failed outbound email. On signup it is reported to the
// caller while the created account stands; a resend recovers.
var ErrDelivery = errors.New("email delivery failed")

// ErrMisconfigured is a startup/configuration fault, never a per-request one.
var ErrMisconfigured = errors.New("auth config invalid")
