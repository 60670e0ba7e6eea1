package model

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type RecoveryRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type UpdateUserRequest struct {
	Name string `json:"name"`
}

// AuthResponse is returned from login, auto-login, and refresh. The refresh
// token itself travels in an HttpOnly cookie, never in the JSON body.
type AuthResponse struct {
	User        UserDto `json:"user"`
	AccessToken string  `json:"accessToken"`
}

// VerifyResponse additionally carries a one-shot auto-login token for the
// confirmation link in the verification email.
type VerifyResponse struct {
	Token       string  `json:"token"`
	User        UserDto `json:"user"`
	AccessToken string  `json:"accessToken"`
}
