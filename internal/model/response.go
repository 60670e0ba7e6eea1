package model

// ErrorResponse is the single error shape for the whole API. Field names the
// input field that caused the failure, when one can be identified.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}
