package handlers

const (
	maxBodyBytes = 1 << 20

	oauthStateCookie = "oauth_state"

	ErrInvalidJSON         = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrInvalidTokenMsg     = "Invalid or expired token"
	ErrForbiddenMsg        = "Forbidden"
	ErrTooManyRequests     = "Too many requests"
	ErrInternalServerError = "Internal server error"
)
