package handlers

const (
	oauthStateCookie = "oauth_state"

	ErrInvalidJSON         = "Invalid JSON body"
	ErrUnauthorized        = "Unauthorized"
	ErrInternalServerError = "Internal server error"
	ErrTooManyRequests     = "Too many requests"

	// maxBodyBytes bounds request bodies; custom word lists are the largest input
	maxBodyBytes = 1 << 20
)
