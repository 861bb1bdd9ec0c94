package handler

const (
	errInternalServer     = "Internal server error"
	errInvalidCredentials = "Invalid email or password"
	errEmailNotVerified   = "Please verify your email before logging in"
	errTokenInvalid       = "Token is invalid or expired"
	errDuplicateEmail     = "Email is already registered"
	errPasswordMismatch   = "Passwords do not match"
	errWeakPassword       = "Password must be at least 10 characters with a digit and a symbol"
	errPasswordTooLong    = "Password must be at most 72 bytes"
	errInvalidEmail       = "Please enter a valid email address"
	errMessageNotFound    = "Message not found"
	errSessionNotFound    = "Session not found"
)
