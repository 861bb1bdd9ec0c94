package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrDuplicateEmail     = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email is not verified")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrAlreadyVerified    = errors.New("email is already verified")
	ErrWeakPassword       = errors.New("password does not meet strength requirements")
	ErrPasswordTooLong    = errors.New("password is too long")
	ErrInvalidEmail       = errors.New("email address is malformed")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUserNotFound       = errors.New("user not found")
)

type User struct {
	ID                    int64
	Email                 string
	PasswordHash          string
	EmailVerified         bool
	VerificationTokenHash *string
	ResetTokenHash        *string
	ResetTokenExpires     *time.Time
	CreatedAt             time.Time
}

type Session struct {
	ID         int64
	UserID     int64
	TokenHash  string
	ExpiresAt  time.Time
	RememberMe bool
	CreatedAt  time.Time
}

// Expired reports whether the session is no longer usable at the given
// instant. The boundary is inclusive: a session expiring exactly now is dead.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	digitPattern  = regexp.MustCompile(`\d`)
	symbolPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// NormalizeEmail lowercases and trims an address so equality checks and the
// unique index always see the same form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// MaxPasswordBytes is bcrypt's input limit; anything longer would be
// silently truncated by the hash, so it is rejected up front.
const MaxPasswordBytes = 72

// ValidatePassword enforces the signup strength rule: at least 10 characters,
// one digit and one symbol. The minimum counts characters, not bytes, so a
// multibyte passphrase is measured the way the user typed it.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < 10 {
		return ErrWeakPassword
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if !digitPattern.MatchString(password) {
		return ErrWeakPassword
	}
	if !symbolPattern.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
