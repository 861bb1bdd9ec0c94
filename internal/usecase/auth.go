package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/reminder-board/internal/domain"
	"github.com/ErlanBelekov/reminder-board/internal/email"
	"github.com/ErlanBelekov/reminder-board/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSessionTTL     = 24 * time.Hour
	defaultRememberTTL    = 30 * 24 * time.Hour
	defaultResetTokenTTL  = time.Hour
	defaultVerifyTokenTTL = 24 * time.Hour
	defaultBcryptCost     = 12
)

// dummyHash is compared against when the email is unknown so that a failed
// login costs the same whether the account exists or not.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("reminder-board-timing-pad"), bcrypt.MinCost)

// AuthConfig carries the tunable knobs of the credential manager. Zero
// values fall back to the defaults above.
type AuthConfig struct {
	BaseURL        string
	SessionTTL     time.Duration
	RememberTTL    time.Duration
	ResetTokenTTL  time.Duration
	VerifyTokenTTL time.Duration
	BcryptCost     int
}

// AuthUsecase is the single source of truth for "who is making this request".
// One instance is constructed in main and handed to every handler; there is
// no ambient global.
type AuthUsecase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	email    email.Sender
	logger   *slog.Logger
	cfg      AuthConfig
}

func NewAuthUsecase(users repository.UserRepository, sessions repository.SessionRepository, sender email.Sender, cfg AuthConfig, logger *slog.Logger) *AuthUsecase {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.RememberTTL <= 0 {
		cfg.RememberTTL = defaultRememberTTL
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = defaultResetTokenTTL
	}
	if cfg.VerifyTokenTTL <= 0 {
		cfg.VerifyTokenTTL = defaultVerifyTokenTTL
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = defaultBcryptCost
	}
	return &AuthUsecase{
		users:    users,
		sessions: sessions,
		email:    sender,
		logger:   logger.With("component", "auth_usecase"),
		cfg:      cfg,
	}
}

// generateToken returns a fresh opaque bearer token and the SHA-256 hash
// under which it is persisted. Only the hash ever touches storage.
func generateToken() (raw, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}
	raw = fmt.Sprintf("%x", buf)
	return raw, hashToken(raw), nil
}

func hashToken(raw string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(raw)))
}

// Register creates an unverified account and emails the verification link.
// The email send is best-effort: a delivery failure is logged but never rolls
// back the created user.
func (u *AuthUsecase) Register(ctx context.Context, emailAddr, password string) (*domain.User, error) {
	emailAddr = domain.NormalizeEmail(emailAddr)
	if err := domain.ValidateEmail(emailAddr); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := u.users.FindByEmail(ctx, emailAddr); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), u.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	rawToken, tokenHash, err := generateToken()
	if err != nil {
		return nil, err
	}

	user, err := u.users.Create(ctx, emailAddr, string(passwordHash), tokenHash)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := u.email.Send(ctx, emailAddr, email.VerificationSubject, email.VerificationBody(u.cfg.BaseURL, rawToken)); err != nil {
		u.logger.WarnContext(ctx, "verification email not sent", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// VerifyEmail flips the account to verified. The token row stays in place
// but becomes inert, so a second call with the same token reports
// ErrAlreadyVerified instead of failing and double-clicking the emailed
// link is harmless.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return domain.ErrTokenInvalid
	}

	user, err := u.users.FindByVerificationTokenHash(ctx, hashToken(rawToken))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrTokenInvalid
		}
		return fmt.Errorf("find by verification token: %w", err)
	}

	if user.EmailVerified {
		return domain.ErrAlreadyVerified
	}
	if time.Now().After(user.CreatedAt.Add(u.cfg.VerifyTokenTTL)) {
		return domain.ErrTokenInvalid
	}

	ok, err := u.users.MarkEmailVerified(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	if !ok {
		// Lost the race against a concurrent verify of the same token.
		return domain.ErrAlreadyVerified
	}
	return nil
}

// LoginResult carries the raw session token exactly once, on the way to the
// cookie. It is never persisted or logged.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Authenticate validates credentials and opens a new session. Unknown email
// and wrong password yield the same ErrInvalidCredentials so a caller cannot
// probe which factor failed.
func (u *AuthUsecase) Authenticate(ctx context.Context, emailAddr, password string, remember bool) (*LoginResult, error) {
	emailAddr = domain.NormalizeEmail(emailAddr)

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find by email: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return nil, domain.ErrEmailNotVerified
	}

	rawToken, tokenHash, err := generateToken()
	if err != nil {
		return nil, err
	}

	ttl := u.cfg.SessionTTL
	if remember {
		ttl = u.cfg.RememberTTL
	}
	expiresAt := time.Now().Add(ttl)

	if _, err := u.sessions.Create(ctx, user.ID, tokenHash, expiresAt, remember); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &LoginResult{Token: rawToken, ExpiresAt: expiresAt, User: user}, nil
}

// ResolveSession maps a bearer token to its user. A nil, nil return means
// "caller is anonymous" and is not an error; expired rows are purged by the
// repository as part of the lookup.
func (u *AuthUsecase) ResolveSession(ctx context.Context, rawToken string) (*domain.User, error) {
	if rawToken == "" {
		return nil, nil
	}

	user, err := u.sessions.FindUserByTokenHash(ctx, hashToken(rawToken))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	return user, nil
}

// RequestPasswordReset issues a reset token for a known address. For an
// unknown address it does nothing at all; either way the caller sees the
// same outcome, so the endpoint cannot be used to enumerate accounts.
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = domain.NormalizeEmail(emailAddr)

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("find by email: %w", err)
	}

	rawToken, tokenHash, err := generateToken()
	if err != nil {
		return err
	}

	if err := u.users.SetResetToken(ctx, user.ID, tokenHash, time.Now().Add(u.cfg.ResetTokenTTL)); err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	if err := u.email.Send(ctx, emailAddr, email.PasswordResetSubject, email.PasswordResetBody(u.cfg.BaseURL, rawToken)); err != nil {
		u.logger.WarnContext(ctx, "reset email not sent", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword consumes a reset token, replaces the password hash, and
// revokes every session of the user so a stolen credential cannot keep an
// old device signed in.
func (u *AuthUsecase) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" {
		return domain.ErrTokenInvalid
	}

	user, err := u.users.FindByResetTokenHash(ctx, hashToken(rawToken))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrTokenInvalid
		}
		return fmt.Errorf("find by reset token: %w", err)
	}
	if user.ResetTokenExpires == nil || !user.ResetTokenExpires.After(time.Now()) {
		return domain.ErrTokenInvalid
	}

	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), u.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := u.users.UpdatePassword(ctx, user.ID, string(passwordHash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	revoked, err := u.sessions.DeleteAllForUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	u.logger.InfoContext(ctx, "password reset, sessions revoked", "user_id", user.ID, "revoked", revoked)
	return nil
}

// Logout deletes the session behind the token. Unknown tokens are a no-op.
func (u *AuthUsecase) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	if err := u.sessions.DeleteByTokenHash(ctx, hashToken(rawToken)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ListSessions returns the user's live sessions for the devices view.
func (u *AuthUsecase) ListSessions(ctx context.Context, userID int64) ([]*domain.Session, error) {
	sessions, err := u.sessions.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// RevokeSession deletes one session by id, only if it belongs to the caller.
func (u *AuthUsecase) RevokeSession(ctx context.Context, userID, sessionID int64) error {
	if err := u.sessions.DeleteByIDForUser(ctx, sessionID, userID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.ErrSessionNotFound
		}
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
