package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/reminder-board/internal/domain"
)

// UserRepository persists user records. Tokens are stored as SHA-256 hashes;
// callers pass the hash, never the raw token.
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash, verificationTokenHash string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByVerificationTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)

	// MarkEmailVerified flips email_verified in one guarded statement.
	// Returns false if the user was already verified. The token hash stays
	// in place, inert, so a re-used link maps to "already verified".
	MarkEmailVerified(ctx context.Context, userID int64) (bool, error)

	SetResetToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error

	// UpdatePassword replaces the hash and clears both reset columns.
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// SessionRepository persists session rows keyed by token hash.
type SessionRepository interface {
	Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time, rememberMe bool) (*domain.Session, error)

	// FindUserByTokenHash returns the owning user of a live session. An
	// expired row is deleted as part of the same lookup and reported as
	// domain.ErrSessionNotFound.
	FindUserByTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)

	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)

	ListForUser(ctx context.Context, userID int64) ([]*domain.Session, error)
	DeleteByIDForUser(ctx context.Context, sessionID, userID int64) error
}
