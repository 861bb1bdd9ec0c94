package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/reminder-board/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time, rememberMe bool) (*domain.Session, error) {
	query := `
		INSERT INTO sessions (user_id, token_hash, expires_at, remember_me)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, token_hash, expires_at, remember_me, created_at`

	row := r.pool.QueryRow(ctx, query, userID, tokenHash, expiresAt, rememberMe)
	return scanSession(row)
}

// FindUserByTokenHash joins a live session to its user. The CTE purges the
// row when it has expired (boundary inclusive), in the same statement, so
// two concurrent lookups of a dead session cannot disagree about who
// deletes it.
func (r *SessionRepository) FindUserByTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	query := `
		WITH purged AS (
			DELETE FROM sessions
			WHERE token_hash = $1 AND expires_at <= NOW()
		)
		SELECT ` + prefixedUserColumns("u") + `
		FROM   sessions s
		JOIN   users u ON u.id = s.user_id
		WHERE  s.token_hash = $1 AND s.expires_at > NOW()`

	user, err := scanUser(r.pool.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	// No-op when the row is already gone; logout is idempotent.
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) ListForUser(ctx context.Context, userID int64) ([]*domain.Session, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, remember_me, created_at
		FROM   sessions
		WHERE  user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) DeleteByIDForUser(ctx context.Context, sessionID, userID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE id = $1 AND user_id = $2`, sessionID, userID)
	if err != nil {
		return fmt.Errorf("delete session by id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.RememberMe, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &s, nil
}

func prefixedUserColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.email, %[1]s.password_hash, %[1]s.email_verified,
		%[1]s.verification_token_hash, %[1]s.reset_token_hash, %[1]s.reset_token_expires, %[1]s.created_at`, alias)
}
