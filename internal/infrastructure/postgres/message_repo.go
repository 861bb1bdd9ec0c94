package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/reminder-board/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (id, owner_user_id, body, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.OwnerUserID, msg.Text, msg.CreatedAt, msg.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListForOwner(ctx context.Context, ownerUserID int64) ([]*domain.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_user_id, body, created_at, expires_at
		FROM   messages
		WHERE  owner_user_id = $1
		  AND  (expires_at IS NULL OR expires_at > NOW())
		ORDER BY created_at DESC`, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *MessageRepository) Delete(ctx context.Context, id string, ownerUserID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM messages WHERE id = $1 AND owner_user_id = $2`, id, ownerUserID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.ID, &m.OwnerUserID, &m.Text, &m.CreatedAt, &m.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("scan message: %w", err)
	}
	return &m, nil
}
