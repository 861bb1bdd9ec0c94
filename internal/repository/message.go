package repository

import (
	"context"

	"github.com/ErlanBelekov/reminder-board/internal/domain"
)

// MessageRepository is the single storage capability behind the reminder
// board. Two implementations exist (postgres, bbolt file); one is chosen at
// startup from config and never swapped per call.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error

	// ListForOwner returns the owner's non-expired messages, newest first.
	ListForOwner(ctx context.Context, ownerUserID int64) ([]*domain.Message, error)

	// Delete removes a message only if it belongs to the owner. Returns
	// domain.ErrMessageNotFound otherwise.
	Delete(ctx context.Context, id string, ownerUserID int64) error
}
