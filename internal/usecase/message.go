package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ErlanBelekov/reminder-board/internal/domain"
	"github.com/ErlanBelekov/reminder-board/internal/repository"
	"github.com/google/uuid"
)

// MessageUsecase owns the reminder board: short notes posted by a caretaker
// (or the assistant integration) and shown on the display until they expire.
type MessageUsecase struct {
	messages repository.MessageRepository
}

func NewMessageUsecase(messages repository.MessageRepository) *MessageUsecase {
	return &MessageUsecase{messages: messages}
}

type PostMessageInput struct {
	OwnerUserID int64
	Text        string
	ExpiresAt   *time.Time
}

func (u *MessageUsecase) Post(ctx context.Context, input PostMessageInput) (*domain.Message, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}
	if len(text) > domain.MaxMessageLength {
		return nil, domain.ErrMessageTooLong
	}

	msg := &domain.Message{
		ID:          uuid.NewString(),
		OwnerUserID: input.OwnerUserID,
		Text:        text,
		CreatedAt:   time.Now().UTC(),
		ExpiresAt:   input.ExpiresAt,
	}
	if err := u.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

// ListForOwner returns the owner's still-visible messages, newest first.
func (u *MessageUsecase) ListForOwner(ctx context.Context, ownerUserID int64) ([]*domain.Message, error) {
	msgs, err := u.messages.ListForOwner(ctx, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

func (u *MessageUsecase) Delete(ctx context.Context, id string, ownerUserID int64) error {
	if err := u.messages.Delete(ctx, id, ownerUserID); err != nil {
		return err
	}
	return nil
}
