package domain

import (
	"errors"
	"time"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrEmptyMessage    = errors.New("message text is required")
	ErrMessageTooLong  = errors.New("message text is too long")
)

// MaxMessageLength caps a single reminder. The display renders short notes;
// anything longer is almost certainly a paste mistake.
const MaxMessageLength = 2000

type Message struct {
	ID          string
	OwnerUserID int64
	Text        string
	CreatedAt   time.Time
	ExpiresAt   *time.Time
}

// Visible reports whether the message should still be shown at the given
// instant. Messages without an expiry never disappear on their own.
func (m *Message) Visible(now time.Time) bool {
	return m.ExpiresAt == nil || m.ExpiresAt.After(now)
}
