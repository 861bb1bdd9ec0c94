package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ErlanBelekov/reminder-board/internal/domain"
	"go.etcd.io/bbolt"
)

var bucketMessages = []byte("messages")

// MessageStore is the flat-file backend of the reminder board: one bbolt
// file, one bucket, JSON-encoded records keyed by message id. It serves
// deployments that have no Postgres, e.g. the display box itself.
type MessageStore struct {
	db *bbolt.DB
}

type record struct {
	ID          string     `json:"id"`
	OwnerUserID int64      `json:"owner_user_id"`
	Text        string     `json:"text"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func New(path string) (*MessageStore, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open message db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMessages)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create messages bucket: %w", err)
	}

	return &MessageStore{db: db}, nil
}

func (s *MessageStore) Close() error {
	return s.db.Close()
}

func (s *MessageStore) Create(_ context.Context, msg *domain.Message) error {
	rec := record{
		ID:          msg.ID,
		OwnerUserID: msg.OwnerUserID,
		Text:        msg.Text,
		CreatedAt:   msg.CreatedAt,
		ExpiresAt:   msg.ExpiresAt,
	}
	buf, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMessages).Put([]byte(msg.ID), buf)
	})
	if err != nil {
		return fmt.Errorf("store message: %w", err)
	}
	return nil
}

// ListForOwner scans the bucket and filters in memory. The board holds a
// handful of reminders at any time, so a full scan is fine here. Expired
// rows found along the way are deleted in the same transaction.
func (s *MessageStore) ListForOwner(_ context.Context, ownerUserID int64) ([]*domain.Message, error) {
	now := time.Now()
	var msgs []*domain.Message

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMessages)
		var expired [][]byte

		cur := b.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode message %q: %w", k, err)
			}
			if rec.ExpiresAt != nil && !rec.ExpiresAt.After(now) {
				expired = append(expired, append([]byte(nil), k...))
				continue
			}
			if rec.OwnerUserID != ownerUserID {
				continue
			}
			msgs = append(msgs, &domain.Message{
				ID:          rec.ID,
				OwnerUserID: rec.OwnerUserID,
				Text:        rec.Text,
				CreatedAt:   rec.CreatedAt,
				ExpiresAt:   rec.ExpiresAt,
			})
		}

		for _, k := range expired {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
	return msgs, nil
}

func (s *MessageStore) Delete(_ context.Context, id string, ownerUserID int64) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMessages)
		v := b.Get([]byte(id))
		if v == nil {
			return domain.ErrMessageNotFound
		}
		var rec record
		if err := json.Unmarshal(v, &rec); err != nil {
			return fmt.Errorf("decode message %q: %w", id, err)
		}
		if rec.OwnerUserID != ownerUserID {
			return domain.ErrMessageNotFound
		}
		return b.Delete([]byte(id))
	})
	return err
}
