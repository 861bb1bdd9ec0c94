package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/reminder-board/internal/domain"
	"github.com/ErlanBelekov/reminder-board/internal/metrics"
	"github.com/ErlanBelekov/reminder-board/internal/transport/http/middleware"
	"github.com/ErlanBelekov/reminder-board/internal/usecase"
	"github.com/gin-gonic/gin"
)

type messageUsecaser interface {
	Post(ctx context.Context, input usecase.PostMessageInput) (*domain.Message, error)
	ListForOwner(ctx context.Context, ownerUserID int64) ([]*domain.Message, error)
	Delete(ctx context.Context, id string, ownerUserID int64) error
}

type MessageHandler struct {
	messages messageUsecaser
	logger   *slog.Logger
}

func NewMessageHandler(messages messageUsecaser, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger.With("component", "message_handler")}
}

type postMessageRequest struct {
	Text      string     `json:"text"       binding:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type messageResponse struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// POST /api/messages
func (h *MessageHandler) Post(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := middleware.UserFrom(c)

	msg, err := h.messages.Post(c.Request.Context(), usecase.PostMessageInput{
		OwnerUserID: user.ID,
		Text:        req.Text,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyMessage), errors.Is(err, domain.ErrMessageTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("post message", "user_id", user.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	metrics.MessagesPostedTotal.Inc()
	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

// GET /api/messages
func (h *MessageHandler) List(c *gin.Context) {
	user := middleware.UserFrom(c)

	msgs, err := h.messages.ListForOwner(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("list messages", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, toMessageResponse(m))
	}
	c.JSON(http.StatusOK, resp)
}

// DELETE /api/messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	user := middleware.UserFrom(c)
	id := c.Param("id")

	if err := h.messages.Delete(c.Request.Context(), id, user.ID); err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errMessageNotFound})
			return
		}
		h.logger.Error("delete message", "user_id", user.ID, "message_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusNoContent)
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
	}
}
