package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/reminder-board/internal/domain"
	"github.com/ErlanBelekov/reminder-board/internal/metrics"
	"github.com/ErlanBelekov/reminder-board/internal/transport/http/middleware"
	"github.com/ErlanBelekov/reminder-board/internal/usecase"
	"github.com/gin-gonic/gin"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	VerifyEmail(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, email, password string, remember bool) (*usecase.LoginResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
	Logout(ctx context.Context, rawToken string) error
	ListSessions(ctx context.Context, userID int64) ([]*domain.Session, error)
	RevokeSession(ctx context.Context, userID, sessionID int64) error
}

type AuthHandler struct {
	auth         authUsecaser
	logger       *slog.Logger
	cookieSecure bool
}

func NewAuthHandler(auth authUsecaser, cookieSecure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		logger:       logger.With("component", "auth_handler"),
		cookieSecure: cookieSecure,
	}
}

type signupRequest struct {
	Email           string `json:"email"            binding:"required"`
	Password        string `json:"password"         binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type userResponse struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": errPasswordMismatch})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidEmail})
		case errors.Is(err, domain.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": errWeakPassword})
		case errors.Is(err, domain.ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": errPasswordTooLong})
		case errors.Is(err, domain.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, gin.H{"error": errDuplicateEmail})
		default:
			h.logger.Error("signup", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	metrics.SignupsTotal.Inc()
	c.JSON(http.StatusCreated, userResponse{
		ID:            user.ID,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	})
}

// GET /auth/verify?token=<raw>
func (h *AuthHandler) Verify(c *gin.Context) {
	err := h.auth.VerifyEmail(c.Request.Context(), c.Query("token"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "verified"})
	case errors.Is(err, domain.ErrAlreadyVerified):
		// Double-clicking the emailed link must not look like a failure.
		c.JSON(http.StatusOK, gin.H{"status": "already_verified"})
	case errors.Is(err, domain.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
	default:
		h.logger.Error("verify email", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}

type loginRequest struct {
	Email      string `json:"email"    binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
		case errors.Is(err, domain.ErrEmailNotVerified):
			metrics.LoginsTotal.WithLabelValues("email_not_verified").Inc()
			c.JSON(http.StatusForbidden, gin.H{"error": errEmailNotVerified})
		default:
			h.logger.Error("login", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, userResponse{
		ID:            result.User.ID,
		Email:         result.User.Email,
		EmailVerified: result.User.EmailVerified,
		CreatedAt:     result.User.CreatedAt,
	})
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(middleware.SessionCookie)
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		// The cookie is cleared regardless; a storage hiccup here must not
		// keep the browser signed in.
		h.logger.Error("logout", "error", err)
	} else if token != "" {
		metrics.SessionsRevokedTotal.WithLabelValues("logout").Inc()
	}

	h.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// POST /auth/forgot-password
// Always returns 202 so the response does not reveal whether the email exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("request password reset", "error", err)
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "check your email"})
}

type resetPasswordRequest struct {
	Token           string `json:"token"            binding:"required"`
	Password        string `json:"password"         binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": errPasswordMismatch})
		return
	}

	err := h.auth.ResetPassword(c.Request.Context(), req.Token, req.Password)
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, domain.ErrTokenInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
	case errors.Is(err, domain.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": errWeakPassword})
	case errors.Is(err, domain.ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": errPasswordTooLong})
	default:
		h.logger.Error("reset password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}

type sessionResponse struct {
	ID         int64     `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	RememberMe bool      `json:"remember_me"`
}

// GET /api/sessions
func (h *AuthHandler) ListSessions(c *gin.Context) {
	user := middleware.UserFrom(c)

	sessions, err := h.auth.ListSessions(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("list sessions", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, sessionResponse{
			ID:         s.ID,
			CreatedAt:  s.CreatedAt,
			ExpiresAt:  s.ExpiresAt,
			RememberMe: s.RememberMe,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// DELETE /api/sessions/:id
func (h *AuthHandler) RevokeSession(c *gin.Context) {
	user := middleware.UserFrom(c)

	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	if err := h.auth.RevokeSession(c.Request.Context(), user.ID, sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errSessionNotFound})
			return
		}
		h.logger.Error("revoke session", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	metrics.SessionsRevokedTotal.WithLabelValues("revoked_by_user").Inc()
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.cookieSecure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.cookieSecure, true)
}
