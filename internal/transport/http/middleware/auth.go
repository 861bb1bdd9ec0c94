package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/reminder-board/internal/domain"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the name of the cookie carrying the opaque session token.
const SessionCookie = "session_token"

const ctxUserKey = "currentUser"

// sessionResolver is the subset of AuthUsecase the gate needs.
type sessionResolver interface {
	ResolveSession(ctx context.Context, rawToken string) (*domain.User, error)
}

// RequireUser resolves the session cookie and blocks anonymous callers.
// API paths (/api/...) get a 403; page paths are redirected to the login
// entry point. A resolved but unverified user is sent to the verification
// notice instead of the resource. A nil user from the resolver means
// anonymous, never an error.
func RequireUser(auth sessionResolver, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(SessionCookie)

		user, err := auth.ResolveSession(c.Request.Context(), token)
		if err != nil {
			logger.ErrorContext(c.Request.Context(), "resolve session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Internal server error"})
			return
		}

		if user == nil {
			if isAPIPath(c.Request.URL.Path) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			} else {
				c.Redirect(http.StatusFound, "/auth/login")
				c.Abort()
			}
			return
		}

		if !user.EmailVerified {
			// Unverified users cannot log in, so this only triggers if a
			// session predates an account state rollback. Gate it anyway.
			if isAPIPath(c.Request.URL.Path) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Email not verified"})
			} else {
				c.Redirect(http.StatusFound, "/auth/verification-required")
				c.Abort()
			}
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

// UserFrom returns the authenticated user set by RequireUser, or nil.
func UserFrom(c *gin.Context) *domain.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
