package handler_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/reminder-board/internal/domain"
	"github.com/ErlanBelekov/reminder-board/internal/transport/http/handler"
	"github.com/ErlanBelekov/reminder-board/internal/usecase"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	register             func(ctx context.Context, email, password string) (*domain.User, error)
	verifyEmail          func(ctx context.Context, rawToken string) error
	authenticate         func(ctx context.Context, email, password string, remember bool) (*usecase.LoginResult, error)
	requestPasswordReset func(ctx context.Context, email string) error
	resetPassword        func(ctx context.Context, rawToken, newPassword string) error
	logout               func(ctx context.Context, rawToken string) error
	listSessions         func(ctx context.Context, userID int64) ([]*domain.Session, error)
	revokeSession        func(ctx context.Context, userID, sessionID int64) error
}

func (f *fakeAuthUsecase) Register(ctx context.Context, email, password string) (*domain.User, error) {
	return f.register(ctx, email, password)
}

func (f *fakeAuthUsecase) VerifyEmail(ctx context.Context, rawToken string) error {
	return f.verifyEmail(ctx, rawToken)
}

func (f *fakeAuthUsecase) Authenticate(ctx context.Context, email, password string, remember bool) (*usecase.LoginResult, error) {
	return f.authenticate(ctx, email, password, remember)
}

func (f *fakeAuthUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	return f.requestPasswordReset(ctx, email)
}

func (f *fakeAuthUsecase) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	return f.resetPassword(ctx, rawToken, newPassword)
}

func (f *fakeAuthUsecase) Logout(ctx context.Context, rawToken string) error {
	return f.logout(ctx, rawToken)
}

func (f *fakeAuthUsecase) ListSessions(ctx context.Context, userID int64) ([]*domain.Session, error) {
	return f.listSessions(ctx, userID)
}

func (f *fakeAuthUsecase) RevokeSession(ctx context.Context, userID, sessionID int64) error {
	return f.revokeSession(ctx, userID, sessionID)
}

func newAuthEngine(uc *fakeAuthUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewAuthHandler(uc, false, logger)

	r := gin.New()
	r.POST("/auth/signup", h.Signup)
	r.GET("/auth/verify", h.Verify)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
	r.POST("/auth/forgot-password", h.ForgotPassword)
	r.POST("/auth/reset-password", h.ResetPassword)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// ---- Signup ----

func TestSignup_InvalidJSON_Returns400(t *testing.T) {
	w := postJSON(newAuthEngine(&fakeAuthUsecase{}), "/auth/signup", `{bad json}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSignup_PasswordMismatch_Returns400(t *testing.T) {
	w := postJSON(newAuthEngine(&fakeAuthUsecase{}), "/auth/signup",
		`{"email":"a@b.com","password":"Abcdefg123!","confirm_password":"Different123!"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSignup_DuplicateEmail_Returns409(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/signup",
		`{"email":"a@b.com","password":"Abcdefg123!","confirm_password":"Abcdefg123!"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestSignup_WeakPassword_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrWeakPassword
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/signup",
		`{"email":"a@b.com","password":"weak","confirm_password":"weak"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSignup_OverlongPassword_Returns400(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrPasswordTooLong
		},
	}
	long := strings.Repeat("a", 70) + "1!extra-tail"
	w := postJSON(newAuthEngine(uc), "/auth/signup",
		`{"email":"a@b.com","password":"`+long+`","confirm_password":"`+long+`"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (user-correctable, not a server failure)", w.Code)
	}
}

func TestSignup_Success_Returns201(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, email, _ string) (*domain.User, error) {
			return &domain.User{ID: 1, Email: email, CreatedAt: time.Now()}, nil
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/signup",
		`{"email":"a@b.com","password":"Abcdefg123!","confirm_password":"Abcdefg123!"}`)
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"a@b.com"`) {
		t.Errorf("body %q does not echo the email", w.Body.String())
	}
}

// ---- Verify ----

func TestVerify_Outcomes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"verified", nil, http.StatusOK},
		{"already verified", domain.ErrAlreadyVerified, http.StatusOK},
		{"invalid token", domain.ErrTokenInvalid, http.StatusUnauthorized},
		{"storage failure", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				verifyEmail: func(_ context.Context, _ string) error { return tc.err },
			}
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/auth/verify?token=tok", nil)
			newAuthEngine(uc).ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

// ---- Login ----

func TestLogin_InvalidCredentials_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		authenticate: func(_ context.Context, _, _ string, _ bool) (*usecase.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/login", `{"email":"a@b.com","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLogin_Unverified_Returns403(t *testing.T) {
	uc := &fakeAuthUsecase{
		authenticate: func(_ context.Context, _, _ string, _ bool) (*usecase.LoginResult, error) {
			return nil, domain.ErrEmailNotVerified
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/login", `{"email":"a@b.com","password":"Abcdefg123!"}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestLogin_Success_SetsSessionCookie(t *testing.T) {
	expiresAt := time.Now().Add(24 * time.Hour)
	uc := &fakeAuthUsecase{
		authenticate: func(_ context.Context, email, _ string, _ bool) (*usecase.LoginResult, error) {
			return &usecase.LoginResult{
				Token:     "raw-session-token",
				ExpiresAt: expiresAt,
				User:      &domain.User{ID: 1, Email: email, EmailVerified: true},
			}, nil
		},
	}
	w := postJSON(newAuthEngine(uc), "/auth/login", `{"email":"a@b.com","password":"Abcdefg123!"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	cookies := w.Result().Cookies()
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == "session_token" {
			session = c
		}
	}
	if session == nil {
		t.Fatal("session_token cookie not set")
	}
	if session.Value != "raw-session-token" {
		t.Errorf("cookie value = %q", session.Value)
	}
	if !session.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if session.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie SameSite = %v, want Lax", session.SameSite)
	}
	if session.MaxAge <= 0 {
		t.Errorf("cookie MaxAge = %d, want positive", session.MaxAge)
	}
}

// ---- Logout ----

func TestLogout_ClearsCookieEvenOnUsecaseError(t *testing.T) {
	uc := &fakeAuthUsecase{
		logout: func(_ context.Context, _ string) error { return errors.New("db down") },
	}
	r := newAuthEngine(uc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "tok"})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Name != "session_token" || cookies[0].MaxAge >= 0 {
		t.Error("session cookie was not cleared")
	}
}

// ---- Forgot password ----

func TestForgotPassword_AlwaysReturns202(t *testing.T) {
	for name, ucErr := range map[string]error{
		"success":         nil,
		"storage failure": errors.New("db down"),
	} {
		t.Run(name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				requestPasswordReset: func(_ context.Context, _ string) error { return ucErr },
			}
			w := postJSON(newAuthEngine(uc), "/auth/forgot-password", `{"email":"a@b.com"}`)
			if w.Code != http.StatusAccepted {
				t.Errorf("status = %d, want 202 (must not reveal errors)", w.Code)
			}
		})
	}
}

// ---- Reset password ----

func TestResetPassword_Outcomes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"reset", nil, http.StatusNoContent},
		{"invalid or expired", domain.ErrTokenInvalid, http.StatusUnauthorized},
		{"weak password", domain.ErrWeakPassword, http.StatusBadRequest},
		{"overlong password", domain.ErrPasswordTooLong, http.StatusBadRequest},
		{"storage failure", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeAuthUsecase{
				resetPassword: func(_ context.Context, _, _ string) error { return tc.err },
			}
			w := postJSON(newAuthEngine(uc), "/auth/reset-password",
				`{"token":"tok","password":"Newpass123!","confirm_password":"Newpass123!"}`)
			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
		})
	}
}

func TestResetPassword_Mismatch_Returns400(t *testing.T) {
	w := postJSON(newAuthEngine(&fakeAuthUsecase{}), "/auth/reset-password",
		`{"token":"tok","password":"Newpass123!","confirm_password":"Other123!"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
