package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/newsboard/internal/middleware"
	"github.com/hitoshi/newsboard/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	signupFn         func(ctx context.Context, username, email, password string) (*model.User, error)
	signinFn         func(ctx context.Context, email, password string) (*model.Session, *model.User, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) Signup(ctx context.Context, username, email, password string) (*model.User, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, username, email, password)
	}
	return &model.User{}, nil
}

func (m *mockAuthService) Signin(ctx context.Context, email, password string) (*model.Session, *model.User, error) {
	if m.signinFn != nil {
		return m.signinFn(ctx, email, password)
	}
	return nil, nil, model.NewInvalidCredentialsError()
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, model.NewUnauthorizedError()
}

var testAuthConfig = AuthHandlerConfig{
	CookieDomain:  "",
	CookieSecure:  false,
	SessionMaxAge: 86400,
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- Signup ---

func TestAuthHandler_Signup_Success_Returns201(t *testing.T) {
	var gotUsername, gotEmail, gotPassword string
	svc := &mockAuthService{
		signupFn: func(ctx context.Context, username, email, password string) (*model.User, error) {
			gotUsername, gotEmail, gotPassword = username, email, password
			return &model.User{ID: "user-1", Username: username, Email: email}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	body := `{"username":"alice","email":"alice@example.com","password":"password-1"}`
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Signup(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if gotUsername != "alice" || gotEmail != "alice@example.com" || gotPassword != "password-1" {
		t.Errorf("service received %q/%q/%q", gotUsername, gotEmail, gotPassword)
	}

	var resp messageResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Message != "Registration successful!" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestAuthHandler_Signup_InvalidJSON_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig)

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()

	h.Signup(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	var body middleware.ErrorResponseBody
	json.NewDecoder(w.Body).Decode(&body)
	if body.Code != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidRequest)
	}
}

func TestAuthHandler_Signup_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name: "バリデーションエラー",
			err: model.NewValidationError([]model.FieldError{
				{Field: "password", Message: "Password must be at least 8 characters long"},
			}),
			wantStatus: http.StatusBadRequest,
			wantCode:   model.ErrCodeValidationFailed,
		},
		{
			name:       "メールアドレス重複",
			err:        model.NewEmailAlreadyRegisteredError(),
			wantStatus: http.StatusBadRequest,
			wantCode:   model.ErrCodeEmailAlreadyRegistered,
		},
		{
			name:       "内部エラー",
			err:        errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   model.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				signupFn: func(ctx context.Context, username, email, password string) (*model.User, error) {
					return nil, tt.err
				},
			}
			h := NewAuthHandler(svc, testAuthConfig)

			req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{}`))
			w := httptest.NewRecorder()

			h.Signup(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body middleware.ErrorResponseBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

// 内部エラーの詳細はレスポンスに含めない
func TestAuthHandler_Signup_InternalError_HidesCause(t *testing.T) {
	svc := &mockAuthService{
		signupFn: func(ctx context.Context, username, email, password string) (*model.User, error) {
			return nil, errors.New("pq: password authentication failed for user \"postgres\"")
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	h.Signup(w, req)

	if strings.Contains(w.Body.String(), "postgres") {
		t.Errorf("response leaks internal error: %s", w.Body.String())
	}
}

// --- Signin ---

func TestAuthHandler_Signin_Success_SetsCookie(t *testing.T) {
	svc := &mockAuthService{
		signinFn: func(ctx context.Context, email, password string) (*model.Session, *model.User, error) {
			return &model.Session{ID: "session-abc", UserID: "user-1", ExpiresAt: time.Now().Add(time.Hour)},
				&model.User{ID: "user-1", Username: "alice", Email: email, PasswordHash: "$2a$10$secret"},
				nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	body := `{"email":"alice@example.com","password":"password-1"}`
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Signin(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cookie := findCookie(resp, middleware.SessionCookieName)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}
	if cookie.Value != "session-abc" {
		t.Errorf("cookie value = %q, want %q", cookie.Value, "session-abc")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if cookie.MaxAge != 86400 {
		t.Errorf("cookie MaxAge = %d, want 86400", cookie.MaxAge)
	}

	raw := w.Body.String()
	if strings.Contains(raw, "secret") || strings.Contains(raw, "password") {
		t.Errorf("response must not contain password hash: %s", raw)
	}

	var out signinResponse
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if out.Message != "Login successful!" {
		t.Errorf("message = %q", out.Message)
	}
	if out.User.Username != "alice" || out.User.ID != "user-1" {
		t.Errorf("user = %+v", out.User)
	}
}

func TestAuthHandler_Signin_InvalidCredentials_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig)

	body := `{"email":"alice@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Signin(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if findCookie(resp, middleware.SessionCookieName) != nil {
		t.Error("no session cookie should be set on failure")
	}
}

// --- Logout ---

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	var deleted string
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			deleted = sessionID
			return nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-abc"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if deleted != "session-abc" {
		t.Errorf("deleted session = %q, want %q", deleted, "session-abc")
	}
	cookie := findCookie(resp, middleware.SessionCookieName)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Errorf("session cookie should be expired, got %+v", cookie)
	}
}

// ログアウト失敗時もCookieはクリアする
func TestAuthHandler_Logout_ServiceError_StillClearsCookie(t *testing.T) {
	svc := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			return errors.New("db down")
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-abc"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if cookie := findCookie(resp, middleware.SessionCookieName); cookie == nil || cookie.MaxAge >= 0 {
		t.Error("session cookie should be cleared")
	}
}

// --- Me ---

func TestAuthHandler_Me_ReturnsUser(t *testing.T) {
	svc := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, sessionID string) (*model.User, error) {
			if sessionID != "session-abc" {
				return nil, model.NewUnauthorizedError()
			}
			return &model.User{ID: "user-1", Username: "alice", Email: "alice@example.com"}, nil
		},
	}
	h := NewAuthHandler(svc, testAuthConfig)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-abc"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var out userResponse
	json.NewDecoder(w.Body).Decode(&out)
	if out != (userResponse{ID: "user-1", Username: "alice", Email: "alice@example.com"}) {
		t.Errorf("user = %+v", out)
	}
}

func TestAuthHandler_Me_NoCookie_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
