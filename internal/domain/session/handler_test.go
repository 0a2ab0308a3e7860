package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/auth"
)

func handlerFixture(t *testing.T) (*Handler, *fixture) {
	t.Helper()
	fx := newFixture(t)
	return NewHandler(fx.svc), fx
}

func postJSON(t *testing.T, h echo.HandlerFunc, path, body string, ctxUserID string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if ctxUserID != "" {
		ctx := context.WithValue(req.Context(), auth.UserIDKey, ctxUserID)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func TestHandler_Login(t *testing.T) {
	h, fx := handlerFixture(t)

	rec, err := postJSON(t, h.Login, "/api/v1/auth/login",
		`{"email":"nurse@clinic.test","password":"correct-password"}`, "")
	if err != nil {
		t.Fatalf("Login handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected token pair in response")
	}
	if resp.User.Email != fx.user.Email {
		t.Errorf("user email = %q", resp.User.Email)
	}
	if resp.User.Permissions == nil {
		t.Error("permissions must be present, not null")
	}
}

func TestHandler_LoginRejections(t *testing.T) {
	h, _ := handlerFixture(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad credentials", `{"email":"nurse@clinic.test","password":"wrong"}`, http.StatusUnauthorized},
		{"unknown email", `{"email":"ghost@clinic.test","password":"whatever"}`, http.StatusUnauthorized},
		{"missing fields", `{"email":"nurse@clinic.test"}`, http.StatusBadRequest},
		{"malformed body", `{]`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := postJSON(t, h.Login, "/api/v1/auth/login", tt.body, "")
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != tt.want {
				t.Errorf("error = %v, want status %d", err, tt.want)
			}
		})
	}
}

func TestHandler_RefreshFlow(t *testing.T) {
	h, fx := handlerFixture(t)

	login, err := fx.svc.Login(context.Background(), "nurse@clinic.test", "correct-password", RequestContext{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rec, err := postJSON(t, h.Refresh, "/api/v1/auth/refresh",
		`{"refreshToken":"`+login.Tokens.RefreshToken+`"}`, "")
	if err != nil {
		t.Fatalf("Refresh handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	// Replaying the consumed token through the handler yields 401.
	_, err = postJSON(t, h.Refresh, "/api/v1/auth/refresh",
		`{"refreshToken":"`+login.Tokens.RefreshToken+`"}`, "")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("replay: %v, want 401", err)
	}
}

func TestHandler_Logout(t *testing.T) {
	h, fx := handlerFixture(t)

	login, err := fx.svc.Login(context.Background(), "nurse@clinic.test", "correct-password", RequestContext{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rec, err := postJSON(t, h.Logout, "/api/v1/auth/logout",
		`{"refreshToken":"`+login.Tokens.RefreshToken+`"}`, fx.user.ID.String())
	if err != nil {
		t.Fatalf("Logout handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if fx.ledger.active(fx.user.ID) != 0 {
		t.Errorf("active sessions after logout = %d", fx.ledger.active(fx.user.ID))
	}
}

func TestHandler_LogoutRequiresIdentity(t *testing.T) {
	h, _ := handlerFixture(t)

	_, err := postJSON(t, h.Logout, "/api/v1/auth/logout", `{}`, "")
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without identity, got %v", err)
	}
}

func TestHandler_ChangePassword(t *testing.T) {
	h, fx := handlerFixture(t)

	rec, err := postJSON(t, h.ChangePassword, "/api/v1/auth/change-password",
		`{"oldPassword":"correct-password","newPassword":"brand-new-password"}`, fx.user.ID.String())
	if err != nil {
		t.Fatalf("ChangePassword handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}

	_, err = postJSON(t, h.ChangePassword, "/api/v1/auth/change-password",
		`{"oldPassword":"correct-password","newPassword":"another-password"}`, fx.user.ID.String())
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("old password must be rejected, got %v", err)
	}
}
