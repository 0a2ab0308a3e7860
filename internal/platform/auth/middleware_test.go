package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

type denialCapture struct {
	mu      sync.Mutex
	denials []Denial
}

func (d *denialCapture) RecordDenial(_ context.Context, den Denial) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.denials = append(d.denials, den)
}

func (d *denialCapture) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.denials)
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestAuthenticate(t *testing.T) {
	codec := testCodec()
	valid, err := codec.SignAccess("user-1", "nurse@clinic.test", []string{"vitals.read"})
	if err != nil {
		t.Fatalf("SignAccess() error: %v", err)
	}

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc123", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + valid, http.StatusOK},
	}

	e := echo.New()
	mw := Authenticate(codec)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/vitals", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := mw(okHandler)(c)
			status := rec.Code
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
		})
	}
}

func TestAuthenticate_AttachesIdentity(t *testing.T) {
	codec := testCodec()
	token, err := codec.SignAccess("user-7", "doc@clinic.test", []string{"patient.read", "vitals.write"})
	if err != nil {
		t.Fatalf("SignAccess() error: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID, gotEmail string
	var gotPerms []string
	handler := Authenticate(codec)(func(c echo.Context) error {
		ctx := c.Request().Context()
		gotID = UserIDFromContext(ctx)
		gotEmail = UserEmailFromContext(ctx)
		gotPerms = PermissionsFromContext(ctx)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if gotID != "user-7" {
		t.Errorf("user id = %q, want user-7", gotID)
	}
	if gotEmail != "doc@clinic.test" {
		t.Errorf("email = %q, want doc@clinic.test", gotEmail)
	}
	if len(gotPerms) != 2 {
		t.Errorf("permissions = %v, want 2 entries", gotPerms)
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	codec := testCodec()
	token, err := codec.SignAccess("user-1", "a@b.test", nil)
	if err != nil {
		t.Fatalf("SignAccess() error: %v", err)
	}
	codec.now = func() time.Time { return time.Now().Add(time.Hour) }

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c := e.NewContext(req, httptest.NewRecorder())

	err = Authenticate(codec)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %v", err)
	}
}

func TestRequirePermission_Granted(t *testing.T) {
	capture := &denialCapture{}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vitals", nil)
	ctx := context.WithValue(req.Context(), UserIDKey, "user-1")
	ctx = context.WithValue(ctx, UserPermissionsKey, []string{"patient.read", "vitals.read"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := RequirePermission("vitals.read", capture)(okHandler)(c); err != nil {
		t.Fatalf("expected pass-through, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if capture.count() != 0 {
		t.Errorf("granted request must not record a denial, got %d", capture.count())
	}
}

func TestRequirePermission_Denied(t *testing.T) {
	capture := &denialCapture{}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/vitals", nil)
	req.Header.Set("User-Agent", "test-agent")
	ctx := context.WithValue(req.Context(), UserIDKey, "user-1")
	ctx = context.WithValue(ctx, UserPermissionsKey, []string{"vitals.read"})
	req = req.WithContext(ctx)
	c := e.NewContext(req, httptest.NewRecorder())

	err := RequirePermission("vitals.write", capture)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}

	if capture.count() != 1 {
		t.Fatalf("expected exactly one denial record, got %d", capture.count())
	}
	d := capture.denials[0]
	if d.UserID != "user-1" {
		t.Errorf("denial user = %q, want user-1", d.UserID)
	}
	if d.PermissionKey != "vitals.write" {
		t.Errorf("denial permission = %q, want vitals.write", d.PermissionKey)
	}
	if d.Method != http.MethodPost || d.Path != "/api/v1/vitals" {
		t.Errorf("denial route = %s %s", d.Method, d.Path)
	}
	if d.UserAgent != "test-agent" {
		t.Errorf("denial user agent = %q", d.UserAgent)
	}
}

func TestRequirePermission_Unauthenticated(t *testing.T) {
	capture := &denialCapture{}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vitals", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := RequirePermission("vitals.read", capture)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with no identity in context, got %v", err)
	}
	if capture.count() != 0 {
		t.Errorf("unauthenticated request must not record a denial, got %d", capture.count())
	}
}

func TestRequirePermission_NilRecorder(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserIDKey, "user-1")
	ctx = context.WithValue(ctx, UserPermissionsKey, []string{})
	req = req.WithContext(ctx)
	c := e.NewContext(req, httptest.NewRecorder())

	err := RequirePermission("audit.read", nil)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with nil recorder, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"", "", false},
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"BEARER abc", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("bearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
