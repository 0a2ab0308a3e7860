package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey          contextKey = "user_id"
	UserEmailKey       contextKey = "user_email"
	UserPermissionsKey contextKey = "user_permissions"
)

// Denial describes a failed authorization decision for the audit trail.
type Denial struct {
	UserID        string
	PermissionKey string
	Method        string
	Path          string
	IPAddress     string
	UserAgent     string
}

// DenialRecorder receives ACCESS_DENIED events. Implementations must never
// fail the request; recording is fire-and-forget from the middleware's
// point of view.
type DenialRecorder interface {
	RecordDenial(ctx context.Context, d Denial)
}

// DenialRecorderFunc is a function adapter for DenialRecorder.
type DenialRecorderFunc func(ctx context.Context, d Denial)

func (f DenialRecorderFunc) RecordDenial(ctx context.Context, d Denial) {
	f(ctx, d)
}

// Authenticate returns middleware that verifies the bearer access token and
// attaches the decoded identity and permission snapshot to the request
// context. A missing or invalid token yields 401 with no audit entry: there
// is no actor to attribute the failure to, and invalid/expired are
// deliberately indistinguishable to the client.
func Authenticate(codec *Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			claims, err := codec.VerifyAccess(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
			ctx = context.WithValue(ctx, UserPermissionsKey, claims.Permissions)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequirePermission returns middleware that allows the request only when the
// caller's permission snapshot contains key. Denials are recorded as
// ACCESS_DENIED audit entries before the 403 is returned.
func RequirePermission(key string, recorder DenialRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			uid := UserIDFromContext(ctx)
			if uid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			for _, granted := range PermissionsFromContext(ctx) {
				if granted == key {
					return next(c)
				}
			}

			if recorder != nil {
				recorder.RecordDenial(ctx, Denial{
					UserID:        uid,
					PermissionKey: key,
					Method:        c.Request().Method,
					Path:          c.Request().URL.Path,
					IPAddress:     c.RealIP(),
					UserAgent:     c.Request().UserAgent(),
				})
			}

			return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
		}
	}
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

func UserEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(UserEmailKey).(string)
	return email
}

func PermissionsFromContext(ctx context.Context) []string {
	perms, _ := ctx.Value(UserPermissionsKey).([]string)
	return perms
}
