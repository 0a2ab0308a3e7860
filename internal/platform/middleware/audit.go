package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinicore/internal/platform/auth"
)

// TrailEntry captures who changed what, when, and from where. It is produced
// for every mutating request under /api/v1/.
type TrailEntry struct {
	ActorID    string
	Action     string // CREATE, UPDATE, DELETE
	Entity     string
	EntityID   string
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// TrailRecorder persists audit trail entries. It is an interface so that
// tests can provide a mock and so this package does not depend on the
// concrete audit store.
type TrailRecorder interface {
	RecordTrail(ctx context.Context, entry TrailEntry)
}

// TrailRecorderFunc is a function adapter for TrailRecorder.
type TrailRecorderFunc func(ctx context.Context, entry TrailEntry)

func (f TrailRecorderFunc) RecordTrail(ctx context.Context, entry TrailEntry) {
	f(ctx, entry)
}

// AuditTrail returns middleware that records every mutating request under
// /api/v1/ to the audit trail, attributed to the authenticated user. Auth
// endpoints are skipped: the authentication service writes its own entries
// with more precise action codes.
func AuditTrail(logger zerolog.Logger, recorder TrailRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !isTrailPath(path) || !isMutation(req.Method) {
				return next(c)
			}

			// Execute the handler first so the response status is known.
			err := next(c)

			entry := TrailEntry{
				ActorID:    auth.UserIDFromContext(req.Context()),
				Action:     methodToAction(req.Method),
				Entity:     extractEntity(path),
				EntityID:   c.Param("id"),
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				Path:       path,
				Method:     req.Method,
				StatusCode: c.Response().Status,
				Timestamp:  time.Now().UTC(),
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			if recorder != nil {
				recorder.RecordTrail(req.Context(), entry)
			}

			logger.Info().
				Str("type", "audit_trail").
				Str("request_id", entry.RequestID).
				Str("actor_id", entry.ActorID).
				Str("action", entry.Action).
				Str("entity", entry.Entity).
				Str("entity_id", entry.EntityID).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("resource_mutation")

			return err
		}
	}
}

func isTrailPath(path string) bool {
	if strings.HasPrefix(path, "/api/v1/auth/") {
		return false
	}
	return strings.HasPrefix(path, "/api/v1/")
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "CREATE"
	case http.MethodPut, http.MethodPatch:
		return "UPDATE"
	case http.MethodDelete:
		return "DELETE"
	}
	return "UNKNOWN"
}

// extractEntity parses the resource name from an API path, e.g.
// /api/v1/patients/123 -> patients.
func extractEntity(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	if len(segments) > 0 && segments[0] != "" {
		return segments[0]
	}
	return "unknown"
}
