package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/metrics"
	"github.com/clinicore/clinicore/internal/platform/middleware"
)

// DenialRecorder adapts the Service to the authorization middleware's
// recorder interface. Every denial becomes one ACCESS_DENIED entry.
func (s *Service) DenialRecorder() auth.DenialRecorder {
	return auth.DenialRecorderFunc(func(ctx context.Context, d auth.Denial) {
		var userID *uuid.UUID
		if id, err := uuid.Parse(d.UserID); err == nil {
			userID = &id
		}
		metrics.RecordAccessDenied(d.PermissionKey)
		s.Record(ctx, &Entry{
			UserID: userID,
			Action: ActionAccessDenied,
			Entity: "route",
			Details: map[string]interface{}{
				"permission": d.PermissionKey,
				"method":     d.Method,
				"path":       d.Path,
			},
			IPAddress: d.IPAddress,
			UserAgent: d.UserAgent,
		})
	})
}

// TrailRecorder adapts the Service to the mutation trail middleware.
func (s *Service) TrailRecorder() middleware.TrailRecorder {
	return middleware.TrailRecorderFunc(func(ctx context.Context, t middleware.TrailEntry) {
		var userID *uuid.UUID
		if id, err := uuid.Parse(t.ActorID); err == nil {
			userID = &id
		}
		var entityID *uuid.UUID
		if id, err := uuid.Parse(t.EntityID); err == nil {
			entityID = &id
		}
		s.Record(ctx, &Entry{
			UserID:   userID,
			Action:   t.Action,
			Entity:   t.Entity,
			EntityID: entityID,
			Details: map[string]interface{}{
				"method":     t.Method,
				"path":       t.Path,
				"status":     t.StatusCode,
				"request_id": t.RequestID,
			},
			IPAddress: t.IPAddress,
			UserAgent: t.UserAgent,
		})
	})
}
