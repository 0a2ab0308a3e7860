package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/middleware"
)

type fakeRepo struct {
	entries   []*Entry
	insertErr error
}

func (f *fakeRepo) Insert(_ context.Context, e *Entry) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeRepo) List(_ context.Context, filter Filter, limit, offset int) ([]*Entry, int, error) {
	var matched []*Entry
	for _, e := range f.entries {
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.Entity != "" && e.Entity != filter.Entity {
			continue
		}
		if filter.UserID != nil && (e.UserID == nil || *e.UserID != *filter.UserID) {
			continue
		}
		matched = append(matched, e)
	}
	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func TestService_Record(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, zerolog.Nop())

	uid := uuid.New()
	svc.Record(context.Background(), &Entry{UserID: &uid, Action: ActionLogin, Entity: "auth"})

	if len(repo.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(repo.entries))
	}
	if repo.entries[0].Action != ActionLogin {
		t.Errorf("action = %q", repo.entries[0].Action)
	}
}

func TestService_RecordSwallowsFailures(t *testing.T) {
	repo := &fakeRepo{insertErr: errors.New("db down")}
	svc := NewService(repo, zerolog.Nop())

	// Must not panic or surface the error.
	svc.Record(context.Background(), &Entry{Action: ActionLogin, Entity: "auth"})
}

func TestService_ListFilters(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, zerolog.Nop())
	ctx := context.Background()

	uid := uuid.New()
	svc.Record(ctx, &Entry{UserID: &uid, Action: ActionLogin, Entity: "auth"})
	svc.Record(ctx, &Entry{UserID: &uid, Action: ActionLogout, Entity: "auth"})
	svc.Record(ctx, &Entry{Action: ActionAccessDenied, Entity: "route"})

	entries, total, err := svc.List(ctx, Filter{Action: ActionLogin}, 10, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Errorf("filtered list: total=%d len=%d, want 1/1", total, len(entries))
	}

	entries, total, err = svc.List(ctx, Filter{UserID: &uid}, 10, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if total != 2 {
		t.Errorf("by-user total = %d, want 2", total)
	}
	_ = entries
}

func TestDenialRecorder(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, zerolog.Nop())
	recorder := svc.DenialRecorder()

	uid := uuid.New()
	recorder.RecordDenial(context.Background(), auth.Denial{
		UserID:        uid.String(),
		PermissionKey: "vitals.write",
		Method:        "POST",
		Path:          "/api/v1/vitals",
		IPAddress:     "10.0.0.1",
	})

	if len(repo.entries) != 1 {
		t.Fatalf("expected one ACCESS_DENIED entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.Action != ActionAccessDenied {
		t.Errorf("action = %q, want ACCESS_DENIED", e.Action)
	}
	if e.UserID == nil || *e.UserID != uid {
		t.Error("denial must be attributed to the denied user")
	}
	if e.Details["permission"] != "vitals.write" {
		t.Errorf("details = %v", e.Details)
	}
}

func TestTrailRecorder(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, zerolog.Nop())
	recorder := svc.TrailRecorder()

	uid := uuid.New()
	entityID := uuid.New()
	recorder.RecordTrail(context.Background(), middleware.TrailEntry{
		ActorID:    uid.String(),
		Action:     "UPDATE",
		Entity:     "patients",
		EntityID:   entityID.String(),
		Method:     "PUT",
		Path:       "/api/v1/patients/" + entityID.String(),
		StatusCode: 200,
	})

	if len(repo.entries) != 1 {
		t.Fatalf("expected one trail entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.Action != ActionUpdate || e.Entity != "patients" {
		t.Errorf("entry = %s %s", e.Action, e.Entity)
	}
	if e.EntityID == nil || *e.EntityID != entityID {
		t.Error("entity id not carried through")
	}
}
