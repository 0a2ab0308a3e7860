package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeRepo struct {
	byID map[uuid.UUID]*Patient
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[uuid.UUID]*Patient{}}
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Create(_ context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakeRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := f.byID[p.ID]; !ok {
		return ErrNotFound
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeRepo) List(context.Context, string, int, int) ([]*Patient, int, error) {
	return nil, 0, nil
}

func validPatient() *Patient {
	return &Patient{
		FirstName: "Ada",
		LastName:  "Lovelace",
		DOB:       time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC),
		Gender:    "female",
		Email:     "ada@clinic.test",
	}
}

func TestService_CreateAndGet(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()
	creator := uuid.New()

	created, err := svc.Create(ctx, validPatient(), creator)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.CreatedBy == nil || *created.CreatedBy != creator {
		t.Error("creator not recorded")
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.FullName() != "Ada Lovelace" {
		t.Errorf("full name = %q", got.FullName())
	}
}

func TestService_Validation(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Patient)
	}{
		{"missing first name", func(p *Patient) { p.FirstName = " " }},
		{"missing last name", func(p *Patient) { p.LastName = "" }},
		{"missing dob", func(p *Patient) { p.DOB = time.Time{} }},
		{"bad gender", func(p *Patient) { p.Gender = "unknown" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPatient()
			tt.mutate(p)
			if _, err := svc.Create(ctx, p, uuid.New()); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestService_UpdateAndDelete(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, validPatient(), uuid.New())
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	created.Phone = "555-0100"
	if _, err := svc.Update(ctx, created); err != nil {
		t.Errorf("Update() error: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	ghost := validPatient()
	ghost.ID = uuid.New()
	if _, err := svc.Update(ctx, ghost); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing patient: %v", err)
	}
}
