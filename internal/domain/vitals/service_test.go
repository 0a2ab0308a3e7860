package vitals

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/patient"
)

type fakeRepo struct {
	byID map[uuid.UUID]*Reading
}

func (f *fakeRepo) Create(_ context.Context, r *Reading) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	f.byID[r.ID] = r
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Reading, error) {
	if r, ok := f.byID[id]; ok {
		return r, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) ListForPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Reading, int, error) {
	var out []*Reading
	for _, r := range f.byID {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

type fakePatients struct {
	known map[uuid.UUID]bool
}

func (f *fakePatients) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	if f.known[id] {
		return &patient.Patient{ID: id}, nil
	}
	return nil, patient.ErrNotFound
}

func (f *fakePatients) Create(context.Context, *patient.Patient) error { return nil }
func (f *fakePatients) Update(context.Context, *patient.Patient) error { return nil }
func (f *fakePatients) Delete(context.Context, uuid.UUID) error        { return nil }
func (f *fakePatients) List(context.Context, string, int, int) ([]*patient.Patient, int, error) {
	return nil, 0, nil
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestService_Record(t *testing.T) {
	patientID := uuid.New()
	svc := NewService(
		&fakeRepo{byID: map[uuid.UUID]*Reading{}},
		&fakePatients{known: map[uuid.UUID]bool{patientID: true}},
	)
	ctx := context.Background()
	nurse := uuid.New()

	created, err := svc.Record(ctx, &Reading{
		PatientID:   patientID,
		Temperature: floatPtr(37.2),
		HeartRate:   intPtr(72),
	}, nurse)
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if created.RecordedBy != nurse {
		t.Error("recording nurse not attributed")
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Temperature == nil || *got.Temperature != 37.2 {
		t.Errorf("temperature = %v", got.Temperature)
	}
}

func TestService_Record_UnknownPatient(t *testing.T) {
	svc := NewService(
		&fakeRepo{byID: map[uuid.UUID]*Reading{}},
		&fakePatients{known: map[uuid.UUID]bool{}},
	)

	_, err := svc.Record(context.Background(), &Reading{
		PatientID: uuid.New(),
		HeartRate: intPtr(80),
	}, uuid.New())
	if !errors.Is(err, ErrUnknownPatient) {
		t.Errorf("expected ErrUnknownPatient, got %v", err)
	}
}

func TestService_Record_RequiresMeasurement(t *testing.T) {
	patientID := uuid.New()
	svc := NewService(
		&fakeRepo{byID: map[uuid.UUID]*Reading{}},
		&fakePatients{known: map[uuid.UUID]bool{patientID: true}},
	)

	if _, err := svc.Record(context.Background(), &Reading{PatientID: patientID, Notes: "looks fine"}, uuid.New()); err == nil {
		t.Error("expected error for reading with no measurements")
	}
}
