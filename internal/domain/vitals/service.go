package vitals

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/patient"
)

// ErrUnknownPatient is returned when a reading references a patient that does
// not exist.
var ErrUnknownPatient = errors.New("unknown patient")

type Service struct {
	repo     Repository
	patients patient.Repository
}

func NewService(repo Repository, patients patient.Repository) *Service {
	return &Service{repo: repo, patients: patients}
}

// Record stores a vitals reading after checking the patient exists and at
// least one measurement is present.
func (s *Service) Record(ctx context.Context, v *Reading, recordedBy uuid.UUID) (*Reading, error) {
	if v.Temperature == nil && v.HeartRate == nil && v.BloodPressure == "" && v.RespiratoryRate == nil {
		return nil, fmt.Errorf("at least one measurement is required")
	}

	if _, err := s.patients.GetByID(ctx, v.PatientID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return nil, ErrUnknownPatient
		}
		return nil, fmt.Errorf("lookup patient: %w", err)
	}

	v.RecordedBy = recordedBy
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Reading, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Reading, int, error) {
	return s.repo.ListForPatient(ctx, patientID, limit, offset)
}
