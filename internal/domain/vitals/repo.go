package vitals

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Reading) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reading, error)
	ListForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Reading, int, error)
}
