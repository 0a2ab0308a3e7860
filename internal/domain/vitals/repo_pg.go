package vitals

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("vitals reading not found")

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

const readingCols = `id, patient_id, recorded_by, temperature, heart_rate, blood_pressure, respiratory_rate, notes, created_at`

func scanReading(row pgx.Row) (*Reading, error) {
	var v Reading
	err := row.Scan(&v.ID, &v.PatientID, &v.RecordedBy, &v.Temperature, &v.HeartRate,
		&v.BloodPressure, &v.RespiratoryRate, &v.Notes, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *RepoPG) Create(ctx context.Context, v *Reading) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	q := `INSERT INTO vitals (id, patient_id, recorded_by, temperature, heart_rate, blood_pressure, respiratory_rate, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`
	return r.pool.QueryRow(ctx, q,
		v.ID, v.PatientID, v.RecordedBy, v.Temperature, v.HeartRate,
		v.BloodPressure, v.RespiratoryRate, v.Notes).
		Scan(&v.CreatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Reading, error) {
	q := fmt.Sprintf("SELECT %s FROM vitals WHERE id = $1", readingCols)
	return scanReading(r.pool.QueryRow(ctx, q, id))
}

func (r *RepoPG) ListForPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Reading, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM vitals WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM vitals WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3", readingCols)
	rows, err := r.pool.Query(ctx, q, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var readings []*Reading
	for rows.Next() {
		v, err := scanReading(rows)
		if err != nil {
			return nil, 0, err
		}
		readings = append(readings, v)
	}
	return readings, total, rows.Err()
}
