package vitals

import (
	"time"

	"github.com/google/uuid"
)

// Reading is one set of vital signs recorded for a patient.
type Reading struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patientId"`
	RecordedBy      uuid.UUID `db:"recorded_by" json:"recordedBy"`
	Temperature     *float64  `db:"temperature" json:"temperature,omitempty"`
	HeartRate       *int      `db:"heart_rate" json:"heartRate,omitempty"`
	BloodPressure   string    `db:"blood_pressure" json:"bloodPressure,omitempty"`
	RespiratoryRate *int      `db:"respiratory_rate" json:"respiratoryRate,omitempty"`
	Notes           string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}
