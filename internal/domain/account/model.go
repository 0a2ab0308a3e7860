package account

import (
	"time"

	"github.com/google/uuid"
)

// Role names seeded at install time.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleDoctor     = "doctor"
	RoleNurse      = "nurse"
	RoleReception  = "reception"
	RoleBilling    = "billing"
	RoleLab        = "lab"
	RolePharmacy   = "pharmacy"
)

// Permission keys. Handlers gate routes on these; access tokens carry the
// resolved snapshot.
const (
	PermUserRead   = "user.read"
	PermUserCreate = "user.create"
	PermUserUpdate = "user.update"
	PermUserDelete = "user.delete"

	PermPatientRead   = "patient.read"
	PermPatientCreate = "patient.create"
	PermPatientUpdate = "patient.update"
	PermPatientDelete = "patient.delete"

	PermVitalsRead  = "vitals.read"
	PermVitalsWrite = "vitals.write"

	PermRoleRead         = "role.read"
	PermRoleAssign       = "role.assign"
	PermPermissionRead   = "permission.read"
	PermPermissionAssign = "permission.assign"

	PermAuditRead = "audit.read"

	PermMetricsRead = "metrics.read"
)

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	FullName     string    `db:"full_name" json:"fullName"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type Role struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
}

type Permission struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Key         string    `db:"key" json:"key"`
	Description string    `db:"description" json:"description"`
}
