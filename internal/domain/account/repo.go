package account

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetActiveByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
}

type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*Role, error)
	GetPermissionByKey(ctx context.Context, key string) (*Permission, error)
	ListRoles(ctx context.Context) ([]*Role, error)
	ListPermissions(ctx context.Context) ([]*Permission, error)

	// RolePermissions returns the permissions granted through every role the
	// user holds.
	RolePermissions(ctx context.Context, userID uuid.UUID) ([]*Permission, error)
	// DirectPermissions returns the permissions granted to the user directly.
	DirectPermissions(ctx context.Context, userID uuid.UUID) ([]*Permission, error)

	AssignRole(ctx context.Context, userID, roleID uuid.UUID) error
	GrantPermission(ctx context.Context, userID, permissionID uuid.UUID) error
}
