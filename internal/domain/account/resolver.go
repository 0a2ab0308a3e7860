package account

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Resolver computes a user's effective permission set: the union of every
// permission granted through the user's roles and every permission granted
// directly, deduplicated by key.
type Resolver struct {
	roles RoleRepository
}

func NewResolver(roles RoleRepository) *Resolver {
	return &Resolver{roles: roles}
}

// Resolve returns the sorted effective permission keys for the user. A user
// with no grants resolves to an empty, non-nil slice.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rolePerms, err := r.roles.RolePermissions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve role permissions: %w", err)
	}
	directPerms, err := r.roles.DirectPermissions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve direct permissions: %w", err)
	}

	seen := make(map[string]struct{}, len(rolePerms)+len(directPerms))
	keys := make([]string, 0, len(rolePerms)+len(directPerms))
	for _, p := range rolePerms {
		if _, ok := seen[p.Key]; !ok {
			seen[p.Key] = struct{}{}
			keys = append(keys, p.Key)
		}
	}
	for _, p := range directPerms {
		if _, ok := seen[p.Key]; !ok {
			seen[p.Key] = struct{}{}
			keys = append(keys, p.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
