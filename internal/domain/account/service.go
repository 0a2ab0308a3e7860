package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/platform/auth"
)

var (
	ErrEmailTaken        = errors.New("email already registered")
	ErrWeakPassword      = errors.New("password too short")
	ErrUnknownRole       = errors.New("unknown role")
	ErrUnknownPermission = errors.New("unknown permission")
)

const minPasswordLength = 8

// Service manages user accounts and their role and permission grants.
type Service struct {
	users    UserRepository
	roles    RoleRepository
	resolver *Resolver
	hasher   *auth.Hasher
}

func NewService(users UserRepository, roles RoleRepository, resolver *Resolver, hasher *auth.Hasher) *Service {
	return &Service{users: users, roles: roles, resolver: resolver, hasher: hasher}
}

// CreateUser provisions an active account with a hashed password and the
// given role.
func (s *Service) CreateUser(ctx context.Context, email, fullName, password, roleName string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	if existing, err := s.users.GetActiveByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnknownRole
		}
		return nil, fmt.Errorf("lookup role: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u := &User{Email: email, FullName: fullName, PasswordHash: hash, Active: true}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if err := s.roles.AssignRole(ctx, u.ID, role.ID); err != nil {
		return nil, fmt.Errorf("assign role: %w", err)
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	return s.roles.ListRoles(ctx)
}

func (s *Service) ListPermissions(ctx context.Context) ([]*Permission, error) {
	return s.roles.ListPermissions(ctx)
}

// AssignRole grants the named role to the user. The new grant takes effect in
// access tokens issued after the user's next login or refresh.
func (s *Service) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnknownRole
		}
		return err
	}
	return s.roles.AssignRole(ctx, userID, role.ID)
}

// GrantPermission grants a permission directly to the user, bypassing roles.
func (s *Service) GrantPermission(ctx context.Context, userID uuid.UUID, permissionKey string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	perm, err := s.roles.GetPermissionByKey(ctx, permissionKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUnknownPermission
		}
		return err
	}
	return s.roles.GrantPermission(ctx, userID, perm.ID)
}

// EffectivePermissions resolves the user's current permission set.
func (s *Service) EffectivePermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.resolver.Resolve(ctx, userID)
}
