package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinicore/internal/domain/account"
	"github.com/clinicore/clinicore/internal/domain/audit"
	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/metrics"
)

var (
	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password, so responses cannot be used to probe which emails
	// are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for malformed, expired, revoked, or
	// already-used refresh tokens.
	ErrInvalidToken = errors.New("invalid or revoked token")
)

// Service implements the authentication flows: login, refresh, logout, and
// password change.
type Service struct {
	users    account.UserRepository
	resolver *account.Resolver
	ledger   Repository
	hasher   *auth.Hasher
	codec    *auth.Codec
	auditor  *audit.Service
	logger   zerolog.Logger

	refreshTTL time.Duration
}

func NewService(
	users account.UserRepository,
	resolver *account.Resolver,
	ledger Repository,
	hasher *auth.Hasher,
	codec *auth.Codec,
	auditor *audit.Service,
	logger zerolog.Logger,
	refreshTTL time.Duration,
) *Service {
	return &Service{
		users:      users,
		resolver:   resolver,
		ledger:     ledger,
		hasher:     hasher,
		codec:      codec,
		auditor:    auditor,
		logger:     logger,
		refreshTTL: refreshTTL,
	}
}

// Login verifies the credentials and issues a token pair. The refresh token's
// fingerprint is recorded in the ledger.
func (s *Service) Login(ctx context.Context, email, password string, rc RequestContext) (*LoginResult, error) {
	user, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			metrics.RecordAuthAttempt("login", "failure")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.RecordAuthAttempt("login", "failure")
		return nil, ErrInvalidCredentials
	}

	result, err := s.issue(ctx, user, rc)
	if err != nil {
		return nil, err
	}

	metrics.RecordAuthAttempt("login", "success")
	s.auditor.Record(ctx, &audit.Entry{
		UserID:    &user.ID,
		Action:    audit.ActionLogin,
		Entity:    "auth",
		IPAddress: rc.IPAddress,
		UserAgent: rc.UserAgent,
	})
	return result, nil
}

// Refresh rotates a refresh token: the presented token is atomically revoked
// and a fresh pair is issued. A token that is expired, revoked, or already
// rotated is rejected. Refreshes are not audited; they are routine renewals,
// not security events.
func (s *Service) Refresh(ctx context.Context, rawToken string, rc RequestContext) (*LoginResult, error) {
	claims, err := s.codec.VerifyRefresh(rawToken)
	if err != nil {
		metrics.RecordAuthAttempt("refresh", "failure")
		return nil, ErrInvalidToken
	}

	userID, err := s.ledger.Consume(ctx, auth.Fingerprint(rawToken))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.RecordAuthAttempt("refresh", "failure")
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}

	// The ledger row must belong to the token's subject.
	if claims.Subject != userID.String() {
		metrics.RecordAuthAttempt("refresh", "failure")
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.Active {
		return nil, ErrInvalidToken
	}

	result, err := s.issue(ctx, user, rc)
	if err != nil {
		return nil, err
	}
	metrics.RecordAuthAttempt("refresh", "success")
	return result, nil
}

// Logout revokes the presented refresh token. With everywhere set, or when no
// token is presented, every active session of the user is revoked instead.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, rawToken string, everywhere bool, rc RequestContext) error {
	scope := "current"
	if everywhere || rawToken == "" {
		scope = "all"
		if _, err := s.ledger.RevokeAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
	} else {
		if err := s.ledger.Revoke(ctx, auth.Fingerprint(rawToken)); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("revoke session: %w", err)
		}
	}

	metrics.RecordAuthAttempt("logout", "success")
	s.auditor.Record(ctx, &audit.Entry{
		UserID:    &userID,
		Action:    audit.ActionLogout,
		Entity:    "auth",
		Details:   map[string]interface{}{"scope": scope},
		IPAddress: rc.IPAddress,
		UserAgent: rc.UserAgent,
	})
	return nil
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes every active session so stolen refresh tokens die with the old
// password.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string, rc RequestContext) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(current, user.PasswordHash) {
		metrics.RecordAuthAttempt("change_password", "failure")
		return ErrInvalidCredentials
	}
	if len(next) < 8 {
		return account.ErrWeakPassword
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	revoked, err := s.ledger.RevokeAllForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	metrics.RecordAuthAttempt("change_password", "success")
	s.auditor.Record(ctx, &audit.Entry{
		UserID:    &userID,
		Action:    audit.ActionChangePassword,
		Entity:    "auth",
		Details:   map[string]interface{}{"sessions_revoked": revoked},
		IPAddress: rc.IPAddress,
		UserAgent: rc.UserAgent,
	})
	return nil
}

// issue resolves the user's permission snapshot, signs a token pair, and
// records the refresh token in the ledger.
func (s *Service) issue(ctx context.Context, user *account.User, rc RequestContext) (*LoginResult, error) {
	permissions, err := s.resolver.Resolve(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	access, err := s.codec.SignAccess(user.ID.String(), user.Email, permissions)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.codec.SignRefresh(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.ledger.Create(ctx, &RefreshToken{
		UserID:           user.ID,
		TokenFingerprint: auth.Fingerprint(refresh),
		ExpiresAt:        time.Now().Add(s.refreshTTL),
		UserAgent:        rc.UserAgent,
		IPAddress:        rc.IPAddress,
	}); err != nil {
		return nil, fmt.Errorf("record refresh token: %w", err)
	}

	return &LoginResult{
		Tokens: TokenPair{AccessToken: access, RefreshToken: refresh},
		User: Identity{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.FullName,
			Permissions: permissions,
		},
	}, nil
}
