package session

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the refresh token ledger.
type Repository interface {
	Create(ctx context.Context, t *RefreshToken) error

	// Consume atomically revokes the active, unexpired ledger row with the
	// given fingerprint and returns its user id. Exactly one concurrent
	// caller can win; the rest get ErrNotFound.
	Consume(ctx context.Context, fingerprint string) (uuid.UUID, error)

	// Revoke marks the active row with the given fingerprint revoked.
	Revoke(ctx context.Context, fingerprint string) error

	// RevokeAllForUser revokes every active token of the user and returns
	// how many were revoked.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
