package session

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one row in the refresh token ledger. Only the sha256
// fingerprint of the token is stored, never the token itself.
type RefreshToken struct {
	ID               uuid.UUID  `db:"id"`
	UserID           uuid.UUID  `db:"user_id"`
	TokenFingerprint string     `db:"token_fingerprint"`
	ExpiresAt        time.Time  `db:"expires_at"`
	RevokedAt        *time.Time `db:"revoked_at"`
	UserAgent        string     `db:"user_agent"`
	IPAddress        string     `db:"ip_address"`
	CreatedAt        time.Time  `db:"created_at"`
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Identity is the user summary returned alongside a token pair.
type Identity struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Permissions []string  `json:"permissions"`
}

// LoginResult bundles the issued tokens with the authenticated identity.
type LoginResult struct {
	Tokens TokenPair
	User   Identity
}

// RequestContext carries client metadata attached to ledger rows and audit
// entries.
type RequestContext struct {
	UserAgent string
	IPAddress string
}
