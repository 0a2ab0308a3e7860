package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action codes recorded in the audit log.
const (
	ActionLogin          = "LOGIN"
	ActionLogout         = "LOGOUT"
	ActionChangePassword = "CHANGE_PASSWORD"
	ActionAccessDenied   = "ACCESS_DENIED"
	ActionCreate         = "CREATE"
	ActionUpdate         = "UPDATE"
	ActionDelete         = "DELETE"
)

// Entry is one audit log record. UserID is nil for events with no
// attributable actor.
type Entry struct {
	ID        uuid.UUID              `db:"id" json:"id"`
	UserID    *uuid.UUID             `db:"user_id" json:"userId,omitempty"`
	Action    string                 `db:"action" json:"action"`
	Entity    string                 `db:"entity" json:"entity"`
	EntityID  *uuid.UUID             `db:"entity_id" json:"entityId,omitempty"`
	Details   map[string]interface{} `db:"details" json:"details,omitempty"`
	IPAddress string                 `db:"ip_address" json:"ipAddress"`
	UserAgent string                 `db:"user_agent" json:"userAgent"`
	CreatedAt time.Time              `db:"created_at" json:"createdAt"`
}

// Filter narrows List queries. Zero-value fields are ignored.
type Filter struct {
	UserID *uuid.UUID
	Action string
	Entity string
	From   *time.Time
	To     *time.Time
}
