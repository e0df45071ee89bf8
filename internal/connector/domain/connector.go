package domain

import "time"

// Status tracks a connector's lifecycle. "working" is transient: set while
// an ingest cycle is reading from the connector.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusWorking      Status = "working"
	StatusFailed       Status = "failed"
)

// Connector is one user's link to an external source. One row per
// (user, kind); reconnecting upserts. Access and refresh tokens are stored
// sealed and never leave the connector usecase in plaintext.
type Connector struct {
	ID           string            `json:"id" gorm:"primaryKey"`
	UserID       string            `json:"user_id" gorm:"not null;uniqueIndex:idx_connectors_user_kind"`
	Kind         string            `json:"kind" gorm:"not null;uniqueIndex:idx_connectors_user_kind"`
	Status       Status            `json:"status" gorm:"not null;default:disconnected"`
	Scopes       []string          `json:"scopes,omitempty" gorm:"serializer:json"`
	AccessToken  string            `json:"-"`
	RefreshToken string            `json:"-"`
	ExpiresAt    *time.Time        `json:"expires_at,omitempty"`
	Meta         map[string]string `json:"meta,omitempty" gorm:"serializer:json"`
	LastChecked  *time.Time        `json:"last_checked,omitempty"`
	Message      string            `json:"message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
