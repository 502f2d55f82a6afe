package dtos

import (
	"time"

	"infinite-experiment/skyboard/internal/constants"
)

// Notice is a transient user-facing notification
type Notice struct {
	ID        string                `json:"id"`
	Level     constants.NoticeLevel `json:"level"`
	Message   string                `json:"message"`
	CreatedAt time.Time             `json:"created_at"`
	ExpiresAt time.Time             `json:"expires_at"`
}

// Expired reports whether the notice should no longer be shown at now
func (n Notice) Expired(now time.Time) bool {
	return !n.ExpiresAt.IsZero() && !now.Before(n.ExpiresAt)
}
