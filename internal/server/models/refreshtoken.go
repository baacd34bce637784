package models

import "time"

// RefreshToken is a persisted long-lived credential. A token must both
// verify cryptographically and be present in storage to be trusted, which
// makes it revocable. Several may exist per account (multi-device).
type RefreshToken struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
