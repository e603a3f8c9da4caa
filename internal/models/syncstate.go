package models

import (
	"time"
)

// SyncState is a single persisted key/value checkpoint, e.g. the order
// watermark cursor.
type SyncState struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SyncLock is an advisory single-row lock that serializes sync runs. A row
// whose expiry has passed is treated as free, so a crashed run cannot hold
// the lock forever.
type SyncLock struct {
	Name      string    `json:"name" gorm:"primaryKey"`
	RunID     string    `json:"run_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
