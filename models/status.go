package models

import "time"

// SyncStatusRequest identifies the user/device pair a status poll is for.
// LastSyncedAt, when set, narrows the pending-batch count to batches updated
// strictly after it.
type SyncStatusRequest struct {
	UserID       int64      `json:"user_id"`
	ClientID     string     `json:"client_id"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// SyncStatus is a read-only aggregate for one user/device pair.
// LastSyncedAt is the completion time of the most recently completed batch
// for the device, or nil if none has completed yet.
type SyncStatus struct {
	PendingChanges int64      `json:"pending_changes"`
	Conflicts      int64      `json:"conflicts"`
	LastSyncedAt   *time.Time `json:"last_synced_at"`
}
