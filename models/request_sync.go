package models

import "encoding/json"

// QueueSyncRequest is the payload of POST /api/sync/queue: a set of client
// mutations to enqueue for one user.
type QueueSyncRequest struct {
	UserID int64      `json:"user_id"`
	Items  []SyncItem `json:"items"`
}

// ResolveConflictRequest is the payload of the conflict resolution endpoint.
// Data is required only for the manual resolution and carries the merged
// record content.
type ResolveConflictRequest struct {
	Resolution ConflictResolution `json:"resolution"`
	Data       json.RawMessage    `json:"data,omitempty"`
}
