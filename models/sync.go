// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oleg Kulik

package models

import (
	"encoding/json"
	"time"
)

// BatchStatus is the lifecycle state of a SyncBatch.
type BatchStatus string

const (
	// BatchPending — the batch is queued and has not been processed yet.
	BatchPending BatchStatus = "pending"

	// BatchProcessing — the batch has been claimed by a worker or an explicit
	// process call. The state is persisted so that a second concurrent
	// processor cannot apply the same batch twice.
	BatchProcessing BatchStatus = "processing"

	// BatchCompleted — every item of the batch was applied.
	BatchCompleted BatchStatus = "completed"

	// BatchFailed — one or more items raised a version conflict; the batch's
	// conflicts were persisted for later resolution.
	BatchFailed BatchStatus = "failed"
)

// SyncItem is a single client-side mutation targeting one record.
// Version is the version the client believes is current; items queued without
// a version default to 1.
type SyncItem struct {
	ID       string          `json:"id"`
	Data     json.RawMessage `json:"data,omitempty"`
	Deleted  bool            `json:"deleted"`
	Version  int64           `json:"version"`
	ClientID string          `json:"client_id"`
}

// SyncBatch is the unit of client-submitted mutations queued for
// reconciliation. Items are applied strictly in submission order.
type SyncBatch struct {
	ID          string      `json:"id"`
	UserID      int64       `json:"user_id"`
	ClientID    string      `json:"client_id"`
	Items       []SyncItem  `json:"items"`
	Status      BatchStatus `json:"status"`
	Conflicts   []Conflict  `json:"conflicts"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// SyncOutcome tags the expected, non-exceptional results of processing a
// batch. Infrastructure failures are not an outcome — they travel on the
// error channel instead.
type SyncOutcome string

const (
	// SyncApplied — every item was applied; NewVersion is set.
	SyncApplied SyncOutcome = "applied"

	// SyncConflicted — at least one item raised a version conflict; applied
	// items are not rolled back, and Conflicts lists what the client must
	// resolve before resubmitting.
	SyncConflicted SyncOutcome = "conflicted"
)

// SyncResult is the structured result of processing one batch.
// On SyncApplied, NewVersion = 1 + max(item.Version) across the batch.
type SyncResult struct {
	Outcome    SyncOutcome `json:"outcome"`
	NewVersion int64       `json:"new_version,omitempty"`
	Conflicts  []Conflict  `json:"conflicts,omitempty"`
}

// Applied reports whether the batch was applied in full.
func (r SyncResult) Applied() bool {
	return r.Outcome == SyncApplied
}
