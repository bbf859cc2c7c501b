// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oleg Kulik

package models

import (
	"encoding/json"
	"time"
)

// ConflictType is the discriminator carried by every conflict payload.
const ConflictType = "conflict"

// ConflictStatus is the lifecycle state of a persisted conflict.
type ConflictStatus string

const (
	ConflictPending  ConflictStatus = "pending"
	ConflictResolved ConflictStatus = "resolved"
)

// ConflictResolution is the caller-driven decision applied to a conflict.
type ConflictResolution string

const (
	// ResolutionClientWins — the client's item is re-applied, bypassing
	// detection, at a version strictly greater than the stored one.
	ResolutionClientWins ConflictResolution = "client-wins"

	// ResolutionServerWins — the stored record stands; only resolution
	// metadata is recorded.
	ResolutionServerWins ConflictResolution = "server-wins"

	// ResolutionManual — caller-supplied data replaces the record at a
	// version strictly greater than the stored one.
	ResolutionManual ConflictResolution = "manual"
)

// Valid reports whether r is one of the three known resolutions.
func (r ConflictResolution) Valid() bool {
	switch r {
	case ResolutionClientWins, ResolutionServerWins, ResolutionManual:
		return true
	}
	return false
}

// Conflict is a detected version mismatch: the stored record's version is
// strictly greater than the version asserted by the client's item.
//
// Item is a snapshot of the stored record at detection time; ClientItem is
// the mutation that lost. Both are kept so that any of the three resolutions
// can be reconciled later without re-reading the batch.
type Conflict struct {
	ID           string             `json:"id"`
	BatchID      string             `json:"batch_id"`
	UserID       int64              `json:"user_id"`
	RecordID     string             `json:"record_id"`
	Type         string             `json:"type"`
	Message      string             `json:"message"`
	Item         Record             `json:"item"`
	ClientItem   SyncItem           `json:"client_item"`
	Status       ConflictStatus     `json:"status"`
	Resolution   ConflictResolution `json:"resolution,omitempty"`
	ResolvedData json.RawMessage    `json:"resolved_data,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	ResolvedAt   *time.Time         `json:"resolved_at,omitempty"`
}
