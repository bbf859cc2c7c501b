package models

import (
	"encoding/json"
	"time"
)

// Record is a versioned domain entity stored on the server of record.
// Version is the optimistic-concurrency token: it only ever grows, and every
// mutation submitted by a client carries the version the client believes is
// current.
type Record struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"user_id"`
	Data      json.RawMessage `json:"data"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
