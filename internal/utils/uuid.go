package utils

import "github.com/google/uuid"

// UUIDGenerator issues opaque, globally unique, string identifiers for
// batches, conflicts and records. UUIDv7 keeps ids roughly time-ordered,
// which makes created_at index scans cheap.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
