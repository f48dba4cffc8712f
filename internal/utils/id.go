package utils

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID returns a fresh participant identifier: 32 lowercase hex characters
// from a random (version 4) UUID.
func NewID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
