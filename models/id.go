package models

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random 128-bit identifier as 32 lowercase hex characters.
func NewID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// IsValidID reports whether id has the format produced by NewID.
func IsValidID(id string) bool {
	if len(id) != 32 || strings.ToLower(id) != id {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
