package utils

import (
	"github.com/google/uuid"
)

var newUUIDv7 = uuid.NewV7

// GenerateUUIDv7 generates a new time-ordered UUID v7, falling back to v4
func GenerateUUIDv7() uuid.UUID {
	id, err := newUUIDv7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// NewID returns GenerateUUIDv7 as a string, the form stored in every backend.
func NewID() string {
	return GenerateUUIDv7().String()
}
