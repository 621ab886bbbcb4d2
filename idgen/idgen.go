package idgen

import "github.com/google/uuid"

// Generator produces unique document ids.
type Generator interface {
	NewID() string
}

// UUID is the production Generator, emitting random (v4) UUIDs.
type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}
