package core

import "github.com/google/uuid"

// NewIdentifier returns a fresh random identifier for an engine-owned object.
func NewIdentifier() string {
	return uuid.New().String()
}

// ShortIdentifier trims an identifier for log output.
func ShortIdentifier(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
