// Package idgen generates the short, URL-safe unique IDs used as event
// idempotency keys, backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// EventPrefix is prepended to every event ID.
var EventPrefix = "evt-"

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
// 16 characters over a 62-symbol alphabet keeps the collision probability
// negligible even across a fleet of devices minting IDs independently.
var Length = 16

// NewEventID returns a new event idempotency key.
func NewEventID() (string, error) {
	return GenerateWithPrefix(EventPrefix)
}

// GenerateWithPrefix returns a new unique ID with the given prefix.
func GenerateWithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
