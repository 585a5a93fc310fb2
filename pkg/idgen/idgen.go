// Package idgen provides record identity generators backed by uuid or nanoid.
package idgen

import (
	"fmt"

	"github.com/google/uuid"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// Generator returns a new unique ID.
type Generator func() (string, error)

// Alphabet defines the character set used for nanoid IDs.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters in a nanoid ID.
var Length = 21

// UUID returns random (version 4) UUIDs in canonical form.
func UUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return id.String(), nil
}

// NanoID returns URL-safe nanoid IDs drawn from Alphabet.
func NanoID() (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return id, nil
}

// ByName resolves a generator by its configuration name ("uuid" or "nanoid").
// An empty name selects uuid.
func ByName(name string) (Generator, error) {
	switch name {
	case "", "uuid":
		return UUID, nil
	case "nanoid":
		return NanoID, nil
	default:
		return nil, fmt.Errorf("idgen: unknown id format %q", name)
	}
}
