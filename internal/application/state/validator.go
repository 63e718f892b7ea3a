package state

import (
	"errors"
	"fmt"
	"strings"
)

const maxKeyLength = 256

// ErrInvalidKey is returned for keys the storage layer cannot hold
var ErrInvalidKey = errors.New("invalid state key")

// Validator validates state keys
type Validator struct{}

// NewValidator creates a new key validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates a state key
func (v *Validator) Validate(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidKey)
	}

	if len(key) > maxKeyLength {
		return fmt.Errorf("%w: key exceeds %d bytes", ErrInvalidKey, maxKeyLength)
	}

	// Keys end up in storage key names and URL paths
	if strings.ContainsAny(key, " \t\r\n*?[]") {
		return fmt.Errorf("%w: %q contains reserved characters", ErrInvalidKey, key)
	}

	return nil
}
