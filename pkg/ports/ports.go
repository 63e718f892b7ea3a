// Package ports defines the interfaces between the application layer and
// its adapters.
package ports

import (
	"context"
	"errors"
	"time"
)

// ErrStateNotFound is returned when no state is stored under a key
var ErrStateNotFound = errors.New("state not found")

// StateStorage persists encoded state payloads by key
type StateStorage interface {
	// Save stores data under key, replacing any previous value
	Save(ctx context.Context, key string, data []byte) error
	// Load returns the data stored under key or ErrStateNotFound
	Load(ctx context.Context, key string) ([]byte, error)
	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
	// Exists reports whether key is stored
	Exists(ctx context.Context, key string) (bool, error)
	// SetTTL sets a time-to-live for key
	SetTTL(ctx context.Context, key string, ttl time.Duration) error
	// List returns all stored keys
	List(ctx context.Context) ([]string, error)
}

// MetricsCollector records service metrics
type MetricsCollector interface {
	// ObserveResolution counts a module resolution by source (loaded, listener, miss)
	ObserveResolution(source string)
	// SetActiveListeners reports the number of registered resolution listeners
	SetActiveListeners(count int)
	// RecordStateOperation records a state storage operation
	RecordStateOperation(operation, status string, duration time.Duration)
}
