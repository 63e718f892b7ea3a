// Package storage provides state storage implementations.
//
// Implementations:
//   - redis: Redis with TTL, the table-style store for conversation state
//   - memory: In-memory, the default and the test double
package storage
