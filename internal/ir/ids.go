package ir

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// EdgeIDGenerator produces unique edge identifiers.
type EdgeIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 edge IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequentialGenerator returns "edge-1", "edge-2", ... for deterministic tests.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialGenerator struct {
	mu   sync.Mutex
	next int
}

// Generate returns the next sequential edge ID.
func (g *SequentialGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("edge-%d", g.next)
}
