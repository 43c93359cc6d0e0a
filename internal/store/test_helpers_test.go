package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/profiledir/internal/ir"
)

// createTestStore creates a new store in a temp dir with sequential edge IDs.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithEdgeIDGenerator(&ir.SequentialGenerator{}))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testProfile creates a profile with a single bio field.
func testProfile(username, bio string) ir.Profile {
	return ir.Profile{
		Username: username,
		Fields:   map[string]string{"bio": bio},
	}
}
