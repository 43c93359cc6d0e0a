package directory

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/profiledir/internal/ir"
	"github.com/roach88/profiledir/internal/ledger"
	"github.com/roach88/profiledir/internal/memstore"
	"github.com/roach88/profiledir/internal/store"
)

// statser is implemented by both ledgers.
type statser interface {
	Stats(ctx context.Context) (ir.LedgerStats, error)
}

type testLedger interface {
	ledger.Ledger
	statser
}

// createTestStore opens a SQLite ledger in a temp dir.
func createTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "directory.db")
	s, err := store.Open(path, store.WithEdgeIDGenerator(&ir.SequentialGenerator{}))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// backends returns a fresh ledger of each kind.
func backends(t *testing.T) map[string]testLedger {
	t.Helper()
	return map[string]testLedger{
		"sqlite": createTestStore(t),
		"memory": memstore.New(memstore.WithEdgeIDGenerator(&ir.SequentialGenerator{})),
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newService creates a directory over l acting as id.
func newService(l ledger.Ledger, id ir.Identity, opts ...Option) *Service {
	return New(l, id, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func testIdentity(name string) ir.Identity {
	id, err := ir.IdentityFromPublicKey([]byte("test-key-" + name))
	if err != nil {
		panic(err)
	}
	return id
}

func profile(username string, fields ...string) ir.Profile {
	p := ir.Profile{Username: username, Fields: map[string]string{}}
	for i := 0; i+1 < len(fields); i += 2 {
		p.Fields[fields[i]] = fields[i+1]
	}
	return p
}

func usernames(records []ir.ProfileRecord) []string {
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Profile.Username
	}
	return names
}

func stats(t *testing.T, l statser) ir.LedgerStats {
	t.Helper()
	st, err := l.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	return st
}
