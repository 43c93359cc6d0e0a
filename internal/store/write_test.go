package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/profiledir/internal/ir"
	"github.com/roach88/profiledir/internal/ledger"
)

func TestPutProfile_ReturnsContentAddress(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p := testProfile("alice", "hi")
	addr, err := s.PutProfile(ctx, "QmAuthor", p)
	require.NoError(t, err)
	assert.Equal(t, ir.MustProfileAddress(p), addr)

	var content string
	err = s.db.QueryRow("SELECT content FROM records WHERE address = ?", string(addr)).Scan(&content)
	require.NoError(t, err)
	assert.Equal(t, `{"fields":{"bio":"hi"},"username":"alice"}`, content)
}

func TestPutProfile_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	p := testProfile("alice", "hi")
	a1, err := s.PutProfile(ctx, "QmFirst", p)
	require.NoError(t, err)
	a2, err := s.PutProfile(ctx, "QmSecond", p)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)

	var count int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count))
	assert.Equal(t, 1, count)

	// The first author is kept.
	entry, err := s.GetProfile(ctx, a1)
	require.NoError(t, err)
	assert.Equal(t, ir.Identity("QmFirst"), entry.Author)
}

func TestAddLink_AllowsDuplicates(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	e1, err := s.AddLink(ctx, "QmSrc", "QmDst", "alice")
	require.NoError(t, err)
	e2, err := s.AddLink(ctx, "QmSrc", "QmDst", "alice")
	require.NoError(t, err)

	assert.Equal(t, "edge-1", e1.ID)
	assert.Equal(t, "edge-2", e2.ID)
	assert.Less(t, e1.Seq, e2.Seq)

	edges, err := ledger.Collect(s.Links(ctx, "QmSrc", ir.AnyTag()))
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}

func TestAddLinkIfAbsent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, inserted, err := s.AddLinkIfAbsent(ctx, "QmShard", "QmP1", "alice")
	require.NoError(t, err)
	assert.True(t, inserted)

	existing, inserted, err := s.AddLinkIfAbsent(ctx, "QmShard", "QmP2", "alice")
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first.ID, existing.ID)
	assert.Equal(t, ir.Address("QmP1"), existing.Target)

	// A different tag at the same source is independent.
	_, inserted, err = s.AddLinkIfAbsent(ctx, "QmShard", "QmP3", "alicia")
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestAddLinkIfAbsent_Concurrent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	const writers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := s.AddLinkIfAbsent(ctx, "QmShard", "QmP", "alice")
			if err != nil {
				t.Errorf("AddLinkIfAbsent: %v", err)
				return
			}
			if ok {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted, "exactly one writer wins")
	edges, err := ledger.Collect(s.Links(ctx, "QmShard", ir.WithTag("alice")))
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}
