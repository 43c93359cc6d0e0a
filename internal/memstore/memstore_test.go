package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/profiledir/internal/ir"
	"github.com/roach88/profiledir/internal/ledger"
)

func newTestStore() *Store {
	return New(WithEdgeIDGenerator(&ir.SequentialGenerator{}))
}

func TestPutGetProfile(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	p := ir.Profile{Username: "alice", Fields: map[string]string{"bio": "hi"}}
	addr, err := s.PutProfile(ctx, "QmAuthor", p)
	require.NoError(t, err)
	assert.Equal(t, ir.MustProfileAddress(p), addr)

	entry, err := s.GetProfile(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, ir.Identity("QmAuthor"), entry.Author)
	assert.True(t, p.Equal(entry.Profile))
}

func TestPutProfile_IdempotentKeepsFirstAuthor(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	p := ir.Profile{Username: "alice"}
	a1, err := s.PutProfile(ctx, "QmFirst", p)
	require.NoError(t, err)
	a2, err := s.PutProfile(ctx, "QmSecond", p)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)

	entry, err := s.GetProfile(ctx, a1)
	require.NoError(t, err)
	assert.Equal(t, ir.Identity("QmFirst"), entry.Author)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Records)
}

func TestGetProfile_NotFound(t *testing.T) {
	_, err := newTestStore().GetProfile(context.Background(), "QmMissing")
	assert.True(t, errors.Is(err, ir.ErrNotFound))
}

func TestGetProfile_ReturnsCopy(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	addr, err := s.PutProfile(ctx, "QmAuthor", ir.Profile{Username: "alice", Fields: map[string]string{"bio": "hi"}})
	require.NoError(t, err)

	entry, err := s.GetProfile(ctx, addr)
	require.NoError(t, err)
	entry.Profile.Fields["bio"] = "mutated"

	again, err := s.GetProfile(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, "hi", again.Profile.Fields["bio"])
}

func TestLinks_FilterAndOrder(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.AddLink(ctx, "QmSrc", "QmP1", "alice")
	require.NoError(t, err)
	_, err = s.AddLink(ctx, "QmSrc", "QmP2", "alicia")
	require.NoError(t, err)
	_, err = s.AddLink(ctx, "QmSrc", "QmP1", "alice")
	require.NoError(t, err)

	all, err := ledger.Collect(s.Links(ctx, "QmSrc", ir.AnyTag()))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"edge-1", "edge-2", "edge-3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	alice, err := ledger.Collect(s.Links(ctx, "QmSrc", ir.WithTag("alice")))
	require.NoError(t, err)
	assert.Len(t, alice, 2, "duplicates are kept")

	ok, err := s.HasLink(ctx, "QmSrc", "alicia")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasLink(ctx, "QmSrc", "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLinks_SnapshotIgnoresLaterWrites(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.AddLink(ctx, "QmSrc", "QmA", "t")
	require.NoError(t, err)

	var seen int
	for _, err := range s.Links(ctx, "QmSrc", ir.AnyTag()) {
		require.NoError(t, err)
		seen++
		_, err := s.AddLink(ctx, "QmSrc", "QmB", "t")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, seen)

	edges, err := ledger.Collect(s.Links(ctx, "QmSrc", ir.AnyTag()))
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}

func TestLinks_EmptyNotNil(t *testing.T) {
	edges, err := ledger.Collect(newTestStore().Links(context.Background(), "QmNothing", ir.AnyTag()))
	require.NoError(t, err)
	assert.NotNil(t, edges)
	assert.Empty(t, edges)
}

func TestCanceledContext(t *testing.T) {
	s := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.PutProfile(ctx, "QmAuthor", ir.Profile{Username: "alice"})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.AddLink(ctx, "QmSrc", "QmDst", "t")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = ledger.Collect(s.Links(ctx, "QmSrc", ir.AnyTag()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.AddLink(ctx, "QmSrc", "QmDst", "t")
		}()
		go func() {
			defer wg.Done()
			_, _ = ledger.Collect(s.Links(ctx, "QmSrc", ir.AnyTag()))
		}()
	}
	wg.Wait()

	edges, err := ledger.Collect(s.Links(ctx, "QmSrc", ir.AnyTag()))
	require.NoError(t, err)
	assert.Len(t, edges, 50)
}
