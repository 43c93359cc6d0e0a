package shard

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/profiledir/internal/ir"
	"github.com/roach88/profiledir/internal/ledger"
	"github.com/roach88/profiledir/internal/memstore"
	"github.com/roach88/profiledir/internal/store"
)

// ledgers returns one link index per backend.
func ledgers(t *testing.T) map[string]ledger.LinkIndex {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tree.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return map[string]ledger.LinkIndex{
		"sqlite": st,
		"memory": memstore.New(),
	}
}

func TestEnsure_Idempotent(t *testing.T) {
	for name, links := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tree := NewTree(links)
			s, err := For("alice")
			require.NoError(t, err)

			created, err := tree.Ensure(ctx, s)
			require.NoError(t, err)
			assert.True(t, created)

			once, err := ledger.Collect(links.Links(ctx, Root(), ir.AnyTag()))
			require.NoError(t, err)

			created, err = tree.Ensure(ctx, s)
			require.NoError(t, err)
			assert.False(t, created)

			twice, err := ledger.Collect(links.Links(ctx, Root(), ir.AnyTag()))
			require.NoError(t, err)

			if diff := cmp.Diff(once, twice); diff != "" {
				t.Errorf("link index changed after second Ensure (-once +twice):\n%s", diff)
			}
			require.Len(t, twice, 1)
			assert.Equal(t, s.Address, twice[0].Target)
			assert.Equal(t, ir.Tag("ali"), twice[0].Tag)
		})
	}
}

func TestShards_OrderAndDedupe(t *testing.T) {
	for name, links := range ledgers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tree := NewTree(links)

			var want []ir.Address
			for _, username := range []string{"bob", "alice", "alina", "carol"} {
				s, err := For(username)
				require.NoError(t, err)
				created, err := tree.Ensure(ctx, s)
				require.NoError(t, err)
				if created {
					want = append(want, s.Address)
				}
			}

			// A racing writer without insert-if-absent can leave a duplicate edge.
			dup, err := For("bob")
			require.NoError(t, err)
			_, err = links.AddLink(ctx, Root(), dup.Address, ir.Tag(dup.Prefix))
			require.NoError(t, err)

			got, err := tree.Shards(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.Len(t, got, 3)
		})
	}
}

func TestShards_Empty(t *testing.T) {
	got, err := NewTree(memstore.New()).Shards(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
