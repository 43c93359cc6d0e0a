// Package ledgertest holds a conformance suite every ledger.Ledger
// implementation must pass.
package ledgertest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/profiledir/internal/ir"
	"github.com/roach88/profiledir/internal/ledger"
)

// Factory returns a fresh, empty ledger for one subtest.
type Factory func(t *testing.T) ledger.Ledger

// Run executes the conformance suite against ledgers built by newLedger.
func Run(t *testing.T, newLedger Factory) {
	t.Run("ContentAddressing", func(t *testing.T) { testContentAddressing(t, newLedger(t)) })
	t.Run("AuthorProvenance", func(t *testing.T) { testAuthorProvenance(t, newLedger(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newLedger(t)) })
	t.Run("LinkOrderAndFilter", func(t *testing.T) { testLinkOrderAndFilter(t, newLedger(t)) })
	t.Run("DuplicateLinks", func(t *testing.T) { testDuplicateLinks(t, newLedger(t)) })
}

func testContentAddressing(t *testing.T, l ledger.Ledger) {
	ctx := context.Background()
	p := ir.Profile{Username: "alice", Fields: map[string]string{"bio": "hi"}}

	a1, err := l.PutProfile(ctx, "QmAuthor", p)
	require.NoError(t, err)
	a2, err := l.PutProfile(ctx, "QmAuthor", ir.Profile{Username: "alice", Fields: map[string]string{"bio": "hi"}})
	require.NoError(t, err)
	assert.Equal(t, a1, a2, "identical content yields identical address")
	assert.Equal(t, ir.MustProfileAddress(p), a1)

	other, err := l.PutProfile(ctx, "QmAuthor", ir.Profile{Username: "alicia"})
	require.NoError(t, err)
	assert.NotEqual(t, a1, other)
}

func testAuthorProvenance(t *testing.T, l ledger.Ledger) {
	ctx := context.Background()

	addr, err := l.PutProfile(ctx, "QmWriter", ir.Profile{Username: "bob", Fields: map[string]string{"x": "y"}})
	require.NoError(t, err)

	entry, err := l.GetProfile(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, ir.Identity("QmWriter"), entry.Author)
	assert.Equal(t, addr, entry.Address)
	assert.Equal(t, "bob", entry.Profile.Username)
	assert.Equal(t, map[string]string{"x": "y"}, entry.Profile.Fields)
}

func testNotFound(t *testing.T, l ledger.Ledger) {
	_, err := l.GetProfile(context.Background(), ir.PathAddress("nowhere"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ir.ErrNotFound), "got %v", err)
}

func testLinkOrderAndFilter(t *testing.T, l ledger.Ledger) {
	ctx := context.Background()
	src := ir.PathAddress("all_profiles.ali")

	for _, step := range []struct {
		target ir.Address
		tag    ir.Tag
	}{
		{"QmP1", "alice"},
		{"QmP2", "alicia"},
		{"QmP3", "alina"},
	} {
		_, err := l.AddLink(ctx, src, step.target, step.tag)
		require.NoError(t, err)
	}

	all, err := ledger.Collect(l.Links(ctx, src, ir.AnyTag()))
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ir.Address("QmP1"), all[0].Target)
	assert.Equal(t, ir.Address("QmP2"), all[1].Target)
	assert.Equal(t, ir.Address("QmP3"), all[2].Target)

	only, err := ledger.Collect(l.Links(ctx, src, ir.WithTag("alicia")))
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, ir.Address("QmP2"), only[0].Target)

	none, err := ledger.Collect(l.Links(ctx, ir.PathAddress("all_profiles.zzz"), ir.AnyTag()))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testDuplicateLinks(t *testing.T, l ledger.Ledger) {
	ctx := context.Background()

	e1, err := l.AddLink(ctx, "QmSrc", "QmDst", ir.ProfileTag)
	require.NoError(t, err)
	e2, err := l.AddLink(ctx, "QmSrc", "QmDst", ir.ProfileTag)
	require.NoError(t, err)
	assert.NotEqual(t, e1.ID, e2.ID)

	edges, err := ledger.Collect(l.Links(ctx, "QmSrc", ir.WithTag(ir.ProfileTag)))
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}
