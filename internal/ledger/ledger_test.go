package ledger

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/profiledir/internal/ir"
)

func seqOf(edges []ir.Edge, failAt int) iter.Seq2[ir.Edge, error] {
	return func(yield func(ir.Edge, error) bool) {
		for i, e := range edges {
			if i == failAt {
				yield(ir.Edge{}, errors.New("boom"))
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

func TestCollect(t *testing.T) {
	edges := []ir.Edge{{ID: "a"}, {ID: "b"}}

	got, err := Collect(seqOf(edges, -1))
	require.NoError(t, err)
	assert.Equal(t, edges, got)

	empty, err := Collect(seqOf(nil, -1))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = Collect(seqOf(edges, 1))
	assert.EqualError(t, err, "boom")
}

func TestFirst(t *testing.T) {
	edge, ok, err := First(seqOf([]ir.Edge{{ID: "a"}, {ID: "b"}}, -1))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", edge.ID)

	_, ok, err = First(seqOf(nil, -1))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = First(seqOf([]ir.Edge{{ID: "a"}}, 0))
	assert.Error(t, err)
}

// edgeList is a LinkIndex over a fixed slice of edges.
type edgeList []ir.Edge

func (l edgeList) AddLink(context.Context, ir.Address, ir.Address, ir.Tag) (ir.Edge, error) {
	return ir.Edge{}, errors.New("read only")
}

func (l edgeList) Links(_ context.Context, source ir.Address, filter ir.TagFilter) iter.Seq2[ir.Edge, error] {
	return func(yield func(ir.Edge, error) bool) {
		for _, e := range l {
			if e.Source == source && filter.Match(e.Tag) {
				if !yield(e, nil) {
					return
				}
			}
		}
	}
}

// checkedList answers HasLink from a fixed set of tags instead of the edges.
type checkedList struct {
	edgeList
	tags map[ir.Tag]bool
}

func (l checkedList) HasLink(_ context.Context, _ ir.Address, tag ir.Tag) (bool, error) {
	return l.tags[tag], nil
}

func TestHasTag(t *testing.T) {
	ctx := context.Background()
	edges := edgeList{{ID: "a", Source: "QmSrc", Target: "QmT", Tag: "alice"}}

	ok, err := HasTag(ctx, edges, "QmSrc", "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = HasTag(ctx, edges, "QmSrc", "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = HasTag(ctx, edges, "QmOther", "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	checked := checkedList{edgeList: edges, tags: map[ir.Tag]bool{"bob": true}}
	ok, err = HasTag(ctx, checked, "QmSrc", "bob")
	require.NoError(t, err)
	assert.True(t, ok, "TagChecker is preferred over scanning edges")
}
