package shard

import (
	"context"
	"fmt"

	"github.com/roach88/profiledir/internal/ir"
	"github.com/roach88/profiledir/internal/ledger"
)

// Tree materializes shard nodes in a link index.
type Tree struct {
	links ledger.LinkIndex
}

// NewTree creates a tree over links.
func NewTree(links ledger.LinkIndex) *Tree {
	return &Tree{links: links}
}

// Ensure links the shard from the root if it is not linked yet.
// Returns true if this call created the root → shard edge.
//
// Idempotent: a second call finds the edge tagged with the prefix and does
// nothing. On link indexes that implement ledger.AtomicLinker the check and
// the write are one step; elsewhere two racing callers may both write, and
// Shards dedupes the result.
func (t *Tree) Ensure(ctx context.Context, s Shard) (bool, error) {
	root := Root()
	tag := ir.Tag(s.Prefix)

	if atomic, ok := t.links.(ledger.AtomicLinker); ok {
		_, inserted, err := atomic.AddLinkIfAbsent(ctx, root, s.Address, tag)
		if err != nil {
			return false, fmt.Errorf("ensure shard %s: %w", s.Path, err)
		}
		return inserted, nil
	}

	exists, err := ledger.HasTag(ctx, t.links, root, tag)
	if err != nil {
		return false, fmt.Errorf("ensure shard %s: %w", s.Path, err)
	}
	if exists {
		return false, nil
	}

	if _, err := t.links.AddLink(ctx, root, s.Address, tag); err != nil {
		return false, fmt.Errorf("ensure shard %s: %w", s.Path, err)
	}
	return true, nil
}

// Shards returns the address of every shard ever ensured, in the order they
// were first linked. Duplicate root edges collapse to one address.
func (t *Tree) Shards(ctx context.Context) ([]ir.Address, error) {
	edges, err := ledger.Collect(t.links.Links(ctx, Root(), ir.AnyTag()))
	if err != nil {
		return nil, fmt.Errorf("list shards: %w", err)
	}

	seen := make(map[ir.Address]bool, len(edges))
	shards := make([]ir.Address, 0, len(edges))
	for _, edge := range edges {
		if seen[edge.Target] {
			continue
		}
		seen[edge.Target] = true
		shards = append(shards, edge.Target)
	}
	return shards, nil
}
