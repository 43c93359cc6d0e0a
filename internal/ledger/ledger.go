// Package ledger declares the narrow contract the directory requires of its
// storage collaborator. internal/store (SQLite) and internal/memstore
// (in-memory) implement it.
package ledger

import (
	"context"
	"iter"

	"github.com/roach88/profiledir/internal/ir"
)

// RecordStore content-addresses and persists profiles.
type RecordStore interface {
	// PutProfile stores p on behalf of author and returns its content address.
	// Identical content yields the identical address.
	PutProfile(ctx context.Context, author ir.Identity, p ir.Profile) (ir.Address, error)

	// GetProfile returns the stored profile and the identity that wrote it.
	// Returns an error wrapping ir.ErrNotFound for unknown addresses.
	GetProfile(ctx context.Context, addr ir.Address) (ir.Entry, error)
}

// LinkIndex maintains directed, tagged, append-only edges.
type LinkIndex interface {
	// AddLink appends an edge. Duplicates are permitted.
	AddLink(ctx context.Context, source, target ir.Address, tag ir.Tag) (ir.Edge, error)

	// Links lazily yields edges from source in insertion order, filtered by tag.
	Links(ctx context.Context, source ir.Address, filter ir.TagFilter) iter.Seq2[ir.Edge, error]
}

// AtomicLinker is implemented by link indexes that can insert an edge only
// when no edge with the same source and tag exists, in one atomic step.
type AtomicLinker interface {
	AddLinkIfAbsent(ctx context.Context, source, target ir.Address, tag ir.Tag) (ir.Edge, bool, error)
}

// TagChecker is implemented by link indexes that can answer "does source
// have an edge tagged tag" without reading the edge.
type TagChecker interface {
	HasLink(ctx context.Context, source ir.Address, tag ir.Tag) (bool, error)
}

// Ledger is a record store and link index backed by the same storage.
type Ledger interface {
	RecordStore
	LinkIndex
}

// HasTag reports whether any edge from source carries tag, using
// TagChecker when links implements it.
func HasTag(ctx context.Context, links LinkIndex, source ir.Address, tag ir.Tag) (bool, error) {
	if c, ok := links.(TagChecker); ok {
		return c.HasLink(ctx, source, tag)
	}
	_, ok, err := First(links.Links(ctx, source, ir.WithTag(tag)))
	return ok, err
}

// Collect drains a link sequence into a slice.
// Returns an empty slice (not nil) when the sequence yields nothing.
func Collect(seq iter.Seq2[ir.Edge, error]) ([]ir.Edge, error) {
	edges := []ir.Edge{}
	for edge, err := range seq {
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// First returns the first edge of a sequence and whether one exists.
func First(seq iter.Seq2[ir.Edge, error]) (ir.Edge, bool, error) {
	for edge, err := range seq {
		if err != nil {
			return ir.Edge{}, false, err
		}
		return edge, true, nil
	}
	return ir.Edge{}, false, nil
}
