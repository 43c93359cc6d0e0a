package memstore

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"sync"

	"github.com/roach88/profiledir/internal/ir"
	"github.com/roach88/profiledir/internal/ledger"
)

// Store is an in-memory ledger guarded by a sync.RWMutex.
type Store struct {
	mu      sync.RWMutex
	records map[ir.Address]ir.Entry
	links   map[ir.Address][]ir.Edge // source -> edges in insertion order
	seq     int64
	edgeIDs ir.EdgeIDGenerator
}

// Option configures a Store.
type Option func(*Store)

// WithEdgeIDGenerator overrides the UUIDv7 edge ID generator.
func WithEdgeIDGenerator(g ir.EdgeIDGenerator) Option {
	return func(s *Store) {
		s.edgeIDs = g
	}
}

// New creates an empty in-memory ledger.
func New(opts ...Option) *Store {
	s := &Store{
		records: make(map[ir.Address]ir.Entry),
		links:   make(map[ir.Address][]ir.Edge),
		edgeIDs: ir.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PutProfile stores a profile under its content address.
// Repeated puts of identical content keep the first author.
func (s *Store) PutProfile(ctx context.Context, author ir.Identity, p ir.Profile) (ir.Address, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	addr, err := ir.ProfileAddress(p)
	if err != nil {
		return "", fmt.Errorf("put profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[addr]; exists {
		return addr, nil
	}

	s.seq++
	s.records[addr] = ir.Entry{
		Address: addr,
		Author:  author,
		Profile: copyProfile(p),
		Seq:     s.seq,
	}
	return addr, nil
}

// GetProfile returns a copy of the stored entry.
// Returns an error wrapping ir.ErrNotFound if the address has no record.
func (s *Store) GetProfile(ctx context.Context, addr ir.Address) (ir.Entry, error) {
	if err := ctx.Err(); err != nil {
		return ir.Entry{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.records[addr]
	if !ok {
		return ir.Entry{}, fmt.Errorf("get profile %s: %w", addr, ir.ErrNotFound)
	}
	entry.Profile = copyProfile(entry.Profile)
	return entry, nil
}

// AddLink appends an edge. Duplicates are permitted.
func (s *Store) AddLink(ctx context.Context, source, target ir.Address, tag ir.Tag) (ir.Edge, error) {
	if err := ctx.Err(); err != nil {
		return ir.Edge{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	edge := ir.Edge{
		ID:     s.edgeIDs.Generate(),
		Source: source,
		Target: target,
		Tag:    tag,
		Seq:    s.seq,
	}
	s.links[source] = append(s.links[source], edge)
	return edge, nil
}

// Links returns a lazy sequence over edges from source, filtered by tag.
// Each range takes a snapshot of the edge list, so it is restartable and
// never observes a half-applied write.
func (s *Store) Links(ctx context.Context, source ir.Address, filter ir.TagFilter) iter.Seq2[ir.Edge, error] {
	return func(yield func(ir.Edge, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(ir.Edge{}, err)
			return
		}

		s.mu.RLock()
		snapshot := s.links[source][:len(s.links[source]):len(s.links[source])]
		s.mu.RUnlock()

		for _, edge := range snapshot {
			if !filter.Match(edge.Tag) {
				continue
			}
			if !yield(edge, nil) {
				return
			}
		}
	}
}

// HasLink reports whether any edge from source carries tag.
func (s *Store) HasLink(ctx context.Context, source ir.Address, tag ir.Tag) (bool, error) {
	_, ok, err := ledger.First(s.Links(ctx, source, ir.WithTag(tag)))
	return ok, err
}

// Stats returns record and link counts.
func (s *Store) Stats(ctx context.Context) (ir.LedgerStats, error) {
	if err := ctx.Err(); err != nil {
		return ir.LedgerStats{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := ir.LedgerStats{Records: len(s.records)}
	for _, edges := range s.links {
		stats.Links += len(edges)
	}
	return stats, nil
}

// copyProfile returns a deep copy so callers cannot mutate stored state.
func copyProfile(p ir.Profile) ir.Profile {
	fields := make(map[string]string, len(p.Fields))
	maps.Copy(fields, p.Fields)
	return ir.Profile{Username: p.Username, Fields: fields}
}
