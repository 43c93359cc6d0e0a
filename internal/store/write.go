package store

import (
	"context"
	"fmt"

	"github.com/roach88/profiledir/internal/ir"
)

// PutProfile stores a profile under its content address and returns the address.
// Uses ON CONFLICT(address) DO NOTHING for idempotency - repeated puts of
// identical content return the same address and keep the original author.
func (s *Store) PutProfile(ctx context.Context, author ir.Identity, p ir.Profile) (ir.Address, error) {
	addr, err := ir.ProfileAddress(p)
	if err != nil {
		return "", fmt.Errorf("put profile: %w", err)
	}

	content, err := marshalProfile(p)
	if err != nil {
		return "", fmt.Errorf("put profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (address, content, author, record_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(address) DO NOTHING
	`,
		string(addr),
		content,
		string(author),
		ir.RecordVersion,
	)
	if err != nil {
		return "", fmt.Errorf("put profile: %w", err)
	}

	return addr, nil
}

// AddLink appends an edge. Duplicates are permitted.
func (s *Store) AddLink(ctx context.Context, source, target ir.Address, tag ir.Tag) (ir.Edge, error) {
	edge := ir.Edge{
		ID:     s.edgeIDs.Generate(),
		Source: source,
		Target: target,
		Tag:    tag,
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO links (id, source, target, tag)
		VALUES (?, ?, ?, ?)
	`,
		edge.ID,
		string(source),
		string(target),
		[]byte(tag),
	)
	if err != nil {
		return ir.Edge{}, fmt.Errorf("add link: %w", err)
	}

	edge.Seq, err = result.LastInsertId()
	if err != nil {
		return ir.Edge{}, fmt.Errorf("add link: last insert id: %w", err)
	}

	return edge, nil
}

// AddLinkIfAbsent appends an edge only if no edge with the same source and
// tag exists. Returns the inserted edge and true, or the earliest existing
// edge and false.
//
// The check and the insert are one statement, so two writers racing on the
// same (source, tag) can never both succeed.
func (s *Store) AddLinkIfAbsent(ctx context.Context, source, target ir.Address, tag ir.Tag) (ir.Edge, bool, error) {
	edge := ir.Edge{
		ID:     s.edgeIDs.Generate(),
		Source: source,
		Target: target,
		Tag:    tag,
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO links (id, source, target, tag)
		SELECT ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM links WHERE source = ? AND tag = ?
		)
	`,
		edge.ID,
		string(source),
		string(target),
		[]byte(tag),
		string(source),
		[]byte(tag),
	)
	if err != nil {
		return ir.Edge{}, false, fmt.Errorf("add link if absent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return ir.Edge{}, false, fmt.Errorf("add link if absent: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		existing, err := s.firstLink(ctx, source, tag)
		if err != nil {
			return ir.Edge{}, false, fmt.Errorf("add link if absent: select existing: %w", err)
		}
		return existing, false, nil
	}

	edge.Seq, err = result.LastInsertId()
	if err != nil {
		return ir.Edge{}, false, fmt.Errorf("add link if absent: last insert id: %w", err)
	}

	return edge, true, nil
}
