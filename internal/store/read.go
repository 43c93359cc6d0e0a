package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/roach88/profiledir/internal/ir"
)

// GetProfile retrieves a stored profile and its author by address.
// Returns an error wrapping ir.ErrNotFound if the address has no record.
func (s *Store) GetProfile(ctx context.Context, addr ir.Address) (ir.Entry, error) {
	var (
		entry   ir.Entry
		address string
		author  string
		content string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT seq, address, author, content
		FROM records
		WHERE address = ?
	`, string(addr)).Scan(&entry.Seq, &address, &author, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Entry{}, fmt.Errorf("get profile %s: %w", addr, ir.ErrNotFound)
	}
	if err != nil {
		return ir.Entry{}, fmt.Errorf("get profile %s: %w", addr, err)
	}

	profile, err := unmarshalProfile(content)
	if err != nil {
		return ir.Entry{}, fmt.Errorf("get profile %s: %w", addr, err)
	}

	entry.Address = ir.Address(address)
	entry.Author = ir.Identity(author)
	entry.Profile = profile
	return entry, nil
}

// Links returns a lazy sequence over edges from source, filtered by tag.
// Each range over the sequence runs a fresh query, so it is restartable.
// Results are ordered by insertion: seq ASC, id ASC.
//
// The store runs on a single connection, which the sequence holds until the
// range ends. Do not call other Store methods from inside the loop; use
// ledger.Collect when the edges feed further lookups.
func (s *Store) Links(ctx context.Context, source ir.Address, filter ir.TagFilter) iter.Seq2[ir.Edge, error] {
	return func(yield func(ir.Edge, error) bool) {
		rows, err := s.queryLinks(ctx, source, filter)
		if err != nil {
			yield(ir.Edge{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			edge, err := scanEdge(rows)
			if err != nil {
				yield(ir.Edge{}, err)
				return
			}
			if !yield(edge, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(ir.Edge{}, fmt.Errorf("iterate links: %w", err))
		}
	}
}

// HasLink reports whether any edge from source carries tag.
func (s *Store) HasLink(ctx context.Context, source ir.Address, tag ir.Tag) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM links
		WHERE source = ? AND tag = ?
	`, string(source), []byte(tag)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check link: %w", err)
	}
	return count > 0, nil
}

// Stats returns record and link counts.
func (s *Store) Stats(ctx context.Context) (ir.LedgerStats, error) {
	var stats ir.LedgerStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM records),
			(SELECT COUNT(*) FROM links)
	`).Scan(&stats.Records, &stats.Links)
	if err != nil {
		return ir.LedgerStats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

func (s *Store) queryLinks(ctx context.Context, source ir.Address, filter ir.TagFilter) (*sql.Rows, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if tag, ok := filter.Tag(); ok {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, source, target, tag, seq
			FROM links
			WHERE source = ? AND tag = ?
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`, string(source), []byte(tag))
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, source, target, tag, seq
			FROM links
			WHERE source = ?
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`, string(source))
	}
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	return rows, nil
}

// firstLink returns the earliest edge from source with tag.
func (s *Store) firstLink(ctx context.Context, source ir.Address, tag ir.Tag) (ir.Edge, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, target, tag, seq
		FROM links
		WHERE source = ? AND tag = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
		LIMIT 1
	`, string(source), []byte(tag))
	return scanEdge(row)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEdge scans a row into an Edge.
func scanEdge(row rowScanner) (ir.Edge, error) {
	var (
		edge           ir.Edge
		source, target string
		tag            []byte
	)
	if err := row.Scan(&edge.ID, &source, &target, &tag, &edge.Seq); err != nil {
		return ir.Edge{}, fmt.Errorf("scan link: %w", err)
	}
	edge.Source = ir.Address(source)
	edge.Target = ir.Address(target)
	edge.Tag = ir.Tag(tag)
	return edge, nil
}
