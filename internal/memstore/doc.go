// Package memstore implements the profile ledger in memory.
//
// It satisfies the same record and link contracts as internal/store but
// offers no insert-if-absent primitive: a directory built on it keeps the
// check-then-act uniqueness gap. Useful for tests and for embedding the
// directory where durability is provided elsewhere.
//
// All methods are safe for concurrent use.
package memstore
