// Package store provides the SQLite-backed ledger for the profile directory.
//
// The ledger is append-only and holds two tables:
//   - Records: content-addressed profiles with the identity that wrote them
//   - Links: directed, tagged edges between addresses
//
// # Critical Patterns
//
// Content-Addressed Records
//   - address is the UNIQUE key; identical content is stored once
//   - ON CONFLICT(address) DO NOTHING keeps the first author
//
// Insertion Order
//   - All edge listings use ORDER BY seq ASC, id ASC COLLATE BINARY
//   - Duplicate edges are permitted; callers dedupe above this layer
//
// Insert-If-Absent
//   - AddLinkIfAbsent is a single INSERT ... WHERE NOT EXISTS statement,
//     atomic under SQLite's writer lock
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Content addresses are computed by internal/ir/hash.go using RFC 8785
// canonical JSON and sha2-256 multihashes with domain separation.
package store
