// Package ir provides the data model shared by every layer of the profile
// directory: addresses, identities, profiles, edges and the canonical
// encoding used to content-address them.
//
// This package imports nothing internal. All other internal packages import
// ir, which keeps it the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Content addresses are base58 sha2-256 multihashes over RFC 8785
//     canonical JSON with domain separation (see hash.go)
//   - Strings are hashed as written; only the username key is NFC normalised
//   - All JSON tags use snake_case
package ir
