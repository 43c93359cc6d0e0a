// Package directory implements the profile directory: registering a unique
// username, looking up the profile bound to an identity, and searching
// profiles by username prefix.
//
// There is no central index. State lives entirely in a ledger.Ledger:
//
//	all_profiles ──"ali"──▶ all_profiles.ali ──"alice"──▶ profile record
//	                                          ──"alina"──▶ profile record
//	identity ──"profile"──▶ profile record
//
// Usernames are sharded by their first three characters (see package shard).
// Search is therefore shard-granular: every profile in the shard named by
// the first three characters of the prefix is returned.
//
// Uniqueness of usernames is checked before writing. When the link index
// implements ledger.AtomicLinker the shard edge is also written with an
// atomic insert-if-absent, so concurrent creators of one username cannot
// both succeed. Without it, the check and the write are separate steps and
// two racing creators may both succeed.
package directory
