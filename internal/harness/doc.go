// Package harness runs directory scenarios described in YAML.
//
// A scenario is a sequence of directory operations performed by named
// identities, each with an optional expectation, followed by assertions
// over the final ledger:
//
//	name: alice_example
//	description: a created profile is found by identity and by prefix
//	steps:
//	  - {as: I1, op: create, username: alice, fields: {bio: hi}}
//	  - {as: I1, op: get, expect: {usernames: [alice]}}
//	  - {op: search, prefix: ali, expect: {usernames: [alice], authors: [I1]}}
//	assertions:
//	  - {type: shard_count, count: 1}
//
// Identity labels map to deterministic identities (see IdentityFor), and
// each run starts from an empty ledger, so traces are reproducible and can
// be compared against golden files.
package harness
