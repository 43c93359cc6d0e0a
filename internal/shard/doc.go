// Package shard implements the prefix tree that makes username search
// tractable without scanning every profile.
//
// A username maps to a shard by its first Width characters. Shard nodes are
// well-known path addresses ("all_profiles.ali") computed by a pure function;
// they are materialized by linking them from the single root
// ("all_profiles"), tagged with their prefix. The forest is static: one
// level, fixed width, so fan-out is bounded and depth never grows.
//
// Every profile sharing a shard collides into the same bucket. Callers get
// the whole bucket; nothing here filters beyond the shard boundary.
package shard
