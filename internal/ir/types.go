package ir

import (
	"maps"

	"golang.org/x/text/unicode/norm"
)

// Address is a content address or a well-known path address.
// Rendered as a base58 multihash ("Qm...").
type Address string

// Identity is an externally issued participant address. Opaque to the
// directory; compared only for equality.
type Identity string

// Address returns the identity as an edge source.
func (id Identity) Address() Address {
	return Address(id)
}

// Tag labels an edge. Tags are raw bytes; Go strings carry them unchanged.
type Tag string

// ProfileTag is the reserved tag marking identity → profile edges.
// Every other tag in the directory is a literal username.
const ProfileTag Tag = "profile"

// Profile is the record a participant registers.
// Immutable once stored.
type Profile struct {
	Username string            `json:"username"`
	Fields   map[string]string `json:"fields"`
}

// Clone returns a copy that shares no map with p. The username and fields
// are kept exactly as given; a nil Fields map becomes an empty map so
// stored and returned profiles agree.
func (p Profile) Clone() Profile {
	out := Profile{
		Username: p.Username,
		Fields:   make(map[string]string, len(p.Fields)),
	}
	maps.Copy(out.Fields, p.Fields)
	return out
}

// UsernameKey is the NFC form of the username. Uniqueness, sharding and
// the shard -> profile edge tag use it, so composed and decomposed
// spellings of one name collide. The stored profile keeps the username as
// written.
func (p Profile) UsernameKey() string {
	return norm.NFC.String(p.Username)
}

// Equal reports whether two profiles have the same username and fields.
func (p Profile) Equal(other Profile) bool {
	if p.Username != other.Username {
		return false
	}
	if len(p.Fields) == 0 && len(other.Fields) == 0 {
		return true
	}
	return maps.Equal(p.Fields, other.Fields)
}

// ProfileRecord pairs a profile with the identity that authored it.
// Constructed on read, never stored.
type ProfileRecord struct {
	Identity Identity `json:"identity"`
	Profile  Profile  `json:"profile"`
}

// Entry is a stored profile together with its provenance.
// Author is recorded at write time, never inferred on read.
type Entry struct {
	Address Address  `json:"address"`
	Author  Identity `json:"author"`
	Profile Profile  `json:"profile"`
	Seq     int64    `json:"seq"` // Insertion order in the ledger
}

// Record converts the entry into the caller-facing result.
func (e Entry) Record() ProfileRecord {
	return ProfileRecord{Identity: e.Author, Profile: e.Profile}
}

// Edge is a directed, tagged, append-only link between two addresses.
type Edge struct {
	ID     string  `json:"id"` // UUIDv7 assigned by the ledger
	Source Address `json:"source"`
	Target Address `json:"target"`
	Tag    Tag     `json:"tag"`
	Seq    int64   `json:"seq"` // Insertion order in the ledger
}

// TagFilter optionally restricts an edge listing to one tag.
// The zero value matches every tag.
type TagFilter struct {
	tag Tag
	set bool
}

// AnyTag matches edges regardless of tag.
func AnyTag() TagFilter {
	return TagFilter{}
}

// WithTag matches only edges carrying exactly tag.
func WithTag(tag Tag) TagFilter {
	return TagFilter{tag: tag, set: true}
}

// Tag returns the filtered tag and whether the filter is set.
func (f TagFilter) Tag() (Tag, bool) {
	return f.tag, f.set
}

// Match reports whether an edge tag passes the filter.
func (f TagFilter) Match(tag Tag) bool {
	return !f.set || f.tag == tag
}

// LedgerStats counts what a ledger holds.
type LedgerStats struct {
	Records int `json:"records"`
	Links   int `json:"links"`
}
