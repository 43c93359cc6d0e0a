package ir

import (
	"fmt"

	"github.com/multiformats/go-multihash"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainProfile  = "profiledir/profile/v1"
	DomainPath     = "profiledir/path/v1"
	DomainIdentity = "profiledir/identity/v1"
)

// hashWithDomain computes a sha2-256 multihash with domain separation.
// Format: SHA256(domain + 0x00 + data), rendered in base58.
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) (Address, error) {
	buf := make([]byte, 0, len(domain)+1+len(data))
	buf = append(buf, domain...)
	buf = append(buf, 0x00)
	buf = append(buf, data...)

	mh, err := multihash.Sum(buf, multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("multihash: %w", err)
	}
	return Address(mh.B58String()), nil
}

// ProfileAddress computes the content address of a profile.
// Identical profiles always yield the identical address, whoever writes them.
func ProfileAddress(p Profile) (Address, error) {
	canonical, err := CanonicalProfile(p)
	if err != nil {
		return "", fmt.Errorf("ProfileAddress: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainProfile, canonical)
}

// PathAddress computes the well-known address of a dotted path such as
// "all_profiles.ali". Pure: no storage is touched.
func PathAddress(path string) Address {
	canonical, err := MarshalCanonical(path)
	if err != nil {
		// Strings always marshal.
		panic(fmt.Sprintf("PathAddress: %v", err))
	}
	addr, err := hashWithDomain(DomainPath, canonical)
	if err != nil {
		// sha2-256 is always registered.
		panic(fmt.Sprintf("PathAddress: %v", err))
	}
	return addr
}

// IdentityFromPublicKey derives a participant identity from raw public key bytes.
func IdentityFromPublicKey(pub []byte) (Identity, error) {
	if len(pub) == 0 {
		return "", fmt.Errorf("IdentityFromPublicKey: empty key")
	}
	addr, err := hashWithDomain(DomainIdentity, pub)
	if err != nil {
		return "", fmt.Errorf("IdentityFromPublicKey: %w", err)
	}
	return Identity(addr), nil
}

// ValidAddress reports whether s decodes as a base58 multihash.
func ValidAddress(s string) bool {
	_, err := multihash.FromB58String(s)
	return err == nil
}

// MustProfileAddress is like ProfileAddress but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustProfileAddress(p Profile) Address {
	addr, err := ProfileAddress(p)
	if err != nil {
		panic(err)
	}
	return addr
}
