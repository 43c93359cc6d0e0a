// Package identity manages the local participant key.
//
// The key file holds a base58-encoded 32-byte ed25519 seed followed by a
// newline. The identity is the base58 sha2-256 multihash of the public key
// (see ir.IdentityFromPublicKey).
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/roach88/profiledir/internal/ir"
)

var (
	// ErrKeyExists is returned by Save when the key file already exists.
	ErrKeyExists = errors.New("key file already exists")

	// ErrInvalidKey is returned for key files that do not hold a seed.
	ErrInvalidKey = errors.New("invalid key file")
)

// Key is an ed25519 key pair and the identity derived from it.
type Key struct {
	private ed25519.PrivateKey
	id      ir.Identity
}

// Generate creates a new random key.
func Generate() (*Key, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return FromSeed(seed)
}

// FromSeed derives a key from a 32-byte seed.
func FromSeed(seed []byte) (*Key, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed is %d bytes, want %d", ErrInvalidKey, len(seed), ed25519.SeedSize)
	}
	private := ed25519.NewKeyFromSeed(seed)
	id, err := ir.IdentityFromPublicKey(private.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("derive identity: %w", err)
	}
	return &Key{private: private, id: id}, nil
}

// Identity returns the participant address for this key.
func (k *Key) Identity() ir.Identity {
	return k.id
}

// PublicKey returns the ed25519 public key.
func (k *Key) PublicKey() ed25519.PublicKey {
	return k.private.Public().(ed25519.PublicKey)
}

// Save writes the seed to path with mode 0600. It never overwrites an
// existing file.
func Save(path string, k *Key) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("save key %s: %w", path, ErrKeyExists)
	}
	if err != nil {
		return fmt.Errorf("save key: %w", err)
	}

	if _, err := fmt.Fprintln(f, base58.Encode(k.private.Seed())); err != nil {
		f.Close()
		return fmt.Errorf("save key: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save key: %w", err)
	}
	return nil
}

// Load reads a key previously written by Save.
func Load(path string) (*Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load key: %w", err)
	}

	seed, err := base58.Decode(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("load key %s: %w: %v", path, ErrInvalidKey, err)
	}
	k, err := FromSeed(seed)
	if err != nil {
		return nil, fmt.Errorf("load key %s: %w", path, err)
	}
	return k, nil
}
