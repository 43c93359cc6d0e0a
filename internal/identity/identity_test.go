package identity

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/profiledir/internal/ir"
)

func TestGenerate_DistinctIdentities(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	assert.NotEqual(t, a.Identity(), b.Identity())
	assert.True(t, ir.ValidAddress(string(a.Identity())))
}

func TestFromSeed_Deterministic(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}

	a, err := FromSeed(seed)
	require.NoError(t, err)
	b, err := FromSeed(seed)
	require.NoError(t, err)
	assert.Equal(t, a.Identity(), b.Identity())

	want, err := ir.IdentityFromPublicKey(a.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, want, a.Identity())
	assert.True(t, strings.HasPrefix(string(a.Identity()), "Qm"))
}

func TestFromSeed_WrongLength(t *testing.T) {
	_, err := FromSeed([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiledir.key")

	k, err := Generate()
	require.NoError(t, err)
	require.NoError(t, Save(path, k))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, k.Identity(), loaded.Identity())
	assert.Equal(t, k.PublicKey(), loaded.PublicKey())
}

func TestSave_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiledir.key")

	first, err := Generate()
	require.NoError(t, err)
	require.NoError(t, Save(path, first))

	second, err := Generate()
	require.NoError(t, err)
	err = Save(path, second)
	assert.ErrorIs(t, err, ErrKeyExists)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, first.Identity(), loaded.Identity())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.key"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	garbage := filepath.Join(dir, "garbage.key")
	require.NoError(t, os.WriteFile(garbage, []byte("0OIl not base58\n"), 0o600))
	_, err = Load(garbage)
	assert.ErrorIs(t, err, ErrInvalidKey)

	short := filepath.Join(dir, "short.key")
	require.NoError(t, os.WriteFile(short, []byte(base58.Encode([]byte("sixteen byte key"))+"\n"), 0o600))
	_, err = Load(short)
	assert.ErrorIs(t, err, ErrInvalidKey)
}
