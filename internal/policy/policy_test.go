package policy

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/profiledir/internal/ir"
)

const strictSource = `
#Profile: {
	username: =~"^[a-z0-9_]+$"
	fields: {
		bio: string
		site?: =~"^https://"
	}
}
`

func TestDefault_AcceptsProfiles(t *testing.T) {
	p := Default()

	tests := []ir.Profile{
		{Username: "alice", Fields: map[string]string{"bio": "hi"}},
		{Username: "bob"},
		{Username: "Ünïcödé", Fields: map[string]string{"a": "", "b": "x"}},
	}
	for _, profile := range tests {
		t.Run(profile.Username, func(t *testing.T) {
			assert.NoError(t, p.Validate(profile))
		})
	}
}

func TestDefault_RejectsEmptyUsername(t *testing.T) {
	err := Default().Validate(ir.Profile{})
	require.Error(t, err)

	var v *Violation
	require.True(t, errors.As(err, &v))
	assert.Contains(t, v.Path, "username")
}

func TestCompile_Strict(t *testing.T) {
	p, err := Compile("strict.cue", strictSource)
	require.NoError(t, err)
	assert.Equal(t, "strict.cue", p.Name())

	tests := []struct {
		name    string
		profile ir.Profile
		path    string
	}{
		{"valid", ir.Profile{Username: "alice", Fields: map[string]string{"bio": "hi"}}, ""},
		{"valid with site", ir.Profile{Username: "alice", Fields: map[string]string{"bio": "hi", "site": "https://a.example"}}, ""},
		{"uppercase username", ir.Profile{Username: "Alice", Fields: map[string]string{"bio": "hi"}}, "username"},
		{"missing bio", ir.Profile{Username: "alice"}, "fields.bio"},
		{"bad site", ir.Profile{Username: "alice", Fields: map[string]string{"bio": "hi", "site": "http://a"}}, "fields.site"},
		{"unknown field", ir.Profile{Username: "alice", Fields: map[string]string{"bio": "hi", "age": "3"}}, "fields.age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Validate(tt.profile)
			if tt.path == "" {
				assert.NoError(t, err)
				return
			}
			var v *Violation
			require.True(t, errors.As(err, &v), "expected *Violation, got %v", err)
			assert.Equal(t, tt.path, v.Path)
			assert.NotEmpty(t, v.Error())
		})
	}
}

func TestValidate_SeesProfileAsWritten(t *testing.T) {
	p, err := Compile("composed.cue", "#Profile: {\n\tusername: =~\"^\u00e9\"\n\tfields: [string]: string\n}\n")
	require.NoError(t, err)

	assert.NoError(t, p.Validate(ir.Profile{Username: "\u00e9l\u00e8ve"}))

	err = p.Validate(ir.Profile{Username: "e\u0301le\u0300ve"})
	var v *Violation
	require.True(t, errors.As(err, &v), "decomposed spelling is not rewritten before validation: %v", err)
	assert.Equal(t, "username", v.Path)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax error", "#Profile: {"},
		{"missing definition", "Other: {username: string}"},
		{"conflicting definition", "#Profile: {username: string & int}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile("bad.cue", tt.src)
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.cue")
	require.NoError(t, os.WriteFile(path, []byte(strictSource), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, p.Name())
	assert.Error(t, p.Validate(ir.Profile{Username: "alice"}))

	_, err = Load(filepath.Join(t.TempDir(), "missing.cue"))
	assert.Error(t, err)
}

func TestValidate_Concurrent(t *testing.T) {
	p := Default()
	var wg sync.WaitGroup
	errs := make(chan error, 32)

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- p.Validate(ir.Profile{Username: "alice", Fields: map[string]string{"bio": "hi"}})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
