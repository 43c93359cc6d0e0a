package shard

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/roach88/profiledir/internal/ir"
)

const (
	// Width is the number of characters in a shard key. It is also the
	// minimum username length and the minimum search prefix length.
	Width = 3

	// RootPath is the label every shard path hangs from.
	RootPath = "all_profiles"
)

// ErrInvalidUsername is returned for usernames shorter than Width characters.
var ErrInvalidUsername = errors.New("username shorter than shard width")

// Shard identifies one bucket of the prefix tree.
type Shard struct {
	Prefix  string     `json:"prefix"`  // First Width characters of the username
	Path    string     `json:"path"`    // RootPath + "." + Prefix
	Address ir.Address `json:"address"` // ir.PathAddress(Path)
}

// For maps a username to its shard. Pure: no storage is touched.
// Characters are Unicode code points.
func For(username string) (Shard, error) {
	if !utf8.ValidString(username) {
		return Shard{}, fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidUsername, username)
	}
	if utf8.RuneCountInString(username) < Width {
		return Shard{}, fmt.Errorf("%w: %q has fewer than %d characters", ErrInvalidUsername, username, Width)
	}

	prefix := username
	n := 0
	for i := range username {
		if n == Width {
			prefix = username[:i]
			break
		}
		n++
	}

	path := RootPath + "." + prefix
	return Shard{
		Prefix:  prefix,
		Path:    path,
		Address: ir.PathAddress(path),
	}, nil
}

// Root returns the well-known address every shard is linked from.
func Root() ir.Address {
	return ir.PathAddress(RootPath)
}
