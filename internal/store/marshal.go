package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/profiledir/internal/ir"
)

// marshalProfile converts a profile to canonical JSON TEXT for storage.
// The stored text is exactly the bytes the address was computed from.
func marshalProfile(p ir.Profile) (string, error) {
	data, err := ir.CanonicalProfile(p)
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}
	return string(data), nil
}

// unmarshalProfile parses canonical JSON TEXT back into a profile.
func unmarshalProfile(data string) (ir.Profile, error) {
	var p ir.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return ir.Profile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	if p.Fields == nil {
		p.Fields = map[string]string{}
	}
	return p, nil
}
