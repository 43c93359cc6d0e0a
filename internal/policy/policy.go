package policy

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/profiledir/internal/ir"
)

// DefinitionPath is the CUE path every policy source must define.
const DefinitionPath = "#Profile"

// DefaultSource is the policy used when no policy file is configured.
const DefaultSource = `
#Profile: {
	username: string & !=""
	fields: [string]: string
}
`

// Policy validates profiles against a compiled #Profile definition.
//
// A cue.Context is not safe for concurrent use, so Validate serialises
// access to it.
type Policy struct {
	mu   sync.Mutex
	ctx  *cue.Context
	def  cue.Value
	name string
}

// Violation describes the first constraint a profile failed.
type Violation struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (v *Violation) Error() string {
	if v.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			v.Pos.Filename(), v.Pos.Line(), v.Pos.Column(), v.Path, v.Message)
	}
	if v.Path == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Default returns the built-in policy.
func Default() *Policy {
	p, err := Compile("default.cue", DefaultSource)
	if err != nil {
		panic(fmt.Sprintf("policy: default source does not compile: %v", err))
	}
	return p
}

// Compile builds a policy from CUE source. name is used in error positions.
func Compile(name, src string) (*Policy, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile policy %s: %w", name, err)
	}

	def := v.LookupPath(cue.ParsePath(DefinitionPath))
	if !def.Exists() {
		return nil, fmt.Errorf("compile policy %s: %s is not defined", name, DefinitionPath)
	}
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("compile policy %s: %w", name, err)
	}

	return &Policy{ctx: ctx, def: def, name: name}, nil
}

// Load reads and compiles a policy file.
func Load(path string) (*Policy, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	return Compile(path, string(src))
}

// Name returns the file name the policy was compiled from.
func (p *Policy) Name() string {
	return p.name
}

// Validate reports a *Violation if profile does not satisfy #Profile.
// The profile is checked exactly as written; a nil Fields map is checked
// as an empty one.
func (p *Policy) Validate(profile ir.Profile) error {
	fields := profile.Fields
	if fields == nil {
		fields = map[string]string{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	data := p.ctx.Encode(map[string]any{
		"username": profile.Username,
		"fields":   fields,
	})
	if err := data.Err(); err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	unified := p.def.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return violation(err)
	}
	return nil
}

// violation converts the first CUE error into a Violation.
func violation(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Violation{Message: err.Error()}
	}

	first := errs[0]
	v := &Violation{
		Path:    strings.Join(first.Path(), "."),
		Message: first.Error(),
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		v.Pos = positions[0]
	}
	return v
}
