package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines a directory conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Used as the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Backend selects the ledger: "sqlite" (default) or "memory".
	Backend string `yaml:"backend,omitempty"`

	// Policy is optional CUE source declaring #Profile.
	Policy string `yaml:"policy,omitempty"`

	// Steps are executed in order against a fresh ledger.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final ledger.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one directory operation.
type Step struct {
	// As is the identity label performing the step. Required for create.
	As string `yaml:"as,omitempty"`

	// Op is one of create, get, search, list.
	Op string `yaml:"op"`

	// Username and Fields describe the profile (create).
	Username string            `yaml:"username,omitempty"`
	Fields   map[string]string `yaml:"fields,omitempty"`

	// Prefix is the search prefix (search).
	Prefix string `yaml:"prefix,omitempty"`

	// Of is the identity label to look up (get). Defaults to As.
	Of string `yaml:"of,omitempty"`

	// Expect is checked against the step's outcome.
	// If nil, the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Error is the expected directory error code, e.g. DUPLICATE_USERNAME.
	Error string `yaml:"error,omitempty"`

	// Usernames are the expected profiles, in order.
	Usernames []string `yaml:"usernames,omitempty"`

	// Authors are the expected identity labels, parallel to Usernames.
	Authors []string `yaml:"authors,omitempty"`

	// Count is the expected number of profiles returned.
	Count *int `yaml:"count,omitempty"`

	// None expects get to find no profile.
	None bool `yaml:"none,omitempty"`
}

// Assertion validates the final ledger.
type Assertion struct {
	// Type is one of shard_count, ledger_stats, profile_of.
	Type string `yaml:"type"`

	// Count is the expected shard count (shard_count).
	Count int `yaml:"count,omitempty"`

	// Records and Links are the expected ledger sizes (ledger_stats).
	Records int `yaml:"records,omitempty"`
	Links   int `yaml:"links,omitempty"`

	// Identity and Username check a binding (profile_of).
	// An empty Username expects no profile.
	Identity string `yaml:"identity,omitempty"`
	Username string `yaml:"username,omitempty"`
}

// Step operations.
const (
	OpCreate = "create"
	OpGet    = "get"
	OpSearch = "search"
	OpList   = "list"
)

// Assertion type constants.
const (
	AssertShardCount  = "shard_count"
	AssertLedgerStats = "ledger_stats"
	AssertProfileOf   = "profile_of"
)

// Backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	switch s.Backend {
	case "", BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("backend %q must be %s or %s", s.Backend, BackendSQLite, BackendMemory)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertShardCount, AssertLedgerStats:
		case AssertProfileOf:
			if a.Identity == "" {
				return fmt.Errorf("assertion %d: identity is required for %s", i, a.Type)
			}
		default:
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
	}
	return nil
}

func validateStep(step Step) error {
	switch step.Op {
	case OpCreate:
		if step.As == "" {
			return fmt.Errorf("create requires as")
		}
	case OpGet:
		if step.As == "" && step.Of == "" {
			return fmt.Errorf("get requires as or of")
		}
	case OpSearch, OpList:
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	if e := step.Expect; e != nil {
		if len(e.Authors) > 0 && len(e.Authors) != len(e.Usernames) {
			return fmt.Errorf("expect.authors must parallel expect.usernames")
		}
		if e.Error != "" && (len(e.Usernames) > 0 || e.None || e.Count != nil) {
			return fmt.Errorf("expect.error excludes other expectations")
		}
		if e.Error != "" && strings.ToUpper(e.Error) != e.Error {
			return fmt.Errorf("expect.error %q must be an upper-case error code", e.Error)
		}
	}
	return nil
}
