package harness

// Outcome of a step that returned no error.
const OutcomeOK = "ok"

// TraceEvent records one executed step.
type TraceEvent struct {
	Step      int      `json:"step"`
	Op        string   `json:"op"`
	As        string   `json:"as,omitempty"`
	Target    string   `json:"target,omitempty"`    // username, prefix or identity label
	Outcome   string   `json:"outcome"`             // OutcomeOK or a directory error code
	Usernames []string `json:"usernames,omitempty"` // profiles returned, in order
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
