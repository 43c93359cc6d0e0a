package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/profiledir/internal/directory"
	"github.com/roach88/profiledir/internal/ir"
	"github.com/roach88/profiledir/internal/ledger"
	"github.com/roach88/profiledir/internal/memstore"
	"github.com/roach88/profiledir/internal/policy"
	"github.com/roach88/profiledir/internal/store"
)

// Harness executes one scenario against a fresh ledger.
type Harness struct {
	ledger ledger.Ledger
	policy *policy.Policy
	logger *slog.Logger
	labels map[ir.Identity]string
}

// IdentityFor maps a scenario label to its deterministic identity.
func IdentityFor(label string) ir.Identity {
	id, err := ir.IdentityFromPublicKey([]byte("harness/" + label))
	if err != nil {
		panic(fmt.Sprintf("IdentityFor(%q): %v", label, err))
	}
	return id
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh ledger with sequential edge IDs.
// Expectation and assertion failures are reported in the result;
// storage faults and setup problems are returned as errors.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	l, closeLedger, err := openLedger(scenario.Backend)
	if err != nil {
		return nil, err
	}
	defer closeLedger()

	p := policy.Default()
	if scenario.Policy != "" {
		p, err = policy.Compile(scenario.Name+".cue", scenario.Policy)
		if err != nil {
			return nil, fmt.Errorf("failed to compile scenario policy: %w", err)
		}
	}

	h := &Harness{
		ledger: l,
		policy: p,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		labels: map[ir.Identity]string{},
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}

	for _, msg := range h.evaluateAssertions(ctx, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func openLedger(backend string) (ledger.Ledger, func(), error) {
	gen := &ir.SequentialGenerator{}
	if backend == BackendMemory {
		return memstore.New(memstore.WithEdgeIDGenerator(gen)), func() {}, nil
	}

	st, err := store.Open(":memory:", store.WithEdgeIDGenerator(gen))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	return st, func() { st.Close() }, nil
}

// service returns a directory acting as the labelled identity.
func (h *Harness) service(label string) *directory.Service {
	var self ir.Identity
	if label != "" {
		self = h.identity(label)
	}
	return directory.New(h.ledger, self,
		directory.WithLogger(h.logger),
		directory.WithPolicy(h.policy),
	)
}

func (h *Harness) identity(label string) ir.Identity {
	id := IdentityFor(label)
	h.labels[id] = label
	return id
}

// executeStep runs one step, records it in the trace and checks its
// expectation. Only non-directory errors are returned.
func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) error {
	event := TraceEvent{Step: i, Op: step.Op, As: step.As, Outcome: OutcomeOK}
	svc := h.service(step.As)

	var (
		records []ir.ProfileRecord
		err     error
	)
	switch step.Op {
	case OpCreate:
		event.Target = step.Username
		var rec ir.ProfileRecord
		rec, err = svc.CreateProfile(ctx, ir.Profile{Username: step.Username, Fields: step.Fields})
		if err == nil {
			records = []ir.ProfileRecord{rec}
		}
	case OpGet:
		of := step.Of
		if of == "" {
			of = step.As
		}
		event.Target = of
		var rec *ir.ProfileRecord
		rec, err = svc.GetProfile(ctx, h.identity(of))
		if rec != nil {
			records = []ir.ProfileRecord{*rec}
		}
	case OpSearch:
		event.Target = step.Prefix
		records, err = svc.SearchProfiles(ctx, step.Prefix)
	case OpList:
		records, err = svc.ListAllProfiles(ctx)
	}

	var de *directory.Error
	switch {
	case errors.As(err, &de):
		event.Outcome = string(de.Code)
	case err != nil:
		return err
	}

	for _, r := range records {
		event.Usernames = append(event.Usernames, r.Profile.Username)
	}
	result.Trace = append(result.Trace, event)

	for _, msg := range h.checkExpect(step, event, records) {
		result.AddError(fmt.Sprintf("step %d (%s %s): %s", i, step.Op, event.Target, msg))
	}
	return nil
}

func (h *Harness) checkExpect(step Step, event TraceEvent, records []ir.ProfileRecord) []string {
	e := step.Expect
	if e == nil {
		if event.Outcome != OutcomeOK {
			return []string{fmt.Sprintf("unexpected error %s", event.Outcome)}
		}
		return nil
	}

	if e.Error != "" {
		if event.Outcome != e.Error {
			return []string{fmt.Sprintf("expected error %s, got %s", e.Error, event.Outcome)}
		}
		return nil
	}
	if event.Outcome != OutcomeOK {
		return []string{fmt.Sprintf("unexpected error %s", event.Outcome)}
	}

	var errs []string
	if e.None && len(records) > 0 {
		errs = append(errs, fmt.Sprintf("expected no profile, got %v", event.Usernames))
	}
	if e.Count != nil && len(records) != *e.Count {
		errs = append(errs, fmt.Sprintf("expected %d profile(s), got %d", *e.Count, len(records)))
	}
	if len(e.Usernames) > 0 && !slices.Equal(e.Usernames, event.Usernames) {
		errs = append(errs, fmt.Sprintf("expected usernames %v, got %v", e.Usernames, event.Usernames))
	}
	if len(e.Authors) > 0 {
		authors := make([]string, len(records))
		for i, r := range records {
			authors[i] = h.label(r.Identity)
		}
		if !slices.Equal(e.Authors, authors) {
			errs = append(errs, fmt.Sprintf("expected authors %v, got %v", e.Authors, authors))
		}
	}
	return errs
}

// label returns the scenario label for id, or the identity itself.
func (h *Harness) label(id ir.Identity) string {
	if l, ok := h.labels[id]; ok {
		return l
	}
	return string(id)
}
