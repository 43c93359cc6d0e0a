package harness

import (
	"context"
	"fmt"

	"github.com/roach88/profiledir/internal/ir"
	"github.com/roach88/profiledir/internal/shard"
)

// statser is implemented by both ledgers.
type statser interface {
	Stats(ctx context.Context) (ir.LedgerStats, error)
}

// evaluateAssertions checks every assertion against the final ledger and
// returns the failures. All assertions are evaluated (no fail-fast).
func (h *Harness) evaluateAssertions(ctx context.Context, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if msg := h.evaluateAssertion(ctx, a); msg != "" {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %s", i, a.Type, msg))
		}
	}
	return errs
}

func (h *Harness) evaluateAssertion(ctx context.Context, a Assertion) string {
	switch a.Type {
	case AssertShardCount:
		shards, err := shard.NewTree(h.ledger).Shards(ctx)
		if err != nil {
			return err.Error()
		}
		if len(shards) != a.Count {
			return fmt.Sprintf("expected %d shard(s), got %d", a.Count, len(shards))
		}

	case AssertLedgerStats:
		st, ok := h.ledger.(statser)
		if !ok {
			return "ledger does not report stats"
		}
		stats, err := st.Stats(ctx)
		if err != nil {
			return err.Error()
		}
		want := ir.LedgerStats{Records: a.Records, Links: a.Links}
		if stats != want {
			return fmt.Sprintf("expected %+v, got %+v", want, stats)
		}

	case AssertProfileOf:
		rec, err := h.service("").GetProfile(ctx, h.identity(a.Identity))
		if err != nil {
			return err.Error()
		}
		got := ""
		if rec != nil {
			got = rec.Profile.Username
		}
		if got != a.Username {
			return fmt.Sprintf("expected %s to have profile %q, got %q", a.Identity, a.Username, got)
		}

	default:
		return fmt.Sprintf("unknown assertion type %q", a.Type)
	}
	return ""
}
