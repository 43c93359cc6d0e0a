package directory

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/profiledir/internal/ir"
)

// resolve reads the target of every edge in parallel and returns the
// records in edge order, each paired with its author. The first failure
// cancels the remaining reads.
func (s *Service) resolve(ctx context.Context, edges []ir.Edge) ([]ir.ProfileRecord, error) {
	records := make([]ir.ProfileRecord, len(edges))
	if len(edges) == 0 {
		return records, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, edge := range edges {
		g.Go(func() error {
			entry, err := s.fetch(gctx, edge.Target)
			if err != nil {
				return err
			}
			records[i] = entry.Record()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
