package advisor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RecommendAll runs the requests concurrently, at most limit at a time (no limit when
// limit <= 0). Recommendations are returned in request order. The first error cancels
// the requests not yet started and is returned.
func (a *Advisor) RecommendAll(ctx context.Context, reqs []Request, limit int) ([]*Recommendation, error) {
	recs := make([]*Recommendation, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := a.Recommend(ctx, req)
			if err != nil {
				return fmt.Errorf("request %d %q: %w", i, req.Name, err)
			}
			recs[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	a.log.Debug().Int("requests", len(reqs)).Int("limit", limit).Msg("batch done")
	return recs, nil
}
