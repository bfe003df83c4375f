package ogimage

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchLimit bounds in-flight requests when CreateImages gets limit <= 0.
const DefaultBatchLimit = 4

// CreateImages requests one image per params entry, at most limit at a time.
// Results keep the order of batch. The first failure cancels requests that
// have not finished and is returned; nothing is retried.
func (c *Client) CreateImages(ctx context.Context, batch []Params, opts CreateOptions, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	results := make([]*Result, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range batch {
		i, p := i, p
		g.Go(func() error {
			res, err := c.CreateImage(gctx, p, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
