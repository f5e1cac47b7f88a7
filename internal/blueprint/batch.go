package blueprint

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchItem is the outcome for one path of AnalyzeBatch.
type BatchItem struct {
	Path   string  `json:"path"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// AnalyzeBatch analyses many plans with at most concurrency running at once.
//
// Items are returned in input order. A failing path records its error in
// the item and does not stop the others. The returned error is non-nil only
// if ctx is done, in which case unfinished items carry the context error.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, paths []string, concurrency int) ([]BatchItem, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	items := make([]BatchItem, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		items[i].Path = path
		g.Go(func() error {
			res, err := a.Analyze(gctx, path)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			items[i].Result = res
			return nil
		})
	}

	_ = g.Wait()
	return items, ctx.Err()
}
