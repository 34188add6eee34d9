package icoforge

import (
	"context"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of rendering one source binding.
type Result struct {
	ID    string
	Image *image.NRGBA
	Err   error
	// Generation is the scheduler generation the result belongs to.
	Generation uint64
}

// RenderAll renders every binding of table with the same effects, running at
// most workers renders at a time. Bindings are independent: a failing render
// is reported in its Result and does not stop the others. Results follow the
// table's insertion order. The error is non-nil only when ctx is done first.
func RenderAll(ctx context.Context, table *Table, size int, fx Effects, workers int) ([]Result, error) {
	bindings := table.Snapshot()
	results := make([]Result, len(bindings))
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, b := range bindings {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := Render(b.Image, size, fx, b.Crop)
			results[i] = Result{ID: b.ID, Image: img, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
