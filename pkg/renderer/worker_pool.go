package renderer

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// TileFunc renders one tile and reports what it did. Tiles never overlap, so
// implementations may write to shared image buffers without locking.
type TileFunc func(tile Tile) RenderStats

// WorkerPool renders tiles in parallel with a bounded number of goroutines
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// A non-positive count uses one worker per CPU.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run renders every tile and returns the merged statistics. Cancelling ctx
// stops new tiles from starting; tiles already in flight finish.
func (wp *WorkerPool) Run(ctx context.Context, tiles []Tile, render TileFunc) (RenderStats, error) {
	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(wp.numWorkers)

	var (
		mu    sync.Mutex
		total = RenderStats{Workers: wp.numWorkers}
	)

	for _, tile := range tiles {
		if groupCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			stats := render(tile)

			mu.Lock()
			total.Merge(stats)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return total, err
}
