package renderer

import (
	"context"
	"image"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTileGrid(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		tileSize      int
		expectedTiles int
		lastBounds    image.Rectangle
	}{
		{"exact fit", 16, 16, 8, 4, image.Rect(8, 8, 16, 16)},
		{"partial edge tiles", 10, 5, 4, 6, image.Rect(8, 4, 10, 5)},
		{"single tile", 3, 3, 8, 1, image.Rect(0, 0, 3, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := NewTileGrid(tt.width, tt.height, tt.tileSize)
			require.Len(t, tiles, tt.expectedTiles)
			assert.Equal(t, tt.lastBounds, tiles[len(tiles)-1].Bounds)

			// Tiles cover every pixel exactly once
			covered := 0
			for i, tile := range tiles {
				assert.Equal(t, i, tile.ID)
				covered += tile.Bounds.Dx() * tile.Bounds.Dy()
			}
			assert.Equal(t, tt.width*tt.height, covered)
		})
	}

	assert.Empty(t, NewTileGrid(0, 10, 8))
}

func TestWorkerPool_RunsEveryTile(t *testing.T) {
	tiles := NewTileGrid(20, 20, 4)
	pool := NewWorkerPool(3)
	assert.Equal(t, 3, pool.GetNumWorkers())

	var calls atomic.Int32
	stats, err := pool.Run(context.Background(), tiles, func(tile Tile) RenderStats {
		calls.Add(1)
		pixels := tile.Bounds.Dx() * tile.Bounds.Dy()
		return RenderStats{TotalPixels: pixels, TotalRays: pixels, Tiles: 1}
	})
	require.NoError(t, err)

	assert.Equal(t, int32(len(tiles)), calls.Load())
	assert.Equal(t, 400, stats.TotalPixels)
	assert.Equal(t, len(tiles), stats.Tiles)
	assert.Equal(t, 3, stats.Workers)
}

func TestWorkerPool_Cancellation(t *testing.T) {
	tiles := NewTileGrid(64, 64, 1)
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	_, err := NewWorkerPool(1).Run(ctx, tiles, func(tile Tile) RenderStats {
		if calls.Add(1) == 5 {
			cancel()
		}
		return RenderStats{Tiles: 1}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, int(calls.Load()), len(tiles))
}

func TestNewWorkerPool_DefaultsToCPUCount(t *testing.T) {
	assert.Positive(t, NewWorkerPool(0).GetNumWorkers())
}
