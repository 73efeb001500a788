package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

var (
	ErrUnknownMode = errors.New("unknown render mode")
	ErrMaxDepth    = errors.New("max depth override out of range")
)

// maxDepthLimit bounds Options.MaxDepth the same way scenes are bounded
const maxDepthLimit = scene.MaxDepthLimit

// Mode selects what the renderer writes into the image
type Mode string

const (
	ModeColor Mode = "color" // Shaded color, one RGBA pixel per camera pixel
	ModeDepth Mode = "depth" // Distance to the nearest hit as 16-bit grey, near = white
)

// ParseMode converts a mode name to a Mode
func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case "", ModeColor:
		return ModeColor, nil
	case ModeDepth:
		return ModeDepth, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

// Scene is the part of a scene the renderer needs. Implementations must be
// safe for concurrent use.
type Scene interface {
	CastRayColor(ray core.Ray) core.Color3
	CastRayDistance(ray core.Ray) (core.Real, bool)
	Trace(ray core.Ray, depth int) core.Color3
}

// Camera generates the primary rays of each pixel
type Camera interface {
	Width() int
	Height() int
	PixelRays(x, y int, buf []core.Ray) []core.Ray
}

// Options contains rendering configuration
type Options struct {
	Workers  int          // Parallel tile workers; 0 means one per CPU
	TileSize int          // Tile edge length in pixels
	MaxDepth int          // Bounce budget; negative keeps the scene's own
	Gamma    core.Real    // Output gamma applied in color mode
	Mode     Mode         // Color or depth
	Logger   *slog.Logger // Receives progress; nil discards it
}

// DefaultOptions returns sensible default values
func DefaultOptions() Options {
	return Options{
		Workers:  0,
		TileSize: 32,
		MaxDepth: -1,
		Gamma:    1.0,
		Mode:     ModeColor,
	}
}

// Result is a finished render
type Result struct {
	Image image.Image // *image.RGBA in color mode, *image.Gray16 in depth mode
	Stats RenderStats
}

// Raytracer renders a scene through a camera
type Raytracer struct {
	scene   Scene
	camera  Camera
	options Options
}

// NewRaytracer creates a new raytracer, filling unset options with defaults
func NewRaytracer(scene Scene, camera Camera, options Options) (*Raytracer, error) {
	defaults := DefaultOptions()
	if options.TileSize <= 0 {
		options.TileSize = defaults.TileSize
	}
	if !(options.Gamma > 0) {
		options.Gamma = defaults.Gamma
	}
	mode, err := ParseMode(string(options.Mode))
	if err != nil {
		return nil, err
	}
	options.Mode = mode
	if options.MaxDepth > maxDepthLimit {
		return nil, fmt.Errorf("%w: got %d, limit %d", ErrMaxDepth, options.MaxDepth, maxDepthLimit)
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}

	return &Raytracer{scene: scene, camera: camera, options: options}, nil
}

// Options returns the effective options
func (rt *Raytracer) Options() Options {
	return rt.options
}

// Render renders the whole image. On cancellation the partial result is
// returned together with the context error.
func (rt *Raytracer) Render(ctx context.Context) (*Result, error) {
	start := time.Now()
	width, height := rt.camera.Width(), rt.camera.Height()
	tiles := NewTileGrid(width, height, rt.options.TileSize)
	pool := NewWorkerPool(rt.options.Workers)
	logger := rt.options.Logger

	logger.Debug("render started",
		"mode", rt.options.Mode,
		"width", width,
		"height", height,
		"tiles", len(tiles),
		"workers", pool.GetNumWorkers())

	tileRenderer := NewTileRenderer(rt.scene, rt.camera, rt.options)

	var (
		img   image.Image
		stats RenderStats
		err   error
	)

	switch rt.options.Mode {
	case ModeDepth:
		depths := newDepthBuffer(width, height)
		stats, err = pool.Run(ctx, tiles, func(tile Tile) RenderStats {
			return rt.logTile(tile, tileRenderer.RenderDepthBounds(tile.Bounds, depths))
		})
		img = depths.toGray16()
	default:
		rgba := image.NewRGBA(image.Rect(0, 0, width, height))
		stats, err = pool.Run(ctx, tiles, func(tile Tile) RenderStats {
			return rt.logTile(tile, tileRenderer.RenderColorBounds(tile.Bounds, rgba))
		})
		img = rgba
	}

	stats.Duration = time.Since(start)
	if err != nil {
		logger.Warn("render stopped early", "error", err, "tiles", stats.Tiles, "of", len(tiles))
		return &Result{Image: img, Stats: stats}, err
	}

	logger.Info("render finished",
		"mode", rt.options.Mode,
		"pixels", stats.TotalPixels,
		"rays", stats.TotalRays,
		"workers", stats.Workers,
		"duration", stats.Duration)
	return &Result{Image: img, Stats: stats}, nil
}

func (rt *Raytracer) logTile(tile Tile, stats RenderStats) RenderStats {
	rt.options.Logger.Debug("tile done", "tile", tile.ID, "bounds", tile.Bounds.String(), "rays", stats.TotalRays)
	return stats
}
