// Package config loads renderer settings from TOML files and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"

	"github.com/df07/go-phong-raytracer/pkg/scene"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Render modes
const (
	ModeColor = "color"
	ModeDepth = "depth"
)

// Config is the complete renderer configuration
type Config struct {
	Render RenderConfig `toml:"render"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
	S3     S3Config     `toml:"s3"`
	Server ServerConfig `toml:"server"`
}

// RenderConfig controls how images are produced
type RenderConfig struct {
	Workers   int     `toml:"workers"`   // Parallel tile workers; 0 means one per CPU
	TileSize  int     `toml:"tile_size"` // Tile edge length in pixels
	MaxDepth  int     `toml:"max_depth"` // Bounce budget; -1 keeps the scene's own
	Gamma     float64 `toml:"gamma"`     // Output gamma; 1 writes linear values
	Mode      string  `toml:"mode"`      // "color" or "depth"
	Width     int     `toml:"width"`     // Overrides the scene camera when > 0
	Height    int     `toml:"height"`    // Overrides the scene camera when > 0
	Subpixels int     `toml:"subpixels"` // Overrides the scene camera when > 0
}

// OutputConfig controls where rendered images are written
type OutputConfig struct {
	Path           string `toml:"path"`            // Image path; the extension selects the format
	Format         string `toml:"format"`          // Explicit format overriding the extension
	ThumbnailWidth int    `toml:"thumbnail_width"` // Also write a thumbnail when > 0
}

// LogConfig controls logging
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// S3Config enables uploading renders to an S3 compatible store
type S3Config struct {
	Bucket         string `toml:"bucket"`
	Region         string `toml:"region"`
	Endpoint       string `toml:"endpoint"`
	Prefix         string `toml:"prefix"`
	ForcePathStyle bool   `toml:"force_path_style"`

	// Credentials only come from the environment
	AccessKey string `toml:"-"`
	SecretKey string `toml:"-"`
}

// Enabled reports whether uploads are configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// ServerConfig controls the HTTP render service
type ServerConfig struct {
	Address   string `toml:"address"`
	ScenesDir string `toml:"scenes_dir"`
	MaxPixels int    `toml:"max_pixels"` // Most pixel samples (width × height × subpixels²) a request may ask for
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Render: RenderConfig{
			Workers:  0,
			TileSize: 32,
			MaxDepth: -1,
			Gamma:    1.0,
			Mode:     ModeColor,
		},
		Output: OutputConfig{
			Path: "output/render.png",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		S3: S3Config{
			Region:         "us-east-1",
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Address:   ":8080",
			ScenesDir: "scenes",
			MaxPixels: 4096 * 4096,
		},
	}
}

// Load reads a TOML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides settings from environment variables looked up with lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, target *string) {
		if value, ok := lookup(key); ok && value != "" {
			*target = value
		}
	}

	set("S3_ACCESS_KEY", &c.S3.AccessKey)
	set("S3_SECRET_KEY", &c.S3.SecretKey)
	set("S3_BUCKET", &c.S3.Bucket)
	set("S3_REGION", &c.S3.Region)
	set("S3_ENDPOINT", &c.S3.Endpoint)
	set("LOG_LEVEL", &c.Log.Level)
	set("SERVER_ADDRESS", &c.Server.Address)
}

// EffectiveWorkers returns the worker count to use
func (c RenderConfig) EffectiveWorkers() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// Validate checks the configuration for values no render could use
func (c Config) Validate() error {
	r := c.Render
	switch {
	case r.Workers < 0:
		return fmt.Errorf("%w: render.workers must not be negative, got %d", ErrInvalidConfig, r.Workers)
	case r.TileSize <= 0:
		return fmt.Errorf("%w: render.tile_size must be positive, got %d", ErrInvalidConfig, r.TileSize)
	case r.MaxDepth < -1 || r.MaxDepth > scene.MaxDepthLimit:
		return fmt.Errorf("%w: render.max_depth must be in [-1, %d], got %d", ErrInvalidConfig, scene.MaxDepthLimit, r.MaxDepth)
	case !(r.Gamma > 0):
		return fmt.Errorf("%w: render.gamma must be positive, got %v", ErrInvalidConfig, r.Gamma)
	case r.Mode != ModeColor && r.Mode != ModeDepth:
		return fmt.Errorf("%w: render.mode must be %q or %q, got %q", ErrInvalidConfig, ModeColor, ModeDepth, r.Mode)
	case r.Width < 0 || r.Height < 0 || r.Subpixels < 0:
		return fmt.Errorf("%w: render size overrides must not be negative", ErrInvalidConfig)
	case c.Output.ThumbnailWidth < 0:
		return fmt.Errorf("%w: output.thumbnail_width must not be negative", ErrInvalidConfig)
	case c.Server.MaxPixels <= 0:
		return fmt.Errorf("%w: server.max_pixels must be positive", ErrInvalidConfig)
	}

	if c.S3.Enabled() && (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
		return fmt.Errorf("%w: S3_ACCESS_KEY and S3_SECRET_KEY must be set together", ErrInvalidConfig)
	}
	return nil
}
