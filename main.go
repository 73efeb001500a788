package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/df07/go-phong-raytracer/pkg/camera"
	"github.com/df07/go-phong-raytracer/pkg/config"
	"github.com/df07/go-phong-raytracer/pkg/core"
	"github.com/df07/go-phong-raytracer/pkg/loaders"
	"github.com/df07/go-phong-raytracer/pkg/logging"
	"github.com/df07/go-phong-raytracer/pkg/output"
	"github.com/df07/go-phong-raytracer/pkg/renderer"
	"github.com/df07/go-phong-raytracer/pkg/scene"
	"github.com/df07/go-phong-raytracer/web/server"
)

// consoleHistory is the number of log messages kept for /api/console
const consoleHistory = 200

// cli holds the command line flag values
type cli struct {
	configPath string
	verbose    bool
	quiet      bool
	logFormat  string
	scenesDir  string

	scene     string
	out       string
	format    string
	mode      string
	workers   int
	tileSize  int
	maxDepth  int
	gamma     float64
	width     int
	height    int
	subpixels int
	thumbnail int
	upload    bool

	address string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "raytracer",
		Short:        "Phong raytracer with point and directional lights",
		SilenceUsage: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "TOML configuration file")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVarP(&c.quiet, "quiet", "q", false, "Only log errors")
	flags.StringVar(&c.logFormat, "log-format", "", "Log format: text or json")
	flags.StringVar(&c.scenesDir, "scenes-dir", "", "Directory of YAML scenes")

	root.AddCommand(c.renderCommand(), c.serveCommand(), c.scenesCommand())
	return root
}

func (c *cli) renderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to an image file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := c.setup(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.render(ctx, cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&c.scene, "scene", "s", "default", "Built-in scene ID, yaml:<name>, or path to a YAML scene")
	flags.StringVarP(&c.out, "out", "o", "", "Output image path")
	flags.StringVar(&c.format, "format", "", "Output format: png, jpeg, tiff or bmp (default from extension)")
	flags.StringVar(&c.mode, "mode", "", "Render mode: color or depth")
	flags.IntVar(&c.workers, "workers", 0, "Number of parallel workers (0 = one per CPU)")
	flags.IntVar(&c.tileSize, "tile-size", 0, "Tile edge length in pixels")
	flags.IntVar(&c.maxDepth, "max-depth", -1, "Reflection depth (-1 = scene default)")
	flags.Float64Var(&c.gamma, "gamma", 1, "Output gamma")
	flags.IntVar(&c.width, "width", 0, "Override the camera width")
	flags.IntVar(&c.height, "height", 0, "Override the camera height")
	flags.IntVar(&c.subpixels, "subpixels", 0, "Override the camera subpixel grid")
	flags.IntVar(&c.thumbnail, "thumbnail", 0, "Also write a thumbnail of this width")
	flags.BoolVar(&c.upload, "upload", false, "Upload the image to the configured S3 bucket")
	return cmd
}

func (c *cli) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := c.setup(cmd)
			if err != nil {
				return err
			}

			console := server.NewConsoleHandler(logger.Handler(), consoleHistory)
			logger = slog.New(console)

			var publisher *output.S3Publisher
			if cfg.S3.Enabled() {
				if publisher, err = output.NewS3Publisher(cfg.S3); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.NewServer(cfg, logger, console, publisher).Start(ctx)
		},
	}
	cmd.Flags().StringVar(&c.address, "addr", "", "Listen address (default from config)")
	return cmd
}

func (c *cli) scenesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List the available scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := c.setup(cmd)
			if err != nil {
				return err
			}
			scenes, err := scene.ListAllScenes(cfg.Server.ScenesDir)
			if err != nil {
				return err
			}
			for _, info := range scenes {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", info.ID, info.Name)
				if info.Description != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", "", info.Description)
				}
			}
			return nil
		},
	}
}

// setup loads the configuration and creates the logger
func (c *cli) setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	// A missing .env file is normal
	_ = godotenv.Load()

	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return cfg, nil, err
	}

	base, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return cfg, nil, err
	}
	logger, err := logging.New(logging.LevelFromFlags(c.verbose, c.quiet, base), cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

// loadConfig layers defaults, the config file, the environment and set flags
func (c *cli) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if c.configPath != "" {
		var err error
		if cfg, err = config.Load(c.configPath); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	c.applyFlags(cmd, &cfg)
	return cfg, cfg.Validate()
}

// applyFlags copies explicitly set flags over cfg
func (c *cli) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("log-format") {
		cfg.Log.Format = c.logFormat
	}
	if changed("scenes-dir") {
		cfg.Server.ScenesDir = c.scenesDir
	}
	if changed("out") {
		cfg.Output.Path = c.out
	}
	if changed("format") {
		cfg.Output.Format = c.format
	}
	if changed("mode") {
		cfg.Render.Mode = c.mode
	}
	if changed("workers") {
		cfg.Render.Workers = c.workers
	}
	if changed("tile-size") {
		cfg.Render.TileSize = c.tileSize
	}
	if changed("max-depth") {
		cfg.Render.MaxDepth = c.maxDepth
	}
	if changed("gamma") {
		cfg.Render.Gamma = c.gamma
	}
	if changed("width") {
		cfg.Render.Width = c.width
	}
	if changed("height") {
		cfg.Render.Height = c.height
	}
	if changed("subpixels") {
		cfg.Render.Subpixels = c.subpixels
	}
	if changed("thumbnail") {
		cfg.Output.ThumbnailWidth = c.thumbnail
	}
	if changed("addr") {
		cfg.Server.Address = c.address
	}
}

// createScene resolves a scene argument: a path to a YAML file, a "yaml:" ID
// from the scenes directory, or a built-in scene ID
func createScene(sceneType, scenesDir string, logger *slog.Logger) (*scene.Scene, *camera.Perspective, error) {
	loader := loaders.NewYAMLLoader(logger)

	ext := strings.ToLower(filepath.Ext(sceneType))
	if ext == ".yaml" || ext == ".yml" {
		loaded, err := loader.Load(sceneType)
		if err != nil {
			return nil, nil, err
		}
		return loaded.Scene, loaded.Camera, nil
	}

	if strings.HasPrefix(sceneType, "yaml:") {
		yamlScenes, err := scene.ListYAMLScenes(scenesDir)
		if err != nil {
			return nil, nil, err
		}
		for _, info := range yamlScenes {
			if info.ID == sceneType {
				loaded, err := loader.Load(info.FilePath)
				if err != nil {
					return nil, nil, err
				}
				return loaded.Scene, loaded.Camera, nil
			}
		}
		return nil, nil, fmt.Errorf("scene %q not found in %s", sceneType, scenesDir)
	}

	return scene.NewBuiltin(sceneType)
}

// applyCameraOverrides resizes cam according to the render configuration
func applyCameraOverrides(cam *camera.Perspective, cfg config.RenderConfig) (*camera.Perspective, error) {
	width, height := cam.Width(), cam.Height()
	if cfg.Width > 0 {
		width = cfg.Width
	}
	if cfg.Height > 0 {
		height = cfg.Height
	}

	var err error
	if width != cam.Width() || height != cam.Height() {
		if cam, err = cam.WithResolution(width, height); err != nil {
			return nil, err
		}
	}
	if cfg.Subpixels > 0 && cfg.Subpixels != cam.Subpixels() {
		if cam, err = cam.WithSubpixels(cfg.Subpixels); err != nil {
			return nil, err
		}
	}
	return cam, nil
}

// outputFormat returns the configured format, or the one implied by the output path
func outputFormat(cfg config.OutputConfig) (output.Format, error) {
	if cfg.Format != "" {
		return output.ParseFormat(cfg.Format)
	}
	return output.FormatFromPath(cfg.Path)
}

func (c *cli) render(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	sceneObj, cam, err := createScene(c.scene, cfg.Server.ScenesDir, logger)
	if err != nil {
		return err
	}
	if cam, err = applyCameraOverrides(cam, cfg.Render); err != nil {
		return err
	}
	format, err := outputFormat(cfg.Output)
	if err != nil {
		return err
	}
	mode, err := renderer.ParseMode(cfg.Render.Mode)
	if err != nil {
		return err
	}

	logger.Info("rendering",
		"scene", c.scene,
		"width", cam.Width(),
		"height", cam.Height(),
		"subpixels", cam.Subpixels(),
		"primitives", sceneObj.GetPrimitiveCount())

	raytracer, err := renderer.NewRaytracer(sceneObj, cam, renderer.Options{
		Workers:  cfg.Render.Workers,
		TileSize: cfg.Render.TileSize,
		MaxDepth: cfg.Render.MaxDepth,
		Gamma:    core.Real(cfg.Render.Gamma),
		Mode:     mode,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	result, err := raytracer.Render(ctx)
	if err != nil {
		return err
	}

	if err := output.Save(result.Image, cfg.Output.Path, format); err != nil {
		return err
	}
	logger.Info("render saved",
		"path", cfg.Output.Path,
		"duration", result.Stats.Duration,
		"rays", result.Stats.TotalRays,
		"avg_luminance", fmt.Sprintf("%.4f", renderer.CalculateAverageLuminance(result.Image)))

	if cfg.Output.ThumbnailWidth > 0 {
		thumbPath := output.ThumbnailPath(cfg.Output.Path)
		if err := output.Save(output.Thumbnail(result.Image, cfg.Output.ThumbnailWidth), thumbPath, format); err != nil {
			return err
		}
		logger.Info("thumbnail saved", "path", thumbPath)
	}

	if c.upload {
		if !cfg.S3.Enabled() {
			return output.ErrS3Disabled
		}
		publisher, err := output.NewS3Publisher(cfg.S3)
		if err != nil {
			return err
		}
		key, err := publisher.UploadImage(ctx, filepath.Base(cfg.Output.Path), result.Image, format)
		if err != nil {
			return errors.Join(errors.New("render saved locally but upload failed"), err)
		}
		logger.Info("render uploaded", "bucket", cfg.S3.Bucket, "key", key)
	}

	return nil
}
