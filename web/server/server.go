package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/df07/go-phong-raytracer/pkg/camera"
	"github.com/df07/go-phong-raytracer/pkg/config"
	"github.com/df07/go-phong-raytracer/pkg/loaders"
	"github.com/df07/go-phong-raytracer/pkg/output"
	"github.com/df07/go-phong-raytracer/pkg/scene"
)

// maxSceneBytes bounds the size of a posted scene description
const maxSceneBytes = 1 << 20

var (
	errSceneNotFound = errors.New("scene not found")
	errTooLarge      = errors.New("requested image is too large")
)

// Server handles web requests for the raytracer
type Server struct {
	config    config.Config
	logger    *slog.Logger
	console   *ConsoleHandler     // Nil disables /api/console history
	publisher *output.S3Publisher // Nil when uploads are not configured
	loader    *loaders.YAMLLoader
}

// NewServer creates a new web server
func NewServer(cfg config.Config, logger *slog.Logger, console *ConsoleHandler, publisher *output.S3Publisher) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		config:    cfg,
		logger:    logger,
		console:   console,
		publisher: publisher,
		loader:    loaders.NewYAMLLoader(logger),
	}
}

// Handler returns the HTTP handler serving every endpoint
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/render", s.handleRender)
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /api/inspect", s.handleInspect)
	mux.HandleFunc("POST /api/inspect", s.handleInspect)
	mux.HandleFunc("GET /api/console", s.handleConsole)
	return s.logRequests(mux)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Server.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "address", httpServer.Addr)
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down web server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration", time.Since(start))
	})
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in and YAML scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.config.Server.ScenesDir)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleConsole returns the most recent log messages
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	messages := []ConsoleMessage{}
	if s.console != nil {
		messages = s.console.Recent()
	}
	writeJSON(w, http.StatusOK, messages)
}

// requestedScene is a scene resolved from a request together with its camera
type requestedScene struct {
	ID     string
	Scene  *scene.Scene
	Camera *camera.Perspective
}

// loadScene resolves the scene of a request. A POST body is parsed as a YAML
// scene; otherwise the scene query parameter names a built-in or "yaml:" scene.
// The width, height and subpixels parameters override the scene camera.
func (s *Server) loadScene(w http.ResponseWriter, r *http.Request) (*requestedScene, error) {
	var result requestedScene
	if r.Method == http.MethodPost {
		loaded, err := s.loader.Parse(http.MaxBytesReader(w, r.Body, maxSceneBytes))
		if err != nil {
			return nil, err
		}
		result = requestedScene{ID: "posted", Scene: loaded.Scene, Camera: loaded.Camera}
	} else {
		id := r.URL.Query().Get("scene")
		if id == "" {
			id = "default"
		}
		sceneObj, cam, err := s.createScene(id)
		if err != nil {
			return nil, err
		}
		result = requestedScene{ID: id, Scene: sceneObj, Camera: cam}
	}

	query := r.URL.Query()
	width, err := parseIntParam(query, "width", result.Camera.Width(), 1, 16384)
	if err != nil {
		return nil, err
	}
	height, err := parseIntParam(query, "height", result.Camera.Height(), 1, 16384)
	if err != nil {
		return nil, err
	}
	subpixels, err := parseIntParam(query, "subpixels", result.Camera.Subpixels(), 1, camera.MaxSubpixels)
	if err != nil {
		return nil, err
	}
	if samples := width * height * subpixels * subpixels; samples > s.config.Server.MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d with %d subpixels is %d samples, limit %d",
			errTooLarge, width, height, subpixels, samples, s.config.Server.MaxPixels)
	}

	if result.Camera, err = result.Camera.WithResolution(width, height); err != nil {
		return nil, err
	}
	if result.Camera, err = result.Camera.WithSubpixels(subpixels); err != nil {
		return nil, err
	}
	return &result, nil
}

// createScene builds a scene by ID
func (s *Server) createScene(id string) (*scene.Scene, *camera.Perspective, error) {
	sceneObj, cam, err := scene.NewBuiltin(id)
	if err == nil || !errors.Is(err, scene.ErrUnknownScene) {
		return sceneObj, cam, err
	}

	yamlScenes, err := scene.ListYAMLScenes(s.config.Server.ScenesDir)
	if err != nil {
		return nil, nil, err
	}
	for _, info := range yamlScenes {
		if info.ID == id {
			loaded, err := s.loader.Load(info.FilePath)
			if err != nil {
				return nil, nil, err
			}
			return loaded.Scene, loaded.Camera, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %q", errSceneNotFound, id)
}

// statusFor maps request errors to HTTP status codes
func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, errSceneNotFound):
		return http.StatusNotFound
	case errors.Is(err, errTooLarge), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, output.ErrS3Disabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
